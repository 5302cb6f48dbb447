// Package raster provides the frame model and per-pixel derived buffers that
// feed the ticket localization pipeline.
//
// A captured camera frame enters the pipeline as a Frame (width, height,
// interleaved RGBA). The preprocessor downscales it to a bounded working size,
// derives per-pixel hue/saturation/value and luminance buffers, and estimates
// an ambient LightingProfile from brightness percentiles. All derived buffers
// are computed once per frame and treated as read-only by later stages.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with origin at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Thread Safety
//
// Frame and PixelBuffers are plain value types with no internal
// synchronization; a single pipeline invocation owns them exclusively.
// FrameCache is safe for concurrent use by multiple goroutines.
package raster
