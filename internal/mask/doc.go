// Package mask builds the binary classification masks that drive ticket
// localization, and extracts connected components from them.
//
// Four masks are produced per frame from the derived pixel buffers and the
// ambient lighting profile:
//
//   - Document: pixels inside the tier-adjusted document hue band with
//     sufficient saturation and brightness
//   - Label: desaturated bright pixels near plausible document pixels
//   - Occlusion: skin-toned pixels, used only to penalize candidates
//   - Edge: Sobel gradient magnitude above mean + k·stddev, the fallback
//     signal when color segmentation fails
//
// The three area masks pass a 3×3 morphological open-then-close to suppress
// speckle and fill small gaps; the edge mask gets close-only cleanup so its
// thin contours survive. Components are
// maximal 4-connected pixel sets with bounding box and area, discarded below
// a per-mask minimum area ratio.
package mask
