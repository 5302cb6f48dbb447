// Package normalize rectifies a located ticket region into a canonical,
// upright, perspective-corrected raster.
//
// Two strategies are tried in order. The perspective path rebuilds a
// document-color mask on a full-resolution crop, fits a quadrilateral to the
// largest component by principal-axis analysis, solves the 8-parameter
// planar homography from the four corner correspondences, and resamples the
// crop into the fixed canonical size. The rotation-fallback path estimates a
// dominant in-plane rotation from a gradient-weighted structure tensor and
// rotates the crop upright.
//
// Geometry failures (non-convex quad, out-of-band aspect, singular system)
// are never fatal: the perspective path aborts and the rotation fallback
// answers instead.
package normalize
