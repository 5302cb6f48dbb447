package normalize

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/gatescan/ticket-vision/internal/locate"
	"github.com/gatescan/ticket-vision/internal/mask"
	"github.com/gatescan/ticket-vision/internal/raster"
)

// Method tags which rectification strategy produced the canonical raster.
type Method string

const (
	MethodPerspective      Method = "perspective"
	MethodRotationFallback Method = "rotation-fallback"
)

// Config collects the tunable constants of orientation normalization.
type Config struct {
	// Canonical output raster size. 1000×400 keeps the known 2.5:1
	// document aspect.
	CanonicalWidth  int
	CanonicalHeight int

	// PaddingRatio expands the located ticket box before cropping, as a
	// fraction of the larger box dimension.
	PaddingRatio float64

	// WorkingSide bounds the crop copy used for mask reconstruction.
	WorkingSide int

	// MinMaskAreaRatio is the minimum document-component area relative to
	// the working crop area.
	MinMaskAreaRatio float64

	// Quad validation: minimum side length relative to the larger crop
	// dimension, acceptable aspect band, and the confidence floor below
	// which the perspective path is abandoned.
	MinQuadSideRatio  float64
	QuadAspectLo      float64
	QuadAspectHi      float64
	MinQuadConfidence float64

	// Structure-tensor gating for the rotation fallback.
	MinStructurePoints int
	MinAnisotropy      float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		CanonicalWidth:     1000,
		CanonicalHeight:    400,
		PaddingRatio:       0.04,
		WorkingSide:        360,
		MinMaskAreaRatio:   0.03,
		MinQuadSideRatio:   0.08,
		QuadAspectLo:       2.1,
		QuadAspectHi:       2.9,
		MinQuadConfidence:  0.45,
		MinStructurePoints: 50,
		MinAnisotropy:      1.15,
	}
}

// Result is the normalization output contract.
type Result struct {
	Success         bool        `json:"success"`
	Canonical       image.Image `json:"-"`
	EstimatedAngle  float64     `json:"estimated_angle_degrees"`
	AppliedRotation float64     `json:"applied_rotation_degrees"`
	Method          Method      `json:"method"`
	Quad            *Quad       `json:"quad"`
	WarpConfidence  float64     `json:"warp_confidence"`
}

// Normalizer rectifies located ticket regions. Stateless apart from its
// configuration; safe to reuse across frames.
type Normalizer struct {
	cfg Config
}

// New creates a normalizer with the given configuration.
func New(cfg Config) *Normalizer { return &Normalizer{cfg: cfg} }

// NewDefault creates a normalizer with DefaultConfig.
func NewDefault() *Normalizer { return New(DefaultConfig()) }

// Normalize crops the located ticket box (plus padding) from the
// full-resolution frame and rectifies it into the canonical raster. The
// perspective path is tried first; any geometry failure degrades to the
// rotation fallback, never to an error.
func (n *Normalizer) Normalize(full image.Image, ticketBox locate.Bounds) *Result {
	if full == nil {
		return &Result{}
	}
	b := full.Bounds()
	pad := int(n.cfg.PaddingRatio * float64(maxInt(ticketBox.Width(), ticketBox.Height())))
	rect := image.Rect(ticketBox.X1-pad, ticketBox.Y1-pad, ticketBox.X2+pad, ticketBox.Y2+pad).
		Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	if rect.Dx() < 2 || rect.Dy() < 2 {
		return &Result{}
	}

	crop := imaging.Crop(full, rect)

	if res := n.tryPerspective(crop); res != nil {
		return res
	}
	return n.rotationFallback(crop)
}

// tryPerspective rebuilds a document mask on the crop, fits a corner quad to
// the largest component, and warps it into the canonical raster. Returns nil
// when any validation or the homography solve fails.
func (n *Normalizer) tryPerspective(crop *image.NRGBA) *Result {
	frame := raster.FrameFromImage(crop)
	working := frame.Downscale(n.cfg.WorkingSide)
	pb := raster.NewPixelBuffers(working)
	lighting := raster.EstimateLighting(pb)
	lighting.Apply(pb)
	ms := mask.Build(pb, lighting, mask.Params{})

	minArea := int(n.cfg.MinMaskAreaRatio * float64(working.Width*working.Height))
	comps := mask.Components(ms.Document, minArea)
	if len(comps) == 0 {
		return nil
	}

	quad, conf, ok := fitQuad(&comps[0], working.Width, working.Height, n.cfg)
	if !ok || conf < n.cfg.MinQuadConfidence {
		return nil
	}

	// The quad was fitted on the working copy; lift it back to crop pixels.
	scale := float64(crop.Bounds().Dx()) / float64(working.Width)
	quad = scaleQuad(quad, scale)

	canonical, err := warpQuad(crop, quad, n.cfg.CanonicalWidth, n.cfg.CanonicalHeight)
	if err != nil {
		return nil
	}

	applied := 0.0
	var out image.Image = canonical
	if needsHalfTurn(canonical) {
		out = imaging.Rotate180(canonical)
		applied = 180
	}

	estimated := math.Atan2(quad.TR.Y-quad.TL.Y, quad.TR.X-quad.TL.X) * 180 / math.Pi

	return &Result{
		Success:         true,
		Canonical:       out,
		EstimatedAngle:  estimated,
		AppliedRotation: applied,
		Method:          MethodPerspective,
		Quad:            &quad,
		WarpConfidence:  conf,
	}
}

// rotationFallback estimates a dominant in-plane rotation, undoes it, and
// forces landscape orientation before resizing to the canonical size.
func (n *Normalizer) rotationFallback(crop *image.NRGBA) *Result {
	estimated := 0.0
	if angle, ok := estimateRotation(crop, n.cfg); ok {
		estimated = angle
	}

	// estimateRotation measures the tilt in y-down pixel coordinates, which
	// is already sign-flipped relative to imaging.Rotate's CCW-positive
	// screen convention, so rotating by the estimate itself undoes the tilt.
	applied := estimated
	var rotated image.Image = crop
	if applied != 0 {
		rotated = imaging.Rotate(crop, applied, color.NRGBA{0, 0, 0, 255})
	}

	rb := rotated.Bounds()
	if rb.Dy() > rb.Dx() {
		rotated = imaging.Rotate90(rotated)
		applied += 90
	}

	canonical := imaging.Resize(rotated, n.cfg.CanonicalWidth, n.cfg.CanonicalHeight, imaging.Lanczos)

	return &Result{
		Success:         true,
		Canonical:       canonical,
		EstimatedAngle:  estimated,
		AppliedRotation: applied,
		Method:          MethodRotationFallback,
		WarpConfidence:  0,
	}
}

func scaleQuad(q Quad, s float64) Quad {
	scale := func(p Point) Point { return Point{X: p.X * s, Y: p.Y * s} }
	return Quad{TL: scale(q.TL), TR: scale(q.TR), BR: scale(q.BR), BL: scale(q.BL)}
}
