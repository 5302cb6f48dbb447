package locate

import (
	"math"

	"github.com/gatescan/ticket-vision/internal/mask"
	"github.com/gatescan/ticket-vision/internal/raster"
)

// Kind is the candidate variant tag. Every consumer switches over all three.
type Kind string

const (
	KindTicket Kind = "ticket"
	KindLabel  Kind = "label"
	KindEdge   Kind = "edge"
)

// Candidate wraps a component with its score and the supporting ratios the
// decision engine discounts against.
type Candidate struct {
	Kind      Kind
	Component mask.Component

	Score        float64
	AreaRatio    float64 // component area / working-frame area
	Aspect       float64
	FillRatio    float64
	ColorPurity  float64 // fraction of pixels in the document-core hue band
	ColorSupport float64 // fraction of bounding box covered by document mask
	SkinRatio    float64 // fraction of pixels in the occlusion mask
	EdgeCoverage float64 // fraction of bounding box covered by edge mask
	Brightness   float64 // mean normalized value over the component
	MeanSat      float64
	DocAdjacency float64 // fraction of pixels near document-mask pixels
}

// fractionIn returns the fraction of the component's pixels that are true in m.
func fractionIn(c *mask.Component, m *mask.Bitmap) float64 {
	if c.Area == 0 {
		return 0
	}
	hits := 0
	for _, p := range c.Points {
		if m.At(p.X, p.Y) {
			hits++
		}
	}
	return float64(hits) / float64(c.Area)
}

// boxCoverage returns the fraction of the component's bounding box covered
// by true pixels of m.
func boxCoverage(c *mask.Component, m *mask.Bitmap) float64 {
	box := c.Width() * c.Height()
	if box == 0 {
		return 0
	}
	hits := 0
	for y := c.MinY; y <= c.MaxY; y++ {
		for x := c.MinX; x <= c.MaxX; x++ {
			if m.At(x, y) {
				hits++
			}
		}
	}
	return float64(hits) / float64(box)
}

// meanOver averages a pixel buffer over the component's membership.
func meanOver(c *mask.Component, buf []float64, width int) float64 {
	if c.Area == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range c.Points {
		sum += buf[p.Y*width+p.X]
	}
	return sum / float64(c.Area)
}

// aspectCloseness maps distance from the target aspect into [0,1], 1.0 at
// the target and 0 beyond ±1.5.
func aspectCloseness(aspect, target float64) float64 {
	d := math.Abs(aspect-target) / 1.5
	if d > 1 {
		d = 1
	}
	return 1 - d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scoreTicket scores a document-mask component. The score is monotone
// non-decreasing in color purity and in aspect closeness to the target:
// both enter as non-negative additive terms, and the multiplicative
// penalties do not depend on purity.
func (l *Localizer) scoreTicket(c mask.Component, pb *raster.PixelBuffers, ms *mask.Set) Candidate {
	frameArea := float64(pb.Width * pb.Height)
	cand := Candidate{
		Kind:         KindTicket,
		Component:    c,
		AreaRatio:    float64(c.Area) / frameArea,
		Aspect:       c.Aspect(),
		FillRatio:    c.FillRatio(),
		ColorPurity:  fractionIn(&c, ms.DocCore),
		ColorSupport: boxCoverage(&c, ms.Document),
		SkinRatio:    boxCoverage(&c, ms.Occlusion),
	}

	areaScore := clamp01(cand.AreaRatio / 0.30)
	score := 0.25*areaScore +
		0.30*aspectCloseness(cand.Aspect, l.cfg.TargetAspect) +
		0.20*cand.FillRatio +
		0.25*cand.ColorPurity

	if cand.SkinRatio > l.cfg.OcclusionPenaltyRatio {
		score *= 0.6
	}
	if cand.Aspect < l.cfg.AspectBandLo || cand.Aspect > l.cfg.AspectBandHi {
		score *= 0.5
	}

	cand.Score = clamp01(score)
	return cand
}

// scoreLabel scores a label-mask component. ticketArea is the area of the
// chosen ticket candidate in working pixels, or 0 when no ticket candidate
// exists (the area-band weighting is skipped then).
func (l *Localizer) scoreLabel(c mask.Component, pb *raster.PixelBuffers, ms *mask.Set, docNear *mask.Bitmap, ticketArea int) Candidate {
	frameArea := float64(pb.Width * pb.Height)
	cand := Candidate{
		Kind:         KindLabel,
		Component:    c,
		AreaRatio:    float64(c.Area) / frameArea,
		Aspect:       c.Aspect(),
		FillRatio:    c.FillRatio(),
		Brightness:   meanOver(&c, pb.NormVal, pb.Width),
		MeanSat:      meanOver(&c, pb.Sat, pb.Width),
		SkinRatio:    boxCoverage(&c, ms.Occlusion),
		DocAdjacency: fractionIn(&c, docNear),
	}

	score := 0.30*cand.Brightness +
		0.20*(1-cand.MeanSat) +
		0.25*cand.FillRatio +
		0.25*cand.DocAdjacency

	// Weight by how plausibly the label area relates to the ticket area:
	// both noise specks and oversized regions are discouraged.
	if ticketArea > 0 {
		r := float64(c.Area) / float64(ticketArea)
		switch {
		case r < l.cfg.LabelAreaBandLo:
			score *= clamp01(r / l.cfg.LabelAreaBandLo)
		case r > l.cfg.LabelAreaBandHi:
			score *= clamp01((0.9 - r) / (0.9 - l.cfg.LabelAreaBandHi))
		}
	}

	cand.Score = clamp01(score)
	return cand
}

// scoreEdge scores an edge-mask component, the last-resort ticket signal.
func (l *Localizer) scoreEdge(c mask.Component, pb *raster.PixelBuffers, ms *mask.Set) Candidate {
	frameArea := float64(pb.Width * pb.Height)
	cand := Candidate{
		Kind:         KindEdge,
		Component:    c,
		AreaRatio:    float64(c.Area) / frameArea,
		Aspect:       c.Aspect(),
		FillRatio:    c.FillRatio(),
		SkinRatio:    boxCoverage(&c, ms.Occlusion),
		EdgeCoverage: boxCoverage(&c, ms.Edge),
	}

	areaScore := clamp01(cand.AreaRatio / 0.30)
	score := 0.30*areaScore +
		0.30*aspectCloseness(cand.Aspect, l.cfg.TargetAspect) +
		0.20*cand.FillRatio +
		0.20*cand.EdgeCoverage

	if cand.SkinRatio > l.cfg.OcclusionPenaltyRatio {
		score *= 0.6
	}
	if cand.Aspect < l.cfg.AspectBandLo || cand.Aspect > l.cfg.AspectBandHi {
		score *= 0.5
	}

	cand.Score = clamp01(score)
	return cand
}

// bestCandidate returns the highest-scoring candidate among comps under
// score, or nil when comps is empty.
func bestOf(cands []Candidate) *Candidate {
	var best *Candidate
	for i := range cands {
		if best == nil || cands[i].Score > best.Score {
			best = &cands[i]
		}
	}
	return best
}
