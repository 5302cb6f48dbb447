package normalize

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gatescan/ticket-vision/internal/mask"
)

// fitQuad fits a quadrilateral to a component by projecting its pixels onto
// the two principal axes of the coordinate covariance and taking the four
// projection extrema as corners. Returns the ordered quad, a confidence in
// [0,1], and whether the quad passed the hard geometry checks.
func fitQuad(c *mask.Component, cropW, cropH int, cfg Config) (Quad, float64, bool) {
	if c.Area < 16 {
		return Quad{}, 0, false
	}

	// Mean and 2×2 covariance of pixel coordinates.
	var mx, my float64
	for _, p := range c.Points {
		mx += float64(p.X)
		my += float64(p.Y)
	}
	n := float64(c.Area)
	mx /= n
	my /= n

	var sxx, sxy, syy float64
	for _, p := range c.Points {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	sxx /= n
	sxy /= n
	syy /= n

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(2, []float64{sxx, sxy, sxy, syy}), true) {
		return Quad{}, 0, false
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	// Eigenvalues come back ascending; column 1 is the major axis.
	e1x, e1y := vecs.At(0, 1), vecs.At(1, 1)
	e2x, e2y := vecs.At(0, 0), vecs.At(1, 0)

	// Corner candidates: extrema of the ±e1±e2 diagonal projections.
	type extremum struct {
		best  float64
		point Point
	}
	ext := [4]extremum{{best: math.Inf(-1)}, {best: math.Inf(-1)}, {best: math.Inf(-1)}, {best: math.Inf(-1)}}
	for _, p := range c.Points {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		p1 := dx*e1x + dy*e1y
		p2 := dx*e2x + dy*e2y
		for i, proj := range [4]float64{p1 + p2, p1 - p2, -p1 + p2, -p1 - p2} {
			if proj > ext[i].best {
				ext[i].best = proj
				ext[i].point = Point{X: float64(p.X), Y: float64(p.Y)}
			}
		}
	}

	quad := orderCorners([4]Point{ext[0].point, ext[1].point, ext[2].point, ext[3].point})

	if !isConvex(quad) {
		return Quad{}, 0, false
	}

	minSide := cfg.MinQuadSideRatio * float64(maxInt(cropW, cropH))
	top := dist(quad.TL, quad.TR)
	bottom := dist(quad.BL, quad.BR)
	left := dist(quad.TL, quad.BL)
	right := dist(quad.TR, quad.BR)
	for _, s := range []float64{top, bottom, left, right} {
		if s < minSide {
			return Quad{}, 0, false
		}
	}

	avgW := (top + bottom) / 2
	avgH := (left + right) / 2
	aspect := avgW / avgH
	if aspect < 1 {
		aspect = 1 / aspect
	}
	if aspect < cfg.QuadAspectLo || aspect > cfg.QuadAspectHi {
		return Quad{}, 0, false
	}

	quadArea := shoelace(quad)
	if quadArea <= 0 {
		return Quad{}, 0, false
	}
	areaRatio := float64(c.Area) / quadArea
	if areaRatio < 0.55 || areaRatio > 1.3 {
		return Quad{}, 0, false
	}

	mid := (cfg.QuadAspectLo + cfg.QuadAspectHi) / 2
	halfBand := (cfg.QuadAspectHi - cfg.QuadAspectLo) / 2
	aspectScore := 1 - math.Min(1, math.Abs(aspect-mid)/halfBand)

	conf := 0.4*math.Min(1, areaRatio) + 0.35*aspectScore + 0.25*c.FillRatio()
	return quad, conf, true
}

// orderCorners arranges four corner candidates into TL, TR, BR, BL using the
// coordinate-sum/difference convention.
func orderCorners(pts [4]Point) Quad {
	var q Quad
	minSum, maxSum := math.Inf(1), math.Inf(-1)
	minDiff, maxDiff := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		sum := p.X + p.Y
		diff := p.Y - p.X
		if sum < minSum {
			minSum = sum
			q.TL = p
		}
		if sum > maxSum {
			maxSum = sum
			q.BR = p
		}
		if diff < minDiff {
			minDiff = diff
			q.TR = p
		}
		if diff > maxDiff {
			maxDiff = diff
			q.BL = p
		}
	}
	return q
}

// isConvex checks that walking the corners in order always turns the same
// way (no self-intersection or degenerate edges).
func isConvex(q Quad) bool {
	c := q.corners()
	sign := 0.0
	for i := 0; i < 4; i++ {
		a, b, d := c[i], c[(i+1)%4], c[(i+2)%4]
		cross := (b.X-a.X)*(d.Y-b.Y) - (b.Y-a.Y)*(d.X-b.X)
		if cross == 0 {
			return false
		}
		if sign == 0 {
			sign = cross
		} else if sign*cross < 0 {
			return false
		}
	}
	return true
}

// shoelace returns the polygon area of the quad.
func shoelace(q Quad) float64 {
	c := q.corners()
	area := 0.0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		area += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(area) / 2
}

func dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
