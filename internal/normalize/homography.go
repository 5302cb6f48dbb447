package normalize

import (
	"errors"
	"image"
	"image/color"

	"gonum.org/v1/gonum/mat"
)

// Point is a 2D coordinate in crop pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad is a convex, non-degenerate quadrilateral with corners in fixed
// order. Only the perspective path produces one.
type Quad struct {
	TL Point `json:"top_left"`
	TR Point `json:"top_right"`
	BR Point `json:"bottom_right"`
	BL Point `json:"bottom_left"`
}

func (q Quad) corners() [4]Point { return [4]Point{q.TL, q.TR, q.BR, q.BL} }

// Homography is the 8-parameter planar projective transform as a row-major
// 3×3 matrix with h22 fixed to 1.
type Homography [9]float64

var errSingular = errors.New("homography system is singular")

// SolveHomography computes the homography mapping src[i] to dst[i] for four
// point correspondences by solving the 8×8 linear system with partial-pivot
// Gaussian elimination.
func SolveHomography(src, dst [4]Point) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y
		r := 2 * i

		a.SetRow(r, []float64{sx, sy, 1, 0, 0, 0, -sx * dx, -sy * dx})
		b.SetVec(r, dx)
		a.SetRow(r+1, []float64{0, 0, 0, sx, sy, 1, -sx * dy, -sy * dy})
		b.SetVec(r+1, dy)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, errSingular
	}

	var out Homography
	for i := 0; i < 8; i++ {
		out[i] = h.AtVec(i)
	}
	out[8] = 1
	return out, nil
}

// Apply maps a point through the homography.
func (h Homography) Apply(x, y float64) (float64, float64) {
	denom := h[6]*x + h[7]*y + h[8]
	if denom == 0 {
		return -1e9, -1e9
	}
	return (h[0]*x + h[1]*y + h[2]) / denom,
		(h[3]*x + h[4]*y + h[5]) / denom
}

// warpQuad resamples the quadrilateral region of src into a dstW×dstH
// raster by inverse mapping: a homography from canonical corners to the
// source quad, sampled bilinearly.
func warpQuad(src image.Image, quad Quad, dstW, dstH int) (*image.RGBA, error) {
	canonical := [4]Point{
		{0, 0},
		{float64(dstW - 1), 0},
		{float64(dstW - 1), float64(dstH - 1)},
		{0, float64(dstH - 1)},
	}
	h, err := SolveHomography(canonical, quad.corners())
	if err != nil {
		return nil, err
	}

	sb := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := h.Apply(float64(x), float64(y))
			out.Set(x, y, bilinearSample(src, sx+float64(sb.Min.X), sy+float64(sb.Min.Y)))
		}
	}
	return out, nil
}

// bilinearSample reads src at fractional coordinates; samples outside the
// bounds come back black.
func bilinearSample(src image.Image, x, y float64) color.Color {
	b := src.Bounds()
	if x < float64(b.Min.X) || y < float64(b.Min.Y) ||
		x > float64(b.Max.X-1) || y > float64(b.Max.Y-1) {
		return color.RGBA{0, 0, 0, 255}
	}

	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)

	c00 := toFloats(src.At(x0, y0))
	c10 := toFloats(src.At(x1, y0))
	c01 := toFloats(src.At(x0, y1))
	c11 := toFloats(src.At(x1, y1))

	var out [4]uint8
	for i := 0; i < 4; i++ {
		top := c00[i] + (c10[i]-c00[i])*fx
		bot := c01[i] + (c11[i]-c01[i])*fx
		out[i] = uint8(top + (bot-top)*fy + 0.5)
	}
	return color.RGBA{out[0], out[1], out[2], out[3]}
}

func toFloats(c color.Color) [4]float64 {
	r, g, b, a := c.RGBA()
	return [4]float64{
		float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8),
	}
}
