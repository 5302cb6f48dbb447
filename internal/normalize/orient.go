package normalize

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// estimateRotation computes a dominant in-plane rotation angle in degrees
// from a structure tensor: the gradient-magnitude-weighted 2×2 covariance of
// edge-pixel positions. Requires a minimum count of qualifying edge points
// and a minimum eigenvalue anisotropy, otherwise reports zero rotation.
func estimateRotation(img image.Image, cfg Config) (float64, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0, false
	}

	gray := imaging.Grayscale(img)
	grad := effect.Sobel(gray)

	mags := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mags[y*w+x] = float64(grad.Pix[grad.PixOffset(x, y)])
		}
	}
	mean, std := stat.MeanStdDev(mags, nil)
	threshold := mean + std

	// Magnitude-weighted mean position over qualifying edge pixels.
	var wsum, mx, my float64
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := mags[y*w+x]
			if m <= threshold {
				continue
			}
			wsum += m
			mx += m * float64(x)
			my += m * float64(y)
			count++
		}
	}
	if count < cfg.MinStructurePoints || wsum == 0 {
		return 0, false
	}
	mx /= wsum
	my /= wsum

	var sxx, sxy, syy float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := mags[y*w+x]
			if m <= threshold {
				continue
			}
			dx := float64(x) - mx
			dy := float64(y) - my
			sxx += m * dx * dx
			sxy += m * dx * dy
			syy += m * dy * dy
		}
	}
	sxx /= wsum
	sxy /= wsum
	syy /= wsum

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(2, []float64{sxx, sxy, sxy, syy}), true) {
		return 0, false
	}
	vals := eig.Values(nil) // ascending
	if vals[0] <= 0 || vals[1]/vals[0] < cfg.MinAnisotropy {
		return 0, false
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	vx, vy := vecs.At(0, 1), vecs.At(1, 1)

	angle := math.Atan2(vy, vx) * 180 / math.Pi
	// Fold into (-90, 90]: the axis has no direction.
	for angle > 90 {
		angle -= 180
	}
	for angle <= -90 {
		angle += 180
	}
	return angle, true
}

// needsHalfTurn decides between the upright warp and its 180°-rotated twin
// by comparing edge density across four fixed canonical sub-regions. The
// label (and its printed fields) sits in the lower half of an upright
// ticket, so a top-heavy edge distribution indicates an inverted warp.
func needsHalfTurn(canonical image.Image) bool {
	b := canonical.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 4 || h < 4 {
		return false
	}

	gray := imaging.Grayscale(canonical)
	grad := effect.Sobel(gray)

	density := func(x1, y1, x2, y2 float64) float64 {
		rx1, ry1 := int(x1*float64(w)), int(y1*float64(h))
		rx2, ry2 := int(x2*float64(w)), int(y2*float64(h))
		sum, cnt := 0.0, 0
		for y := ry1; y < ry2; y++ {
			for x := rx1; x < rx2; x++ {
				sum += float64(grad.Pix[grad.PixOffset(x, y)])
				cnt++
			}
		}
		if cnt == 0 {
			return 0
		}
		return sum / float64(cnt)
	}

	topLeft := density(0.05, 0.05, 0.45, 0.45)
	topRight := density(0.55, 0.05, 0.95, 0.45)
	bottomLeft := density(0.05, 0.55, 0.45, 0.95)
	bottomRight := density(0.55, 0.55, 0.95, 0.95)

	return topLeft+topRight > bottomLeft+bottomRight
}

// Variants returns the canonical raster in all four 90°-stepped
// orientations (0°, 90°, 180°, 270° counter-clockwise), for callers that
// brute-force orientation downstream.
func Variants(canonical image.Image) [4]image.Image {
	return [4]image.Image{
		canonical,
		imaging.Rotate90(canonical),
		imaging.Rotate180(canonical),
		imaging.Rotate270(canonical),
	}
}
