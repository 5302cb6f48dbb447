package mask

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"gonum.org/v1/gonum/stat"

	"github.com/gatescan/ticket-vision/internal/raster"
)

// Skin-tone window for the occlusion mask: two disjoint hue bands near the
// ends of the hue circle with mid-range saturation and value. Occlusion only
// ever penalizes a candidate; it never gates one.
const (
	skinHueLow  = 25.0
	skinHueHigh = 335.0
	skinSatMin  = 0.15
	skinSatMax  = 0.75
	skinValMin  = 0.25
	skinValMax  = 0.95
)

// Params tune mask construction. Zero values fall back to defaults.
type Params struct {
	// EdgeSigmaK scales the stddev term of the edge threshold
	// (threshold = mean + k·stddev). Default 0.65.
	EdgeSigmaK float64

	// LabelNeighborhoodRadius is the dilation radius, in working pixels,
	// of the document neighborhood the label mask is restricted to.
	// Zero disables the restriction.
	LabelNeighborhoodRadius float64
}

func (p Params) withDefaults() Params {
	if p.EdgeSigmaK == 0 {
		p.EdgeSigmaK = 0.65
	}
	return p
}

// Set holds the four cleaned masks for one frame plus the document-core mask
// used for color purity scoring.
type Set struct {
	Document  *Bitmap
	DocCore   *Bitmap
	Label     *Bitmap
	Occlusion *Bitmap
	Edge      *Bitmap
}

// Build classifies every working pixel into the four masks using the
// lighting profile's effective thresholds, then applies morphological
// cleanup to each.
func Build(pb *raster.PixelBuffers, lp *raster.LightingProfile, params Params) *Set {
	params = params.withDefaults()
	w, h := pb.Width, pb.Height
	th := lp.Thresholds

	doc := NewBitmap(w, h)
	core := NewBitmap(w, h)
	label := NewBitmap(w, h)
	occl := NewBitmap(w, h)

	for i := range pb.Hue {
		hue, sat, val := pb.Hue[i], pb.Sat[i], pb.Val[i]

		if sat >= th.DocMinSat && val >= th.DocMinVal {
			if hue >= th.DocHueSupportLo && hue <= th.DocHueSupportHi {
				doc.Bits[i] = true
			}
			if hue >= th.DocHueCoreLo && hue <= th.DocHueCoreHi {
				core.Bits[i] = true
			}
		}

		if sat <= th.LabelMaxSat && pb.NormVal[i] >= th.LabelMinVal {
			label.Bits[i] = true
		}

		if (hue <= skinHueLow || hue >= skinHueHigh) &&
			sat >= skinSatMin && sat <= skinSatMax &&
			val >= skinValMin && val <= skinValMax {
			occl.Bits[i] = true
		}
	}

	doc = doc.Clean()
	label = label.Clean()
	occl = occl.Clean()

	// Only search for the label near plausible document pixels.
	if params.LabelNeighborhoodRadius > 0 {
		label = label.Intersect(doc.Dilate(params.LabelNeighborhoodRadius))
	}

	// Sobel contours are only one or two pixels wide; an opening would erase
	// them, so the edge mask gets close-only cleanup.
	edge := edgeMask(pb, params.EdgeSigmaK).Dilate(1).Erode(1)

	return &Set{
		Document:  doc,
		DocCore:   core,
		Label:     label,
		Occlusion: occl,
		Edge:      edge,
	}
}

// edgeMask thresholds the Sobel gradient magnitude of the luminance channel
// at mean + k·stddev of the frame's gradient distribution.
func edgeMask(pb *raster.PixelBuffers, k float64) *Bitmap {
	w, h := pb.Width, pb.Height
	out := NewBitmap(w, h)
	if w == 0 || h == 0 {
		return out
	}

	luma := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range pb.Luma {
		luma.Pix[i] = uint8(v * 255)
	}
	grad := effect.Sobel(luma)

	mags := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Sobel output is grayscale; any channel carries the magnitude.
			mags[y*w+x] = float64(grad.Pix[grad.PixOffset(x, y)])
		}
	}

	mean, std := stat.MeanStdDev(mags, nil)
	threshold := mean + k*std
	for i, m := range mags {
		if m > threshold {
			out.Bits[i] = true
		}
	}
	return out
}
