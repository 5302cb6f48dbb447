// Package roi slices fixed-ratio field rectangles out of a canonical ticket
// raster. There is no search logic here: normalization already removed
// rotation and perspective, so fixed ratios are stable.
package roi

import (
	"image"

	"github.com/disintegration/imaging"
)

// Ratio is a rectangle expressed as fractions of canonical width/height.
// Components outside [0,1] are clamped before use.
type Ratio struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Config positions the two fields of interest on the canonical raster.
type Config struct {
	Name Ratio
	Seat Ratio

	// MarginPx grows each field rectangle by a fixed pixel margin on every
	// side; the result is re-clamped to the raster bounds.
	MarginPx int
}

// DefaultConfig returns the known field layout of the ticket face.
func DefaultConfig() Config {
	return Config{
		Name:     Ratio{X: 0.07, Y: 0.16, W: 0.48, H: 0.30},
		Seat:     Ratio{X: 0.60, Y: 0.55, W: 0.32, H: 0.32},
		MarginPx: 2,
	}
}

// Region is a pixel rectangle in canonical-raster coordinates. It is always
// fully contained in the raster bounds with width and height of at least 1.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Field pairs a region with its cropped raster.
type Field struct {
	Region Region      `json:"region"`
	Raster image.Image `json:"-"`
}

// Result is the ROI extraction output contract.
type Result struct {
	Success bool  `json:"success"`
	Name    Field `json:"name"`
	Seat    Field `json:"seat"`
}

// Extract crops the name and seat field regions out of a canonical raster.
// A nil or empty raster yields Success=false.
func Extract(canonical image.Image, cfg Config) *Result {
	if canonical == nil {
		return &Result{}
	}
	b := canonical.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return &Result{}
	}

	name := fieldFor(canonical, cfg.Name, cfg.MarginPx)
	seat := fieldFor(canonical, cfg.Seat, cfg.MarginPx)
	return &Result{Success: true, Name: name, Seat: seat}
}

func fieldFor(canonical image.Image, r Ratio, margin int) Field {
	b := canonical.Bounds()
	w, h := b.Dx(), b.Dy()

	region := regionFromRatio(r, w, h, margin)
	raster := imaging.Crop(canonical, image.Rect(
		region.X, region.Y, region.X+region.W, region.Y+region.H))
	return Field{Region: region, Raster: raster}
}

// regionFromRatio scales clamped ratios to pixels, applies the margin, and
// clamps the result into the raster with a minimum 1×1 size.
func regionFromRatio(r Ratio, width, height, margin int) Region {
	x := int(clamp01(r.X) * float64(width))
	y := int(clamp01(r.Y) * float64(height))
	w := int(clamp01(r.W) * float64(width))
	h := int(clamp01(r.H) * float64(height))

	x -= margin
	y -= margin
	w += 2 * margin
	h += 2 * margin

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > width-1 {
		x = width - 1
	}
	if y > height-1 {
		y = height - 1
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if x+w > width {
		w = width - x
	}
	if y+h > height {
		h = height - y
	}
	return Region{X: x, Y: y, W: w, H: h}
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
