package mask

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
)

// Bitmap is a binary per-pixel classification raster, one byte per pixel at
// working-frame resolution.
type Bitmap struct {
	Width  int
	Height int
	Bits   []bool
}

// NewBitmap creates an all-false bitmap of the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At reports the bit at (x, y); out-of-bounds coordinates read as false.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Bits[y*b.Width+x]
}

// Set writes the bit at (x, y); out-of-bounds coordinates are ignored.
func (b *Bitmap) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Bits[y*b.Width+x] = v
}

// Count returns the number of true bits.
func (b *Bitmap) Count() int {
	n := 0
	for _, v := range b.Bits {
		if v {
			n++
		}
	}
	return n
}

// gray renders the bitmap as a grayscale image (true = white) so it can be
// run through raster morphology operators.
func (b *Bitmap) gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for i, v := range b.Bits {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

// fromRGBA thresholds a morphology result back into a bitmap.
func fromRGBA(img *image.RGBA, width, height int) *Bitmap {
	out := NewBitmap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if c.Y > 127 {
				out.Bits[y*width+x] = true
			}
		}
	}
	return out
}

// Dilate grows true regions by the given radius.
func (b *Bitmap) Dilate(radius float64) *Bitmap {
	if b.Width == 0 || b.Height == 0 {
		return b
	}
	return fromRGBA(effect.Dilate(b.gray(), radius), b.Width, b.Height)
}

// Erode shrinks true regions by the given radius.
func (b *Bitmap) Erode(radius float64) *Bitmap {
	if b.Width == 0 || b.Height == 0 {
		return b
	}
	return fromRGBA(effect.Erode(b.gray(), radius), b.Width, b.Height)
}

// Clean applies a 3×3 morphological open (erode, dilate) to drop speckle,
// then a close (dilate, erode) to fill small gaps.
func (b *Bitmap) Clean() *Bitmap {
	opened := b.Erode(1).Dilate(1)
	return opened.Dilate(1).Erode(1)
}

// Intersect restricts the bitmap to bits that are also true in other.
// The bitmaps must have identical dimensions.
func (b *Bitmap) Intersect(other *Bitmap) *Bitmap {
	out := NewBitmap(b.Width, b.Height)
	if other == nil || other.Width != b.Width || other.Height != b.Height {
		return out
	}
	for i := range b.Bits {
		out.Bits[i] = b.Bits[i] && other.Bits[i]
	}
	return out
}
