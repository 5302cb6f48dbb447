package raster

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// MaxIngestSide bounds the longest side of a frame on ingest. Larger
	// frames are resized down before any per-pixel work.
	MaxIngestSide = 1920

	// DefaultWorkingSide bounds the longest side of the downscaled working
	// copy used for mask construction and component analysis.
	DefaultWorkingSide = 384
)

// Frame is a captured raster frame: interleaved RGBA pixels in row-major
// order. It is immutable for the duration of one pipeline invocation and
// owned exclusively by the caller.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8 // 4 bytes per pixel (R, G, B, A), row-major
}

// FrameFromImage converts any image.Image into a Frame. Frames larger than
// MaxIngestSide on their longest side are resized down first, preserving
// aspect ratio.
func FrameFromImage(img image.Image) *Frame {
	if img == nil {
		return &Frame{}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return &Frame{}
	}
	if longest := max(b.Dx(), b.Dy()); longest > MaxIngestSide {
		scale := float64(MaxIngestSide) / float64(longest)
		w := max(1, int(float64(b.Dx())*scale))
		h := max(1, int(float64(b.Dy())*scale))
		img = imaging.Resize(img, w, h, imaging.Box)
		b = img.Bounds()
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Frame{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    rgba.Pix,
	}
}

// Valid reports whether the frame has positive dimensions and a pixel buffer
// of the expected length. Degenerate frames yield a clean "not found" result
// downstream, never an error.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pix) >= f.Width*f.Height*4
}

// Image returns the frame as an *image.RGBA sharing the frame's pixel buffer.
func (f *Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Downscale returns a working copy whose longest side is at most maxSide.
// A frame already within the bound is returned unchanged.
func (f *Frame) Downscale(maxSide int) *Frame {
	if !f.Valid() || maxSide <= 0 {
		return f
	}
	longest := max(f.Width, f.Height)
	if longest <= maxSide {
		return f
	}
	scale := float64(maxSide) / float64(longest)
	w := max(1, int(float64(f.Width)*scale))
	h := max(1, int(float64(f.Height)*scale))
	return FrameFromImage(imaging.Resize(f.Image(), w, h, imaging.Box))
}

// PixelBuffers holds the per-pixel channels derived from a working frame:
// hue in [0,360), saturation and value in [0,1], lighting-normalized value,
// and BT.601 luminance. Computed once per frame, read-only afterwards.
type PixelBuffers struct {
	Width  int
	Height int

	Hue     []float64
	Sat     []float64
	Val     []float64
	NormVal []float64 // value divided by the ambient brightness ceiling
	Luma    []float64
}

// NewPixelBuffers derives the HSV and luminance channels from a frame.
// NormVal is initialized equal to Val; LightingProfile.Apply rescales it.
func NewPixelBuffers(f *Frame) *PixelBuffers {
	if !f.Valid() {
		return &PixelBuffers{}
	}
	n := f.Width * f.Height
	pb := &PixelBuffers{
		Width:   f.Width,
		Height:  f.Height,
		Hue:     make([]float64, n),
		Sat:     make([]float64, n),
		Val:     make([]float64, n),
		NormVal: make([]float64, n),
		Luma:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		r := float64(f.Pix[i*4]) / 255.0
		g := float64(f.Pix[i*4+1]) / 255.0
		b := float64(f.Pix[i*4+2]) / 255.0
		h, s, v := colorful.Color{R: r, G: g, B: b}.Hsv()
		pb.Hue[i] = h
		pb.Sat[i] = s
		pb.Val[i] = v
		pb.NormVal[i] = v
		pb.Luma[i] = 0.299*r + 0.587*g + 0.114*b
	}
	return pb
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
