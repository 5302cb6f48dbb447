package mask

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/gatescan/ticket-vision/internal/raster"
)

// createSceneImage creates a solid background image
func createSceneImage(width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

// fillRect paints a filled rectangle onto the image
func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// buildMasks runs the full preprocessing chain on an image
func buildMasks(t *testing.T, img image.Image, params Params) *Set {
	t.Helper()
	frame := raster.FrameFromImage(img)
	pb := raster.NewPixelBuffers(frame)
	lp := raster.EstimateLighting(pb)
	lp.Apply(pb)
	return Build(pb, lp, params)
}

var (
	// Saturated mid-green: excluded from every mask class.
	bgGreen = color.RGBA{77, 153, 77, 255}
	// Deep blue, hue ~227, inside the document core band.
	docBlue = color.RGBA{30, 70, 220, 255}
	// Warm skin tone, hue ~15.
	skinTone = color.RGBA{179, 112, 89, 255}
)

func TestBitmap_AtSet(t *testing.T) {
	b := NewBitmap(10, 8)

	b.Set(3, 4, true)
	if !b.At(3, 4) {
		t.Error("Expected bit set at (3,4)")
	}
	if b.At(-1, 0) || b.At(0, -1) || b.At(10, 0) || b.At(0, 8) {
		t.Error("Out-of-bounds reads must be false")
	}

	// Out-of-bounds writes are ignored, not panics.
	b.Set(-1, 0, true)
	b.Set(10, 8, true)
	if b.Count() != 1 {
		t.Errorf("Expected count 1, got %d", b.Count())
	}
}

func TestBitmap_Intersect(t *testing.T) {
	a := NewBitmap(4, 4)
	b := NewBitmap(4, 4)
	a.Set(1, 1, true)
	a.Set(2, 2, true)
	b.Set(2, 2, true)
	b.Set(3, 3, true)

	out := a.Intersect(b)
	if out.Count() != 1 || !out.At(2, 2) {
		t.Errorf("Expected only (2,2) in intersection, count=%d", out.Count())
	}

	mismatched := a.Intersect(NewBitmap(3, 3))
	if mismatched.Count() != 0 {
		t.Error("Mismatched dimensions must intersect to empty")
	}
}

func TestClean_RemovesSpeckle(t *testing.T) {
	b := NewBitmap(40, 40)
	b.Set(20, 20, true)

	if b.Clean().Count() != 0 {
		t.Error("Expected isolated pixel to be removed by morphological open")
	}
}

func TestClean_KeepsBlock(t *testing.T) {
	b := NewBitmap(40, 40)
	for y := 10; y < 22; y++ {
		for x := 10; x < 22; x++ {
			b.Set(x, y, true)
		}
	}

	cleaned := b.Clean()
	// Open-then-close roughly preserves a solid block.
	if cleaned.Count() < 100 {
		t.Errorf("Expected solid block to survive cleanup, count=%d", cleaned.Count())
	}
}

func TestComponents(t *testing.T) {
	b := NewBitmap(30, 30)
	for y := 2; y < 7; y++ {
		for x := 2; x < 7; x++ {
			b.Set(x, y, true) // 5x5 = 25
		}
	}
	for y := 20; y < 23; y++ {
		for x := 20; x < 23; x++ {
			b.Set(x, y, true) // 3x3 = 9
		}
	}

	comps := Components(b, 1)
	if len(comps) != 2 {
		t.Fatalf("Expected 2 components, got %d", len(comps))
	}
	if comps[0].Area != 25 || comps[1].Area != 9 {
		t.Errorf("Expected areas [25 9], got [%d %d]", comps[0].Area, comps[1].Area)
	}
	if comps[0].MinX != 2 || comps[0].MinY != 2 || comps[0].MaxX != 6 || comps[0].MaxY != 6 {
		t.Errorf("Unexpected bounding box: %+v", comps[0])
	}
	if comps[0].FillRatio() != 1.0 {
		t.Errorf("Expected fill ratio 1.0, got %.2f", comps[0].FillRatio())
	}
	if comps[0].Aspect() != 1.0 {
		t.Errorf("Expected aspect 1.0, got %.2f", comps[0].Aspect())
	}
}

func TestComponents_MinArea(t *testing.T) {
	b := NewBitmap(30, 30)
	for y := 2; y < 7; y++ {
		for x := 2; x < 7; x++ {
			b.Set(x, y, true)
		}
	}
	b.Set(20, 20, true)

	comps := Components(b, 10)
	if len(comps) != 1 {
		t.Errorf("Expected single component above minArea, got %d", len(comps))
	}
}

func TestComponents_DiagonalNotConnected(t *testing.T) {
	b := NewBitmap(10, 10)
	b.Set(2, 2, true)
	b.Set(3, 3, true)

	comps := Components(b, 1)
	if len(comps) != 2 {
		t.Errorf("Expected diagonal pixels in separate components, got %d", len(comps))
	}
}

func TestComponent_Aspect(t *testing.T) {
	b := NewBitmap(40, 40)
	for y := 5; y < 9; y++ {
		for x := 5; x < 25; x++ {
			b.Set(x, y, true) // 20x4
		}
	}

	comps := Components(b, 1)
	if len(comps) != 1 {
		t.Fatalf("Expected 1 component, got %d", len(comps))
	}
	if comps[0].Aspect() != 5.0 {
		t.Errorf("Expected aspect 5.0 for 20x4 box, got %.2f", comps[0].Aspect())
	}
}

func TestBuild_DocumentMask(t *testing.T) {
	img := createSceneImage(120, 90, bgGreen)
	fillRect(img, image.Rect(20, 30, 80, 54), docBlue)

	ms := buildMasks(t, img, Params{})

	comps := Components(ms.Document, 50)
	if len(comps) == 0 {
		t.Fatal("Expected a document component for the blue rectangle")
	}
	c := comps[0]
	if c.MinX > 23 || c.MinY > 33 || c.MaxX < 76 || c.MaxY < 50 {
		t.Errorf("Document component misses the blue rectangle: %+v", c)
	}

	// The core mask must be a subset of the support mask population here.
	if ms.DocCore.Count() == 0 {
		t.Error("Expected core-band pixels for a core-hue rectangle")
	}
}

func TestBuild_OcclusionMask(t *testing.T) {
	img := createSceneImage(120, 90, bgGreen)
	fillRect(img, image.Rect(10, 10, 40, 40), skinTone)

	ms := buildMasks(t, img, Params{})

	if ms.Occlusion.Count() < 300 {
		t.Errorf("Expected skin patch in occlusion mask, count=%d", ms.Occlusion.Count())
	}
	if ms.Occlusion.At(80, 80) {
		t.Error("Green background must not classify as skin")
	}
}

func TestBuild_LabelNeighborhoodRestriction(t *testing.T) {
	img := createSceneImage(160, 120, bgGreen)
	fillRect(img, image.Rect(20, 40, 80, 64), docBlue)
	// Bright patch inside the blue region.
	fillRect(img, image.Rect(35, 48, 65, 58), color.RGBA{250, 250, 250, 255})
	// Bright patch far away from any document pixel.
	fillRect(img, image.Rect(120, 90, 150, 110), color.RGBA{250, 250, 250, 255})

	ms := buildMasks(t, img, Params{LabelNeighborhoodRadius: 6})

	if !ms.Label.At(50, 53) {
		t.Error("Expected bright patch inside the document to stay in the label mask")
	}
	if ms.Label.At(135, 100) {
		t.Error("Expected isolated bright patch to be excluded from the label mask")
	}
}

func TestBuild_EdgeMask(t *testing.T) {
	img := createSceneImage(120, 90, color.RGBA{20, 20, 20, 255})
	fillRect(img, image.Rect(30, 30, 90, 60), color.RGBA{235, 235, 235, 255})

	ms := buildMasks(t, img, Params{})

	if ms.Edge.Count() == 0 {
		t.Fatal("Expected edge pixels along the high-contrast boundary")
	}

	// The Sobel contour is only a couple of pixels wide; cleanup must not
	// erase it. Check a band straddling the top boundary of the rectangle.
	band := 0
	for y := 28; y <= 32; y++ {
		for x := 40; x <= 80; x++ {
			if ms.Edge.At(x, y) {
				band++
			}
		}
	}
	if band == 0 {
		t.Error("Expected the thin boundary contour to survive cleanup")
	}

	// Edges cluster near the rectangle boundary, not in the flat interior.
	if ms.Edge.At(60, 45) {
		t.Error("Flat interior must not classify as edge")
	}
}
