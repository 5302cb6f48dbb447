package locate

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/gatescan/ticket-vision/internal/raster"
)

var (
	// Saturated mid-green background: not document, label, or skin colored.
	bgGreen = color.RGBA{77, 153, 77, 255}
	// Deep blue, hue ~227, inside the document core band.
	coreBlue = color.RGBA{30, 70, 220, 255}
	// Cyan-leaning blue, hue ~190: support band but outside the core band.
	supportBlue = color.RGBA{33, 186, 217, 255}
	labelWhite  = color.RGBA{250, 250, 250, 255}
)

// createScene creates a solid background image
func createScene(width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// ticketScene draws a 200x80 document rectangle with a bright label patch in
// its lower middle, on a 320x240 frame.
func ticketScene(docColor color.RGBA) *image.RGBA {
	img := createScene(320, 240, bgGreen)
	fillRect(img, image.Rect(60, 80, 260, 160), docColor)
	fillRect(img, image.Rect(130, 125, 190, 150), labelWhite)
	return img
}

func hasReason(reasons []Reason, want Reason) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}

func TestLocalize_DegenerateFrame(t *testing.T) {
	res := NewDefault().Localize(&raster.Frame{}, true)

	if res.Found {
		t.Error("Expected Found=false for degenerate frame")
	}
	if res.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %.2f", res.Confidence)
	}
	if res.TicketBox != nil || res.LabelBox != nil {
		t.Error("Expected nil boxes for degenerate frame")
	}
	if res.Debug == nil || !hasReason(res.Debug.Reasons, ReasonDegenerateFrame) {
		t.Errorf("Expected DEGENERATE_FRAME reason, got %+v", res.Debug)
	}
}

func TestLocalize_UniformBackground(t *testing.T) {
	frame := raster.FrameFromImage(createScene(320, 240, bgGreen))
	res := NewDefault().Localize(frame, true)

	if res.Found {
		t.Error("Expected no detection on a uniform background")
	}
	if res.TicketBox != nil {
		t.Error("Expected nil ticket box on a uniform background")
	}
	if !hasReason(res.Debug.Reasons, ReasonNoTicketCandidate) {
		t.Errorf("Expected NO_TICKET_CANDIDATE, got %v", res.Debug.Reasons)
	}
}

func TestLocalize_Primary(t *testing.T) {
	frame := raster.FrameFromImage(ticketScene(coreBlue))
	res := NewDefault().Localize(frame, true)

	if !res.Found || !res.TicketFound || !res.LabelFound {
		t.Fatalf("Expected primary detection, got %+v", res)
	}
	if res.Debug.Stage != StagePrimary {
		t.Errorf("Expected primary stage, got %s", res.Debug.Stage)
	}
	if res.Confidence <= 0 || res.Confidence > 0.95 {
		t.Errorf("Confidence out of range: %.3f", res.Confidence)
	}

	// The reported ticket box should land on the drawn rectangle.
	tb := res.TicketBox
	if tb.X1 < 52 || tb.X1 > 68 || tb.Y1 < 72 || tb.Y1 > 88 {
		t.Errorf("Ticket box origin off target: %+v", tb)
	}
	if tb.Width() < 180 || tb.Width() > 220 || tb.Height() < 68 || tb.Height() > 92 {
		t.Errorf("Ticket box size off target: %+v", tb)
	}
}

// Whenever both boxes are reported, the label must overlap the ticket box by
// at least the containment floor.
func TestLocalize_ContainmentInvariant(t *testing.T) {
	frame := raster.FrameFromImage(ticketScene(coreBlue))
	res := NewDefault().Localize(frame, false)

	if res.TicketBox == nil || res.LabelBox == nil {
		t.Fatal("Expected both boxes")
	}
	inter := res.LabelBox.Intersect(*res.TicketBox)
	overlap := float64(inter.Area()) / float64(res.LabelBox.Area())
	if overlap < DefaultConfig().ContainmentFloor {
		t.Errorf("Label overlap %.2f below containment floor", overlap)
	}
}

// A purer document hue must never score lower than a support-band hue on an
// otherwise identical scene.
func TestLocalize_PurityMonotonic(t *testing.T) {
	loc := NewDefault()

	core := loc.Localize(raster.FrameFromImage(ticketScene(coreBlue)), true)
	support := loc.Localize(raster.FrameFromImage(ticketScene(supportBlue)), true)

	if core.Debug.TicketScore < support.Debug.TicketScore {
		t.Errorf("Core-hue score %.3f below support-hue score %.3f",
			core.Debug.TicketScore, support.Debug.TicketScore)
	}
}

func TestLocalize_LabelFallback(t *testing.T) {
	// Document region too small to qualify as a ticket candidate, but its
	// bright inset still makes a strong label.
	img := createScene(200, 150, bgGreen)
	fillRect(img, image.Rect(60, 50, 90, 80), coreBlue)
	fillRect(img, image.Rect(63, 60, 87, 70), labelWhite)

	res := NewDefault().Localize(raster.FrameFromImage(img), true)

	if !res.Found {
		t.Fatalf("Expected label fallback detection, got %+v", res.Debug)
	}
	if res.Debug.Stage != StageLabelFallback {
		t.Fatalf("Expected label-fallback stage, got %s", res.Debug.Stage)
	}
	if !hasReason(res.Debug.Reasons, ReasonTicketInferred) {
		t.Errorf("Expected TICKET_INFERRED_FROM_LABEL, got %v", res.Debug.Reasons)
	}
	if res.TicketBox == nil {
		t.Error("Expected inferred ticket box")
	}
	if res.Confidence > DefaultConfig().LabelFallbackCeiling {
		t.Errorf("Confidence %.3f above label fallback ceiling", res.Confidence)
	}
}

// A scene with strong rectangular luminance structure but no document color
// must be picked up by the last-resort edge tier.
func TestLocalize_EdgeFallback(t *testing.T) {
	img := createScene(320, 240, color.RGBA{40, 40, 40, 255})
	// Striped gray rectangle at the document aspect: plenty of edge
	// structure, no document hue, nothing bright enough near a document.
	for y := 80; y < 160; y += 10 {
		c := color.RGBA{90, 90, 90, 255}
		if (y/10)%2 == 0 {
			c = color.RGBA{170, 170, 170, 255}
		}
		fillRect(img, image.Rect(60, y, 260, y+10), c)
	}

	res := NewDefault().Localize(raster.FrameFromImage(img), true)

	if !res.Found {
		t.Fatalf("Expected edge fallback detection, got %+v", res.Debug)
	}
	if res.Debug.Stage != StageEdgeFallback {
		t.Fatalf("Expected edge-fallback stage, got %s", res.Debug.Stage)
	}
	if !hasReason(res.Debug.Reasons, ReasonEdgeFallbackUsed) {
		t.Errorf("Expected EDGE_FALLBACK_USED, got %v", res.Debug.Reasons)
	}
	if !res.TicketFound || res.TicketBox == nil {
		t.Fatal("Expected the edge component to stand in for the ticket box")
	}
	if res.Confidence <= 0 || res.Confidence > DefaultConfig().EdgeFallbackCeiling {
		t.Errorf("Confidence %.3f outside edge fallback range", res.Confidence)
	}

	// The edge box should land on the striped rectangle.
	tb := res.TicketBox
	if tb.X1 < 50 || tb.X1 > 70 || tb.Y1 < 70 || tb.Y1 > 90 {
		t.Errorf("Edge box origin off target: %+v", tb)
	}
}

func TestBoundsScale_PerAxis(t *testing.T) {
	b := Bounds{X1: 10, Y1: 20, X2: 100, Y2: 80}
	s := b.scale(2, 3)

	if s.X1 != 20 || s.X2 != 200 {
		t.Errorf("Unexpected horizontal scaling: %+v", s)
	}
	if s.Y1 != 60 || s.Y2 != 240 {
		t.Errorf("Unexpected vertical scaling: %+v", s)
	}
}

// Widening the document adjacency radius can only help a label candidate's
// adjacency term, never hurt it.
func TestLocalize_DocAdjacencyRadius(t *testing.T) {
	img := createScene(200, 150, bgGreen)
	fillRect(img, image.Rect(60, 50, 90, 80), coreBlue)
	fillRect(img, image.Rect(63, 60, 87, 70), labelWhite)
	frame := raster.FrameFromImage(img)

	narrow := NewDefault().Localize(frame, true)

	cfg := DefaultConfig()
	cfg.DocAdjacencyRadius = 40
	wide := New(cfg).Localize(frame, true)

	if wide.Debug.LabelScore < narrow.Debug.LabelScore {
		t.Errorf("Wider adjacency radius lowered the label score: %.3f < %.3f",
			wide.Debug.LabelScore, narrow.Debug.LabelScore)
	}
}

func TestContain_DropAndClip(t *testing.T) {
	loc := NewDefault()
	ticket := Bounds{X1: 0, Y1: 0, X2: 100, Y2: 40}

	t.Run("disjoint label dropped", func(t *testing.T) {
		label := Bounds{X1: 200, Y1: 200, X2: 220, Y2: 210}
		dec := loc.contain(decision{
			stage:      StagePrimary,
			confidence: 0.8,
			ticketBox:  &ticket,
			labelBox:   &label,
		}, 0.8, 0.8)

		if dec.labelBox != nil {
			t.Error("Expected disjoint label to be dropped")
		}
		if !hasReason(dec.reasons, ReasonLabelOutsideTicket) {
			t.Errorf("Expected LABEL_OUTSIDE_TICKET, got %v", dec.reasons)
		}
	})

	t.Run("partial label clipped", func(t *testing.T) {
		label := Bounds{X1: 90, Y1: 10, X2: 102, Y2: 20} // 10/12 inside
		dec := loc.contain(decision{
			stage:      StagePrimary,
			confidence: 0.8,
			ticketBox:  &ticket,
			labelBox:   &label,
		}, 0.8, 0.8)

		if dec.labelBox == nil {
			t.Fatal("Expected clipped label to survive")
		}
		if dec.labelBox.X2 != 100 {
			t.Errorf("Expected label clipped to ticket edge, got %+v", dec.labelBox)
		}
		if !hasReason(dec.reasons, ReasonLabelClipped) {
			t.Errorf("Expected LABEL_CLIPPED, got %v", dec.reasons)
		}
		if dec.confidence >= 0.8 {
			t.Errorf("Expected clip discount to lower confidence, got %.3f", dec.confidence)
		}
	})

	t.Run("fully contained label untouched", func(t *testing.T) {
		label := Bounds{X1: 40, Y1: 10, X2: 70, Y2: 30}
		dec := loc.contain(decision{
			stage:      StagePrimary,
			confidence: 0.8,
			ticketBox:  &ticket,
			labelBox:   &label,
		}, 0.8, 0.8)

		if dec.labelBox == nil || *dec.labelBox != label {
			t.Errorf("Expected contained label unchanged, got %+v", dec.labelBox)
		}
		if dec.confidence != 0.8 {
			t.Errorf("Expected confidence unchanged, got %.3f", dec.confidence)
		}
	})
}

func TestInferTicketBox(t *testing.T) {
	loc := NewDefault()
	label := Bounds{X1: 80, Y1: 90, X2: 120, Y2: 110} // 40x20 centered at (100,100)

	tb := loc.inferTicketBox(label)

	cfg := DefaultConfig()
	wantW := int(40 * cfg.InferredWidthFactor)
	wantH := int(20 * cfg.InferredHeightFactor)
	if tb.Width() < wantW-1 || tb.Width() > wantW+1 {
		t.Errorf("Expected inferred width ~%d, got %d", wantW, tb.Width())
	}
	if tb.Height() < wantH-1 || tb.Height() > wantH+1 {
		t.Errorf("Expected inferred height ~%d, got %d", wantH, tb.Height())
	}

	// Label center sits in the lower-middle of the inferred ticket.
	cx := (tb.X1 + tb.X2) / 2
	if cx < 98 || cx > 102 {
		t.Errorf("Expected inferred box centered on the label, center x=%d", cx)
	}
	if 100 <= tb.Y1+tb.Height()/2 {
		t.Errorf("Expected label center below ticket mid-height: %+v", tb)
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{X1: 10, Y1: 20, X2: 30, Y2: 25}
	if b.Width() != 20 || b.Height() != 5 || b.Area() != 100 {
		t.Errorf("Unexpected geometry: w=%d h=%d area=%d", b.Width(), b.Height(), b.Area())
	}

	inverted := Bounds{X1: 5, Y1: 5, X2: 3, Y2: 3}
	if inverted.Area() != 0 {
		t.Error("Inverted box must have zero area")
	}

	disjoint := b.Intersect(Bounds{X1: 100, Y1: 100, X2: 110, Y2: 110})
	if disjoint.Area() != 0 {
		t.Error("Disjoint intersection must have zero area")
	}
}
