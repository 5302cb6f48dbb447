package locate

import (
	"github.com/gatescan/ticket-vision/internal/mask"
	"github.com/gatescan/ticket-vision/internal/raster"
)

// Bounds is a rectangular box in full-resolution frame coordinates.
// (X1, Y1) is the inclusive top-left corner, (X2, Y2) the exclusive
// bottom-right corner.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns the box width in pixels.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the box height in pixels.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels, zero for inverted boxes.
func (b Bounds) Area() int {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return 0
	}
	return b.Width() * b.Height()
}

// Intersect returns the overlapping region of two boxes; the result has
// zero Area when they are disjoint.
func (b Bounds) Intersect(o Bounds) Bounds {
	r := Bounds{X1: maxInt(b.X1, o.X1), Y1: maxInt(b.Y1, o.Y1),
		X2: minInt(b.X2, o.X2), Y2: minInt(b.Y2, o.Y2)}
	if r.X2 < r.X1 {
		r.X2 = r.X1
	}
	if r.Y2 < r.Y1 {
		r.Y2 = r.Y1
	}
	return r
}

func (b Bounds) scale(sx, sy float64) Bounds {
	return Bounds{
		X1: int(float64(b.X1) * sx),
		Y1: int(float64(b.Y1) * sy),
		X2: int(float64(b.X2) * sx),
		Y2: int(float64(b.Y2) * sy),
	}
}

// Debug is the opt-in diagnostic payload. Its shape is stable for tooling.
type Debug struct {
	Stage          Stage               `json:"stage"`
	Reasons        []Reason            `json:"reasons"`
	TicketScore    float64             `json:"ticket_score"`
	LabelScore     float64             `json:"label_score"`
	EdgeScore      float64             `json:"edge_score"`
	ColorSupport   float64             `json:"color_support"`
	OcclusionRatio float64             `json:"occlusion_ratio"`
	LightingTier   raster.LightingTier `json:"lighting_tier"`
}

// Result is the localization output contract. Boxes are in full-resolution
// frame coordinates; both may be nil when nothing was found.
type Result struct {
	Found       bool    `json:"found"`
	TicketFound bool    `json:"ticket_found"`
	LabelFound  bool    `json:"label_found"`
	Confidence  float64 `json:"confidence"`
	TicketBox   *Bounds `json:"ticket_box"`
	LabelBox    *Bounds `json:"label_box"`
	Debug       *Debug  `json:"debug,omitempty"`
}

// Localizer runs candidate scoring and the fallback chain for one frame at a
// time. It holds no cross-frame state and performs no locking; the caller
// guarantees single-flight scheduling.
type Localizer struct {
	cfg Config
}

// New creates a localizer with the given configuration.
func New(cfg Config) *Localizer { return &Localizer{cfg: cfg} }

// NewDefault creates a localizer with DefaultConfig.
func NewDefault() *Localizer { return New(DefaultConfig()) }

// Localize runs the full localization chain: preprocess, masks, components,
// scoring, fallback decision, containment. Degenerate frames yield a clean
// not-found result. The debug payload is attached only when requested.
func (l *Localizer) Localize(frame *raster.Frame, withDebug bool) *Result {
	if !frame.Valid() {
		res := &Result{}
		if withDebug {
			res.Debug = &Debug{Stage: StageNone, Reasons: []Reason{ReasonDegenerateFrame}}
		}
		return res
	}

	working := frame.Downscale(l.cfg.WorkingSide)
	pb := raster.NewPixelBuffers(working)
	lighting := raster.EstimateLighting(pb)
	lighting.Apply(pb)

	ms := mask.Build(pb, lighting, mask.Params{
		EdgeSigmaK:              l.cfg.EdgeSigmaK,
		LabelNeighborhoodRadius: l.cfg.LabelNeighborhoodRadius,
	})

	workingArea := working.Width * working.Height
	minTicket := int(l.cfg.MinTicketAreaRatio * float64(workingArea))
	minLabel := int(l.cfg.MinLabelAreaRatio * float64(workingArea))
	minEdge := int(l.cfg.MinEdgeAreaRatio * float64(workingArea))

	var ticketCands, labelCands, edgeCands []Candidate
	for _, c := range mask.Components(ms.Document, minTicket) {
		ticketCands = append(ticketCands, l.scoreTicket(c, pb, ms))
	}
	ticket := bestOf(ticketCands)

	ticketArea := 0
	if ticket != nil {
		ticketArea = ticket.Component.Area
	}
	docNear := ms.Document.Dilate(l.cfg.DocAdjacencyRadius)
	for _, c := range mask.Components(ms.Label, minLabel) {
		labelCands = append(labelCands, l.scoreLabel(c, pb, ms, docNear, ticketArea))
	}
	label := bestOf(labelCands)

	for _, c := range mask.Components(ms.Edge, minEdge) {
		edgeCands = append(edgeCands, l.scoreEdge(c, pb, ms))
	}
	edge := bestOf(edgeCands)

	dec := l.decide(ticket, label, edge)

	res := &Result{
		Found:       dec.stage != StageNone,
		TicketFound: dec.ticketBox != nil,
		LabelFound:  dec.labelBox != nil,
		Confidence:  dec.confidence,
	}

	// Report boxes in full-resolution frame coordinates. Integer rounding in
	// Downscale makes the two axis ratios differ slightly, so scale each axis
	// by its own ratio.
	upscaleX := float64(frame.Width) / float64(working.Width)
	upscaleY := float64(frame.Height) / float64(working.Height)
	if dec.ticketBox != nil {
		b := dec.ticketBox.scale(upscaleX, upscaleY)
		res.TicketBox = &b
	}
	if dec.labelBox != nil {
		b := dec.labelBox.scale(upscaleX, upscaleY)
		res.LabelBox = &b
	}

	if withDebug {
		dbg := &Debug{
			Stage:        dec.stage,
			Reasons:      dec.reasons,
			LightingTier: lighting.Tier,
		}
		if ticket != nil {
			dbg.TicketScore = ticket.Score
			dbg.ColorSupport = ticket.ColorSupport
			dbg.OcclusionRatio = ticket.SkinRatio
		}
		if label != nil {
			dbg.LabelScore = label.Score
		}
		if edge != nil {
			dbg.EdgeScore = edge.Score
		}
		res.Debug = dbg
	}
	return res
}

// decision is the internal outcome of the fallback chain, in working-frame
// coordinates.
type decision struct {
	stage      Stage
	confidence float64
	ticketBox  *Bounds
	labelBox   *Bounds
	reasons    []Reason
}

// decide walks the three fallback tiers in order and applies the label
// containment check to whichever tier succeeds.
func (l *Localizer) decide(ticket, label, edge *Candidate) decision {
	dec := decision{stage: StageNone}

	labelScore := 0.0
	if label != nil {
		labelScore = label.Score
	}

	// Tier 1: document + label.
	primaryOK := false
	switch {
	case ticket == nil:
		dec.reasons = append(dec.reasons, ReasonNoTicketCandidate)
	case ticket.Score < l.cfg.MinTicketScore:
		dec.reasons = append(dec.reasons, ReasonLowTicketScore)
	case label == nil:
		dec.reasons = append(dec.reasons, ReasonNoLabelCandidate)
	case label.Score < l.cfg.MinLabelScore:
		dec.reasons = append(dec.reasons, ReasonLowLabelScore)
	default:
		primaryOK = true
	}

	if primaryOK {
		conf := 0.6*ticket.Score + 0.4*labelScore
		if ticket.ColorSupport < l.cfg.ColorSupportFloor {
			conf *= 0.8
			dec.reasons = append(dec.reasons, ReasonLowBlueRatio)
		}
		if ticket.SkinRatio > l.cfg.HeavyOcclusionRatio {
			conf *= 0.75
			dec.reasons = append(dec.reasons, ReasonHeavyOcclusion)
		}
		if ticket.Aspect < l.cfg.AspectBandLo || ticket.Aspect > l.cfg.AspectBandHi {
			conf *= 0.8
			dec.reasons = append(dec.reasons, ReasonAspectOutOfRange)
		}
		if conf >= l.cfg.CombinedThreshold {
			tb := boundsOf(&ticket.Component)
			lb := boundsOf(&label.Component)
			dec.stage = StagePrimary
			dec.ticketBox = &tb
			dec.labelBox = &lb
			dec.confidence = minFloat(conf, l.cfg.PrimaryCeiling)
			return l.contain(dec, ticket.Score, labelScore)
		}
		dec.reasons = append(dec.reasons, ReasonLowConfidence)
	}

	// Tier 2: strong label alone; infer the ticket box from the fixed
	// label-within-ticket layout.
	if label != nil && label.Score >= l.cfg.LabelOnlyScoreBar {
		lb := boundsOf(&label.Component)
		tb := l.inferTicketBox(lb)
		dec.stage = StageLabelFallback
		dec.ticketBox = &tb
		dec.labelBox = &lb
		dec.confidence = minFloat(label.Score*0.85, l.cfg.LabelFallbackCeiling)
		dec.reasons = append(dec.reasons, ReasonTicketInferred)
		return l.contain(dec, 0, labelScore)
	}

	// Tier 3: edge-only fallback.
	switch {
	case edge == nil:
		dec.reasons = append(dec.reasons, ReasonNoEdgeCandidate)
	case edge.Score < l.cfg.MinEdgeScore:
		dec.reasons = append(dec.reasons, ReasonLowEdgeScore)
	default:
		tb := boundsOf(&edge.Component)
		dec.stage = StageEdgeFallback
		dec.ticketBox = &tb
		if label != nil && label.Score >= l.cfg.MinLabelScore {
			lb := boundsOf(&label.Component)
			dec.labelBox = &lb
		}
		dec.confidence = minFloat(edge.Score*0.8, l.cfg.EdgeFallbackCeiling)
		dec.reasons = append(dec.reasons, ReasonEdgeFallbackUsed)
		return l.contain(dec, edge.Score, labelScore)
	}

	return dec
}

// contain enforces the label-inside-ticket invariant: overlap below the
// containment floor drops the label; partial overlap clips the label to the
// intersection and discounts its contribution.
func (l *Localizer) contain(dec decision, ticketScore, labelScore float64) decision {
	if dec.ticketBox == nil || dec.labelBox == nil {
		return dec
	}
	labelArea := dec.labelBox.Area()
	if labelArea == 0 {
		dec.labelBox = nil
		return dec
	}

	inter := dec.labelBox.Intersect(*dec.ticketBox)
	overlap := float64(inter.Area()) / float64(labelArea)

	switch {
	case overlap < l.cfg.ContainmentFloor:
		dec.labelBox = nil
		dec.reasons = append(dec.reasons, ReasonLabelOutsideTicket)
	case overlap < 1.0:
		dec.labelBox = &inter
		dec.reasons = append(dec.reasons, ReasonLabelClipped)
		if dec.stage == StagePrimary {
			conf := 0.6*ticketScore + 0.4*labelScore*l.cfg.ClipDiscount
			dec.confidence = minFloat(conf, dec.confidence)
		} else {
			dec.confidence *= l.cfg.ClipDiscount
		}
	}
	return dec
}

// inferTicketBox expands a label box into the ticket box implied by the
// fixed physical layout: the label sits centered horizontally in the
// ticket's lower-middle region.
func (l *Localizer) inferTicketBox(label Bounds) Bounds {
	tw := float64(label.Width()) * l.cfg.InferredWidthFactor
	th := float64(label.Height()) * l.cfg.InferredHeightFactor
	cx := float64(label.X1+label.X2) / 2
	cy := float64(label.Y1+label.Y2) / 2

	x1 := cx - tw/2
	y1 := cy - th*l.cfg.InferredLabelCenterY
	return Bounds{
		X1: int(x1),
		Y1: int(y1),
		X2: int(x1 + tw),
		Y2: int(y1 + th),
	}
}

func boundsOf(c *mask.Component) Bounds {
	return Bounds{X1: c.MinX, Y1: c.MinY, X2: c.MaxX + 1, Y2: c.MaxY + 1}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
