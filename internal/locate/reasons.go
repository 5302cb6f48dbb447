package locate

// Stage tags which fallback tier produced (or rejected) a localization.
type Stage string

const (
	StageNone          Stage = "none"
	StagePrimary       Stage = "primary"
	StageLabelFallback Stage = "label-fallback"
	StageEdgeFallback  Stage = "edge-fallback"
)

// Reason is a machine-readable diagnostic code. Reasons explain rejections
// and confidence discounts; they are for tuning and tests, never for
// caller control flow.
type Reason string

const (
	ReasonDegenerateFrame    Reason = "DEGENERATE_FRAME"
	ReasonNoTicketCandidate  Reason = "NO_TICKET_CANDIDATE"
	ReasonNoLabelCandidate   Reason = "NO_LABEL_CANDIDATE"
	ReasonNoEdgeCandidate    Reason = "NO_EDGE_CANDIDATE"
	ReasonLowTicketScore     Reason = "LOW_TICKET_SCORE"
	ReasonLowLabelScore      Reason = "LOW_LABEL_SCORE"
	ReasonLowEdgeScore       Reason = "LOW_EDGE_SCORE"
	ReasonLowBlueRatio       Reason = "LOW_BLUE_RATIO"
	ReasonHeavyOcclusion     Reason = "HEAVY_OCCLUSION"
	ReasonAspectOutOfRange   Reason = "ASPECT_OUT_OF_RANGE"
	ReasonLowConfidence      Reason = "LOW_CONFIDENCE"
	ReasonLabelOutsideTicket Reason = "LABEL_OUTSIDE_TICKET"
	ReasonLabelClipped       Reason = "LABEL_CLIPPED"
	ReasonTicketInferred     Reason = "TICKET_INFERRED_FROM_LABEL"
	ReasonEdgeFallbackUsed   Reason = "EDGE_FALLBACK_USED"
)
