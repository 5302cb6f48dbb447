package locate

// Config collects every tunable constant of candidate scoring and the
// decision engine. The defaults are empirically tuned against captured
// frames; treat them as starting points for recalibration against a real
// image corpus, not derived truths.
type Config struct {
	// WorkingSide bounds the longest side of the downscaled working frame.
	WorkingSide int

	// Minimum component area as a fraction of working-frame area, per mask.
	MinTicketAreaRatio float64
	MinLabelAreaRatio  float64
	MinEdgeAreaRatio   float64

	// TargetAspect is the known document aspect ratio (long/short side).
	TargetAspect float64
	// AspectBandLo/Hi bound the acceptable aspect range; outside it the
	// candidate score is penalized multiplicatively.
	AspectBandLo float64
	AspectBandHi float64

	// OcclusionPenaltyRatio is the skin-pixel fraction above which a
	// candidate score is penalized; HeavyOcclusionRatio additionally
	// discounts the combined primary confidence.
	OcclusionPenaltyRatio float64
	HeavyOcclusionRatio   float64

	// ColorSupportFloor is the minimum fraction of the ticket bounding box
	// covered by document-colored pixels before the primary confidence is
	// discounted.
	ColorSupportFloor float64

	// Per-type score minimums and the combined primary pass threshold.
	MinTicketScore    float64
	MinLabelScore     float64
	MinEdgeScore      float64
	CombinedThreshold float64

	// LabelOnlyScoreBar is the higher bar a lone label candidate must clear
	// to trigger the label-only fallback.
	LabelOnlyScoreBar float64

	// Expected label area relative to the ticket candidate area.
	LabelAreaBandLo float64
	LabelAreaBandHi float64

	// Confidence ceilings per tier, strictly decreasing.
	PrimaryCeiling       float64
	LabelFallbackCeiling float64
	EdgeFallbackCeiling  float64

	// Fixed label-within-ticket layout used to infer the ticket box from a
	// lone label: ticket is InferredWidthFactor× label width and
	// InferredHeightFactor× label height, with the label center sitting at
	// InferredLabelCenterY of the ticket height (lower-middle).
	InferredWidthFactor  float64
	InferredHeightFactor float64
	InferredLabelCenterY float64

	// ContainmentFloor is the minimum label-inside-ticket overlap fraction;
	// below it the label is dropped, between it and 1.0 the label is
	// clipped and its score discounted by ClipDiscount.
	ContainmentFloor float64
	ClipDiscount     float64

	// EdgeSigmaK and LabelNeighborhoodRadius feed mask construction.
	EdgeSigmaK              float64
	LabelNeighborhoodRadius float64

	// DocAdjacencyRadius is the dilation radius, in working pixels, of the
	// document mask used when scoring label adjacency.
	DocAdjacencyRadius float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		WorkingSide: 384,

		MinTicketAreaRatio: 0.04,
		MinLabelAreaRatio:  0.0015,
		MinEdgeAreaRatio:   0.03,

		TargetAspect: 2.5,
		AspectBandLo: 1.8,
		AspectBandHi: 3.4,

		OcclusionPenaltyRatio: 0.20,
		HeavyOcclusionRatio:   0.35,
		ColorSupportFloor:     0.50,

		MinTicketScore:    0.32,
		MinLabelScore:     0.30,
		MinEdgeScore:      0.35,
		CombinedThreshold: 0.48,
		LabelOnlyScoreBar: 0.68,

		LabelAreaBandLo: 0.03,
		LabelAreaBandHi: 0.45,

		PrimaryCeiling:       0.95,
		LabelFallbackCeiling: 0.62,
		EdgeFallbackCeiling:  0.45,

		InferredWidthFactor:  1.95,
		InferredHeightFactor: 2.55,
		InferredLabelCenterY: 0.68,

		ContainmentFloor: 0.75,
		ClipDiscount:     0.90,

		EdgeSigmaK:              0.65,
		LabelNeighborhoodRadius: 6,
		DocAdjacencyRadius:      4,
	}
}
