package raster

// LightingTier classifies the ambient brightness of a frame.
type LightingTier string

const (
	TierNormal  LightingTier = "normal"
	TierDim     LightingTier = "dim"
	TierVeryDim LightingTier = "very-dim"
)

// Thresholds are the effective per-tier classification thresholds used by the
// mask builder. As the tier darkens the document hue band widens and the
// saturation/brightness floors drop; the relaxation is monotone by
// construction of the tier table.
type Thresholds struct {
	// Document hue bands in degrees. The core band defines color purity;
	// the support band admits pixels into the document mask.
	DocHueCoreLo    float64 `json:"doc_hue_core_lo"`
	DocHueCoreHi    float64 `json:"doc_hue_core_hi"`
	DocHueSupportLo float64 `json:"doc_hue_support_lo"`
	DocHueSupportHi float64 `json:"doc_hue_support_hi"`

	// Minimum saturation/value for a pixel to count as document-colored.
	DocMinSat float64 `json:"doc_min_sat"`
	DocMinVal float64 `json:"doc_min_val"`

	// Label pixels must be desaturated and brighter than the tier floor.
	LabelMaxSat float64 `json:"label_max_sat"`
	LabelMinVal float64 `json:"label_min_val"`
}

// tierTable maps each lighting tier to its effective thresholds. The values
// are empirically tuned; override them through pipeline.Config rather than
// editing here.
var tierTable = map[LightingTier]Thresholds{
	TierNormal: {
		DocHueCoreLo: 200, DocHueCoreHi: 250,
		DocHueSupportLo: 185, DocHueSupportHi: 265,
		DocMinSat: 0.35, DocMinVal: 0.25,
		LabelMaxSat: 0.25, LabelMinVal: 0.65,
	},
	TierDim: {
		DocHueCoreLo: 195, DocHueCoreHi: 255,
		DocHueSupportLo: 175, DocHueSupportHi: 275,
		DocMinSat: 0.25, DocMinVal: 0.18,
		LabelMaxSat: 0.30, LabelMinVal: 0.55,
	},
	TierVeryDim: {
		DocHueCoreLo: 190, DocHueCoreHi: 260,
		DocHueSupportLo: 165, DocHueSupportHi: 285,
		DocMinSat: 0.18, DocMinVal: 0.12,
		LabelMaxSat: 0.35, LabelMinVal: 0.45,
	},
}

// LightingProfile captures the ambient brightness of one frame: the 10th,
// 50th and 90th percentile of the value channel, the tier derived from the
// 90th percentile, and the tier's effective thresholds.
type LightingProfile struct {
	Tier       LightingTier `json:"tier"`
	P10        float64      `json:"p10"`
	P50        float64      `json:"p50"`
	P90        float64      `json:"p90"`
	Thresholds Thresholds   `json:"thresholds"`
}

// EstimateLighting builds a 256-bucket brightness histogram over the value
// channel and classifies the lighting tier from its 90th percentile.
func EstimateLighting(pb *PixelBuffers) *LightingProfile {
	n := len(pb.Val)
	if n == 0 {
		return &LightingProfile{Tier: TierVeryDim, Thresholds: tierTable[TierVeryDim]}
	}

	var hist [256]int
	for _, v := range pb.Val {
		bucket := int(v * 255)
		if bucket < 0 {
			bucket = 0
		} else if bucket > 255 {
			bucket = 255
		}
		hist[bucket]++
	}

	p10 := histogramPercentile(hist, n, 0.10)
	p50 := histogramPercentile(hist, n, 0.50)
	p90 := histogramPercentile(hist, n, 0.90)

	tier := TierNormal
	switch {
	case p90 < 0.32:
		tier = TierVeryDim
	case p90 < 0.55:
		tier = TierDim
	}

	return &LightingProfile{
		Tier:       tier,
		P10:        p10,
		P50:        p50,
		P90:        p90,
		Thresholds: tierTable[tier],
	}
}

// Apply rescales the NormVal channel so that the 90th-percentile brightness
// maps to 1.0. This makes the label brightness floor meaningful in dim scenes.
func (lp *LightingProfile) Apply(pb *PixelBuffers) {
	ceiling := lp.P90
	if ceiling < 0.2 {
		ceiling = 0.2
	}
	for i, v := range pb.Val {
		nv := v / ceiling
		if nv > 1 {
			nv = 1
		}
		pb.NormVal[i] = nv
	}
}

// histogramPercentile returns the brightness (0..1) at which the cumulative
// histogram first reaches fraction p of the total count.
func histogramPercentile(hist [256]int, total int, p float64) float64 {
	target := int(p * float64(total))
	cum := 0
	for bucket, count := range hist {
		cum += count
		if cum >= target {
			return float64(bucket) / 255.0
		}
	}
	return 1.0
}
