// Package pipeline wires the per-frame stages together: preprocess, masks,
// localization, orientation normalization, and field ROI extraction.
//
// The pipeline is synchronous and single-threaded per invocation; the caller
// is responsible for single-flight scheduling (never starting a frame while
// the previous one is still processing). No stage retains cross-frame state.
package pipeline

import (
	"image"

	"github.com/gatescan/ticket-vision/internal/locate"
	"github.com/gatescan/ticket-vision/internal/normalize"
	"github.com/gatescan/ticket-vision/internal/raster"
	"github.com/gatescan/ticket-vision/internal/roi"
)

// Config aggregates the stage configurations. All thresholds are named and
// overridable; the defaults are empirically tuned.
type Config struct {
	Locate    locate.Config
	Normalize normalize.Config
	ROI       roi.Config

	// Debug attaches the diagnostic payload to localization results.
	Debug bool
}

// DefaultConfig returns the tuned defaults for every stage.
func DefaultConfig() Config {
	return Config{
		Locate:    locate.DefaultConfig(),
		Normalize: normalize.DefaultConfig(),
		ROI:       roi.DefaultConfig(),
	}
}

// Result bundles the outputs of a full pipeline pass over one frame.
// Normalization and Fields are nil when localization did not find a ticket.
type Result struct {
	Localization  *locate.Result    `json:"localization"`
	Normalization *normalize.Result `json:"normalization,omitempty"`
	Fields        *roi.Result       `json:"fields,omitempty"`
}

// Pipeline runs the full per-frame chain. Stateless apart from
// configuration; allocate once and reuse across frames.
type Pipeline struct {
	cfg        Config
	localizer  *locate.Localizer
	normalizer *normalize.Normalizer
}

// New creates a pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		localizer:  locate.New(cfg.Locate),
		normalizer: normalize.New(cfg.Normalize),
	}
}

// NewDefault creates a pipeline with DefaultConfig.
func NewDefault() *Pipeline { return New(DefaultConfig()) }

// Localize runs only the localization stage on an image.
func (p *Pipeline) Localize(img image.Image) *locate.Result {
	frame := raster.FrameFromImage(img)
	return p.localizer.Localize(frame, p.cfg.Debug)
}

// Process runs localization and, when a ticket was found, rectification and
// field extraction. Every failure mode degrades to a partial result; no
// stage returns an error for frame content.
func (p *Pipeline) Process(img image.Image) *Result {
	frame := raster.FrameFromImage(img)
	loc := p.localizer.Localize(frame, p.cfg.Debug)
	res := &Result{Localization: loc}
	if !loc.Found || loc.TicketBox == nil {
		return res
	}

	norm := p.normalizer.Normalize(frame.Image(), *loc.TicketBox)
	res.Normalization = norm
	if !norm.Success {
		return res
	}

	res.Fields = roi.Extract(norm.Canonical, p.cfg.ROI)
	return res
}
