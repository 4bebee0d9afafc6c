package features

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ProbeOutcome reports how one network probe fared.
type ProbeOutcome struct {
	Probe    string        `json:"probe"`
	Measured bool          `json:"measured"`
	Reason   string        `json:"reason,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// NetworkExtractor produces the network-derived fields for a URL together with
// per-probe outcomes. An error means the whole probe set failed, not a single
// probe.
type NetworkExtractor interface {
	Extract(ctx context.Context, rawURL string) (Vector, []ProbeOutcome, error)
}

// Extraction is the result of one enhanced extraction.
type Extraction struct {
	Model    ModelVector    `json:"model_features"`
	Display  Vector         `json:"display_features"`
	Enhanced bool           `json:"enhanced"`
	Probes   []ProbeOutcome `json:"probes,omitempty"`
}

// Aggregator runs lexical extraction and best-effort network enrichment.
type Aggregator struct {
	network NetworkExtractor
	logger  *slog.Logger
}

// NewAggregator creates an Aggregator. A nil network extractor means every
// extraction runs in degraded mode.
func NewAggregator(network NetworkExtractor, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{network: network, logger: logger}
}

// ExtractBasic returns the classifier row without touching the network.
func (a *Aggregator) ExtractBasic(rawURL string) ModelVector {
	return ExtractLexical(rawURL)
}

// Extract computes the model row and, when probing works, the extended
// display vector. It never returns an error; degradation is reported through
// Extraction.Enhanced.
func (a *Aggregator) Extract(ctx context.Context, rawURL string) Extraction {
	model := ExtractLexical(rawURL)
	base := modelFields(model)

	out := Extraction{Model: model, Display: base}
	if a.network == nil {
		a.logger.Warn("network features unavailable, using basic analysis", "url", rawURL, "reason", "no network extractor")
		return out
	}

	network, outcomes, err := a.safeNetwork(ctx, rawURL)
	if err != nil {
		a.logger.Warn("network features unavailable, using basic analysis", "url", rawURL, "reason", err)
		return out
	}

	out.Display = base.Merge(network)
	out.Enhanced = true
	out.Probes = outcomes
	return out
}

func (a *Aggregator) safeNetwork(ctx context.Context, rawURL string) (v Vector, outcomes []ProbeOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, outcomes, err = nil, nil, fmt.Errorf("network extraction panicked: %v", r)
		}
	}()
	return a.network.Extract(ctx, rawURL)
}

// modelFields converts the row to named fields and asserts the frozen schema.
// A mismatch is a programming error, so it panics instead of degrading.
func modelFields(m ModelVector) Vector {
	v := m.Vector()
	if len(v) != NumModelFeatures {
		panic(fmt.Sprintf("features: model vector has %d fields, want %d", len(v), NumModelFeatures))
	}
	for i, f := range v {
		if f.Name != ModelFeatureNames[i] {
			panic(fmt.Sprintf("features: model field %d is %q, want %q", i, f.Name, ModelFeatureNames[i]))
		}
	}
	return v
}
