// Package detect ties feature extraction, the policy pre-filter and the
// classifier into a single URL verdict.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"phishguard/classifier"
	"phishguard/features"
	"phishguard/policy"
)

// ErrEmptyURL is returned for blank input.
var ErrEmptyURL = errors.New("no URL provided")

// Verdict sources.
const (
	SourceModel     = "model"
	SourceAllowlist = "allowlist"
	SourceDenylist  = "denylist"
)

// Narrator turns a finished report into a short explanation.
type Narrator interface {
	Narrate(ctx context.Context, r *Report) (string, error)
}

// Options adjusts a single analysis.
type Options struct {
	Basic   bool // skip network probes
	Narrate bool // ask the narrator, when one is configured
}

// Report is the full outcome of analysing one URL.
type Report struct {
	URL                   string                  `json:"url"`
	Result                string                  `json:"result"`
	Phishing              bool                    `json:"phishing"`
	Label                 int                     `json:"label"`
	Confidence            float64                 `json:"confidence"`
	ConfidenceText        string                  `json:"confidence_text"`
	Probabilities         [2]float64              `json:"probabilities"`
	Source                string                  `json:"source"`
	Policy                *policy.Verdict         `json:"policy,omitempty"`
	Enhanced              bool                    `json:"enhanced"`
	Indicators            []string                `json:"network_indicators"`
	Reason                string                  `json:"reason"`
	ModelFeatures         features.ModelVector    `json:"model_features"`
	DisplayFeatures       features.Vector         `json:"display_features"`
	Probes                []features.ProbeOutcome `json:"probes,omitempty"`
	FeaturesUsed          int                     `json:"features_used"`
	TotalFeaturesAnalyzed int                     `json:"total_features_analyzed"`
	ProcessingTime        float64                 `json:"processing_time"`
	ProcessingTimeText    string                  `json:"processing_time_text"`
	Narrative             string                  `json:"narrative,omitempty"`
	Timestamp             string                  `json:"timestamp"`
}

// Config wires a Detector. Model may be nil, which leaves the detector in the
// unavailable state: policy decisions still work, model verdicts do not.
type Config struct {
	Aggregator *features.Aggregator
	Model      classifier.Predictor
	Prefilter  *policy.Prefilter
	Narrator   Narrator
	Logger     *slog.Logger
}

// Detector is safe for concurrent use once built.
type Detector struct {
	agg       *features.Aggregator
	model     classifier.Predictor
	prefilter *policy.Prefilter
	narrator  Narrator
	logger    *slog.Logger
	now       func() time.Time
}

// New builds a Detector from cfg.
func New(cfg Config) *Detector {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	agg := cfg.Aggregator
	if agg == nil {
		agg = features.NewAggregator(nil, logger)
	}
	return &Detector{
		agg:       agg,
		model:     cfg.Model,
		prefilter: cfg.Prefilter,
		narrator:  cfg.Narrator,
		logger:    logger,
		now:       time.Now,
	}
}

// Available reports whether a model is loaded.
func (d *Detector) Available() bool { return d.model != nil }

// Extract runs feature extraction only.
func (d *Detector) Extract(ctx context.Context, rawURL string, basic bool) (features.Extraction, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return features.Extraction{}, ErrEmptyURL
	}
	if basic {
		m := d.agg.ExtractBasic(url)
		return features.Extraction{Model: m, Display: m.Vector()}, nil
	}
	return d.agg.Extract(ctx, url), nil
}

// Analyze classifies rawURL. The allowlist and denylist are consulted first;
// otherwise the model decides on the ten lexical features.
func (d *Detector) Analyze(ctx context.Context, rawURL string, opts Options) (*Report, error) {
	start := d.now()
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, ErrEmptyURL
	}

	if v := d.prefilter.Check(features.ParseURL(url).Host); v.Decision != policy.Undecided {
		d.logger.Info("policy decided url", "url", url, "decision", v.Decision, "rule", v.Rule)
		r := d.policyReport(url, v)
		d.finish(ctx, r, start, opts)
		return r, nil
	}

	if d.model == nil {
		return nil, classifier.ErrUnavailable
	}

	ex, err := d.Extract(ctx, url, opts.Basic)
	if err != nil {
		return nil, err
	}

	pred, err := d.model.Predict(ex.Model.Row())
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", url, err)
	}

	r := &Report{
		URL:                   url,
		Result:                resultText(pred.IsPhishing()),
		Phishing:              pred.IsPhishing(),
		Label:                 pred.Label,
		Confidence:            pred.Confidence(),
		ConfidenceText:        percent(pred.Confidence()),
		Probabilities:         pred.Probabilities,
		Source:                SourceModel,
		Enhanced:              ex.Enhanced,
		Indicators:            features.Indicators(ex.Display, ex.Enhanced),
		ModelFeatures:         ex.Model,
		DisplayFeatures:       ex.Display,
		Probes:                ex.Probes,
		FeaturesUsed:          features.NumModelFeatures,
		TotalFeaturesAnalyzed: len(ex.Display),
	}
	r.Reason = buildReason(pred, ex)
	d.finish(ctx, r, start, opts)

	d.logger.Info("url analysed",
		"url", url,
		"phishing", r.Phishing,
		"confidence", r.Confidence,
		"enhanced", r.Enhanced,
		"elapsed", r.ProcessingTime,
	)
	return r, nil
}

func (d *Detector) policyReport(url string, v policy.Verdict) *Report {
	phishing := v.Decision == policy.Deny
	m := d.agg.ExtractBasic(url)
	r := &Report{
		URL:                   url,
		Result:                resultText(phishing),
		Phishing:              phishing,
		Confidence:            1,
		ConfidenceText:        percent(1),
		Source:                SourceAllowlist,
		Policy:                &v,
		Indicators:            []string{v.Reason},
		Reason:                v.Reason,
		ModelFeatures:         m,
		DisplayFeatures:       m.Vector(),
		TotalFeaturesAnalyzed: features.NumModelFeatures,
	}
	if phishing {
		r.Label = classifier.Phishing
		r.Source = SourceDenylist
		r.Probabilities = [2]float64{0, 1}
	} else {
		r.Probabilities = [2]float64{1, 0}
	}
	return r
}

func (d *Detector) finish(ctx context.Context, r *Report, start time.Time, opts Options) {
	elapsed := d.now().Sub(start)
	r.ProcessingTime = elapsed.Seconds()
	r.ProcessingTimeText = fmt.Sprintf("%.2fs", elapsed.Seconds())
	r.Timestamp = d.now().UTC().Format(time.RFC3339)

	if !opts.Narrate || d.narrator == nil {
		return
	}
	text, err := d.narrator.Narrate(ctx, r)
	if err != nil {
		d.logger.Warn("narration failed", "url", r.URL, "error", err)
		return
	}
	r.Narrative = text
}

func resultText(phishing bool) string {
	if phishing {
		return "Phishing Website"
	}
	return "Legitimate Website"
}

func percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}
