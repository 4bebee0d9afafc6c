// Package classifier loads the pre-trained phishing model and scores feature
// rows with it.
package classifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Labels produced by the model.
const (
	Legitimate = 0
	Phishing   = 1
)

// ErrUnavailable marks a model that could not be loaded or used.
var ErrUnavailable = errors.New("model unavailable")

// Prediction is the model output for one row.
type Prediction struct {
	Label         int        `json:"label"`
	Probabilities [2]float64 `json:"probabilities"`
}

// Confidence is the probability the model gave its own label.
func (p Prediction) Confidence() float64 {
	if p.Label == Phishing {
		return p.Probabilities[Phishing]
	}
	return p.Probabilities[Legitimate]
}

// IsPhishing reports whether the row was classified as phishing.
func (p Prediction) IsPhishing() bool { return p.Label == Phishing }

func fromProbability(phishing float64) Prediction {
	p := Prediction{Probabilities: [2]float64{1 - phishing, phishing}}
	if phishing >= 0.5 {
		p.Label = Phishing
	}
	return p
}

// Predictor scores a feature row.
type Predictor interface {
	Predict(row []float64) (Prediction, error)
	NumFeatures() int
	Name() string
}

// Format selects a model backend.
type Format string

const (
	FormatXGBoost Format = "xgboost"
	FormatONNX    Format = "onnx"
)

// ParseFormat accepts a backend name, case-insensitively. Empty means xgboost.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatXGBoost:
		return FormatXGBoost, nil
	case FormatONNX:
		return FormatONNX, nil
	default:
		return "", fmt.Errorf("unknown model format %q (want xgboost or onnx)", s)
	}
}

// Config describes which model to load.
type Config struct {
	Path     string
	Format   Format
	Features int    // expected row width
	ONNXLib  string // shared library path; defaults to libonnxruntime.so next to the model
}

// Load opens the model described by cfg. Every failure wraps ErrUnavailable,
// so callers can keep serving without a model.
func Load(cfg Config) (Predictor, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrUnavailable)
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var (
		p   Predictor
		err error
	)
	switch cfg.Format {
	case "", FormatXGBoost:
		p, err = loadXGBoost(cfg.Path)
	case FormatONNX:
		lib := cfg.ONNXLib
		if lib == "" {
			lib = filepath.Join(filepath.Dir(cfg.Path), "libonnxruntime.so")
		}
		p, err = loadONNX(cfg.Path, lib)
	default:
		err = fmt.Errorf("unknown model format %q", cfg.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if cfg.Features > 0 && p.NumFeatures() != cfg.Features {
		return nil, fmt.Errorf("%w: model %s expects %d features, extractor produces %d",
			ErrUnavailable, cfg.Path, p.NumFeatures(), cfg.Features)
	}
	return p, nil
}

func checkRow(p Predictor, row []float64) error {
	if len(row) != p.NumFeatures() {
		return fmt.Errorf("%s: row has %d features, model expects %d", p.Name(), len(row), p.NumFeatures())
	}
	return nil
}
