package classifier

import (
	"fmt"

	"github.com/dmitryikh/leaves"
)

// xgbPredictor runs a gradient boosted ensemble saved in XGBoost's binary
// model format.
type xgbPredictor struct {
	model *leaves.Ensemble
}

func loadXGBoost(path string) (*xgbPredictor, error) {
	model, err := leaves.XGEnsembleFromFile(path, true)
	if err != nil {
		return nil, fmt.Errorf("xgboost: load %s: %w", path, err)
	}
	if model.NOutputGroups() != 1 {
		return nil, fmt.Errorf("xgboost: %s has %d output groups, want a binary model", path, model.NOutputGroups())
	}
	return &xgbPredictor{model: model}, nil
}

func (x *xgbPredictor) Name() string     { return "xgboost" }
func (x *xgbPredictor) NumFeatures() int { return x.model.NFeatures() }

// Predict returns the logistic output as the phishing probability.
func (x *xgbPredictor) Predict(row []float64) (Prediction, error) {
	if err := checkRow(x, row); err != nil {
		return Prediction{}, err
	}
	return fromProbability(x.model.PredictSingle(row, 0)), nil
}
