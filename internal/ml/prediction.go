package ml

import "fmt"

// ModelID identifies one of the scoring models.
type ModelID string

const (
	ModelGradientBoosting ModelID = "gradient_boosting"
	ModelRandomForest     ModelID = "random_forest"
	ModelNeuralNetwork    ModelID = "neural_network"
	ModelSVM              ModelID = "svm"
	ModelAdaBoost         ModelID = "adaboost"
	ModelExtraTrees       ModelID = "extra_trees"
	ModelXGBoost          ModelID = "xgboost"
	ModelEnsemble         ModelID = "ensemble"
)

// ModelOrder is the canonical evaluation order used by the ensemble.
var ModelOrder = []ModelID{
	ModelGradientBoosting,
	ModelRandomForest,
	ModelNeuralNetwork,
	ModelSVM,
	ModelAdaBoost,
	ModelExtraTrees,
	ModelXGBoost,
}

// ParseModelID validates a wire model name.
func ParseModelID(s string) (ModelID, error) {
	id := ModelID(s)
	if id == ModelEnsemble {
		return id, nil
	}
	for _, m := range ModelOrder {
		if m == id {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown model %q", s)
}

// Importance attributes influence to each clinical feature.
type Importance map[Feature]float64

// Clone returns an independent copy.
func (imp Importance) Clone() Importance {
	if imp == nil {
		return nil
	}
	out := make(Importance, len(imp))
	for k, v := range imp {
		out[k] = v
	}
	return out
}

// PredictionResult is the output of a single model.
//
// RiskScore is capped at 100 and Probability at 1; neither is floored, so
// out-of-range inputs can yield negative values.
type PredictionResult struct {
	RiskScore         int        `json:"riskScore"`
	Probability       float64    `json:"probability"`
	Status            int        `json:"status"`
	ModelUsed         ModelID    `json:"modelUsed"`
	Confidence        float64    `json:"confidence"`
	FeatureImportance Importance `json:"featureImportance,omitempty"`
}

// Summary describes how much the individual models agree.
type Summary struct {
	TotalModels         int     `json:"totalModels"`
	ConsensusPrediction int     `json:"consensusPrediction"`
	AverageProbability  float64 `json:"averageProbability"`
	ProbabilityStd      float64 `json:"probabilityStd"`
	AgreementRatio      float64 `json:"agreementRatio"`
}

// EnsembleResult is the confidence-weighted aggregate of every model plus
// the raw per-model results it was built from.
type EnsembleResult struct {
	PredictionResult
	ModelResults []PredictionResult `json:"modelResults"`
	Summary      Summary            `json:"summary"`
}
