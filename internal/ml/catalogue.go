package ml

import "fmt"

// ModelInfo describes one model for clients.
type ModelInfo struct {
	ID          ModelID `json:"id"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	StatusRule  string  `json:"statusRule"`
}

// CatalogueInfo lists the available models and the inputs they accept.
type CatalogueInfo struct {
	Models           []ModelInfo `json:"models"`
	ClinicalFeatures []Feature   `json:"clinicalFeatures"`
	AcousticFeatures []string    `json:"acousticFeatures"`
}

var modelDescriptions = map[ModelID]string{
	ModelGradientBoosting: "Gradient boosting over clinical, age, voice and nonlinear dysphonia terms",
	ModelRandomForest:     "Random forest over clinical, age and basic voice terms",
	ModelNeuralNetwork:    "Two-unit tanh network on normalized clinical scores with a voice adjustment",
	ModelSVM:              "Sigmoid of the distance to a linear boundary with RBF voice kernels",
	ModelAdaBoost:         "AdaBoost over clinical, age, voice and nonlinear dysphonia terms",
	ModelExtraTrees:       "Extra trees over clinical, age, voice and nonlinear dysphonia terms",
	ModelXGBoost:          "XGBoost over clinical, age, voice and nonlinear dysphonia terms",
}

// Catalogue describes every model in canonical order followed by the
// ensemble.
func Catalogue() CatalogueInfo {
	models := make([]ModelInfo, 0, len(ModelOrder)+1)
	for _, p := range Predictors() {
		models = append(models, describe(p))
	}
	models = append(models, ModelInfo{
		ID:          ModelEnsemble,
		Description: "Confidence-weighted average of every model",
		Confidence:  Ensemble(FeatureVector{}).Confidence,
		StatusRule:  "weighted positive vote >= 0.5",
	})

	return CatalogueInfo{
		Models:           models,
		ClinicalFeatures: append([]Feature(nil), ClinicalFeatures...),
		AcousticFeatures: append([]string(nil), AcousticFeatureNames...),
	}
}

func describe(p Predictor) ModelInfo {
	info := ModelInfo{
		ID:          p.ID(),
		Description: modelDescriptions[p.ID()],
		Confidence:  p.Predict(FeatureVector{}).Confidence,
	}
	switch m := p.(type) {
	case *ParametricModel:
		info.StatusRule = fmt.Sprintf("riskScore > %d", m.Params().StatusThreshold)
	case *NeuralNetworkModel:
		info.StatusRule = fmt.Sprintf("probability > %.2f", m.statusThreshold)
	case *SVMModel:
		info.StatusRule = "distance > 0"
	}
	return info
}
