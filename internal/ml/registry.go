package ml

import "fmt"

// predictors holds one instance of every model in ModelOrder. The models
// are immutable, so a single set is shared by all callers.
var predictors = map[ModelID]Predictor{
	ModelGradientBoosting: NewParametricModel(gradientBoostingParams),
	ModelRandomForest:     NewParametricModel(randomForestParams),
	ModelNeuralNetwork:    NewNeuralNetworkModel(),
	ModelSVM:              NewSVMModel(),
	ModelAdaBoost:         NewParametricModel(adaBoostParams),
	ModelExtraTrees:       NewParametricModel(extraTreesParams),
	ModelXGBoost:          NewParametricModel(xgBoostParams),
}

// Predictors returns every model in canonical order.
func Predictors() []Predictor {
	out := make([]Predictor, 0, len(ModelOrder))
	for _, id := range ModelOrder {
		out = append(out, predictors[id])
	}
	return out
}

// ForModel returns the predictor for id. The ensemble is not a Predictor;
// use Ensemble for it.
func ForModel(id ModelID) (Predictor, error) {
	p, ok := predictors[id]
	if !ok {
		return nil, fmt.Errorf("no predictor for model %q", id)
	}
	return p, nil
}
