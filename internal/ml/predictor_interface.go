// Package ml provides the Parkinson's risk-scoring engine: seven fixed
// closed-form predictors, a confidence-weighted ensemble, a heuristic model
// selector and a clinical symptom assessment.
//
// Every predictor is a pure function of its FeatureVector. None of them
// hold mutable state, so they can be shared freely across goroutines.
package ml

// Predictor is implemented by every scoring model.
type Predictor interface {
	// ID returns the wire name of the model.
	ID() ModelID

	// Predict scores a feature vector. It never fails: malformed but
	// numeric input propagates through the arithmetic.
	Predict(fv FeatureVector) PredictionResult
}
