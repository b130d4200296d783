package ml

import "math"

// ensembleDivisor is the fixed denominator of the ensemble confidence. It
// does not track the number of models, so the confidence of the full
// seven-model ensemble exceeds 1.
const ensembleDivisor = 4.0

const ensembleConfidenceBoost = 1.05

// Ensemble runs every model in canonical order and aggregates the results.
func Ensemble(fv FeatureVector) EnsembleResult {
	results := make([]PredictionResult, 0, len(ModelOrder))
	for _, p := range Predictors() {
		results = append(results, p.Predict(fv))
	}
	return Aggregate(results)
}

// Aggregate combines per-model results weighted by their confidence.
//
// Feature importance is merged over the key set of the first result only.
// Keys that appear only in later results are dropped and a result missing
// a key contributes zero for it.
func Aggregate(results []PredictionResult) EnsembleResult {
	out := EnsembleResult{
		PredictionResult: PredictionResult{ModelUsed: ModelEnsemble},
		ModelResults:     results,
		Summary:          Summarize(results),
	}
	if len(results) == 0 {
		return out
	}

	var total, risk, prob, status float64
	for _, r := range results {
		total += r.Confidence
		risk += float64(r.RiskScore) * r.Confidence
		prob += r.Probability * r.Confidence
		status += float64(r.Status) * r.Confidence
	}
	if total == 0 {
		return out
	}

	importance := make(Importance, len(results[0].FeatureImportance))
	for f := range results[0].FeatureImportance {
		sum := 0.0
		for _, r := range results {
			sum += r.FeatureImportance[f] * r.Confidence
		}
		importance[f] = sum / total
	}

	out.RiskScore = scoreOf(risk / total)
	out.Probability = prob / total
	if status/total >= 0.5 {
		out.Status = 1
	}
	out.Confidence = total / ensembleDivisor * ensembleConfidenceBoost
	out.FeatureImportance = importance
	return out
}

// Summarize reports how far the models agree. ProbabilityStd is the
// population standard deviation.
func Summarize(results []PredictionResult) Summary {
	n := len(results)
	if n == 0 {
		return Summary{}
	}

	var probSum float64
	positives := 0
	for _, r := range results {
		probSum += r.Probability
		if r.Status == 1 {
			positives++
		}
	}
	mean := probSum / float64(n)

	var variance float64
	for _, r := range results {
		d := r.Probability - mean
		variance += d * d
	}
	variance /= float64(n)

	ratio := float64(positives) / float64(n)
	return Summary{
		TotalModels:         n,
		ConsensusPrediction: int(math.RoundToEven(ratio)),
		AverageProbability:  mean,
		ProbabilityStd:      math.Sqrt(variance),
		AgreementRatio:      ratio,
	}
}
