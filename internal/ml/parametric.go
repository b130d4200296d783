package ml

// ParametricModel evaluates the shared tree-ensemble style formula with a
// model-specific coefficient table.
type ParametricModel struct {
	params ModelParams
}

// NewParametricModel creates a model from its coefficient table.
func NewParametricModel(params ModelParams) *ParametricModel {
	return &ParametricModel{params: params}
}

func (m *ParametricModel) ID() ModelID {
	return m.params.ID
}

// Params returns the coefficient table.
func (m *ParametricModel) Params() ModelParams {
	return m.params
}

// Predict implements Predictor.
func (m *ParametricModel) Predict(fv FeatureVector) PredictionResult {
	p := m.params

	clinicalScore := p.Weights.Apply(fv)

	ageRisk := 0.0
	if fv.Age > p.AgeThreshold {
		ageRisk = (fv.Age - p.AgeThreshold) * p.AgeMultiplier
	}

	voiceScore := 0.0
	probability := p.Baseline
	if fv.HasVoice() {
		voiceScore = voiceSteps(fv, p.Voice)
		probability = p.Baseline + voiceScore*p.VoiceScale
	}

	advancedScore := 0.0
	if p.Advanced != nil {
		advancedScore = advancedSteps(fv, *p.Advanced)
	}

	riskScore := scoreOf((clinicalScore/10 + ageRisk + voiceScore + advancedScore) * 100)

	status := 0
	if riskScore > p.StatusThreshold {
		status = 1
	}

	return PredictionResult{
		RiskScore:         riskScore,
		Probability:       capProbability(probability),
		Status:            status,
		ModelUsed:         p.ID,
		Confidence:        p.Confidence,
		FeatureImportance: p.Importance.Clone(),
	}
}

// voiceSteps sums the threshold contributions of the basic voice
// biomarkers. The caller has already checked the Fo/jitter gate.
func voiceSteps(fv FeatureVector, s VoiceSteps) float64 {
	return stepAbove(fv.MDVPJitter, jitterThreshold, s.Jitter) +
		stepAbove(fv.MDVPShimmer, shimmerThreshold, s.Shimmer) +
		stepBelow(fv.HNR, hnrThreshold, s.HNR) +
		stepAbove(fv.NHR, nhrThreshold, s.NHR)
}

// advancedSteps sums the nonlinear dysphonia contributions. Each term only
// needs its own field.
func advancedSteps(fv FeatureVector, s AdvancedSteps) float64 {
	return stepAbove(fv.Spread1, spread1Threshold, s.Spread1) +
		stepAbove(fv.Spread2, spread2Threshold, s.Spread2) +
		stepAbove(fv.D2, d2Threshold, s.D2) +
		stepAbove(fv.PPE, ppeThreshold, s.PPE) +
		stepAbove(fv.RPDE, rpdeThreshold, s.RPDE) +
		stepAbove(fv.DFA, dfaThreshold, s.DFA)
}
