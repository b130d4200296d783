package ml

import (
	"time"

	"github.com/rs/zerolog/log"
)

// MetricsInterface is the subset of service metrics the engine reports to.
type MetricsInterface interface {
	PredictionsInc(model string)
	PredictionLatencyObserve(seconds float64)
	RiskScoreObserve(model string, score float64)
	PositiveStatusInc(model string)
}

// Engine wraps the pure predictors with metrics, debug logging and
// importance tracking. Both collaborators are optional.
type Engine struct {
	metrics MetricsInterface
	tracker *ImportanceTracker
}

// NewEngine creates an engine. metrics and tracker may be nil.
func NewEngine(metrics MetricsInterface, tracker *ImportanceTracker) *Engine {
	return &Engine{metrics: metrics, tracker: tracker}
}

// Predict scores fv with a single model. ModelEnsemble is accepted and
// returns the aggregate without the per-model breakdown.
func (e *Engine) Predict(id ModelID, fv FeatureVector) (PredictionResult, error) {
	if id == ModelEnsemble {
		return e.Ensemble(fv).PredictionResult, nil
	}

	p, err := ForModel(id)
	if err != nil {
		return PredictionResult{}, err
	}
	return e.predictWith(p, fv), nil
}

// PredictBest scores fv with the model SelectBestModel picks for it.
func (e *Engine) PredictBest(fv FeatureVector) PredictionResult {
	return e.predictWith(predictors[SelectBestModel(fv)], fv)
}

func (e *Engine) predictWith(p Predictor, fv FeatureVector) PredictionResult {
	start := time.Now()
	res := p.Predict(fv)
	e.record(start, fv, res)
	return res
}

// Ensemble runs every model and aggregates the results.
func (e *Engine) Ensemble(fv FeatureVector) EnsembleResult {
	start := time.Now()
	res := Ensemble(fv)
	e.record(start, fv, res.PredictionResult)
	return res
}

// Assess runs the clinical checklist assessment.
func (e *Engine) Assess(s ClinicalSymptoms, voice *AcousticFeatures) Assessment {
	start := time.Now()
	res := AssessClinical(s, voice)

	if e.metrics != nil {
		e.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
		e.metrics.PredictionsInc(string(res.ModelUsed))
		e.metrics.RiskScoreObserve(string(res.ModelUsed), res.RiskScore)
		if res.Prediction == 1 {
			e.metrics.PositiveStatusInc(string(res.ModelUsed))
		}
	}

	log.Debug().
		Str("model", string(res.ModelUsed)).
		Float64("risk_score", res.RiskScore).
		Float64("clinical_risk", res.ClinicalRisk).
		Bool("voice", res.HasVoiceData).
		Msg("Clinical assessment")

	return res
}

// Tracker returns the importance tracker, or nil.
func (e *Engine) Tracker() *ImportanceTracker {
	return e.tracker
}

func (e *Engine) record(start time.Time, fv FeatureVector, res PredictionResult) {
	elapsed := time.Since(start)

	if e.metrics != nil {
		model := string(res.ModelUsed)
		e.metrics.PredictionLatencyObserve(elapsed.Seconds())
		e.metrics.PredictionsInc(model)
		e.metrics.RiskScoreObserve(model, float64(res.RiskScore))
		if res.Status == 1 {
			e.metrics.PositiveStatusInc(model)
		}
	}

	if e.tracker != nil {
		e.tracker.Observe(fv, res.FeatureImportance)
	}

	log.Debug().
		Str("model", string(res.ModelUsed)).
		Int("risk_score", res.RiskScore).
		Float64("probability", res.Probability).
		Int("status", res.Status).
		Dur("latency", elapsed).
		Msg("Prediction")
}
