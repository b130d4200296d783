// Package evaluation scores labelled samples with every model and reports
// how well each one separates the classes.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"parkinson-insight/internal/ml"
)

// Scorer runs the full ensemble on one feature vector. The local engine
// and the remote client both satisfy it through ScorerFunc.
type Scorer interface {
	Ensemble(fv ml.FeatureVector) (ml.EnsembleResult, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(fv ml.FeatureVector) (ml.EnsembleResult, error)

// Ensemble calls f.
func (f ScorerFunc) Ensemble(fv ml.FeatureVector) (ml.EnsembleResult, error) {
	return f(fv)
}

// LocalScorer scores in-process through engine.
func LocalScorer(engine *ml.Engine) Scorer {
	return ScorerFunc(func(fv ml.FeatureVector) (ml.EnsembleResult, error) {
		return engine.Ensemble(fv), nil
	})
}

// Prediction is one model's verdict on one sample.
type Prediction struct {
	SampleID    string     `json:"sample_id"`
	Label       int        `json:"label"`
	Model       ml.ModelID `json:"model"`
	Status      int        `json:"status"`
	RiskScore   int        `json:"risk_score"`
	Probability float64    `json:"probability"`
}

// ModelStats is the confusion matrix of one model and the rates derived
// from it.
type ModelStats struct {
	Model          ml.ModelID `json:"model"`
	TruePositives  int        `json:"true_positives"`
	FalsePositives int        `json:"false_positives"`
	TrueNegatives  int        `json:"true_negatives"`
	FalseNegatives int        `json:"false_negatives"`
	Accuracy       float64    `json:"accuracy"`
	Precision      float64    `json:"precision"`
	Recall         float64    `json:"recall"`
	F1             float64    `json:"f1"`
	ApprovalRate   float64    `json:"approval_rate"`
	MeanRiskScore  float64    `json:"mean_risk_score"`

	riskSum float64
}

// Total is the number of samples the model scored.
func (s *ModelStats) Total() int {
	return s.TruePositives + s.FalsePositives + s.TrueNegatives + s.FalseNegatives
}

func (s *ModelStats) add(label, status, risk int) {
	switch {
	case status == 1 && label == 1:
		s.TruePositives++
	case status == 1:
		s.FalsePositives++
	case label == 1:
		s.FalseNegatives++
	default:
		s.TrueNegatives++
	}
	s.riskSum += float64(risk)
}

func (s *ModelStats) finalize() {
	n := s.Total()
	if n == 0 {
		return
	}
	s.Accuracy = float64(s.TruePositives+s.TrueNegatives) / float64(n)
	s.ApprovalRate = float64(s.TruePositives+s.FalsePositives) / float64(n)
	s.MeanRiskScore = s.riskSum / float64(n)
	s.Precision = ratio(s.TruePositives, s.TruePositives+s.FalsePositives)
	s.Recall = ratio(s.TruePositives, s.TruePositives+s.FalseNegatives)
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Results holds evaluation results. Models lists the individual models in
// canonical order followed by the ensemble.
type Results struct {
	Samples     int          `json:"samples"`
	Positives   int          `json:"positives"`
	Failed      int          `json:"failed"`
	Models      []ModelStats `json:"models"`
	Predictions []Prediction `json:"-"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
}

// Best returns the stats of the model with the highest F1, or false when
// nothing was scored.
func (r *Results) Best() (ModelStats, bool) {
	var best ModelStats
	found := false
	for _, s := range r.Models {
		if s.Total() == 0 {
			continue
		}
		if !found || s.F1 > best.F1 {
			best = s
			found = true
		}
	}
	return best, found
}

// Evaluator runs every sample of a loader through a scorer.
type Evaluator struct {
	scorer Scorer
	data   *DataLoader
}

// NewEvaluator creates an evaluator.
func NewEvaluator(scorer Scorer, data *DataLoader) *Evaluator {
	return &Evaluator{scorer: scorer, data: data}
}

// Run scores every sample. A sample whose scoring fails is counted and
// skipped. Run stops early when ctx is cancelled.
func (e *Evaluator) Run(ctx context.Context) (*Results, error) {
	samples := e.data.Samples()
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to evaluate")
	}

	log.Info().Int("samples", len(samples)).Msg("Starting evaluation")

	order := append(append([]ml.ModelID{}, ml.ModelOrder...), ml.ModelEnsemble)
	stats := make(map[ml.ModelID]*ModelStats, len(order))
	for _, id := range order {
		stats[id] = &ModelStats{Model: id}
	}

	res := &Results{StartTime: time.Now()}
	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ens, err := e.scorer.Ensemble(s.Features)
		if err != nil {
			log.Warn().Err(err).Str("sample", s.ID).Msg("Scoring failed")
			res.Failed++
			continue
		}

		res.Samples++
		res.Positives += s.Label
		for _, r := range append(ens.ModelResults, ens.PredictionResult) {
			st, ok := stats[r.ModelUsed]
			if !ok {
				continue
			}
			st.add(s.Label, r.Status, r.RiskScore)
			res.Predictions = append(res.Predictions, Prediction{
				SampleID:    s.ID,
				Label:       s.Label,
				Model:       r.ModelUsed,
				Status:      r.Status,
				RiskScore:   r.RiskScore,
				Probability: r.Probability,
			})
		}

		if (i+1)%500 == 0 {
			log.Info().Int("done", i+1).Int("total", len(samples)).Msg("Evaluation progress")
		}
	}
	res.EndTime = time.Now()

	for _, id := range order {
		st := stats[id]
		st.finalize()
		res.Models = append(res.Models, *st)
	}

	log.Info().
		Int("scored", res.Samples).
		Int("failed", res.Failed).
		Dur("duration", res.EndTime.Sub(res.StartTime)).
		Msg("Evaluation complete")

	return res, nil
}
