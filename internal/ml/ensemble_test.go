package ml

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsemble_RunsEveryModelInOrder(t *testing.T) {
	res := Ensemble(uniformClinical(5, 62))

	require.Len(t, res.ModelResults, len(ModelOrder))
	for i, id := range ModelOrder {
		assert.Equal(t, id, res.ModelResults[i].ModelUsed)
	}
	assert.Equal(t, ModelEnsemble, res.ModelUsed)
	assert.Equal(t, len(ModelOrder), res.Summary.TotalModels)
}

func TestEnsemble_ConfidenceUsesFixedDivisor(t *testing.T) {
	res := Ensemble(uniformClinical(3, 55))

	total := 0.0
	for _, r := range res.ModelResults {
		total += r.Confidence
	}
	assert.Equal(t, (total/4)*1.05, res.Confidence)
	assert.InDelta(t, 6.07/4*1.05, res.Confidence, 1e-12)
	assert.Greater(t, res.Confidence, 1.0)
}

func TestEnsemble_RiskScoreIsWeightedMean(t *testing.T) {
	inputs := []FeatureVector{
		uniformClinical(0, 30),
		uniformClinical(3, 55),
		uniformClinical(7, 72),
		uniformClinical(10, 90).WithAcoustic(severeVoice()),
		uniformClinical(4, 61).WithAcoustic(DefaultAcousticFeatures()),
	}

	for _, fv := range inputs {
		res := Ensemble(fv)

		var weighted, total float64
		for _, r := range res.ModelResults {
			weighted += float64(r.RiskScore) * r.Confidence
			total += r.Confidence
		}
		assert.InDelta(t, weighted/total, float64(res.RiskScore), 1)
	}
}

func TestEnsemble_StatusIsWeightedVote(t *testing.T) {
	low := Ensemble(uniformClinical(0, 30))
	assert.Equal(t, 0, low.Status)

	high := Ensemble(uniformClinical(10, 90).WithAcoustic(severeVoice()))
	assert.Equal(t, 1, high.Status)
	assert.Equal(t, 1, high.Summary.ConsensusPrediction)
	assert.Equal(t, 1.0, high.Summary.AgreementRatio)
}

func TestAggregate_ImportanceUsesFirstKeySet(t *testing.T) {
	results := []PredictionResult{
		{Confidence: 1, FeatureImportance: Importance{FeatureTremor: 0.4, FeatureRigidity: 0.6}},
		{Confidence: 1, FeatureImportance: Importance{FeatureTremor: 0.2, FeatureHandwriting: 0.8}},
	}

	res := Aggregate(results)

	require.Len(t, res.FeatureImportance, 2)
	assert.InDelta(t, 0.3, res.FeatureImportance[FeatureTremor], 1e-12)
	// The second result lacks rigidity and contributes zero for it.
	assert.InDelta(t, 0.3, res.FeatureImportance[FeatureRigidity], 1e-12)
	assert.NotContains(t, res.FeatureImportance, FeatureHandwriting)
}

func TestAggregate_WeightsByConfidence(t *testing.T) {
	results := []PredictionResult{
		{RiskScore: 80, Probability: 0.8, Status: 1, Confidence: 3},
		{RiskScore: 20, Probability: 0.2, Status: 0, Confidence: 1},
	}

	res := Aggregate(results)

	assert.Equal(t, 65, res.RiskScore)
	assert.InDelta(t, 0.65, res.Probability, 1e-12)
	assert.Equal(t, 1, res.Status)
	assert.InDelta(t, 4.0/4*1.05, res.Confidence, 1e-12)
}

func TestAggregate_StatusTieIsPositive(t *testing.T) {
	res := Aggregate([]PredictionResult{
		{Status: 1, Confidence: 1},
		{Status: 0, Confidence: 1},
	})
	assert.Equal(t, 1, res.Status)
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil)

	assert.Equal(t, 0, res.RiskScore)
	assert.Equal(t, 0.0, res.Probability)
	assert.Equal(t, 0.0, res.Confidence)
	assert.False(t, math.IsNaN(res.Summary.AverageProbability))
	assert.False(t, math.IsNaN(res.Summary.ProbabilityStd))
	assert.Equal(t, ModelEnsemble, res.ModelUsed)
}

func TestAggregate_ZeroConfidence(t *testing.T) {
	res := Aggregate([]PredictionResult{{RiskScore: 50, Probability: 0.5}})
	assert.Equal(t, 0, res.RiskScore)
	assert.False(t, math.IsNaN(res.Probability))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]PredictionResult{
		{Probability: 0.2, Status: 0},
		{Probability: 0.4, Status: 0},
		{Probability: 0.6, Status: 1},
		{Probability: 0.8, Status: 1},
	})

	assert.Equal(t, 4, s.TotalModels)
	assert.InDelta(t, 0.5, s.AverageProbability, 1e-12)
	assert.InDelta(t, math.Sqrt(0.05), s.ProbabilityStd, 1e-12)
	assert.Equal(t, 0.5, s.AgreementRatio)
	assert.Equal(t, 0, s.ConsensusPrediction, "a tie rounds to even")

	s = Summarize([]PredictionResult{{Status: 1}, {Status: 1}, {Status: 0}})
	assert.Equal(t, 1, s.ConsensusPrediction)
}

func TestEnsemble_ConcurrentCallsMatchSerial(t *testing.T) {
	fv := uniformClinical(6, 67).WithAcoustic(DefaultAcousticFeatures())
	want := Ensemble(fv)

	var wg sync.WaitGroup
	results := make([]EnsembleResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Ensemble(fv)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
