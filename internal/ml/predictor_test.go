package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func severeVoice() AcousticFeatures {
	return AcousticFeatures{
		MDVPFo:      Float(150),
		MDVPFhi:     Float(190),
		MDVPFlo:     Float(100),
		MDVPJitter:  Float(0.03),
		MDVPShimmer: Float(0.05),
		NHR:         Float(0.05),
		HNR:         Float(10),
		RPDE:        Float(0.6),
		DFA:         Float(0.8),
		Spread1:     Float(-3),
		Spread2:     Float(0.4),
		D2:          Float(3),
		PPE:         Float(0.4),
	}
}

func uniformClinical(v, age float64) FeatureVector {
	return FeatureVector{
		Tremor:              v,
		Rigidity:            v,
		Bradykinesia:        v,
		PosturalInstability: v,
		VoiceChanges:        v,
		Handwriting:         v,
		Age:                 age,
	}
}

func TestGradientBoosting_WorkedExample(t *testing.T) {
	fv := FeatureVector{
		Tremor:              8,
		Rigidity:            7,
		Bradykinesia:        9,
		PosturalInstability: 6,
		VoiceChanges:        5,
		Handwriting:         4,
		Age:                 70,
	}

	p, err := ForModel(ModelGradientBoosting)
	require.NoError(t, err)

	res := p.Predict(fv)
	assert.Equal(t, 100, res.RiskScore, "round(112.5) must be capped")
	assert.Equal(t, 1, res.Status)
	assert.InDelta(t, 0.50, res.Probability, 1e-12, "no voice means baseline probability")
	assert.Equal(t, ModelGradientBoosting, res.ModelUsed)
	assert.Equal(t, 0.87, res.Confidence)
}

func TestGradientBoosting_VoiceBranch(t *testing.T) {
	fv := uniformClinical(5, 50).WithAcoustic(AcousticFeatures{
		MDVPFo:      Float(120),
		MDVPJitter:  Float(0.01),
		MDVPShimmer: Float(0.02),
		HNR:         Float(15),
		NHR:         Float(0.01),
	})

	res := NewParametricModel(gradientBoostingParams).Predict(fv)

	// jitter and HNR cross their thresholds: 0.15 + 0.10.
	assert.InDelta(t, 0.5+0.25*1.2, res.Probability, 1e-12)
	assert.Equal(t, 70, res.RiskScore)
	assert.Equal(t, 1, res.Status)
}

func TestRandomForest_IgnoresAdvancedFeatures(t *testing.T) {
	base := uniformClinical(4, 65)
	advanced := base.WithAcoustic(AcousticFeatures{
		Spread1: Float(-2),
		Spread2: Float(0.5),
		D2:      Float(3.5),
		PPE:     Float(0.5),
		RPDE:    Float(0.7),
		DFA:     Float(0.9),
	})

	rf := NewParametricModel(randomForestParams)
	assert.Equal(t, rf.Predict(base), rf.Predict(advanced))

	gb := NewParametricModel(gradientBoostingParams)
	assert.Greater(t, gb.Predict(advanced).RiskScore, gb.Predict(base).RiskScore)
}

func TestNeuralNetwork_Baseline(t *testing.T) {
	res := NewNeuralNetworkModel().Predict(uniformClinical(0, 60))

	h1 := math.Tanh(-1.2)
	h2 := math.Tanh(-1.0)
	want := 1 / (1 + math.Exp(-(1.6*h1 + 1.3*h2 + 0.1)))

	assert.InDelta(t, want, res.Probability, 1e-12)
	assert.Equal(t, 10, res.RiskScore)
	assert.Equal(t, 0, res.Status)
	assert.Equal(t, 0.89, res.Confidence)
}

func TestSVM_Distance(t *testing.T) {
	svm := NewSVMModel()

	tests := []struct {
		name     string
		fv       FeatureVector
		distance float64
		status   int
	}{
		{"zero input at boundary age", uniformClinical(0, 60), -0.45, 0},
		{"moderate symptoms older patient", uniformClinical(5, 70), 0.5 + 0.6 - 0.45, 1},
		{"young patient pulled below", uniformClinical(5, 40), 0.5 - 0.6 - 0.45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.distance, svm.Distance(tt.fv), 1e-12)

			res := svm.Predict(tt.fv)
			assert.Equal(t, tt.status, res.Status)
			assert.InDelta(t, 1/(1+math.Exp(-5*tt.distance)), res.Probability, 1e-12)
		})
	}
}

func TestSVM_VoiceKernelPeaksAtCenter(t *testing.T) {
	svm := NewSVMModel()
	base := uniformClinical(0, 60)

	centred := base.WithAcoustic(AcousticFeatures{
		MDVPFo:      Float(140),
		MDVPJitter:  Float(0.012),
		MDVPShimmer: Float(0.05),
	})
	assert.InDelta(t, -0.45+0.5, svm.Distance(centred), 1e-12)

	offCentre := base.WithAcoustic(AcousticFeatures{
		MDVPFo:     Float(140),
		MDVPJitter: Float(0.02),
	})
	assert.Less(t, svm.Distance(offCentre), svm.Distance(centred))
}

func TestPredictors_UpperClampsFire(t *testing.T) {
	fv := uniformClinical(10, 100).WithAcoustic(severeVoice())

	for _, p := range Predictors() {
		t.Run(string(p.ID()), func(t *testing.T) {
			res := p.Predict(fv)
			assert.Equal(t, 100, res.RiskScore)
			assert.LessOrEqual(t, res.Probability, 1.0)
			if p.ID() != ModelSVM {
				// Uncapped these would exceed 1.
				assert.Equal(t, 1.0, res.Probability)
			}
		})
	}
}

func TestPredictors_HugeScoresStayCapped(t *testing.T) {
	fv := uniformClinical(1e19, 70)

	for _, p := range Predictors() {
		t.Run(string(p.ID()), func(t *testing.T) {
			res := p.Predict(fv)
			assert.Equal(t, 1, res.Status)
			if p.ID() == ModelNeuralNetwork {
				// Both hidden units saturate, so the output tops out below 1.
				assert.Equal(t, 95, res.RiskScore)
				return
			}
			assert.Equal(t, 100, res.RiskScore)
		})
	}

	// Six models at 100 and the network at 95, weighted by confidence.
	ens := Ensemble(fv)
	assert.Equal(t, 99, ens.RiskScore)
	assert.Equal(t, 1, ens.Status)

	for _, r := range Ensemble(uniformClinical(-1e19, 70)).ModelResults {
		assert.LessOrEqual(t, r.RiskScore, 100, r.ModelUsed)
		assert.Equal(t, 0, r.Status, r.ModelUsed)
	}
}

func TestPredictors_LowerClampsDoNotFire(t *testing.T) {
	fv := uniformClinical(-10, 0)

	for _, id := range []ModelID{
		ModelGradientBoosting, ModelRandomForest, ModelAdaBoost, ModelExtraTrees, ModelXGBoost,
	} {
		t.Run(string(id), func(t *testing.T) {
			p, err := ForModel(id)
			require.NoError(t, err)
			assert.Negative(t, p.Predict(fv).RiskScore)
		})
	}

	t.Run("neural_network", func(t *testing.T) {
		nn := fv.WithAcoustic(AcousticFeatures{
			MDVPFo:      Float(100),
			MDVPJitter:  Float(0),
			MDVPShimmer: Float(0),
			HNR:         Float(100),
		})
		res := NewNeuralNetworkModel().Predict(nn)
		assert.Negative(t, res.Probability)
		assert.Equal(t, -31, res.RiskScore)
	})
}

func TestPredictors_VoiceGateRequiresFoAndJitter(t *testing.T) {
	base := uniformClinical(5, 65)

	withoutJitter := base.WithAcoustic(AcousticFeatures{
		MDVPFo:      Float(150),
		MDVPShimmer: Float(0.08),
		HNR:         Float(5),
		NHR:         Float(0.1),
	})
	withoutFo := base.WithAcoustic(AcousticFeatures{
		MDVPJitter:  Float(0.03),
		MDVPShimmer: Float(0.08),
		HNR:         Float(5),
		NHR:         Float(0.1),
	})
	gated := base.WithAcoustic(AcousticFeatures{
		MDVPFo:      Float(150),
		MDVPJitter:  Float(0.03),
		MDVPShimmer: Float(0.08),
		HNR:         Float(5),
		NHR:         Float(0.1),
	})

	for _, p := range Predictors() {
		t.Run(string(p.ID()), func(t *testing.T) {
			want := p.Predict(base)
			assert.Equal(t, want, p.Predict(withoutJitter))
			assert.Equal(t, want, p.Predict(withoutFo))
			assert.NotEqual(t, want.Probability, p.Predict(gated).Probability)
		})
	}
}

func TestPredictors_Idempotent(t *testing.T) {
	fv := uniformClinical(6, 68).WithAcoustic(DefaultAcousticFeatures())

	for _, p := range Predictors() {
		first := p.Predict(fv)
		second := p.Predict(fv)
		assert.Equal(t, first, second, string(p.ID()))
	}
}

func TestPredictors_ImportanceIsNotShared(t *testing.T) {
	p, err := ForModel(ModelXGBoost)
	require.NoError(t, err)

	res := p.Predict(FeatureVector{})
	res.FeatureImportance[FeatureTremor] = 42

	assert.Equal(t, 0.23, p.Predict(FeatureVector{}).FeatureImportance[FeatureTremor])
}

func TestPredictors_ImportanceSumsToOne(t *testing.T) {
	for _, p := range Predictors() {
		imp := p.Predict(FeatureVector{}).FeatureImportance
		require.Len(t, imp, len(ClinicalFeatures))

		sum := 0.0
		for _, v := range imp {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, string(p.ID()))
	}
}

func TestPredictors_NaNDoesNotPanic(t *testing.T) {
	fv := uniformClinical(math.NaN(), math.NaN())
	for _, p := range Predictors() {
		assert.NotPanics(t, func() { p.Predict(fv) }, string(p.ID()))
	}
}

func TestForModel_Unknown(t *testing.T) {
	_, err := ForModel("linear_regression")
	assert.Error(t, err)

	_, err = ForModel(ModelEnsemble)
	assert.Error(t, err)
}

func TestParseModelID(t *testing.T) {
	for _, id := range ModelOrder {
		got, err := ParseModelID(string(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	got, err := ParseModelID("ensemble")
	require.NoError(t, err)
	assert.Equal(t, ModelEnsemble, got)

	_, err = ParseModelID("XGBoost")
	assert.Error(t, err)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 113.0, roundHalfUp(112.5))
	assert.Equal(t, -2.0, roundHalfUp(-2.5))
	assert.Equal(t, 0.0, roundHalfUp(-0.4))
	assert.Equal(t, 1.0, roundHalfUp(0.5))
	assert.Equal(t, 0.0, roundHalfUp(0.49999999999999994))
}

func TestToIntSaturates(t *testing.T) {
	assert.Equal(t, 42, toInt(42))
	assert.Equal(t, math.MaxInt, toInt(1e300))
	assert.Equal(t, math.MinInt, toInt(-1e300))
}

func TestScoreOf(t *testing.T) {
	assert.Equal(t, 100, scoreOf(100.4))
	assert.Equal(t, 100, scoreOf(1e19))
	assert.Equal(t, 100, scoreOf(math.Inf(1)))
	assert.Equal(t, 42, scoreOf(41.5))
	assert.Equal(t, -7, scoreOf(-7.2))
	assert.Equal(t, math.MinInt, scoreOf(-1e19))
}
