package ml

import "math"

// hiddenUnit is one tanh unit of the hand-wired network. Weights follow
// ClinicalFeatures order, then age.
type hiddenUnit struct {
	weights [6]float64
	age     float64
	bias    float64
}

func (u hiddenUnit) activate(in [6]float64, age float64) float64 {
	z := u.bias + u.age*age
	for i, w := range u.weights {
		z += w * in[i]
	}
	return math.Tanh(z)
}

// NeuralNetworkModel feeds normalized clinical inputs through two tanh
// units and a sigmoid output, then adds a voice adjustment.
type NeuralNetworkModel struct {
	hidden          [2]hiddenUnit
	outWeights      [2]float64
	outBias         float64
	statusThreshold float64
	confidence      float64
	importance      Importance
}

// NewNeuralNetworkModel returns the network with its fixed weights.
func NewNeuralNetworkModel() *NeuralNetworkModel {
	return &NeuralNetworkModel{
		hidden: [2]hiddenUnit{
			{weights: [6]float64{0.8, 0.6, 0.9, 0.5, 0.3, 0.3}, age: 0.4, bias: -1.2},
			{weights: [6]float64{0.4, 0.7, 0.5, 0.8, 0.6, 0.5}, age: 0.6, bias: -1.0},
		},
		outWeights:      [2]float64{1.6, 1.3},
		outBias:         0.1,
		statusThreshold: 0.48,
		confidence:      0.89,
		importance:      importanceTable(0.21, 0.17, 0.22, 0.16, 0.15, 0.09),
	}
}

func (m *NeuralNetworkModel) ID() ModelID {
	return ModelNeuralNetwork
}

// Predict implements Predictor.
func (m *NeuralNetworkModel) Predict(fv FeatureVector) PredictionResult {
	var in [6]float64
	for i, f := range ClinicalFeatures {
		in[i] = fv.Clinical(f) / 10
	}
	age := (fv.Age - 60) / 20

	h1 := m.hidden[0].activate(in, age)
	h2 := m.hidden[1].activate(in, age)
	out := sigmoid(m.outWeights[0]*h1 + m.outWeights[1]*h2 + m.outBias)

	probability := capProbability(out + m.voiceAdjustment(fv))

	status := 0
	if probability > m.statusThreshold {
		status = 1
	}

	return PredictionResult{
		RiskScore:         scoreOf(probability * 100),
		Probability:       probability,
		Status:            status,
		ModelUsed:         ModelNeuralNetwork,
		Confidence:        m.confidence,
		FeatureImportance: m.importance.Clone(),
	}
}

// voiceAdjustment blends normalized jitter, shimmer and HNR. It can be
// negative for a clean voice.
func (m *NeuralNetworkModel) voiceAdjustment(fv FeatureVector) float64 {
	if !fv.HasVoice() {
		return 0
	}
	adj := 0.10 * (*fv.MDVPJitter/0.01 - 0.5)
	if fv.MDVPShimmer != nil {
		adj += 0.08 * (*fv.MDVPShimmer/0.05 - 0.5)
	}
	if fv.HNR != nil {
		adj += 0.07 * ((20 - *fv.HNR) / 20)
	}
	return adj
}
