package ml

import "math"

// SVMModel scores the signed distance from a fixed decision boundary. The
// voice term uses RBF kernels centred on typical parkinsonian jitter and
// shimmer.
type SVMModel struct {
	weights    ClinicalWeights
	bias       float64
	slope      float64
	confidence float64
	importance Importance
}

// NewSVMModel returns the SVM with its fixed coefficients.
func NewSVMModel() *SVMModel {
	return &SVMModel{
		weights:    ClinicalWeights{0.20, 0.15, 0.25, 0.15, 0.15, 0.10},
		bias:       0.45,
		slope:      5,
		confidence: 0.82,
		importance: importanceTable(0.19, 0.16, 0.26, 0.15, 0.14, 0.10),
	}
}

func (m *SVMModel) ID() ModelID {
	return ModelSVM
}

// Predict implements Predictor.
func (m *SVMModel) Predict(fv FeatureVector) PredictionResult {
	distance := m.Distance(fv)
	probability := capProbability(sigmoid(m.slope * distance))

	status := 0
	if distance > 0 {
		status = 1
	}

	return PredictionResult{
		RiskScore:         scoreOf(probability * 100),
		Probability:       probability,
		Status:            status,
		ModelUsed:         ModelSVM,
		Confidence:        m.confidence,
		FeatureImportance: m.importance.Clone(),
	}
}

// Distance returns the pre-sigmoid signed distance from the boundary.
func (m *SVMModel) Distance(fv FeatureVector) float64 {
	clinical := m.weights.Apply(fv) / 10

	var age float64
	if fv.Age > 60 {
		age = (fv.Age - 60) * 0.06
	} else {
		age = (fv.Age - 60) * 0.03
	}

	voice := 0.0
	if fv.HasVoice() {
		voice = 0.30 * rbf(*fv.MDVPJitter, 0.012, 0.00005)
		if fv.MDVPShimmer != nil {
			voice += 0.20 * rbf(*fv.MDVPShimmer, 0.05, 0.001)
		}
	}

	return clinical + age + voice - m.bias
}

func rbf(x, center, width float64) float64 {
	d := x - center
	return math.Exp(-(d * d) / width)
}
