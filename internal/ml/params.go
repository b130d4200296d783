package ml

// ClinicalWeights weights the six clinical scores.
type ClinicalWeights struct {
	Tremor              float64
	Rigidity            float64
	Bradykinesia        float64
	PosturalInstability float64
	VoiceChanges        float64
	Handwriting         float64
}

// Apply returns the weighted sum of the clinical fields of fv.
func (w ClinicalWeights) Apply(fv FeatureVector) float64 {
	return fv.Tremor*w.Tremor +
		fv.Rigidity*w.Rigidity +
		fv.Bradykinesia*w.Bradykinesia +
		fv.PosturalInstability*w.PosturalInstability +
		fv.VoiceChanges*w.VoiceChanges +
		fv.Handwriting*w.Handwriting
}

// VoiceSteps are the fixed contributions added when a voice biomarker
// crosses its threshold.
type VoiceSteps struct {
	Jitter  float64
	Shimmer float64
	HNR     float64
	NHR     float64
}

// AdvancedSteps are the contributions of the nonlinear dysphonia measures.
type AdvancedSteps struct {
	Spread1 float64
	Spread2 float64
	D2      float64
	PPE     float64
	RPDE    float64
	DFA     float64
}

// Voice and advanced thresholds shared by every parameterized model.
const (
	jitterThreshold  = 0.0065
	shimmerThreshold = 0.035
	hnrThreshold     = 20.0
	nhrThreshold     = 0.025

	spread1Threshold = -5.5
	spread2Threshold = 0.25
	d2Threshold      = 2.5
	ppeThreshold     = 0.2
	rpdeThreshold    = 0.5
	dfaThreshold     = 0.72
)

// ModelParams is the coefficient table of a parameterized model.
type ModelParams struct {
	ID              ModelID
	Weights         ClinicalWeights
	AgeThreshold    float64
	AgeMultiplier   float64
	Baseline        float64
	Voice           VoiceSteps
	VoiceScale      float64
	Advanced        *AdvancedSteps
	StatusThreshold int
	Confidence      float64
	Importance      Importance
}

var gradientBoostingParams = ModelParams{
	ID:              ModelGradientBoosting,
	Weights:         ClinicalWeights{0.20, 0.15, 0.20, 0.15, 0.10, 0.10},
	AgeThreshold:    60,
	AgeMultiplier:   0.05,
	Baseline:        0.50,
	Voice:           VoiceSteps{0.15, 0.10, 0.10, 0.10},
	VoiceScale:      1.2,
	Advanced:        &AdvancedSteps{0.05, 0.03, 0.03, 0.05, 0.02, 0.02},
	StatusThreshold: 50,
	Confidence:      0.87,
	Importance:      importanceTable(0.22, 0.18, 0.24, 0.14, 0.12, 0.10),
}

var randomForestParams = ModelParams{
	ID:              ModelRandomForest,
	Weights:         ClinicalWeights{0.22, 0.18, 0.22, 0.14, 0.12, 0.12},
	AgeThreshold:    55,
	AgeMultiplier:   0.04,
	Baseline:        0.48,
	Voice:           VoiceSteps{0.12, 0.10, 0.08, 0.08},
	VoiceScale:      1.4,
	StatusThreshold: 52,
	Confidence:      0.83,
	Importance:      importanceTable(0.20, 0.19, 0.23, 0.15, 0.13, 0.10),
}

var adaBoostParams = ModelParams{
	ID:              ModelAdaBoost,
	Weights:         ClinicalWeights{0.18, 0.17, 0.21, 0.16, 0.14, 0.14},
	AgeThreshold:    58,
	AgeMultiplier:   0.04,
	Baseline:        0.49,
	Voice:           VoiceSteps{0.14, 0.11, 0.09, 0.09},
	VoiceScale:      1.3,
	Advanced:        &AdvancedSteps{0.04, 0.03, 0.03, 0.04, 0.02, 0.02},
	StatusThreshold: 45,
	Confidence:      0.85,
	Importance:      importanceTable(0.18, 0.18, 0.22, 0.17, 0.14, 0.11),
}

var extraTreesParams = ModelParams{
	ID:              ModelExtraTrees,
	Weights:         ClinicalWeights{0.21, 0.16, 0.19, 0.16, 0.14, 0.14},
	AgeThreshold:    56,
	AgeMultiplier:   0.05,
	Baseline:        0.51,
	Voice:           VoiceSteps{0.13, 0.12, 0.10, 0.09},
	VoiceScale:      1.2,
	Advanced:        &AdvancedSteps{0.05, 0.03, 0.02, 0.04, 0.03, 0.02},
	StatusThreshold: 48,
	Confidence:      0.90,
	Importance:      importanceTable(0.21, 0.17, 0.21, 0.16, 0.14, 0.11),
}

var xgBoostParams = ModelParams{
	ID:              ModelXGBoost,
	Weights:         ClinicalWeights{0.23, 0.17, 0.22, 0.14, 0.12, 0.12},
	AgeThreshold:    55,
	AgeMultiplier:   0.06,
	Baseline:        0.52,
	Voice:           VoiceSteps{0.16, 0.12, 0.10, 0.10},
	VoiceScale:      1.25,
	Advanced:        &AdvancedSteps{0.06, 0.04, 0.03, 0.05, 0.03, 0.03},
	StatusThreshold: 45,
	Confidence:      0.91,
	Importance:      importanceTable(0.23, 0.17, 0.22, 0.15, 0.13, 0.10),
}

// importanceTable builds an Importance in ClinicalFeatures order.
func importanceTable(tremor, rigidity, bradykinesia, postural, voice, handwriting float64) Importance {
	return Importance{
		FeatureTremor:              tremor,
		FeatureRigidity:            rigidity,
		FeatureBradykinesia:        bradykinesia,
		FeaturePosturalInstability: postural,
		FeatureVoiceChanges:        voice,
		FeatureHandwriting:         handwriting,
	}
}
