package ml

import "math"

// Model names reported by AssessClinical.
const (
	ModelClinicalAssessment   ModelID = "clinical_assessment"
	ModelEnsembleWithClinical ModelID = "ensemble_with_clinical"
)

// symptomScore is the clinical score assigned to a reported symptom.
const symptomScore = 6.0

// Share of the ensemble in a combined assessment. The clinical checklist
// takes the rest.
const ensembleShare = 0.6

// ClinicalSymptoms is the yes/no symptom checklist filled in by a patient.
type ClinicalSymptoms struct {
	Tremor              bool `json:"tremor"`
	Rigidity            bool `json:"rigidity"`
	Bradykinesia        bool `json:"bradykinesia"`
	PosturalInstability bool `json:"posturalInstability"`
	VoiceChanges        bool `json:"voiceChanges"`
	Handwriting         bool `json:"handwriting"`
	Age                 int  `json:"age"`
}

// Assessment is the result of a checklist assessment, optionally blended
// with the ensemble when voice data is available.
type Assessment struct {
	Prediction        int        `json:"prediction"`
	Probability       float64    `json:"probability"`
	RiskScore         float64    `json:"riskScore"`
	ClinicalRisk      float64    `json:"clinicalRisk"`
	ModelUsed         ModelID    `json:"modelUsed"`
	FeatureImportance Importance `json:"featureImportance,omitempty"`
	HasVoiceData      bool       `json:"hasVoiceData"`
}

// SymptomsToFeatures maps the checklist onto clinical scores: a reported
// symptom scores 6, an absent one 0.
func SymptomsToFeatures(s ClinicalSymptoms) FeatureVector {
	score := func(b bool) float64 {
		if b {
			return symptomScore
		}
		return 0
	}
	return FeatureVector{
		Tremor:              score(s.Tremor),
		Rigidity:            score(s.Rigidity),
		Bradykinesia:        score(s.Bradykinesia),
		PosturalInstability: score(s.PosturalInstability),
		VoiceChanges:        score(s.VoiceChanges),
		Handwriting:         score(s.Handwriting),
		Age:                 float64(s.Age),
	}
}

// ClinicalRisk scores the checklist on a 0-100 scale. Age over 40 adds up
// to 15 points, reached at 80.
func ClinicalRisk(s ClinicalSymptoms) float64 {
	risk := 0.0
	if s.Age > 40 {
		risk += 15 * math.Min(float64(s.Age-40)/40, 1)
	}

	points := []struct {
		present bool
		value   float64
	}{
		{s.Tremor, 25},
		{s.Rigidity, 20},
		{s.Bradykinesia, 25},
		{s.PosturalInstability, 15},
		{s.VoiceChanges, 10},
		{s.Handwriting, 5},
	}
	for _, p := range points {
		if p.present {
			risk += p.value
		}
	}

	return math.Min(risk, 100)
}

// AssessClinical scores the checklist. When voice is non-nil the ensemble
// runs on the checklist scores plus the voice features and the two are
// blended 60/40 in favour of the ensemble.
func AssessClinical(s ClinicalSymptoms, voice *AcousticFeatures) Assessment {
	clinical := ClinicalRisk(s)

	if voice == nil {
		prediction := 0
		if clinical > 50 {
			prediction = 1
		}
		return Assessment{
			Prediction:   prediction,
			Probability:  clinical / 100,
			RiskScore:    clinical,
			ClinicalRisk: clinical,
			ModelUsed:    ModelClinicalAssessment,
		}
	}

	ens := Ensemble(SymptomsToFeatures(s).WithAcoustic(*voice))

	probability := ensembleShare*ens.Probability + (1-ensembleShare)*clinical/100
	risk := ensembleShare*float64(ens.RiskScore) + (1-ensembleShare)*clinical

	prediction := 0
	if probability > 0.5 {
		prediction = 1
	}
	return Assessment{
		Prediction:        prediction,
		Probability:       probability,
		RiskScore:         risk,
		ClinicalRisk:      clinical,
		ModelUsed:         ModelEnsembleWithClinical,
		FeatureImportance: ens.FeatureImportance,
		HasVoiceData:      true,
	}
}
