package ml

// Feature names one of the six clinical symptom inputs. Feature importance
// maps are keyed by Feature rather than free-form strings.
type Feature string

const (
	FeatureTremor              Feature = "tremor"
	FeatureRigidity            Feature = "rigidity"
	FeatureBradykinesia        Feature = "bradykinesia"
	FeaturePosturalInstability Feature = "posturalInstability"
	FeatureVoiceChanges        Feature = "voiceChanges"
	FeatureHandwriting         Feature = "handwriting"
)

// ClinicalFeatures lists the clinical features in canonical order.
var ClinicalFeatures = []Feature{
	FeatureTremor,
	FeatureRigidity,
	FeatureBradykinesia,
	FeaturePosturalInstability,
	FeatureVoiceChanges,
	FeatureHandwriting,
}

// AcousticFeatureNames lists the wire names of the optional acoustic fields.
var AcousticFeatureNames = []string{
	"mdvpFo", "mdvpFhi", "mdvpFlo", "mdvpJitter", "mdvpShimmer",
	"nhr", "hnr", "rpde", "dfa", "spread1", "spread2", "d2", "ppe",
}

// AcousticFeatures holds the optional MDVP-style voice biomarkers. A nil
// field means the extractor produced no value; it is never read as zero.
type AcousticFeatures struct {
	MDVPFo      *float64 `json:"mdvpFo,omitempty"`
	MDVPFhi     *float64 `json:"mdvpFhi,omitempty"`
	MDVPFlo     *float64 `json:"mdvpFlo,omitempty"`
	MDVPJitter  *float64 `json:"mdvpJitter,omitempty"`
	MDVPShimmer *float64 `json:"mdvpShimmer,omitempty"`
	NHR         *float64 `json:"nhr,omitempty"`
	HNR         *float64 `json:"hnr,omitempty"`
	RPDE        *float64 `json:"rpde,omitempty"`
	DFA         *float64 `json:"dfa,omitempty"`
	Spread1     *float64 `json:"spread1,omitempty"`
	Spread2     *float64 `json:"spread2,omitempty"`
	D2          *float64 `json:"d2,omitempty"`
	PPE         *float64 `json:"ppe,omitempty"`
}

// FeatureVector is the input to every predictor: six clinical symptom
// scores (conventionally 0-10), age in years, and optional acoustic
// biomarkers.
type FeatureVector struct {
	Tremor              float64 `json:"tremor"`
	Rigidity            float64 `json:"rigidity"`
	Bradykinesia        float64 `json:"bradykinesia"`
	PosturalInstability float64 `json:"posturalInstability"`
	VoiceChanges        float64 `json:"voiceChanges"`
	Handwriting         float64 `json:"handwriting"`
	Age                 float64 `json:"age"`

	AcousticFeatures
}

// Float returns a pointer to v. It is a convenience for building acoustic
// fields in literals.
func Float(v float64) *float64 {
	return &v
}

// Clinical returns the score of a clinical feature.
func (fv FeatureVector) Clinical(f Feature) float64 {
	switch f {
	case FeatureTremor:
		return fv.Tremor
	case FeatureRigidity:
		return fv.Rigidity
	case FeatureBradykinesia:
		return fv.Bradykinesia
	case FeaturePosturalInstability:
		return fv.PosturalInstability
	case FeatureVoiceChanges:
		return fv.VoiceChanges
	case FeatureHandwriting:
		return fv.Handwriting
	}
	return 0
}

// ClinicalSum is the unweighted sum of the six clinical scores.
func (fv FeatureVector) ClinicalSum() float64 {
	sum := 0.0
	for _, f := range ClinicalFeatures {
		sum += fv.Clinical(f)
	}
	return sum
}

// HasVoice reports whether the acoustic branch should run. Both the
// fundamental frequency and jitter must be present; either one alone is
// not enough.
func (fv FeatureVector) HasVoice() bool {
	return fv.MDVPFo != nil && fv.MDVPJitter != nil
}

// VoiceFeatureCount counts the acoustic fields the model selector cares
// about. spread1, spread2 and d2 are not counted.
func (fv FeatureVector) VoiceFeatureCount() int {
	n := 0
	for _, p := range []*float64{
		fv.MDVPFo, fv.MDVPFhi, fv.MDVPFlo, fv.MDVPJitter, fv.MDVPShimmer,
		fv.NHR, fv.HNR, fv.RPDE, fv.DFA, fv.PPE,
	} {
		if p != nil {
			n++
		}
	}
	return n
}

// WithAcoustic returns a copy of fv carrying the given acoustic features.
func (fv FeatureVector) WithAcoustic(a AcousticFeatures) FeatureVector {
	fv.AcousticFeatures = a
	return fv
}

// DefaultAcousticFeatures is the reference voice profile the extractor
// falls back to when an analysis fails.
func DefaultAcousticFeatures() AcousticFeatures {
	return AcousticFeatures{
		MDVPFo:      Float(154.23),
		MDVPFhi:     Float(197.35),
		MDVPFlo:     Float(116.82),
		MDVPJitter:  Float(0.0062),
		MDVPShimmer: Float(0.0376),
		NHR:         Float(0.022),
		HNR:         Float(21.6),
		RPDE:        Float(0.498),
		DFA:         Float(0.718),
		Spread1:     Float(-6.2),
		Spread2:     Float(0.226),
		D2:          Float(2.381),
		PPE:         Float(0.206),
	}
}
