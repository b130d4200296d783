// Package sample generates labelled synthetic patients for demos and
// offline evaluation.
package sample

import (
	"fmt"
	"math"
	"math/rand"

	"parkinson-insight/internal/ml"
)

// Sample is one labelled feature vector. Label is 1 for a parkinsonian
// case and 0 for a healthy control.
type Sample struct {
	ID       string           `json:"id"`
	Label    int              `json:"label"`
	Features ml.FeatureVector `json:"features"`
}

// cohort describes the distribution one class is drawn from.
type cohort struct {
	symptomMean, symptomStd float64
	ageMin, ageMax          float64

	jitter, shimmer, hnr, nhr   float64
	rpde, dfa, spread1, spread2 float64
	d2, ppe                     float64
}

var healthy = cohort{
	symptomMean: 1.5, symptomStd: 1.2,
	ageMin: 35, ageMax: 75,
	jitter: 0.0045, shimmer: 0.025, hnr: 24, nhr: 0.014,
	rpde: 0.44, dfa: 0.69, spread1: -6.8, spread2: 0.18,
	d2: 2.1, ppe: 0.12,
}

var parkinsonian = cohort{
	symptomMean: 6.5, symptomStd: 1.8,
	ageMin: 50, ageMax: 85,
	jitter: 0.0085, shimmer: 0.048, hnr: 18, nhr: 0.035,
	rpde: 0.58, dfa: 0.74, spread1: -4.9, spread2: 0.29,
	d2: 2.7, ppe: 0.27,
}

// Generator draws samples from a seeded source, so the same seed always
// yields the same cohort.
type Generator struct {
	rnd *rand.Rand

	// PositiveRate is the share of parkinsonian samples.
	PositiveRate float64
	// VoiceRate is the share of samples that carry acoustic features.
	VoiceRate float64
}

// NewGenerator creates a generator with a 50% positive rate and voice data
// on 70% of samples.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd:          rand.New(rand.NewSource(seed)),
		PositiveRate: 0.5,
		VoiceRate:    0.7,
	}
}

// Generate returns n samples.
func (g *Generator) Generate(n int) []Sample {
	out := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Next(fmt.Sprintf("synthetic-%04d", i+1)))
	}
	return out
}

// Next draws a single sample with the given id.
func (g *Generator) Next(id string) Sample {
	label := 0
	c := healthy
	if g.rnd.Float64() < g.PositiveRate {
		label = 1
		c = parkinsonian
	}

	fv := ml.FeatureVector{
		Tremor:              g.symptom(c),
		Rigidity:            g.symptom(c),
		Bradykinesia:        g.symptom(c),
		PosturalInstability: g.symptom(c),
		VoiceChanges:        g.symptom(c),
		Handwriting:         g.symptom(c),
		Age:                 math.Round(c.ageMin + g.rnd.Float64()*(c.ageMax-c.ageMin)),
	}
	if g.rnd.Float64() < g.VoiceRate {
		fv.AcousticFeatures = g.voice(c)
	}

	return Sample{ID: id, Label: label, Features: fv}
}

// symptom draws a clinical score rounded to one decimal within 0-10.
func (g *Generator) symptom(c cohort) float64 {
	v := c.symptomMean + g.rnd.NormFloat64()*c.symptomStd
	v = math.Max(0, math.Min(10, v))
	return math.Round(v*10) / 10
}

// jittered returns mean scaled by a normal factor with 10% spread.
func (g *Generator) jittered(mean float64) *float64 {
	return ml.Float(mean * (1 + 0.1*g.rnd.NormFloat64()))
}

func (g *Generator) voice(c cohort) ml.AcousticFeatures {
	fo := 110 + g.rnd.Float64()*90
	return ml.AcousticFeatures{
		MDVPFo:      ml.Float(fo),
		MDVPFhi:     ml.Float(fo * (1.2 + 0.2*g.rnd.Float64())),
		MDVPFlo:     ml.Float(fo * (0.7 + 0.1*g.rnd.Float64())),
		MDVPJitter:  g.jittered(c.jitter),
		MDVPShimmer: g.jittered(c.shimmer),
		NHR:         g.jittered(c.nhr),
		HNR:         g.jittered(c.hnr),
		RPDE:        g.jittered(c.rpde),
		DFA:         g.jittered(c.dfa),
		Spread1:     g.jittered(c.spread1),
		Spread2:     g.jittered(c.spread2),
		D2:          g.jittered(c.d2),
		PPE:         g.jittered(c.ppe),
	}
}
