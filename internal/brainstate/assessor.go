// Package brainstate fuses raw physiological and contextual signals into
// the normalized scores the planner and the feedback loop act on.
package brainstate

import (
	"math"

	"github.com/example/learnflow/pkg/models"
)

// Neutral is substituted for any missing or malformed signal. Assessment
// never fails for lack of sensor data.
const Neutral = 0.5

// Normalization anchors for raw signal ranges.
const (
	// RMSSD in ms; 100 and above reads as fully relaxed.
	maxHRV = 100.0
	// Skin conductance in microsiemens; 20 reads as maximal arousal.
	maxConductance = 20.0
	// Skin temperature band in degrees Celsius mapped onto [0,1].
	minTemperature = 31.0
	maxTemperature = 35.0
	// Interactions per minute; 30 reads as fully engaged pace.
	maxCadence = 30.0
)

// Assessor computes BrainState snapshots. Stateless and safe for
// concurrent use.
type Assessor struct{}

// New returns an Assessor.
func New() *Assessor {
	return &Assessor{}
}

// Assess derives a BrainState from one sample. Each sub-score is a
// weighted combination of normalized inputs, clamped to [0,1]. A missing
// input contributes the neutral 0.5, so an entirely empty sample resolves
// to {0.5, 0.5, 0.5, 0.5}.
func (a *Assessor) Assess(sample models.BiometricSample) models.BrainState {
	// Calm scales with HRV, arousal with conductance.
	calm := normalized(sample.HeartRateVariability, 0, maxHRV)
	arousal := normalized(sample.SkinConductance, 0, maxConductance)
	warmth := normalized(sample.SkinTemperature, minTemperature, maxTemperature)
	pace := normalized(sample.InteractionCadence, 0, maxCadence)
	accuracy := normalized(sample.RecentAccuracy, 0, 1)

	return models.BrainState{
		Stress:        clamp01(0.5*arousal + 0.3*(1-calm) + 0.2*warmth),
		CognitiveLoad: clamp01(0.4*(1-accuracy) + 0.3*(1-calm) + 0.3*arousal),
		Engagement:    clamp01(0.4*pace + 0.4*accuracy + 0.2*(1-arousal)),
		Fatigue:       clamp01(0.4*(1-calm) + 0.3*(1-pace) + 0.3*(1-accuracy)),
	}
}

// Valid reports whether a sample carries no malformed readings. Malformed
// means NaN or infinite; out-of-range finite values are merely clamped.
func Valid(sample models.BiometricSample) bool {
	for _, v := range []*float64{
		sample.HeartRateVariability,
		sample.SkinConductance,
		sample.SkinTemperature,
		sample.InteractionCadence,
		sample.RecentAccuracy,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return false
		}
	}
	return true
}

// normalized maps a raw reading onto [0,1] within [min,max], substituting
// the neutral value when the reading is absent or unusable.
func normalized(v *float64, min, max float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Neutral
	}
	return clamp01((*v - min) / (max - min))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
