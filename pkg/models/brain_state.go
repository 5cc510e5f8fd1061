package models

import "time"

// BiometricSample is one raw reading from the signal collaborator. Every
// field is optional; a nil field means the sensor did not report.
type BiometricSample struct {
	HeartRateVariability *float64  `json:"heart_rate_variability,omitempty"` // RMSSD in ms
	SkinConductance      *float64  `json:"skin_conductance,omitempty"`       // microsiemens
	SkinTemperature      *float64  `json:"skin_temperature,omitempty"`       // degrees Celsius
	InteractionCadence   *float64  `json:"interaction_cadence,omitempty"`    // interactions per minute
	RecentAccuracy       *float64  `json:"recent_accuracy,omitempty"`        // fraction correct, 0-1
	Timestamp            time.Time `json:"timestamp"`
}

// BrainState is a normalized snapshot derived from one sample. All scores
// are in [0,1]. Derived on demand, never persisted.
type BrainState struct {
	Stress        float64 `json:"stress"`
	CognitiveLoad float64 `json:"cognitive_load"`
	Engagement    float64 `json:"engagement"`
	Fatigue       float64 `json:"fatigue"`
}

// Level is a coarse classification bucket shared by the planner and the
// feedback loop so their thresholds cannot drift apart.
type Level string

const (
	LevelLow    Level = "low"
	LevelNormal Level = "normal"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ClassifyStress buckets a stress score: low <0.4, normal 0.4-0.7, high >0.7.
func ClassifyStress(score float64) Level {
	switch {
	case score < 0.4:
		return LevelLow
	case score > 0.7:
		return LevelHigh
	default:
		return LevelNormal
	}
}

// ClassifyLoad buckets a cognitive-load score: low <=0.3, medium 0.3-0.6,
// high >0.6.
func ClassifyLoad(score float64) Level {
	switch {
	case score <= 0.3:
		return LevelLow
	case score > 0.6:
		return LevelHigh
	default:
		return LevelMedium
	}
}

// ClassifyEngagement buckets an engagement score: low <0.4, otherwise normal.
func ClassifyEngagement(score float64) Level {
	if score < 0.4 {
		return LevelLow
	}
	return LevelNormal
}
