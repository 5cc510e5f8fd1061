package brainstate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/learnflow/pkg/models"
)

func f(v float64) *float64 { return &v }

func TestAssess_AllMissingIsNeutral(t *testing.T) {
	state := New().Assess(models.BiometricSample{})
	assert.Equal(t, models.BrainState{Stress: 0.5, CognitiveLoad: 0.5, Engagement: 0.5, Fatigue: 0.5}, state)
	assert.Equal(t, models.LevelMedium, models.ClassifyLoad(state.CognitiveLoad))
}

func TestAssess_ScoresStayInRange(t *testing.T) {
	samples := []models.BiometricSample{
		{HeartRateVariability: f(-50), SkinConductance: f(500)},
		{HeartRateVariability: f(0), SkinConductance: f(20), SkinTemperature: f(35), InteractionCadence: f(0), RecentAccuracy: f(0)},
		{HeartRateVariability: f(100), SkinConductance: f(0), SkinTemperature: f(31), InteractionCadence: f(30), RecentAccuracy: f(1)},
	}
	a := New()
	for _, s := range samples {
		state := a.Assess(s)
		for _, score := range []float64{state.Stress, state.CognitiveLoad, state.Engagement, state.Fatigue} {
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestAssess_DirectionalResponses(t *testing.T) {
	a := New()

	// Low HRV plus high conductance reads as stressed and loaded.
	stressed := a.Assess(models.BiometricSample{
		HeartRateVariability: f(10),
		SkinConductance:      f(18),
	})
	assert.Equal(t, models.LevelHigh, models.ClassifyStress(stressed.Stress))
	assert.Equal(t, models.LevelHigh, models.ClassifyLoad(stressed.CognitiveLoad))

	// Fast accurate interaction reads as engaged.
	engaged := a.Assess(models.BiometricSample{
		InteractionCadence: f(25),
		RecentAccuracy:     f(0.95),
	})
	assert.Equal(t, models.LevelNormal, models.ClassifyEngagement(engaged.Engagement))

	// Idle and inaccurate reads as disengaged and fatigued.
	slumped := a.Assess(models.BiometricSample{
		HeartRateVariability: f(15),
		InteractionCadence:   f(2),
		RecentAccuracy:       f(0.2),
	})
	assert.Equal(t, models.LevelLow, models.ClassifyEngagement(slumped.Engagement))
	assert.Greater(t, slumped.Fatigue, 0.6)
}

func TestAssess_PartialSampleDegrades(t *testing.T) {
	// Only accuracy present: the remaining channels stay neutral instead
	// of failing the assessment.
	state := New().Assess(models.BiometricSample{RecentAccuracy: f(1)})
	assert.InDelta(t, 0.5, state.Stress, 1e-9)
	assert.Less(t, state.CognitiveLoad, 0.5)
	assert.Greater(t, state.Engagement, 0.5)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(models.BiometricSample{}))
	assert.True(t, Valid(models.BiometricSample{SkinConductance: f(999)})) // clamped, not malformed
	assert.False(t, Valid(models.BiometricSample{RecentAccuracy: f(math.NaN())}))
	assert.False(t, Valid(models.BiometricSample{HeartRateVariability: f(math.Inf(1))}))
}

func TestClassificationBuckets(t *testing.T) {
	assert.Equal(t, models.LevelLow, models.ClassifyStress(0.39))
	assert.Equal(t, models.LevelNormal, models.ClassifyStress(0.4))
	assert.Equal(t, models.LevelNormal, models.ClassifyStress(0.7))
	assert.Equal(t, models.LevelHigh, models.ClassifyStress(0.71))

	assert.Equal(t, models.LevelLow, models.ClassifyLoad(0.3))
	assert.Equal(t, models.LevelMedium, models.ClassifyLoad(0.31))
	assert.Equal(t, models.LevelMedium, models.ClassifyLoad(0.6))
	assert.Equal(t, models.LevelHigh, models.ClassifyLoad(0.61))

	assert.Equal(t, models.LevelLow, models.ClassifyEngagement(0.39))
	assert.Equal(t, models.LevelNormal, models.ClassifyEngagement(0.4))
}
