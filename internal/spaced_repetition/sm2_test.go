package spaced_repetition

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/learnflow/pkg/models"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func freshItem() models.MemoryItem {
	return models.NewMemoryItem(1, 42, testNow)
}

func TestRecordReview_SuccessProgression(t *testing.T) {
	sm := New()
	item := freshItem()

	item = sm.RecordReview(item, 4, testNow)
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 1, item.RepetitionCount)

	item = sm.RecordReview(item, 4, testNow.AddDate(0, 0, 1))
	assert.Equal(t, 6, item.IntervalDays)
	assert.Equal(t, 2, item.RepetitionCount)

	// Third success scales the six-day interval by the current EF.
	ef := item.EasinessFactor
	item = sm.RecordReview(item, 4, testNow.AddDate(0, 0, 7))
	assert.Equal(t, int(math.Round(6*ef)), item.IntervalDays)
	assert.Equal(t, 3, item.RepetitionCount)
}

func TestRecordReview_FailureResets(t *testing.T) {
	sm := New()
	item := freshItem()
	item = sm.RecordReview(item, 4, testNow)
	item = sm.RecordReview(item, 4, testNow.AddDate(0, 0, 1))
	require.Equal(t, 2, item.RepetitionCount)

	item = sm.RecordReview(item, 2, testNow.AddDate(0, 0, 7))
	assert.Equal(t, 0, item.RepetitionCount)
	assert.Equal(t, 1, item.IntervalDays)

	// Any failing score resets, regardless of prior state.
	for _, score := range []float64{0, 1, 2, 2.9} {
		item := freshItem()
		item.RepetitionCount = 7
		item.IntervalDays = 90
		item = sm.RecordReview(item, score, testNow)
		assert.Equal(t, 0, item.RepetitionCount, "score %v", score)
		assert.Equal(t, 1, item.IntervalDays, "score %v", score)
	}
}

func TestRecordReview_EasinessFloor(t *testing.T) {
	sm := New()
	item := freshItem()
	// Repeated blackouts drive EF toward the floor but never below it.
	for i := 0; i < 20; i++ {
		item = sm.RecordReview(item, 0, testNow)
		assert.GreaterOrEqual(t, item.EasinessFactor, 1.3)
	}
	assert.Equal(t, 1.3, item.EasinessFactor)

	// Perfect recalls have no EF ceiling.
	for i := 0; i < 50; i++ {
		item = sm.RecordReview(item, 5, testNow)
	}
	assert.Greater(t, item.EasinessFactor, 2.5)
}

func TestRecordReview_Pure(t *testing.T) {
	sm := New()
	item := freshItem()
	item.RepetitionCount = 3
	item.IntervalDays = 14
	item.EasinessFactor = 2.1

	a := sm.RecordReview(item, 3.5, testNow)
	b := sm.RecordReview(item, 3.5, testNow)
	assert.Equal(t, a, b)

	// The input is untouched.
	assert.Equal(t, 3, item.RepetitionCount)
	assert.Equal(t, 14, item.IntervalDays)
}

func TestRecordReview_NextReviewInvariant(t *testing.T) {
	sm := New()
	item := sm.RecordReview(freshItem(), 5, testNow)
	assert.Equal(t, testNow, item.LastReviewAt)
	assert.Equal(t, testNow.AddDate(0, 0, item.IntervalDays), item.NextReviewAt)
	assert.Equal(t, 5.0, item.LastPerformance)
}

func TestRecordReview_Scenario(t *testing.T) {
	sm := New()
	item := freshItem()

	item = sm.RecordReview(item, 4, testNow)
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 1, item.RepetitionCount)

	item = sm.RecordReview(item, 4, testNow)
	assert.Equal(t, 6, item.IntervalDays)
	assert.Equal(t, 2, item.RepetitionCount)

	item = sm.RecordReview(item, 2, testNow)
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 0, item.RepetitionCount)
}

func TestValidatePerformance(t *testing.T) {
	for _, score := range []float64{0, 2.5, 3, 5} {
		assert.NoError(t, ValidatePerformance(score), "score %v", score)
	}
	for _, score := range []float64{-0.1, 5.1, 42, math.NaN()} {
		assert.Error(t, ValidatePerformance(score), "score %v", score)
	}
}

func TestDueItems_OrderingAndTruncation(t *testing.T) {
	items := []models.MemoryItem{
		{ContentID: 1, NextReviewAt: testNow.AddDate(0, 0, -1), EasinessFactor: 2.5},
		{ContentID: 2, NextReviewAt: testNow.AddDate(0, 0, -3), EasinessFactor: 2.0},
		{ContentID: 3, NextReviewAt: testNow.AddDate(0, 0, -3), EasinessFactor: 1.4},
		{ContentID: 4, NextReviewAt: testNow.AddDate(0, 0, 2), EasinessFactor: 1.3}, // not due
		{ContentID: 5, NextReviewAt: testNow, EasinessFactor: 1.8},
	}

	due := DueItems(items, testNow, 0)
	require.Len(t, due, 4)
	// Most overdue first; equal dates break ties toward the harder item.
	assert.Equal(t, int64(3), due[0].ContentID)
	assert.Equal(t, int64(2), due[1].ContentID)
	assert.Equal(t, int64(1), due[2].ContentID)
	assert.Equal(t, int64(5), due[3].ContentID)

	truncated := DueItems(items, testNow, 2)
	require.Len(t, truncated, 2)
	assert.Equal(t, int64(3), truncated[0].ContentID)
}

func TestMastered(t *testing.T) {
	sm := New()
	assert.False(t, sm.Mastered(models.MemoryItem{RepetitionCount: 4, LastPerformance: 5, IntervalDays: 40}))
	assert.False(t, sm.Mastered(models.MemoryItem{RepetitionCount: 6, LastPerformance: 3, IntervalDays: 40}))
	assert.False(t, sm.Mastered(models.MemoryItem{RepetitionCount: 6, LastPerformance: 5, IntervalDays: 20}))
	assert.True(t, sm.Mastered(models.MemoryItem{RepetitionCount: 6, LastPerformance: 5, IntervalDays: 40}))
}
