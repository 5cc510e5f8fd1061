// Package spaced_repetition implements the SM-2 review transition that
// drives all scheduling decisions. Every function here is a pure
// computation: identical inputs always produce identical outputs.
package spaced_repetition

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/example/learnflow/pkg/models"
)

// SM2 holds the tunable constants of the SuperMemo-2 algorithm.
type SM2 struct {
	// PassThreshold is the lowest performance score counted as a
	// successful recall.
	PassThreshold float64
	// MinEasiness is the floor for the easiness factor. There is no
	// ceiling.
	MinEasiness float64
	// SecondInterval is the interval in days after the second successful
	// recall of a fresh item. The first is always one day.
	SecondInterval int
}

// New returns an SM2 instance with the standard constants.
func New() *SM2 {
	return &SM2{
		PassThreshold:  3,
		MinEasiness:    1.3,
		SecondInterval: 6,
	}
}

// PerformanceScore bounds, inclusive.
const (
	MinPerformance = 0
	MaxPerformance = 5
)

// ValidatePerformance rejects scores outside [0,5] and NaN.
func ValidatePerformance(score float64) error {
	if math.IsNaN(score) || score < MinPerformance || score > MaxPerformance {
		return fmt.Errorf("performance score %v out of range [%d,%d]", score, MinPerformance, MaxPerformance)
	}
	return nil
}

// RecordReview applies one review to an item and returns the updated copy.
// The caller validates the score first; an invalid score is a programming
// error here and handled by clamping the easiness update's input.
//
// Successful recall (score >= PassThreshold) grows the interval: 1 day for
// a fresh item, SecondInterval after the second recall, interval*EF after
// that. A failed recall resets repetitions to zero and the interval to one
// day. The easiness factor is updated in both branches and clamped to the
// floor.
func (sm *SM2) RecordReview(item models.MemoryItem, score float64, now time.Time) models.MemoryItem {
	if score >= sm.PassThreshold {
		switch item.RepetitionCount {
		case 0:
			item.IntervalDays = 1
		case 1:
			item.IntervalDays = sm.SecondInterval
		default:
			item.IntervalDays = int(math.Round(float64(item.IntervalDays) * item.EasinessFactor))
		}
		item.RepetitionCount++
	} else {
		item.RepetitionCount = 0
		item.IntervalDays = 1
	}

	ef := item.EasinessFactor + (0.1 - (5.0-score)*(0.08+(5.0-score)*0.02))
	if ef < sm.MinEasiness {
		ef = sm.MinEasiness
	}
	item.EasinessFactor = ef

	item.LastReviewAt = now
	item.NextReviewAt = now.AddDate(0, 0, item.IntervalDays)
	item.LastPerformance = score
	return item
}

// DueItems filters items due at now and orders them for review: earliest
// NextReviewAt first, ties broken by lower easiness factor so the hardest
// material comes up first. The result is truncated to limit when limit > 0.
func DueItems(items []models.MemoryItem, now time.Time, limit int) []models.MemoryItem {
	due := make([]models.MemoryItem, 0, len(items))
	for _, item := range items {
		if item.Due(now) {
			due = append(due, item)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].NextReviewAt.Before(due[j].NextReviewAt)
		}
		return due[i].EasinessFactor < due[j].EasinessFactor
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

// Mastered reports whether an item counts toward the learner's
// words-learned aggregate: at least five repetitions, a confident last
// recall, and a month-scale interval.
func (sm *SM2) Mastered(item models.MemoryItem) bool {
	return item.RepetitionCount >= 5 &&
		item.LastPerformance >= 4 &&
		item.IntervalDays >= 30
}
