package models

import "time"

// MemoryItem tracks a learner's retention state for a single content unit
// using the SM-2 algorithm. One row per (user, content unit); items are
// superseded by updates, never deleted.
type MemoryItem struct {
	ItemID          int64     `json:"item_id" db:"item_id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	ContentID       int64     `json:"content_id" db:"content_id"`
	IntervalDays    int       `json:"interval_days" db:"interval_days"`       // Current interval in days, >= 1
	RepetitionCount int       `json:"repetition_count" db:"repetition_count"` // Consecutive successful recalls
	EasinessFactor  float64   `json:"easiness_factor" db:"easiness_factor"`   // SM-2 EF parameter, floor 1.3
	LastReviewAt    time.Time `json:"last_review_at" db:"last_review_at"`
	NextReviewAt    time.Time `json:"next_review_at" db:"next_review_at"`
	LastPerformance float64   `json:"last_performance" db:"last_performance"` // 0-5 rating of last recall
}

// DefaultEasinessFactor is the EF assigned to an item on first exposure.
const DefaultEasinessFactor = 2.5

// NewMemoryItem returns the initial retention state for a content unit a
// learner has just been exposed to.
func NewMemoryItem(userID, contentID int64, now time.Time) MemoryItem {
	return MemoryItem{
		UserID:         userID,
		ContentID:      contentID,
		IntervalDays:   1,
		EasinessFactor: DefaultEasinessFactor,
		LastReviewAt:   now,
		NextReviewAt:   now,
	}
}

// Due reports whether the item is due for review at the given time.
func (m MemoryItem) Due(now time.Time) bool {
	return !m.NextReviewAt.After(now)
}
