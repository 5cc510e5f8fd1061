package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/learnflow/pkg/models"
)

// MemoryItemRepository persists per-learner retention state. One row per
// (user, content unit).
type MemoryItemRepository struct {
	db *sqlx.DB
}

// NewMemoryItemRepository creates a repository over the given handle, or
// the shared one when nil.
func NewMemoryItemRepository(db *sqlx.DB) *MemoryItemRepository {
	if db == nil {
		db = DB
	}
	return &MemoryItemRepository{db: db}
}

// UpsertItem creates or replaces the row for the item's (user, content)
// key. Satisfies the profile store's ItemWriter interface.
func (r *MemoryItemRepository) UpsertItem(item models.MemoryItem) error {
	var existingID int64
	err := r.db.Get(&existingID,
		"SELECT item_id FROM memory_items WHERE user_id = $1 AND content_id = $2",
		item.UserID, item.ContentID)
	switch {
	case err == nil:
		_, err = r.db.Exec(`
			UPDATE memory_items SET
				interval_days = $1,
				repetition_count = $2,
				easiness_factor = $3,
				last_review_at = $4,
				next_review_at = $5,
				last_performance = $6
			WHERE item_id = $7
		`, item.IntervalDays, item.RepetitionCount, item.EasinessFactor,
			item.LastReviewAt, item.NextReviewAt, item.LastPerformance, existingID)
		if err != nil {
			return fmt.Errorf("failed to update memory item: %v", err)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		_, err = r.db.Exec(`
			INSERT INTO memory_items (
				user_id, content_id, interval_days, repetition_count,
				easiness_factor, last_review_at, next_review_at, last_performance
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, item.UserID, item.ContentID, item.IntervalDays, item.RepetitionCount,
			item.EasinessFactor, item.LastReviewAt, item.NextReviewAt, item.LastPerformance)
		if err != nil {
			return fmt.Errorf("failed to insert memory item: %v", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up memory item: %v", err)
	}
}

// GetAllForUser returns every item a learner has touched, ordered by
// content ID. Satisfies the profile store's ItemLoader interface, which
// rehydrates learner profiles from storage after a restart.
func (r *MemoryItemRepository) GetAllForUser(userID int64) ([]models.MemoryItem, error) {
	var items []models.MemoryItem
	err := r.db.Select(&items,
		"SELECT * FROM memory_items WHERE user_id = $1 ORDER BY content_id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory items: %v", err)
	}
	return items, nil
}
