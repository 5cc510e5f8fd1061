package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/learnflow/pkg/models"
)

// ContentRepository serves the curriculum catalog. Candidate ordering is
// curriculum position; the planner applies its own truncation on top.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a repository over the given handle, or the
// shared one when nil.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	if db == nil {
		db = DB
	}
	return &ContentRepository{db: db}
}

// Create inserts a content unit and fills in its assigned ID.
func (r *ContentRepository) Create(unit *models.ContentUnit) error {
	if r.db.DriverName() == "postgres" {
		err := r.db.QueryRow(`
			INSERT INTO content_units (prompt, answer, topic, difficulty, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, unit.Prompt, unit.Answer, unit.Topic, unit.Difficulty, unit.Position).Scan(&unit.ID)
		if err != nil {
			return fmt.Errorf("failed to create content unit: %v", err)
		}
		return nil
	}

	// SQLite reports generated keys through LastInsertId instead of
	// RETURNING.
	res, err := r.db.Exec(`
		INSERT INTO content_units (prompt, answer, topic, difficulty, position)
		VALUES ($1, $2, $3, $4, $5)
	`, unit.Prompt, unit.Answer, unit.Topic, unit.Difficulty, unit.Position)
	if err != nil {
		return fmt.Errorf("failed to create content unit: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read content unit id: %v", err)
	}
	unit.ID = id
	return nil
}

// NewItemCandidates returns content IDs the learner has never reviewed, in
// curriculum order. Satisfies the planner's ContentCatalog interface.
func (r *ContentRepository) NewItemCandidates(ctx context.Context, userID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT cu.id FROM content_units cu
		WHERE NOT EXISTS (
			SELECT 1 FROM memory_items mi
			WHERE mi.user_id = $1 AND mi.content_id = cu.id
		)
		ORDER BY cu.position ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get new item candidates: %v", err)
	}
	return ids, nil
}
