package models

import "time"

// ContentUnit is one reviewable unit from the curriculum catalog. Authoring
// happens elsewhere; the engine only schedules these.
type ContentUnit struct {
	ID         int64     `json:"id" db:"id"`
	Prompt     string    `json:"prompt" db:"prompt"`
	Answer     string    `json:"answer" db:"answer"`
	Topic      string    `json:"topic" db:"topic"`
	Difficulty int       `json:"difficulty" db:"difficulty"` // 1-5 scale
	Position   int       `json:"position" db:"position"`     // curriculum order
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
