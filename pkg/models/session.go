package models

import "time"

// BreakInterval is a pause inside a session plan, expressed as an offset
// from session start.
type BreakInterval struct {
	OffsetSeconds   int `json:"offset_seconds"`
	DurationSeconds int `json:"duration_seconds"`
}

// ConsolidationActivity is a closing review pass over content introduced in
// the same session.
type ConsolidationActivity struct {
	ContentID       int64 `json:"content_id"`
	DurationSeconds int   `json:"duration_seconds"`
}

// SessionPlan is the immutable blueprint of one study session. The session
// controller works on its own mutable copy; the plan itself is never
// modified after construction.
type SessionPlan struct {
	UserID                  int64                   `json:"user_id"`
	DurationSeconds         int                     `json:"duration_seconds"`
	ReviewItems             []int64                 `json:"review_items"` // content IDs, hardest-first among equally due
	NewItems                []int64                 `json:"new_items"`    // content IDs in curriculum order
	Breaks                  []BreakInterval         `json:"breaks"`
	ConsolidationActivities []ConsolidationActivity `json:"consolidation_activities"`
	CreatedAt               time.Time               `json:"created_at"`
}

// AdjustmentKind identifies a class of mid-session intervention.
type AdjustmentKind string

const (
	AdjustStressBreak         AdjustmentKind = "stress_break"
	AdjustReduceCognitiveLoad AdjustmentKind = "reduce_cognitive_load"
	AdjustEngagementBoost     AdjustmentKind = "engagement_boost"
)

// Adjustment is a directive emitted by the feedback loop. The session
// controller applies it; the loop never touches the live plan.
type Adjustment struct {
	Kind          AdjustmentKind     `json:"kind"`
	Parameters    map[string]float64 `json:"parameters,omitempty"`
	GamifiedHook  string             `json:"gamified_hook,omitempty"` // set for engagement boosts
	EmittedAt     time.Time          `json:"emitted_at"`
	CooldownUntil time.Time          `json:"cooldown_until"` // same kind stays suppressed until then
}
