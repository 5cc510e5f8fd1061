// Package achievement derives milestone unlocks from profile deltas.
package achievement

import (
	"github.com/example/learnflow/pkg/models"
)

// Defaults returns the built-in milestone definitions. Loaded once at
// startup and never mutated.
func Defaults() []models.Achievement {
	return []models.Achievement{
		{ID: "study_1h", Title: "First Hour", Metric: models.MetricStudyTimeSeconds, Threshold: 3600},
		{ID: "study_10h", Title: "Ten Hours In", Metric: models.MetricStudyTimeSeconds, Threshold: 10 * 3600},
		{ID: "study_100h", Title: "Century of Hours", Metric: models.MetricStudyTimeSeconds, Threshold: 100 * 3600},
		{ID: "words_10", Title: "First Ten Words", Metric: models.MetricWordsLearned, Threshold: 10},
		{ID: "words_100", Title: "Hundred Club", Metric: models.MetricWordsLearned, Threshold: 100},
		{ID: "words_1000", Title: "Lexicon Builder", Metric: models.MetricWordsLearned, Threshold: 1000},
	}
}

// Engine evaluates unlock predicates. Pure and deterministic; safe for
// concurrent use.
type Engine struct {
	defs []models.Achievement
}

// New returns an Engine over the given definitions.
func New(defs []models.Achievement) *Engine {
	return &Engine{defs: defs}
}

// Evaluate returns the IDs newly unlocked by moving from before to after:
// thresholds crossed by the delta, excluding anything already in the
// before profile's unlocked set. Evaluating the same pair twice yields the
// same result; Evaluate(p, p) is always empty.
func (e *Engine) Evaluate(before, after *models.UserProfile) []string {
	var unlocked []string
	for _, def := range e.defs {
		if before.Achievements[def.ID] {
			continue
		}
		if !def.Met(before) && def.Met(after) {
			unlocked = append(unlocked, def.ID)
		}
	}
	return unlocked
}
