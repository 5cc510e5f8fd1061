package models

import "time"

// UserProfile aggregates everything the engine knows about one learner.
// Profiles are owned by the profile store; callers only ever see snapshots.
type UserProfile struct {
	UserID                int64                `json:"user_id" db:"user_id"`
	TotalStudyTimeSeconds int64                `json:"total_study_time_seconds" db:"total_study_time_seconds"`
	WordsLearned          int                  `json:"words_learned" db:"words_learned"`
	ProficiencyLevel      int                  `json:"proficiency_level" db:"proficiency_level"` // 1-5 scale
	Items                 map[int64]MemoryItem `json:"items"`                                    // keyed by content ID
	Achievements          map[string]bool      `json:"achievements"`                             // unlocked IDs, never revoked
	CreatedAt             time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at" db:"updated_at"`
}

// NewUserProfile returns an empty profile for a learner.
func NewUserProfile(userID int64, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:           userID,
		ProficiencyLevel: 1,
		Items:            make(map[int64]MemoryItem),
		Achievements:     make(map[string]bool),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Clone returns a deep copy. Plan construction and achievement evaluation
// work on clones so late-arriving review updates cannot bleed in.
func (p *UserProfile) Clone() *UserProfile {
	c := *p
	c.Items = make(map[int64]MemoryItem, len(p.Items))
	for id, item := range p.Items {
		c.Items[id] = item
	}
	c.Achievements = make(map[string]bool, len(p.Achievements))
	for id := range p.Achievements {
		c.Achievements[id] = true
	}
	return &c
}

// ProgressSummary reports the outcome of recording one review.
type ProgressSummary struct {
	Item                  MemoryItem `json:"item"`
	WordsLearned          int        `json:"words_learned"`
	TotalStudyTimeSeconds int64      `json:"total_study_time_seconds"`
	Mastered              bool       `json:"mastered"`         // item crossed the mastery bar on this review
	NewAchievements       []string   `json:"new_achievements"` // unlocked by this review, may be empty
}
