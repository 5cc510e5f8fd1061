package models

// AchievementMetric selects which profile aggregate an achievement watches.
type AchievementMetric string

const (
	MetricStudyTimeSeconds AchievementMetric = "study_time_seconds"
	MetricWordsLearned     AchievementMetric = "words_learned"
)

// Achievement is an immutable milestone definition. Membership in a
// profile's unlocked set is monotonic.
type Achievement struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Metric    AchievementMetric `json:"metric"`
	Threshold int64             `json:"threshold"`
}

// Met reports whether the profile has crossed this achievement's threshold.
func (a Achievement) Met(p *UserProfile) bool {
	switch a.Metric {
	case MetricStudyTimeSeconds:
		return p.TotalStudyTimeSeconds >= a.Threshold
	case MetricWordsLearned:
		return int64(p.WordsLearned) >= a.Threshold
	default:
		return false
	}
}
