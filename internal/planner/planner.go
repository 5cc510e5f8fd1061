// Package planner builds immutable session plans from a profile snapshot,
// a brain-state assessment, and the learner's local hour.
package planner

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/example/learnflow/internal/spaced_repetition"
	"github.com/example/learnflow/pkg/models"
)

// ContentCatalog is the curriculum collaborator. Candidate ordering and
// filtering policy belong to the catalog; the planner only truncates and
// tie-breaks on top.
type ContentCatalog interface {
	// NewItemCandidates returns content IDs the learner has never
	// reviewed, in curriculum order, at most limit of them.
	NewItemCandidates(ctx context.Context, userID int64, limit int) ([]int64, error)
}

// TimeOfDay selects a retention bucket from the learner's local hour.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"   // [5,12)
	Afternoon TimeOfDay = "afternoon" // [12,18)
	Evening   TimeOfDay = "evening"   // everything else
)

// BucketForHour maps a local hour onto its time-of-day bucket.
func BucketForHour(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

// retentionPolicy weights session composition per time-of-day bucket.
// Mornings favor new material, evenings favor review.
type retentionPolicy struct {
	NewItemWeight  float64
	ReviewEmphasis float64
}

var retentionTable = map[TimeOfDay]retentionPolicy{
	Morning:   {NewItemWeight: 1.0, ReviewEmphasis: 0.7},
	Afternoon: {NewItemWeight: 0.8, ReviewEmphasis: 0.85},
	Evening:   {NewItemWeight: 0.6, ReviewEmphasis: 1.0},
}

// loadCaps bounds item counts per cognitive-load bucket.
type loadCaps struct {
	NewItems    int
	ReviewItems int
}

var loadTable = map[models.Level]loadCaps{
	models.LevelLow:    {NewItems: 15, ReviewItems: 50},
	models.LevelMedium: {NewItems: 10, ReviewItems: 30},
	models.LevelHigh:   {NewItems: 5, ReviewItems: 20},
}

// Fixed pacing constants, in seconds unless noted.
const (
	reviewItemSeconds        = 40
	newItemSeconds           = 90
	consolidationItemSeconds = 25

	breakEverySeconds    = 25 * 60 // active time between breaks
	breakDurationSeconds = 5 * 60
	consolidationAfter   = 20 * 60 // plans longer than this get a closing pass
)

// Planner composes session plans. Stateless apart from its collaborators.
type Planner struct {
	catalog ContentCatalog
	log     *zap.Logger
}

// New returns a Planner over the given catalog.
func New(catalog ContentCatalog, log *zap.Logger) *Planner {
	return &Planner{catalog: catalog, log: log}
}

// BuildPlan produces the immutable blueprint for one session. The profile
// snapshot and brain state are never mutated. The only error path is the
// catalog lookup; a learner without a profile is the caller's problem
// (profiles are created before planning).
func (pl *Planner) BuildPlan(ctx context.Context, profile *models.UserProfile, state models.BrainState, localHour int, now time.Time) (*models.SessionPlan, error) {
	tod := BucketForHour(localHour)
	policy := retentionTable[tod]
	caps := loadTable[models.ClassifyLoad(state.CognitiveLoad)]

	due := spaced_repetition.DueItems(profileItems(profile), now, caps.ReviewItems)
	reviewIDs := make([]int64, len(due))
	for i, item := range due {
		reviewIDs[i] = item.ContentID
	}

	newCap := int(math.Ceil(float64(caps.NewItems) * policy.NewItemWeight))
	newIDs, err := pl.catalog.NewItemCandidates(ctx, profile.UserID, newCap)
	if err != nil {
		return nil, err
	}
	if len(newIDs) > newCap {
		newIDs = newIDs[:newCap]
	}

	activeSeconds := len(reviewIDs)*reviewItemSeconds + len(newIDs)*newItemSeconds

	var consolidation []models.ConsolidationActivity
	if activeSeconds > consolidationAfter {
		for _, id := range newIDs {
			consolidation = append(consolidation, models.ConsolidationActivity{
				ContentID:       id,
				DurationSeconds: consolidationItemSeconds,
			})
			activeSeconds += consolidationItemSeconds
		}
	}

	breaks := scheduleBreaks(activeSeconds)
	total := activeSeconds + len(breaks)*breakDurationSeconds

	plan := &models.SessionPlan{
		UserID:                  profile.UserID,
		DurationSeconds:         total,
		ReviewItems:             reviewIDs,
		NewItems:                newIDs,
		Breaks:                  breaks,
		ConsolidationActivities: consolidation,
		CreatedAt:               now,
	}
	pl.log.Debug("session plan built",
		zap.Int64("user_id", profile.UserID),
		zap.String("time_of_day", string(tod)),
		zap.Int("review_items", len(reviewIDs)),
		zap.Int("new_items", len(newIDs)),
		zap.Int("duration_seconds", total))
	return plan, nil
}

// scheduleBreaks inserts a five-minute pause after every 25 minutes of
// active time. Offsets are from session start and include earlier breaks.
func scheduleBreaks(activeSeconds int) []models.BreakInterval {
	var breaks []models.BreakInterval
	for n := 1; n*breakEverySeconds < activeSeconds; n++ {
		breaks = append(breaks, models.BreakInterval{
			OffsetSeconds:   n*breakEverySeconds + (n-1)*breakDurationSeconds,
			DurationSeconds: breakDurationSeconds,
		})
	}
	return breaks
}

func profileItems(p *models.UserProfile) []models.MemoryItem {
	items := make([]models.MemoryItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, item)
	}
	return items
}
