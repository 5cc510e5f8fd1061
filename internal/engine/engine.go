// Package engine is the external surface of the review-scheduling system.
// It wires the SM-2 scheduler, profile store, brain-state assessor,
// planner, session controller, and achievement engine behind the handful
// of operations a transport layer calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/learnflow/internal/achievement"
	"github.com/example/learnflow/internal/brainstate"
	"github.com/example/learnflow/internal/planner"
	"github.com/example/learnflow/internal/profile"
	"github.com/example/learnflow/internal/session"
	"github.com/example/learnflow/internal/spaced_repetition"
	"github.com/example/learnflow/pkg/models"
)

// studyCreditSeconds is the study-time credit booked per recorded review.
const studyCreditSeconds = 40

// Engine composes the decision subsystems. Construct with New; all fields
// are internal.
type Engine struct {
	sm2          *spaced_repetition.SM2
	profiles     *profile.Store
	assessor     *brainstate.Assessor
	planner      *planner.Planner
	sessions     *session.Manager
	achievements *achievement.Engine
	clock        func() time.Time
	log          *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New assembles an Engine over the given collaborators.
func New(profiles *profile.Store, catalog planner.ContentCatalog, sessions *session.Manager, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		sm2:          spaced_repetition.New(),
		profiles:     profiles,
		assessor:     brainstate.New(),
		planner:      planner.New(catalog, log),
		sessions:     sessions,
		achievements: achievement.New(achievement.Defaults()),
		clock:        time.Now,
		log:          log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordReview applies one review outcome for a learner. The whole
// transition runs under the learner's profile lock: SM-2 update, aggregate
// bookkeeping, mastery detection, and achievement evaluation all observe a
// single serialized mutation. The updated item is then flushed to the
// store's persistence writer when one is attached.
func (e *Engine) RecordReview(ctx context.Context, userID, contentID int64, performanceScore float64) (*models.ProgressSummary, error) {
	if err := spaced_repetition.ValidatePerformance(performanceScore); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var summary models.ProgressSummary
	err := e.profiles.Update(userID, func(p *models.UserProfile) error {
		before := p.Clone()
		now := e.clock()

		item, ok := p.Items[contentID]
		if !ok {
			item = models.NewMemoryItem(userID, contentID, now)
		}
		wasMastered := e.sm2.Mastered(item)
		item = e.sm2.RecordReview(item, performanceScore, now)
		p.Items[contentID] = item

		p.TotalStudyTimeSeconds += studyCreditSeconds
		mastered := !wasMastered && e.sm2.Mastered(item)
		if mastered {
			p.WordsLearned++
		}

		newUnlocks := e.achievements.Evaluate(before, p)
		for _, id := range newUnlocks {
			p.Achievements[id] = true
		}

		summary = models.ProgressSummary{
			Item:                  item,
			WordsLearned:          p.WordsLearned,
			TotalStudyTimeSeconds: p.TotalStudyTimeSeconds,
			Mastered:              mastered,
			NewAchievements:       newUnlocks,
		}
		return nil
	})
	if errors.Is(err, profile.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	e.profiles.FlushItem(summary.Item)

	e.log.Info("review recorded",
		zap.Int64("user_id", userID),
		zap.Int64("content_id", contentID),
		zap.Float64("performance", performanceScore),
		zap.Int("interval_days", summary.Item.IntervalDays),
		zap.Strings("new_achievements", summary.NewAchievements))
	return &summary, nil
}

// RequestSessionPlan builds an immutable session plan for a learner. A
// missing profile is created on the spot; missing biometric fields degrade
// to neutral scores and are never an error.
func (e *Engine) RequestSessionPlan(ctx context.Context, userID int64, now time.Time, localHour int, sample models.BiometricSample) (*models.SessionPlan, error) {
	snapshot := e.profiles.GetOrCreate(userID)

	if !brainstate.Valid(sample) {
		// Degrade to an empty sample; the assessor substitutes neutral
		// values for every channel.
		e.log.Warn("malformed context signals on plan request", zap.Int64("user_id", userID))
		sample = models.BiometricSample{}
	}
	state := e.assessor.Assess(sample)

	return e.planner.BuildPlan(ctx, snapshot, state, localHour, now)
}

// OpenSession activates a plan and returns the new session's ID.
func (e *Engine) OpenSession(plan *models.SessionPlan) string {
	return e.sessions.Open(plan)
}

// SubmitBiometricSample feeds a live sample into an active session and
// returns any adjustments it triggered. Closed or unknown sessions fail
// with ErrInvalidState.
func (e *Engine) SubmitBiometricSample(ctx context.Context, sessionID string, sample models.BiometricSample) ([]models.Adjustment, error) {
	adjs, err := e.sessions.Submit(ctx, sessionID, sample)
	if errors.Is(err, session.ErrInvalidState) {
		return nil, fmt.Errorf("%w: session %s", ErrInvalidState, sessionID)
	}
	return adjs, err
}

// CloseSession ends an active session. Closing twice is a no-op; an
// unknown ID fails with ErrInvalidState.
func (e *Engine) CloseSession(sessionID string) error {
	err := e.sessions.Close(sessionID)
	if errors.Is(err, session.ErrInvalidState) {
		return fmt.Errorf("%w: session %s", ErrInvalidState, sessionID)
	}
	return err
}
