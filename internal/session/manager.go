// Package session owns active study sessions. Each session holds the
// mutable runtime copy of its plan; the feedback loop proposes changes as
// events and the controller here is the only writer.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/learnflow/internal/feedback"
	"github.com/example/learnflow/pkg/models"
)

// ErrInvalidState is returned for operations on a closed or unknown
// session.
var ErrInvalidState = fmt.Errorf("session closed or unknown")

// DefaultIdleTimeout closes sessions with no interaction after this long.
const DefaultIdleTimeout = 30 * time.Minute

// LivePlan is the mutable runtime copy of a session plan. Guarded by the
// owning session's lock.
type LivePlan struct {
	RemainingReviewItems []int64
	RemainingNewItems    []int64
	DifficultyDelta      float64
	PendingBreakSeconds  int      // applied at the next item boundary
	GamifiedHooks        []string // injected engagement elements
	Applied              []models.Adjustment
}

type session struct {
	mu           sync.Mutex
	id           string
	userID       int64
	plan         *LivePlan
	loop         *feedback.Loop
	lastActivity time.Time
	closed       bool
	drained      chan struct{}
}

// Manager tracks active sessions and sweeps idle ones shut.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*session
	idleTimeout time.Duration
	cooldown    time.Duration
	clock       func() time.Time
	rng         *rand.Rand
	sched       *gocron.Scheduler
	log         *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout overrides the inactivity window.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithAdjustmentCooldown overrides the feedback cooldown window for new
// sessions.
func WithAdjustmentCooldown(d time.Duration) Option {
	return func(m *Manager) { m.cooldown = d }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithRand injects the randomness source handed to feedback loops.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

// NewManager creates a Manager. Call StartSweeper to enable automatic
// idle-session closing, and Shutdown on the way out.
func NewManager(log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		sessions:    make(map[string]*session),
		idleTimeout: DefaultIdleTimeout,
		cooldown:    feedback.DefaultCooldown,
		clock:       time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSweeper schedules the once-a-minute idle sweep.
func (m *Manager) StartSweeper() {
	m.sched = gocron.NewScheduler(time.UTC)
	m.sched.Every(1).Minute().Do(m.sweepIdle)
	m.sched.StartAsync()
}

// Open starts a session from an immutable plan and returns its ID. The
// plan is copied into the session's live state; the original is untouched.
func (m *Manager) Open(plan *models.SessionPlan) string {
	id := uuid.NewString()
	loop := feedback.New(id, m.log,
		feedback.WithClock(m.clock),
		feedback.WithCooldown(m.cooldown),
		feedback.WithRand(m.rng),
	)
	s := &session{
		id:     id,
		userID: plan.UserID,
		plan: &LivePlan{
			RemainingReviewItems: append([]int64(nil), plan.ReviewItems...),
			RemainingNewItems:    append([]int64(nil), plan.NewItems...),
		},
		loop:         loop,
		lastActivity: m.clock(),
		drained:      make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	loop.Start()
	go m.consumeAdjustments(s)

	m.log.Info("session opened",
		zap.String("session_id", id),
		zap.Int64("user_id", plan.UserID),
		zap.Int("review_items", len(plan.ReviewItems)),
		zap.Int("new_items", len(plan.NewItems)))
	return id
}

// consumeAdjustments is the sole writer of the live plan. It applies each
// event from the loop until the stream closes.
func (m *Manager) consumeAdjustments(s *session) {
	defer close(s.drained)
	for adj := range s.loop.Adjustments() {
		s.mu.Lock()
		applyAdjustment(s.plan, adj)
		s.mu.Unlock()
		m.log.Debug("adjustment applied",
			zap.String("session_id", s.id),
			zap.String("kind", string(adj.Kind)))
	}
}

func applyAdjustment(plan *LivePlan, adj models.Adjustment) {
	switch adj.Kind {
	case models.AdjustStressBreak:
		plan.PendingBreakSeconds += int(adj.Parameters["break_seconds"])
	case models.AdjustReduceCognitiveLoad:
		plan.DifficultyDelta += adj.Parameters["difficulty_delta"]
		plan.RemainingNewItems = plan.RemainingNewItems[:len(plan.RemainingNewItems)/2]
	case models.AdjustEngagementBoost:
		plan.GamifiedHooks = append(plan.GamifiedHooks, adj.GamifiedHook)
	}
	plan.Applied = append(plan.Applied, adj)
}

func (m *Manager) find(sessionID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrInvalidState)
	}
	return s, nil
}

// Submit feeds one biometric sample into the session's loop and returns
// the adjustments it emitted. Closed or unknown sessions fail with
// ErrInvalidState.
func (m *Manager) Submit(ctx context.Context, sessionID string, sample models.BiometricSample) ([]models.Adjustment, error) {
	s, err := m.find(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrInvalidState)
	}
	s.lastActivity = m.clock()
	s.mu.Unlock()

	adjs, err := s.loop.Submit(ctx, sample)
	if errors.Is(err, feedback.ErrStopped) {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrInvalidState)
	}
	return adjs, err
}

// LivePlanSnapshot returns a copy of the session's current runtime plan.
func (m *Manager) LivePlanSnapshot(sessionID string) (LivePlan, error) {
	s, err := m.find(sessionID)
	if err != nil {
		return LivePlan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := *s.plan
	snap.RemainingReviewItems = append([]int64(nil), s.plan.RemainingReviewItems...)
	snap.RemainingNewItems = append([]int64(nil), s.plan.RemainingNewItems...)
	snap.GamifiedHooks = append([]string(nil), s.plan.GamifiedHooks...)
	snap.Applied = append([]models.Adjustment(nil), s.plan.Applied...)
	return snap, nil
}

// Close ends a session, stopping its loop and releasing its timers.
// Closing an already-closed session is a no-op; an unknown ID is
// ErrInvalidState.
func (m *Manager) Close(sessionID string) error {
	s, err := m.find(sessionID)
	if err != nil {
		return err
	}
	m.closeSession(s, "closed")
	return nil
}

func (m *Manager) closeSession(s *session, reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.loop.Stop()
	<-s.drained
	m.log.Info("session ended",
		zap.String("session_id", s.id),
		zap.Int64("user_id", s.userID),
		zap.String("reason", reason))
}

// sweepIdle closes sessions whose last interaction is older than the idle
// window.
func (m *Manager) sweepIdle() {
	cutoff := m.clock().Add(-m.idleTimeout)

	m.mu.Lock()
	var idle []*session
	for _, s := range m.sessions {
		s.mu.Lock()
		if !s.closed && s.lastActivity.Before(cutoff) {
			idle = append(idle, s)
		}
		s.mu.Unlock()
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.closeSession(s, "idle timeout")
	}
}

// SweepIdleNow runs one idle sweep immediately.
func (m *Manager) SweepIdleNow() {
	m.sweepIdle()
}

// Shutdown stops the sweeper and closes every remaining session.
func (m *Manager) Shutdown() {
	if m.sched != nil {
		m.sched.Stop()
	}
	m.mu.Lock()
	remaining := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		remaining = append(remaining, s)
	}
	m.mu.Unlock()
	for _, s := range remaining {
		m.closeSession(s, "shutdown")
	}
}
