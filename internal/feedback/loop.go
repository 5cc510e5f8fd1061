// Package feedback runs the per-session control loop: it consumes live
// biometric samples, reassesses the learner's brain state, and emits
// session adjustments under per-kind cooldown control.
package feedback

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/learnflow/internal/brainstate"
	"github.com/example/learnflow/pkg/models"
)

// Trigger thresholds. These are the loop's reaction points, distinct from
// the planner's composition buckets.
const (
	stressTrigger     = 0.7
	loadTrigger       = 0.8
	engagementTrigger = 0.4
)

// DefaultCooldown is how long a fired adjustment kind stays suppressed.
const DefaultCooldown = 10 * time.Minute

// StressBreakSeconds is the pause length a stress break requests. The
// break is non-preemptive: the controller applies it at the next item
// boundary.
const StressBreakSeconds = 300

// ErrStopped is returned when a sample is submitted to a stopped loop.
var ErrStopped = fmt.Errorf("feedback loop stopped")

// gamifiedHooks are the elements an engagement boost can inject. One is
// picked by the injected randomness source.
var gamifiedHooks = []string{"streak_multiplier", "bonus_round", "leaderboard_ping", "mystery_card"}

// Phase of one adjustment kind's cooldown state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseCooldown Phase = "cooldown"
)

type envelope struct {
	sample models.BiometricSample
	reply  chan []models.Adjustment
}

// Loop is one session's feedback consumer. All trigger state lives on the
// run goroutine; callers interact only through channels.
type Loop struct {
	sessionID string
	assessor  *brainstate.Assessor
	clock     func() time.Time
	cooldown  time.Duration
	rng       *rand.Rand
	log       *zap.Logger

	samples     chan envelope
	adjustments chan models.Adjustment
	stop        chan struct{}
	stopOnce    sync.Once
	done        chan struct{}

	// cooldownUntil is read and written only by the run goroutine.
	cooldownUntil map[models.AdjustmentKind]time.Time
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock overrides the time source, for deterministic cooldown tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Loop) { l.clock = clock }
}

// WithCooldown overrides the per-kind cooldown window.
func WithCooldown(d time.Duration) Option {
	return func(l *Loop) { l.cooldown = d }
}

// WithRand injects the randomness source used for gamified hooks.
func WithRand(rng *rand.Rand) Option {
	return func(l *Loop) { l.rng = rng }
}

// New creates a loop for one session. Start must be called before samples
// are submitted.
func New(sessionID string, log *zap.Logger, opts ...Option) *Loop {
	l := &Loop{
		sessionID:     sessionID,
		assessor:      brainstate.New(),
		clock:         time.Now,
		cooldown:      DefaultCooldown,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		log:           log,
		samples:       make(chan envelope),
		adjustments:   make(chan models.Adjustment, 16),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		cooldownUntil: make(map[models.AdjustmentKind]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the consumer goroutine.
func (l *Loop) Start() {
	go l.run()
}

// Adjustments is the outbound event stream. The session controller is the
// sole consumer; the channel closes when the loop stops.
func (l *Loop) Adjustments() <-chan models.Adjustment {
	return l.adjustments
}

// Submit hands one sample to the loop and returns the adjustments it
// fired. Malformed samples are skipped, not errors. Submitting to a
// stopped loop returns ErrStopped.
func (l *Loop) Submit(ctx context.Context, sample models.BiometricSample) ([]models.Adjustment, error) {
	env := envelope{sample: sample, reply: make(chan []models.Adjustment, 1)}
	select {
	case l.samples <- env:
	case <-l.stop:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case adjs := <-env.reply:
		return adjs, nil
	case <-l.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop terminates the loop, releasing the sample subscription and any
// pending cooldown state. Idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	defer close(l.adjustments)
	for {
		select {
		case <-l.stop:
			return
		case env := <-l.samples:
			adjs := l.evaluate(env.sample)
			for _, adj := range adjs {
				select {
				case l.adjustments <- adj:
				case <-l.stop:
					env.reply <- adjs
					return
				}
			}
			env.reply <- adjs
		}
	}
}

// phase reports where a kind's cooldown state machine currently is.
func (l *Loop) phase(kind models.AdjustmentKind, now time.Time) Phase {
	if now.Before(l.cooldownUntil[kind]) {
		return PhaseCooldown
	}
	return PhaseIdle
}

// evaluate applies the trigger rules, in order, to one sample. A kind
// still cooling down is suppressed even if its condition re-fires, which
// keeps noisy sensor streams from causing adjustment storms.
func (l *Loop) evaluate(sample models.BiometricSample) []models.Adjustment {
	if !brainstate.Valid(sample) {
		// Data-quality problem, not a session failure.
		l.log.Warn("malformed biometric sample skipped", zap.String("session_id", l.sessionID))
		return nil
	}

	state := l.assessor.Assess(sample)
	now := l.clock()
	var fired []models.Adjustment

	if state.Stress > stressTrigger && l.phase(models.AdjustStressBreak, now) == PhaseIdle {
		fired = append(fired, l.fire(models.AdjustStressBreak, now, map[string]float64{
			"break_seconds": StressBreakSeconds,
		}, ""))
	}
	if state.CognitiveLoad > loadTrigger && l.phase(models.AdjustReduceCognitiveLoad, now) == PhaseIdle {
		fired = append(fired, l.fire(models.AdjustReduceCognitiveLoad, now, map[string]float64{
			"difficulty_delta": -0.2,
			"new_item_factor":  0.5,
		}, ""))
	}
	if state.Engagement < engagementTrigger && l.phase(models.AdjustEngagementBoost, now) == PhaseIdle {
		hook := gamifiedHooks[l.rng.Intn(len(gamifiedHooks))]
		fired = append(fired, l.fire(models.AdjustEngagementBoost, now, nil, hook))
	}

	if len(fired) > 0 {
		l.log.Info("adjustments fired",
			zap.String("session_id", l.sessionID),
			zap.Int("count", len(fired)),
			zap.Float64("stress", state.Stress),
			zap.Float64("cognitive_load", state.CognitiveLoad),
			zap.Float64("engagement", state.Engagement))
	}
	return fired
}

func (l *Loop) fire(kind models.AdjustmentKind, now time.Time, params map[string]float64, hook string) models.Adjustment {
	until := now.Add(l.cooldown)
	l.cooldownUntil[kind] = until
	return models.Adjustment{
		Kind:          kind,
		Parameters:    params,
		GamifiedHook:  hook,
		EmittedAt:     now,
		CooldownUntil: until,
	}
}
