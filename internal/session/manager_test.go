package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/example/learnflow/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func f(v float64) *float64 { return &v }

func testPlan() *models.SessionPlan {
	return &models.SessionPlan{
		UserID:          1,
		DurationSeconds: 1800,
		ReviewItems:     []int64{1, 2, 3, 4},
		NewItems:        []int64{10, 11, 12, 13},
	}
}

func stressSample() models.BiometricSample {
	return models.BiometricSample{
		HeartRateVariability: f(5),
		SkinConductance:      f(19),
		RecentAccuracy:       f(0.9),
		InteractionCadence:   f(20),
	}
}

// overloadSample reads as cognitive load > 0.8 while stress and
// engagement stay inside their bands.
func overloadSample() models.BiometricSample {
	return models.BiometricSample{
		HeartRateVariability: f(5),
		SkinConductance:      f(16),
		SkinTemperature:      f(31),
		RecentAccuracy:       f(0.1),
		InteractionCadence:   f(30),
	}
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(zaptest.NewLogger(t), opts...)
	t.Cleanup(m.Shutdown)
	return m
}

func TestOpen_CopiesPlan(t *testing.T) {
	m := newTestManager(t)
	plan := testPlan()
	id := m.Open(plan)
	require.NotEmpty(t, id)

	live, err := m.LivePlanSnapshot(id)
	require.NoError(t, err)
	assert.Equal(t, plan.ReviewItems, live.RemainingReviewItems)
	assert.Equal(t, plan.NewItems, live.RemainingNewItems)

	// The immutable plan is never touched by the live session.
	live.RemainingNewItems[0] = 999
	assert.Equal(t, int64(10), plan.NewItems[0])
}

func TestSubmit_UnknownSession(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Submit(context.Background(), "nope", stressSample())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmit_ClosedSession(t *testing.T) {
	m := newTestManager(t)
	id := m.Open(testPlan())
	require.NoError(t, m.Close(id))

	_, err := m.Submit(context.Background(), id, stressSample())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestClose_Idempotent(t *testing.T) {
	m := newTestManager(t)
	id := m.Open(testPlan())
	require.NoError(t, m.Close(id))
	require.NoError(t, m.Close(id)) // second close is a no-op

	err := m.Close("unknown")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmit_StressBreakReachesLivePlan(t *testing.T) {
	m := newTestManager(t)
	id := m.Open(testPlan())

	adjs, err := m.Submit(context.Background(), id, stressSample())
	require.NoError(t, err)
	require.Len(t, adjs, 1)
	require.Equal(t, models.AdjustStressBreak, adjs[0].Kind)

	// The controller applies the event asynchronously; wait for it.
	require.Eventually(t, func() bool {
		live, err := m.LivePlanSnapshot(id)
		return err == nil && live.PendingBreakSeconds == 300
	}, time.Second, 5*time.Millisecond)
}

func TestSubmit_ReduceLoadHalvesNewItems(t *testing.T) {
	m := newTestManager(t)
	id := m.Open(testPlan())

	adjs, err := m.Submit(context.Background(), id, overloadSample())
	require.NoError(t, err)
	require.Len(t, adjs, 1)
	require.Equal(t, models.AdjustReduceCognitiveLoad, adjs[0].Kind)

	require.Eventually(t, func() bool {
		live, err := m.LivePlanSnapshot(id)
		return err == nil && len(live.RemainingNewItems) == 2 && live.DifficultyDelta == -0.2
	}, time.Second, 5*time.Millisecond)
}

func TestSweepIdle_ClosesStaleSessions(t *testing.T) {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	current := base
	m := newTestManager(t,
		WithClock(func() time.Time { return current }),
		WithIdleTimeout(30*time.Minute),
	)
	stale := m.Open(testPlan())
	current = base.Add(20 * time.Minute)
	fresh := m.Open(testPlan())

	// 31 minutes after the first session's last activity.
	current = base.Add(31 * time.Minute)
	m.SweepIdleNow()

	_, err := m.Submit(context.Background(), stale, stressSample())
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = m.Submit(context.Background(), fresh, models.BiometricSample{})
	assert.NoError(t, err)
}

func TestSubmit_RefreshesActivity(t *testing.T) {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	current := base
	m := newTestManager(t,
		WithClock(func() time.Time { return current }),
		WithIdleTimeout(30*time.Minute),
	)
	id := m.Open(testPlan())

	current = base.Add(25 * time.Minute)
	_, err := m.Submit(context.Background(), id, models.BiometricSample{})
	require.NoError(t, err)

	// 31 minutes after open but only 6 after the last sample.
	current = base.Add(31 * time.Minute)
	m.SweepIdleNow()
	_, err = m.Submit(context.Background(), id, models.BiometricSample{})
	assert.NoError(t, err)
}
