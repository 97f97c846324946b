package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/focusclock/internal/clock"
	"github.com/andy/focusclock/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory SnapshotRepository
type memStore struct {
	snap    *domain.Snapshot
	saves   int
	clears  int
	saveErr error
	clrErr  error
}

func (m *memStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *snap
	m.snap = &cp
	m.saves++
	return nil
}

func (m *memStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	if m.snap == nil {
		return nil, nil
	}
	cp := *m.snap
	return &cp, nil
}

func (m *memStore) Clear(ctx context.Context) error {
	if m.clrErr != nil {
		return m.clrErr
	}
	m.snap = nil
	m.clears++
	return nil
}

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type harness struct {
	clock       *clock.Manual
	store       *memStore
	completions []domain.Completion
}

func newHarness() *harness {
	return &harness{clock: clock.NewManual(epoch), store: &memStore{}}
}

func (h *harness) countdown(t *testing.T, duration int64, opts ...Option) *Countdown {
	t.Helper()
	opts = append([]Option{
		WithClock(h.clock),
		WithOnComplete(func(c domain.Completion) { h.completions = append(h.completions, c) }),
	}, opts...)
	c, err := NewCountdown(h.store, duration, opts...)
	require.NoError(t, err)
	return c
}

func TestCountdown_StartRunsFromDeadline(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 25)

	require.NoError(t, c.Start(ctx, 10))

	st := c.Status()
	assert.Equal(t, domain.RunStateRunning, st.State)
	assert.Equal(t, int64(10), st.Duration)
	assert.Equal(t, int64(10), st.Remaining)
	require.NotNil(t, st.Deadline)
	assert.Equal(t, epoch.Add(10*time.Second), *st.Deadline)
	assert.NotEmpty(t, st.CountdownID)

	// Start checkpoints a running snapshot for crash recovery
	require.NotNil(t, h.store.snap)
	assert.Equal(t, domain.RunStateRunning, h.store.snap.RunState)
	assert.Equal(t, epoch.UnixMilli(), h.store.snap.SavedAtEpochMillis)
}

func TestCountdown_MonotonicWhileRunning(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 30))

	prev := c.Status().Remaining
	steps := []time.Duration{0, 130 * time.Millisecond, 870 * time.Millisecond, 2 * time.Second, 0, 4100 * time.Millisecond, 11 * time.Second}
	for _, step := range steps {
		h.clock.Advance(step)
		require.NoError(t, c.Tick(ctx))
		got := c.Status().Remaining
		assert.LessOrEqual(t, got, prev, "remaining increased after advancing %v", step)
		prev = got
	}
}

func TestCountdown_CeilingRounding(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 5))

	h.clock.Advance(4900 * time.Millisecond)
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, int64(1), c.Status().Remaining, "0.1s left must still display as 1")
	assert.Equal(t, domain.RunStateRunning, c.Status().State)

	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, int64(0), c.Status().Remaining)
	assert.Equal(t, domain.RunStateCompleted, c.Status().State)
}

func TestCountdown_DriftTolerance(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 10))

	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, int64(10), c.Status().Remaining)

	// One late tick after a long scheduling gap
	h.clock.Advance(10400 * time.Millisecond)
	require.NoError(t, c.Tick(ctx))

	st := c.Status()
	assert.Equal(t, int64(0), st.Remaining)
	assert.Equal(t, domain.RunStateCompleted, st.State)
	assert.Nil(t, st.Deadline)
	assert.Len(t, h.completions, 1)
	assert.Nil(t, h.store.snap, "completion clears the snapshot")
}

func TestCountdown_PauseResumeExactness(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 100))

	h.clock.Advance(30 * time.Second)
	require.NoError(t, c.Toggle(ctx))
	st := c.Status()
	assert.Equal(t, domain.RunStatePaused, st.State)
	assert.Equal(t, int64(70), st.Remaining)
	assert.Nil(t, st.Deadline)

	// Ticks while paused change nothing
	h.clock.Advance(500 * time.Second)
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, int64(70), c.Status().Remaining)

	require.NoError(t, c.Toggle(ctx))
	st = c.Status()
	assert.Equal(t, domain.RunStateRunning, st.State)
	assert.Equal(t, int64(70), st.Remaining)
	require.NotNil(t, st.Deadline)
	assert.Equal(t, h.clock.Now().Add(70*time.Second), *st.Deadline, "deadline is recomputed on resume")

	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, int64(70), c.Status().Remaining)
}

func TestCountdown_IdempotentCompletion(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0, WithLabel("deep work"))
	require.NoError(t, c.Start(ctx, 3))

	h.clock.Advance(3 * time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Tick(ctx))
		h.clock.Advance(time.Second)
	}
	require.NoError(t, c.Toggle(ctx), "toggle after completion is a no-op")
	require.NoError(t, c.Shutdown(ctx))

	require.Len(t, h.completions, 1)
	got := h.completions[0]
	assert.Equal(t, int64(3), got.DurationSeconds)
	assert.Equal(t, "deep work", got.Label)
	assert.Equal(t, epoch.Add(3*time.Second), got.CompletedAt)
	assert.False(t, got.CaughtUp)
	assert.Equal(t, domain.RunStateCompleted, c.Status().State)
}

func TestCountdown_RoundTripPersistence(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 60))

	h.clock.Advance(20 * time.Second)
	require.NoError(t, c.Shutdown(ctx))
	assert.Equal(t, domain.RunStatePaused, c.Status().State, "shutdown leaves Running")

	saved, err := h.store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, domain.RunStatePaused, saved.RunState)
	assert.Equal(t, int64(40), saved.RemainingSeconds)

	// Time away does not count against a paused snapshot
	h.clock.Advance(10 * time.Minute)

	fresh := h.countdown(t, 0)
	require.NoError(t, fresh.Restore(ctx, saved))

	st := fresh.Status()
	assert.Equal(t, domain.RunStatePaused, st.State)
	assert.Equal(t, int64(40), st.Remaining)
	assert.Equal(t, int64(60), st.Duration)
	assert.Equal(t, saved.CountdownID, st.CountdownID)

	require.NoError(t, fresh.Toggle(ctx))
	h.clock.Advance(40 * time.Second)
	require.NoError(t, fresh.Tick(ctx))
	assert.Equal(t, domain.RunStateCompleted, fresh.Status().State)
	require.Len(t, h.completions, 1)
	assert.Equal(t, saved.CountdownID, h.completions[0].CountdownID)
}

func TestCountdown_RestoreRunningSnapshotChargesElapsed(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	// A crashed process leaves its last running checkpoint behind
	crashed := h.countdown(t, 0)
	require.NoError(t, crashed.Start(ctx, 60))
	saved, _ := h.store.Load(ctx)

	h.clock.Advance(15*time.Second + 200*time.Millisecond)

	c := h.countdown(t, 0)
	require.NoError(t, c.Restore(ctx, saved))

	st := c.Status()
	assert.Equal(t, domain.RunStatePaused, st.State)
	assert.Equal(t, int64(45), st.Remaining)

	repinned, _ := h.store.Load(ctx)
	require.NotNil(t, repinned)
	assert.Equal(t, domain.RunStatePaused, repinned.RunState)
	assert.Equal(t, int64(45), repinned.RemainingSeconds)
}

func TestCountdown_RestoreExpiredSuppressesCallback(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	h.store.snap = &domain.Snapshot{
		CountdownID:        "abc",
		DurationSeconds:    60,
		RemainingSeconds:   30,
		RunState:           domain.RunStateRunning,
		SavedAtEpochMillis: epoch.UnixMilli(),
	}
	h.clock.Advance(time.Hour)

	c := h.countdown(t, 0)
	saved, _ := h.store.Load(ctx)
	require.NoError(t, c.Restore(ctx, saved))

	assert.Equal(t, domain.RunStateCompleted, c.Status().State)
	assert.Equal(t, int64(0), c.Status().Remaining)
	assert.Empty(t, h.completions)
	assert.Nil(t, h.store.snap)

	// Later ticks must not deliver a late notification either
	require.NoError(t, c.Tick(ctx))
	assert.Empty(t, h.completions)
}

func TestCountdown_RestoreExpiredWithCatchUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	snap := &domain.Snapshot{
		CountdownID:        "abc",
		Label:              "writing",
		DurationSeconds:    60,
		RemainingSeconds:   30,
		RunState:           domain.RunStateRunning,
		SavedAtEpochMillis: epoch.UnixMilli(),
	}
	h.clock.Advance(31 * time.Second)

	c := h.countdown(t, 0, WithCatchUp(true))
	require.NoError(t, c.Restore(ctx, snap))
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.Shutdown(ctx))

	require.Len(t, h.completions, 1)
	assert.True(t, h.completions[0].CaughtUp)
	assert.Equal(t, "writing", h.completions[0].Label)
	assert.Equal(t, "abc", h.completions[0].CountdownID)
}

func TestCountdown_RestoreEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("nil snapshot leaves a fresh idle countdown", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 1500)
		require.NoError(t, c.Restore(ctx, nil))
		st := c.Status()
		assert.Equal(t, domain.RunStateIdle, st.State)
		assert.Equal(t, int64(1500), st.Remaining)
	})

	t.Run("completed snapshot never notifies", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 0, WithCatchUp(true))
		require.NoError(t, c.Restore(ctx, &domain.Snapshot{CountdownID: "x", DurationSeconds: 10, RunState: domain.RunStateCompleted}))
		assert.Equal(t, domain.RunStateCompleted, c.Status().State)
		assert.Empty(t, h.completions)
	})

	t.Run("remaining is clamped to duration", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 0)
		require.NoError(t, c.Restore(ctx, &domain.Snapshot{CountdownID: "x", DurationSeconds: 10, RemainingSeconds: 99, RunState: domain.RunStatePaused}))
		assert.Equal(t, int64(10), c.Status().Remaining)
	})

	t.Run("negative values are rejected", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 5)
		err := c.Restore(ctx, &domain.Snapshot{DurationSeconds: -1, RunState: domain.RunStatePaused})
		assert.ErrorIs(t, err, ErrInvalidSnapshot)
		assert.Equal(t, domain.RunStateIdle, c.Status().State)
	})

	t.Run("restore requires idle", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 0)
		require.NoError(t, c.Start(ctx, 10))
		err := c.Restore(ctx, &domain.Snapshot{DurationSeconds: 5, RemainingSeconds: 5, RunState: domain.RunStatePaused})
		assert.ErrorIs(t, err, ErrRestoreNotIdle)
		assert.Equal(t, int64(10), c.Status().Duration)
	})
}

func TestCountdown_ResetClearsEverything(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 90))
	h.clock.Advance(45 * time.Second)
	require.NoError(t, c.Toggle(ctx))
	require.NotNil(t, h.store.snap)

	require.NoError(t, c.Reset(ctx))

	st := c.Status()
	assert.Equal(t, domain.RunStateIdle, st.State)
	assert.Equal(t, int64(90), st.Remaining)
	assert.Equal(t, int64(90), st.Duration)
	assert.Nil(t, st.Deadline)
	snap, err := h.store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, c.ResetTo(ctx, 300))
	assert.Equal(t, int64(300), c.Status().Remaining)

	// Idle toggles straight into a new countdown
	require.NoError(t, c.Toggle(ctx))
	assert.Equal(t, domain.RunStateRunning, c.Status().State)
	assert.Equal(t, int64(300), c.Status().Remaining)
}

func TestCountdown_ResetAfterCompletionAllowsNewNotification(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)

	require.NoError(t, c.Start(ctx, 1))
	h.clock.Advance(time.Second)
	require.NoError(t, c.Tick(ctx))

	require.NoError(t, c.Reset(ctx))
	require.NoError(t, c.Start(ctx, 1))
	h.clock.Advance(time.Second)
	require.NoError(t, c.Tick(ctx))

	require.Len(t, h.completions, 2)
	assert.NotEqual(t, h.completions[0].CountdownID, h.completions[1].CountdownID)
}

func TestCountdown_RejectsNegativeDuration(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 20)

	err := c.Start(ctx, -1)
	assert.ErrorIs(t, err, ErrNegativeDuration)
	err = c.ResetTo(ctx, -5)
	assert.ErrorIs(t, err, ErrNegativeDuration)

	st := c.Status()
	assert.Equal(t, domain.RunStateIdle, st.State)
	assert.Equal(t, int64(20), st.Duration)
	assert.Equal(t, int64(20), st.Remaining)
	assert.Zero(t, h.store.saves)
	assert.Zero(t, h.store.clears)

	_, err = NewCountdown(h.store, -3)
	assert.ErrorIs(t, err, ErrNegativeDuration)
}

func TestCountdown_RejectsDurationBeyondDeadlineRange(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 20)
	tooLong := domain.MaxDurationSeconds + 1

	_, err := NewCountdown(h.store, tooLong)
	assert.ErrorIs(t, err, ErrDurationTooLong)

	assert.ErrorIs(t, c.Start(ctx, 10_000_000_000), ErrDurationTooLong)
	assert.ErrorIs(t, c.ResetTo(ctx, tooLong), ErrDurationTooLong)

	st := c.Status()
	assert.Equal(t, domain.RunStateIdle, st.State)
	assert.Equal(t, int64(20), st.Duration)
	assert.Zero(t, h.store.saves)
	assert.Zero(t, h.store.clears)

	err = c.Restore(ctx, &domain.Snapshot{
		CountdownID:        "huge",
		DurationSeconds:    tooLong,
		RemainingSeconds:   tooLong,
		RunState:           domain.RunStateRunning,
		SavedAtEpochMillis: epoch.UnixMilli(),
	})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Equal(t, domain.RunStateIdle, c.Status().State)
	assert.Empty(t, h.completions)
}

func TestCountdown_LongestDurationDoesNotCompleteEarly(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)

	require.NoError(t, c.Start(ctx, domain.MaxDurationSeconds))
	st := c.Status()
	require.NotNil(t, st.Deadline)
	assert.True(t, st.Deadline.After(epoch), "deadline must lie in the future")

	h.clock.Advance(250 * time.Millisecond)
	require.NoError(t, c.Tick(ctx))
	st = c.Status()
	assert.Equal(t, domain.RunStateRunning, st.State)
	assert.Equal(t, domain.MaxDurationSeconds, st.Remaining)
	assert.Empty(t, h.completions)
}

func TestCountdown_CompletedIsTerminalUntilReset(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)

	require.NoError(t, c.Start(ctx, 3))
	h.clock.Advance(3 * time.Second)
	require.NoError(t, c.Tick(ctx))
	require.Equal(t, domain.RunStateCompleted, c.Status().State)

	assert.ErrorIs(t, c.Start(ctx, 10), ErrCountdownCompleted)
	st := c.Status()
	assert.Equal(t, domain.RunStateCompleted, st.State)
	assert.Equal(t, int64(3), st.Duration)

	require.NoError(t, c.Reset(ctx))
	require.NoError(t, c.Start(ctx, 10))
	assert.Equal(t, domain.RunStateRunning, c.Status().State)
	assert.Len(t, h.completions, 1)
}

func TestCountdown_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 50))
	h.clock.Advance(10 * time.Second)

	assert.ErrorIs(t, c.Start(ctx, 50), ErrAlreadyRunning)
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, int64(40), c.Status().Remaining, "progress survives a rejected start")

	require.NoError(t, c.Toggle(ctx))
	assert.ErrorIs(t, c.Start(ctx, 50), ErrCountdownPaused)
	assert.Equal(t, int64(40), c.Status().Remaining)
}

func TestCountdown_ZeroDurationCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)

	require.NoError(t, c.Start(ctx, 0))
	assert.Equal(t, domain.RunStateCompleted, c.Status().State)
	assert.Len(t, h.completions, 1)

	require.NoError(t, c.Tick(ctx))
	assert.Len(t, h.completions, 1)
}

func TestCountdown_CheckpointFailureAbortsTransition(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.saveErr = errors.New("disk full")
	c := h.countdown(t, 30)

	err := c.Start(ctx, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, domain.RunStateIdle, c.Status().State)

	err = c.Toggle(ctx)
	require.Error(t, err)
	assert.Equal(t, domain.RunStateIdle, c.Status().State)
}

func TestCountdown_ShutdownStates(t *testing.T) {
	ctx := context.Background()

	t.Run("idle clears stale snapshot", func(t *testing.T) {
		h := newHarness()
		h.store.snap = &domain.Snapshot{CountdownID: "old", RunState: domain.RunStatePaused}
		c := h.countdown(t, 10)
		require.NoError(t, c.Shutdown(ctx))
		assert.Nil(t, h.store.snap)
	})

	t.Run("paused is flushed as paused", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 0)
		require.NoError(t, c.Start(ctx, 10))
		h.clock.Advance(4 * time.Second)
		require.NoError(t, c.Toggle(ctx))
		h.clock.Advance(time.Minute)
		require.NoError(t, c.Shutdown(ctx))
		require.NotNil(t, h.store.snap)
		assert.Equal(t, domain.RunStatePaused, h.store.snap.RunState)
		assert.Equal(t, int64(6), h.store.snap.RemainingSeconds)
	})

	t.Run("running past deadline completes", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 0)
		require.NoError(t, c.Start(ctx, 10))
		h.clock.Advance(11 * time.Second)
		require.NoError(t, c.Shutdown(ctx))
		assert.Equal(t, domain.RunStateCompleted, c.Status().State)
		assert.Len(t, h.completions, 1)
		assert.Nil(t, h.store.snap)
	})

	t.Run("save failure still stops running", func(t *testing.T) {
		h := newHarness()
		c := h.countdown(t, 0)
		require.NoError(t, c.Start(ctx, 10))
		h.store.saveErr = errors.New("read-only")
		require.Error(t, c.Shutdown(ctx))
		assert.Equal(t, domain.RunStatePaused, c.Status().State)
	})
}

func TestCountdown_CompletionClearFailureIsReported(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.countdown(t, 0)
	require.NoError(t, c.Start(ctx, 2))

	h.store.clrErr = errors.New("locked")
	h.clock.Advance(2 * time.Second)
	err := c.Tick(ctx)
	require.Error(t, err)

	assert.Equal(t, domain.RunStateCompleted, c.Status().State)
	assert.Len(t, h.completions, 1)
}

func TestCountdown_CallbackMayReadStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	var seen domain.RunState
	var c *Countdown
	c = h.countdown(t, 0, WithOnComplete(func(domain.Completion) {
		seen = c.Status().State
	}))
	require.NoError(t, c.Start(ctx, 1))
	h.clock.Advance(time.Second)
	require.NoError(t, c.Tick(ctx))

	assert.Equal(t, domain.RunStateCompleted, seen)
}
