package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/andy/focusclock/internal/clock"
	"github.com/andy/focusclock/internal/domain"
	"github.com/andy/focusclock/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrNegativeDuration   = errors.New("duration must not be negative")
	ErrDurationTooLong    = errors.New("duration is too long")
	ErrAlreadyRunning     = errors.New("countdown is already running")
	ErrCountdownPaused    = errors.New("countdown is paused; toggle to resume or reset it")
	ErrCountdownCompleted = errors.New("countdown has completed; reset it before starting again")
	ErrRestoreNotIdle     = errors.New("snapshot can only be restored into an idle countdown")
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
)

// checkDuration rejects durations the engine cannot turn into a deadline
func checkDuration(seconds int64) error {
	if seconds < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDuration, seconds)
	}
	if seconds > domain.MaxDurationSeconds {
		return fmt.Errorf("%w: %d seconds exceeds %d", ErrDurationTooLong, seconds, domain.MaxDurationSeconds)
	}
	return nil
}

// CompletionFunc is notified once per countdown that reaches zero
type CompletionFunc func(domain.Completion)

// Option configures a Countdown
type Option func(*Countdown)

// WithClock replaces the wall clock
func WithClock(c clock.Clock) Option {
	return func(cd *Countdown) { cd.clock = c }
}

// WithLogger sets the logger used for state transitions
func WithLogger(l *slog.Logger) Option {
	return func(cd *Countdown) { cd.logger = l }
}

// WithOnComplete registers the completion callback
func WithOnComplete(fn CompletionFunc) Option {
	return func(cd *Countdown) { cd.onComplete = fn }
}

// WithCatchUp controls whether a countdown found already expired on Restore
// still notifies completion. Off by default.
func WithCatchUp(enabled bool) Option {
	return func(cd *Countdown) { cd.catchUp = enabled }
}

// WithLabel attaches a free-form label to countdowns started by this engine
func WithLabel(label string) Option {
	return func(cd *Countdown) { cd.label = label }
}

// Countdown computes remaining time by subtracting "now" from an absolute
// deadline on every Tick, so late or irregular ticks never accumulate error.
//
// Deadline is set iff the state is Running. Remaining stays within
// [0, Duration] and reaches 0 only in the Completed state.
type Countdown struct {
	mu sync.Mutex

	store      repository.SnapshotRepository
	clock      clock.Clock
	logger     *slog.Logger
	onComplete CompletionFunc
	catchUp    bool
	newID      func() string

	id        string
	label     string
	duration  int64
	remaining int64
	state     domain.RunState
	deadline  time.Time
	notified  bool
}

// NewCountdown creates an Idle countdown configured for durationSeconds
func NewCountdown(store repository.SnapshotRepository, durationSeconds int64, opts ...Option) (*Countdown, error) {
	if err := checkDuration(durationSeconds); err != nil {
		return nil, err
	}

	c := &Countdown{
		store:     store,
		clock:     clock.Real{},
		logger:    slog.New(slog.DiscardHandler),
		newID:     uuid.NewString,
		duration:  durationSeconds,
		remaining: durationSeconds,
		state:     domain.RunStateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Status returns the current observable state
func (c *Countdown) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := domain.Status{
		CountdownID: c.id,
		Label:       c.label,
		Duration:    c.duration,
		Remaining:   c.remaining,
		State:       c.state,
	}
	if c.state == domain.RunStateRunning {
		d := c.deadline
		st.Deadline = &d
	}
	return st
}

// Start begins a new countdown of durationSeconds from Idle. Starting a Running
// or Paused countdown is an error so progress is never discarded silently, and a
// Completed countdown must be reset first.
func (c *Countdown) Start(ctx context.Context, durationSeconds int64) error {
	if err := checkDuration(durationSeconds); err != nil {
		return err
	}

	c.mu.Lock()
	switch c.state {
	case domain.RunStateRunning:
		c.mu.Unlock()
		return ErrAlreadyRunning
	case domain.RunStatePaused:
		c.mu.Unlock()
		return ErrCountdownPaused
	case domain.RunStateCompleted:
		c.mu.Unlock()
		return ErrCountdownCompleted
	}

	now := c.clock.Now()
	id := c.newID()

	if durationSeconds == 0 {
		c.id = id
		c.duration = 0
		c.notified = false
		done, err := c.completeLocked(ctx, now, false, true)
		c.mu.Unlock()
		c.notify(done)
		return err
	}

	snap := &domain.Snapshot{
		CountdownID:        id,
		Label:              c.label,
		DurationSeconds:    durationSeconds,
		RemainingSeconds:   durationSeconds,
		RunState:           domain.RunStateRunning,
		SavedAtEpochMillis: now.UnixMilli(),
	}
	if err := c.store.Save(ctx, snap); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to checkpoint countdown: %w", err)
	}

	c.id = id
	c.duration = durationSeconds
	c.remaining = durationSeconds
	c.deadline = now.Add(time.Duration(durationSeconds) * time.Second)
	c.state = domain.RunStateRunning
	c.notified = false
	c.mu.Unlock()

	c.logger.Info("countdown started",
		slog.String("countdown_id", id),
		slog.Int64("duration_seconds", durationSeconds),
	)
	return nil
}

// Toggle switches between Running and Paused. An Idle countdown starts with its
// configured duration. Toggling a Completed countdown does nothing.
func (c *Countdown) Toggle(ctx context.Context) error {
	c.mu.Lock()
	now := c.clock.Now()

	switch c.state {
	case domain.RunStateCompleted:
		c.mu.Unlock()
		return nil

	case domain.RunStateRunning:
		c.refreshLocked(now)
		if c.remaining == 0 {
			done, err := c.completeLocked(ctx, now, false, true)
			c.mu.Unlock()
			c.notify(done)
			return err
		}
		if err := c.store.Save(ctx, c.snapshotLocked(domain.RunStatePaused, now)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to checkpoint countdown: %w", err)
		}
		c.state = domain.RunStatePaused
		c.deadline = time.Time{}
		remaining, id := c.remaining, c.id
		c.mu.Unlock()

		c.logger.Info("countdown paused",
			slog.String("countdown_id", id),
			slog.Int64("remaining_seconds", remaining),
		)
		return nil
	}

	// Idle or Paused
	id := c.id
	if c.state == domain.RunStateIdle || id == "" {
		id = c.newID()
	}
	if c.remaining == 0 {
		c.id = id
		c.notified = false
		done, err := c.completeLocked(ctx, now, false, true)
		c.mu.Unlock()
		c.notify(done)
		return err
	}

	snap := c.snapshotLocked(domain.RunStateRunning, now)
	snap.CountdownID = id
	if err := c.store.Save(ctx, snap); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to checkpoint countdown: %w", err)
	}

	if c.state == domain.RunStateIdle {
		c.notified = false
	}
	c.id = id
	c.deadline = now.Add(time.Duration(c.remaining) * time.Second)
	c.state = domain.RunStateRunning
	remaining := c.remaining
	c.mu.Unlock()

	c.logger.Info("countdown resumed",
		slog.String("countdown_id", id),
		slog.Int64("remaining_seconds", remaining),
	)
	return nil
}

// Reset returns to Idle with the current duration
func (c *Countdown) Reset(ctx context.Context) error {
	c.mu.Lock()
	d := c.duration
	c.mu.Unlock()
	return c.ResetTo(ctx, d)
}

// ResetTo returns to Idle configured for durationSeconds and clears any saved
// snapshot. The in-memory reset happens even if clearing the store fails.
func (c *Countdown) ResetTo(ctx context.Context, durationSeconds int64) error {
	if err := checkDuration(durationSeconds); err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.state
	c.id = ""
	c.duration = durationSeconds
	c.remaining = durationSeconds
	c.state = domain.RunStateIdle
	c.deadline = time.Time{}
	c.notified = false
	c.mu.Unlock()

	c.logger.Info("countdown reset",
		slog.String("previous_state", string(prev)),
		slog.Int64("duration_seconds", durationSeconds),
	)

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// Tick recomputes the remaining time from the deadline. It is a no-op unless
// the countdown is Running.
func (c *Countdown) Tick(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.RunStateRunning {
		c.mu.Unlock()
		return nil
	}

	now := c.clock.Now()
	c.refreshLocked(now)
	if c.remaining > 0 {
		c.mu.Unlock()
		return nil
	}

	done, err := c.completeLocked(ctx, now, false, true)
	c.mu.Unlock()
	c.notify(done)
	return err
}

// Restore resumes from a snapshot loaded at construction time. A nil snapshot
// leaves the countdown Idle. Running snapshots are charged the time elapsed
// since they were saved. The result is Paused because no poller is attached
// yet; if nothing remains the countdown is Completed and the callback fires
// only when catch-up is enabled.
func (c *Countdown) Restore(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return nil
	}
	if snap.DurationSeconds < 0 || snap.RemainingSeconds < 0 ||
		snap.DurationSeconds > domain.MaxDurationSeconds || snap.RemainingSeconds > domain.MaxDurationSeconds {
		return fmt.Errorf("%w: duration %d, remaining %d", ErrInvalidSnapshot, snap.DurationSeconds, snap.RemainingSeconds)
	}
	if _, err := domain.ParseRunState(string(snap.RunState)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	c.mu.Lock()
	if c.state != domain.RunStateIdle {
		c.mu.Unlock()
		return ErrRestoreNotIdle
	}

	now := c.clock.Now()
	c.id = snap.CountdownID
	if snap.Label != "" {
		c.label = snap.Label
	}
	c.duration = snap.DurationSeconds
	c.deadline = time.Time{}

	switch snap.RunState {
	case domain.RunStateIdle:
		c.remaining = snap.DurationSeconds
		c.mu.Unlock()
		return nil

	case domain.RunStateCompleted:
		c.notified = true
		_, err := c.completeLocked(ctx, now, true, false)
		c.mu.Unlock()
		return err
	}

	remaining := clamp(snap.RemainingAt(now), 0, snap.DurationSeconds)
	c.remaining = remaining

	if remaining == 0 {
		c.notified = false
		done, err := c.completeLocked(ctx, now, true, c.catchUp)
		c.notified = true
		id := c.id
		c.mu.Unlock()

		c.logger.Info("restored countdown already expired",
			slog.String("countdown_id", id),
			slog.Bool("catch_up", done != nil),
		)
		c.notify(done)
		return err
	}

	c.state = domain.RunStatePaused
	c.notified = false
	var err error
	if snap.RunState == domain.RunStateRunning {
		// The stored running snapshot keeps losing time; pin it as paused.
		if saveErr := c.store.Save(ctx, c.snapshotLocked(domain.RunStatePaused, now)); saveErr != nil {
			err = fmt.Errorf("failed to checkpoint countdown: %w", saveErr)
		}
	}
	id := c.id
	c.mu.Unlock()

	c.logger.Info("countdown restored",
		slog.String("countdown_id", id),
		slog.String("snapshot_state", string(snap.RunState)),
		slog.Int64("remaining_seconds", remaining),
	)
	return err
}

// Shutdown flushes state before the engine is discarded. A live countdown is
// saved as Paused with its remaining seconds; anything else clears the store.
// The countdown is left out of Running so the caller can stop its poller.
func (c *Countdown) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	now := c.clock.Now()

	switch c.state {
	case domain.RunStateRunning:
		c.refreshLocked(now)
		if c.remaining == 0 {
			done, err := c.completeLocked(ctx, now, false, true)
			c.mu.Unlock()
			c.notify(done)
			return err
		}
		c.state = domain.RunStatePaused
		c.deadline = time.Time{}
		fallthrough

	case domain.RunStatePaused:
		snap := c.snapshotLocked(domain.RunStatePaused, now)
		err := c.store.Save(ctx, snap)
		c.mu.Unlock()
		if err != nil {
			c.logger.Error("failed to flush countdown", slog.String("error", err.Error()))
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		c.logger.Info("countdown flushed",
			slog.String("countdown_id", snap.CountdownID),
			slog.Int64("remaining_seconds", snap.RemainingSeconds),
		)
		return nil
	}

	c.mu.Unlock()
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// refreshLocked recomputes remaining seconds from the deadline
func (c *Countdown) refreshLocked(now time.Time) {
	if c.state != domain.RunStateRunning {
		return
	}
	c.remaining = clamp(domain.CeilSeconds(c.deadline.Sub(now)), 0, c.duration)
}

// completeLocked moves to Completed and clears the store. It returns the
// completion to deliver, or nil if the callback must not fire.
func (c *Countdown) completeLocked(ctx context.Context, now time.Time, caughtUp, notify bool) (*domain.Completion, error) {
	c.state = domain.RunStateCompleted
	c.remaining = 0
	c.deadline = time.Time{}

	var done *domain.Completion
	if notify && !c.notified {
		c.notified = true
		done = &domain.Completion{
			CountdownID:     c.id,
			Label:           c.label,
			DurationSeconds: c.duration,
			CompletedAt:     now,
			CaughtUp:        caughtUp,
		}
	}

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear snapshot after completion",
			slog.String("countdown_id", c.id),
			slog.String("error", err.Error()),
		)
		return done, fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return done, nil
}

// notify runs the completion callback. Must be called without c.mu held.
func (c *Countdown) notify(done *domain.Completion) {
	if done == nil {
		return
	}
	c.logger.Info("countdown completed",
		slog.String("countdown_id", done.CountdownID),
		slog.Int64("duration_seconds", done.DurationSeconds),
		slog.Bool("caught_up", done.CaughtUp),
	)
	if c.onComplete != nil {
		c.onComplete(*done)
	}
}

func (c *Countdown) snapshotLocked(state domain.RunState, now time.Time) *domain.Snapshot {
	return &domain.Snapshot{
		CountdownID:        c.id,
		Label:              c.label,
		DurationSeconds:    c.duration,
		RemainingSeconds:   c.remaining,
		RunState:           state,
		SavedAtEpochMillis: now.UnixMilli(),
	}
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
