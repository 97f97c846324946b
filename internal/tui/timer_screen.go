package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/focusclock/internal/domain"
	"github.com/andy/focusclock/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// adjustStep is how much +/- changes an idle countdown
const adjustStep int64 = 5 * 60

// countdownTickMsg drives Countdown.Tick. seq identifies the tick loop so
// that a loop superseded by pause/resume dies out instead of doubling up.
type countdownTickMsg struct {
	seq int
}

// tickCountdown schedules the next refresh
func tickCountdown(interval time.Duration, seq int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return countdownTickMsg{seq: seq}
	})
}

// TimerModel shows the countdown and its controls
type TimerModel struct {
	countdown *service.Countdown
	interval  time.Duration
	status    domain.Status
	seq       int

	completed *domain.Completion // set by the engine callback, consumed by Update
	err       error
	statusMsg string
}

// NewTimerModel creates a TimerModel refreshing every interval. A countdown
// must be attached before the program starts.
func NewTimerModel(interval time.Duration) *TimerModel {
	if interval <= 0 || interval >= time.Second {
		interval = service.DefaultTickInterval
	}
	return &TimerModel{interval: interval}
}

// Attach binds the countdown engine to the screen
func (m *TimerModel) Attach(c *service.Countdown) {
	m.countdown = c
	m.status = c.Status()
}

// OnComplete is the engine completion callback. It runs synchronously inside
// Tick/Toggle, which Update calls, so no locking is needed.
func (m *TimerModel) OnComplete(c domain.Completion) {
	m.completed = &c
}

// Status returns the last observed countdown status
func (m *TimerModel) Status() domain.Status {
	return m.status
}

// Init starts ticking when a countdown is already running
func (m *TimerModel) Init() tea.Cmd {
	m.refresh()
	if m.completed != nil {
		// Caught-up completion from restore
		return m.flushCompletion()
	}
	if m.status.State == domain.RunStateRunning {
		return m.startTicking()
	}
	return nil
}

// Update handles key events and ticks
func (m *TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.refresh()
		return m, nil

	case countdownTickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		if err := m.countdown.Tick(ctx); err != nil {
			m.err = err
		}
		m.refresh()
		if m.completed != nil {
			return m, m.flushCompletion()
		}
		if m.status.State == domain.RunStateRunning {
			return m, tickCountdown(m.interval, m.seq)
		}
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		m.statusMsg = ""

		switch {
		case key.Matches(msg, DefaultKeyMap.Toggle):
			return m, m.apply(m.countdown.Toggle(ctx))

		case key.Matches(msg, DefaultKeyMap.Start):
			switch m.status.State {
			case domain.RunStateIdle:
				return m, m.apply(m.countdown.Start(ctx, m.status.Duration))
			case domain.RunStateCompleted:
				// Completed is terminal; go back through Idle with the same length
				m.seq++
				if err := m.countdown.Reset(ctx); err != nil {
					return m, m.apply(err)
				}
				return m, m.apply(m.countdown.Start(ctx, m.status.Duration))
			case domain.RunStatePaused:
				return m, m.apply(m.countdown.Toggle(ctx))
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Reset):
			m.seq++ // stop the running tick loop
			if err := m.countdown.Reset(ctx); err != nil {
				m.err = err
			} else {
				m.statusMsg = "Countdown reset"
			}
			m.refresh()
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Longer):
			if m.status.State == domain.RunStateIdle {
				return m, m.apply(m.countdown.ResetTo(ctx, m.status.Duration+adjustStep))
			}

		case key.Matches(msg, DefaultKeyMap.Shorter):
			if m.status.State == domain.RunStateIdle && m.status.Duration > adjustStep {
				return m, m.apply(m.countdown.ResetTo(ctx, m.status.Duration-adjustStep))
			}
		}
	}

	return m, nil
}

// Shutdown flushes the countdown before the program exits
func (m *TimerModel) Shutdown(ctx context.Context) error {
	if m.countdown == nil {
		return nil
	}
	err := m.countdown.Shutdown(ctx)
	m.refresh()
	return err
}

// apply records the outcome of a control operation and restarts the tick
// loop if the countdown is now running
func (m *TimerModel) apply(err error) tea.Cmd {
	if err != nil {
		m.err = err
	}
	m.refresh()
	if m.completed != nil {
		return m.flushCompletion()
	}
	if m.status.State == domain.RunStateRunning {
		return m.startTicking()
	}
	return nil
}

func (m *TimerModel) startTicking() tea.Cmd {
	m.seq++
	return tickCountdown(m.interval, m.seq)
}

func (m *TimerModel) refresh() {
	if m.countdown != nil {
		m.status = m.countdown.Status()
	}
}

// flushCompletion turns a pending completion into a status line and a message
// for the other screens
func (m *TimerModel) flushCompletion() tea.Cmd {
	c := *m.completed
	m.completed = nil
	if c.CaughtUp {
		m.statusMsg = "Countdown finished while you were away"
	} else {
		m.statusMsg = fmt.Sprintf("Focus session complete: %s", formatMinutes(time.Duration(c.DurationSeconds)*time.Second))
	}
	return func() tea.Msg { return CountdownCompletedMsg{Completion: c} }
}

// View renders the timer screen
func (m *TimerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Focus"))
	b.WriteString("\n\n")

	if m.countdown == nil {
		b.WriteString("Loading...\n")
		return b.String()
	}

	st := m.status
	b.WriteString(clockStyle.Render(domain.FormatClock(st.Remaining)))
	b.WriteString("  ")
	b.WriteString(stateBadge(st.State))
	b.WriteString("\n\n")

	b.WriteString(progressBar(st.Progress(), 40))
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Length: %s", domain.FormatClock(st.Duration))))
	b.WriteString("\n")
	if st.Label != "" {
		b.WriteString(fmt.Sprintf("Label: %s\n", truncateStr(st.Label, 40)))
	}
	if st.Deadline != nil {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Ends at %s", st.Deadline.Local().Format("15:04:05"))))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(successColor).Render(m.statusMsg))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(fmt.Sprintf("Error: %s", m.err.Error())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch st.State {
	case domain.RunStateIdle:
		b.WriteString(helpStyle.Render("Keys: s=start, +/-=adjust length"))
	case domain.RunStateRunning:
		b.WriteString(helpStyle.Render("Keys: space=pause, r=reset"))
	case domain.RunStatePaused:
		b.WriteString(helpStyle.Render("Keys: space=resume, r=reset"))
	case domain.RunStateCompleted:
		b.WriteString(helpStyle.Render("Keys: s=start again, r=reset"))
	}
	b.WriteString("\n")
	return b.String()
}
