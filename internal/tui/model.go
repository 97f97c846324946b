package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/focusclock/internal/app"
	"github.com/andy/focusclock/internal/domain"
	"github.com/andy/focusclock/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenTimer Screen = iota
	ScreenSessions
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenTimer:
		return "Timer"
	case ScreenSessions:
		return "History"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	currentScreen Screen
	width         int
	height        int

	timer    *TimerModel
	sessions *SessionsModel // lazy initialized
	history  service.SessionService

	err error
}

// New creates a new root model around an attached timer screen
func New(timer *TimerModel, history service.SessionService) Model {
	return Model{
		currentScreen: ScreenTimer,
		timer:         timer,
		history:       history,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.timer.Init()
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	switch screen {
	case ScreenTimer:
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenSessions:
		if m.sessions == nil {
			m.sessions = NewSessionsModel(m.history)
			return m.sessions.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	}
	return nil
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			// The countdown is flushed by Run once the program exits
			return m, tea.Quit

		case key.Matches(msg, DefaultKeyMap.Timer):
			m.currentScreen = ScreenTimer
			return m, m.initScreen(ScreenTimer)

		case key.Matches(msg, DefaultKeyMap.Sessions):
			m.currentScreen = ScreenSessions
			return m, m.initScreen(ScreenSessions)
		}

	case countdownTickMsg:
		// Ticks keep flowing to the countdown whatever screen is shown
		_, cmd := m.timer.Update(msg)
		return m, cmd

	case CountdownCompletedMsg:
		if m.sessions != nil {
			_, cmd := m.sessions.Update(msg)
			return m, cmd
		}
		return m, nil

	case SwitchScreenMsg:
		m.currentScreen = msg.Screen
		return m, m.initScreen(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	switch m.currentScreen {
	case ScreenTimer:
		_, cmd = m.timer.Update(msg)
	case ScreenSessions:
		if m.sessions != nil {
			_, cmd = m.sessions.Update(msg)
		}
	}

	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("focusclock - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[T]imer  [H]istory  [Q]uit")

	var content string
	switch m.currentScreen {
	case ScreenTimer:
		content = m.timer.View()
	case ScreenSessions:
		if m.sessions != nil {
			content = m.sessions.View()
		} else {
			content = "Loading..."
		}
	}

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run opens the countdown, starts the TUI and flushes the countdown on exit
func Run(ctx context.Context, a *app.App, opts app.CountdownOptions) error {
	timer := NewTimerModel(a.Config.Timer.TickInterval)

	next := opts.OnComplete
	opts.OnComplete = func(c domain.Completion) {
		timer.OnComplete(c)
		if next != nil {
			next(c)
		}
	}

	countdown, err := a.OpenCountdown(ctx, opts)
	if err != nil {
		return err
	}
	timer.Attach(countdown)

	p := tea.NewProgram(New(timer, a.SessionService), tea.WithAltScreen())
	_, runErr := p.Run()

	// Flush even if the program failed; the snapshot is what survives
	shutdownErr := timer.Shutdown(context.Background())
	return errors.Join(runErr, shutdownErr)
}
