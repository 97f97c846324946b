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

const sessionsShown = 15

// SessionsModel lists recent focus sessions
type SessionsModel struct {
	sessions service.SessionService

	recent []*domain.Session
	today  domain.SessionSummary
	week   domain.SessionSummary
	cursor int

	loading bool
	err     error
}

type sessionsLoadedMsg struct {
	recent []*domain.Session
	today  domain.SessionSummary
	week   domain.SessionSummary
	err    error
}

// NewSessionsModel creates the history screen
func NewSessionsModel(sessions service.SessionService) *SessionsModel {
	return &SessionsModel{sessions: sessions, loading: true}
}

func (m *SessionsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *SessionsModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var msg sessionsLoadedMsg

		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		if msg.recent, msg.err = m.sessions.List(ctx, sessionsShown); msg.err != nil {
			return msg
		}
		if msg.today, msg.err = m.sessions.Summary(ctx, dayStart); msg.err != nil {
			return msg
		}
		msg.week, msg.err = m.sessions.Summary(ctx, dayStart.AddDate(0, 0, -6))
		return msg
	}
}

func (m *SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg, CountdownCompletedMsg:
		m.loading = true
		return m, m.loadData()

	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.recent = msg.recent
			m.today = msg.today
			m.week = msg.week
			if m.cursor >= len(m.recent) {
				m.cursor = 0
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.recent)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *SessionsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("History"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(fmt.Sprintf("Error: %s", m.err.Error())))
		b.WriteString("\n")
		return b.String()
	}
	if m.loading && m.recent == nil {
		b.WriteString("Loading...\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Today: %d sessions, %s\n", m.today.Count, formatMinutes(m.today.Total())))
	b.WriteString(fmt.Sprintf("Last 7 days: %d sessions, %s\n\n", m.week.Count, formatMinutes(m.week.Total())))

	if len(m.recent) == 0 {
		b.WriteString(subtitleStyle.Render("No completed sessions yet."))
		b.WriteString("\n")
		return b.String()
	}

	for i, s := range m.recent {
		label := s.Label
		if label == "" {
			label = "-"
		}
		line := fmt.Sprintf("%-16s  %8s  %s",
			s.CompletedAt.Local().Format("2006-01-02 15:04"),
			domain.FormatClock(s.DurationSeconds),
			truncateStr(label, 30),
		)
		if s.CaughtUp {
			line += " (while away)"
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
