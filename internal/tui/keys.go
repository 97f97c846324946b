package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Help key.Binding

	// Navigation
	Timer    key.Binding
	Sessions key.Binding

	// Countdown
	Toggle  key.Binding
	Start   key.Binding
	Reset   key.Binding
	Longer  key.Binding
	Shorter key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Timer:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timer")),
	Sessions: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
	Toggle:   key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space/p", "pause/resume")),
	Start:    key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "start")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Longer:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "+5m")),
	Shorter:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "-5m")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
