package tui

import "github.com/andy/focusclock/internal/domain"

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// CountdownCompletedMsg announces a finished countdown to other screens
type CountdownCompletedMsg struct {
	Completion domain.Completion
}
