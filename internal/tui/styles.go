package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("39")  // Blue
	accentColor  = lipgloss.Color("205") // Pink
	mutedColor   = lipgloss.Color("241") // Gray
	successColor = lipgloss.Color("76")  // Green
	warningColor = lipgloss.Color("214") // Orange
	errorColor   = lipgloss.Color("196") // Red

	// Base styles
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117")) // Bright cyan
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(primaryColor).Foreground(lipgloss.Color("0"))

	// Layout
	borderColor    = lipgloss.Color("63") // Soft purple
	appBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	// Header/Footer
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true) // Bright yellow

	// Countdown specific
	clockStyle          = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	stateIdleStyle      = lipgloss.NewStyle().Bold(true).Foreground(mutedColor)
	stateRunningStyle   = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	statePausedStyle    = lipgloss.NewStyle().Bold(true).Foreground(warningColor)
	stateCompletedStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	barFilledStyle      = lipgloss.NewStyle().Foreground(successColor)
	barEmptyStyle       = lipgloss.NewStyle().Foreground(mutedColor)
)
