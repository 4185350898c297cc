// Package styles provides shared lipgloss styles for UI components.
//
// This package centralizes color definitions and styling to ensure
// visual consistency across the table, prompt and progress packages.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors of the active theme. Replaced by Init.
var (
	Primary color.Color = DefaultTheme.Primary
	Accent  color.Color = DefaultTheme.Accent
	Success color.Color = DefaultTheme.Success
	Error   color.Color = DefaultTheme.Error
	Muted   color.Color = DefaultTheme.Muted
	Warning color.Color = DefaultTheme.Warning
)

// Common styles
var (
	Bold         = lipgloss.NewStyle().Bold(true)
	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)
	AccentStyle  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
)

// Status renders an outcome status word in its color: "cloned" green,
// "failed" red, "skipped" muted, and dry-run previews in the accent color.
func Status(status string, dryRun bool) string {
	switch {
	case dryRun:
		return AccentStyle.Render("would clone")
	case status == "cloned":
		return SuccessStyle.Render(status)
	case status == "failed":
		return ErrorStyle.Render(status)
	default:
		return MutedStyle.Render(status)
	}
}

// Accessibility renders the tri-state reachability flag.
func Accessibility(v *bool) string {
	switch {
	case v == nil:
		return MutedStyle.Render("?")
	case *v:
		return SuccessStyle.Render("yes")
	default:
		return WarningStyle.Render("no")
	}
}
