// Package tui provides the full-screen clip browser: a timeline of keyed
// frames with the keys under the cursor and undo-aware frame editing.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for the browser.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorActive    = lipgloss.Color("#3B82F6") // Blue
	ColorBorder    = lipgloss.Color("#4B5563") // Dark gray
)

var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleTarget renders bone names and property paths.
	StyleTarget = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorActive)

	// StyleKeyed marks an occupied frame on the timeline.
	StyleKeyed = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	StyleEmpty = lipgloss.NewStyle().
			Foreground(ColorBorder)

	// StyleCursor highlights the frame under the cursor.
	StyleCursor = lipgloss.NewStyle().
			Reverse(true).
			Bold(true)

	StyleDirty = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWarning)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

var (
	StyleTimelineBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1)

	StyleEntriesBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// helpKeys is the key legend shown under the browser.
var helpKeys = []struct {
	key  string
	desc string
}{
	{"←/→", "frame"},
	{"[/]", "keyed"},
	{"tab", "mode"},
	{"x", "delete"},
	{"c/p", "copy/paste"},
	{"y", "yank"},
	{"</>", "nudge"},
	{"u/U", "undo/redo"},
	{"s", "save"},
	{"q", "quit"},
}

// HelpBar renders the key legend.
func HelpBar() string {
	parts := make([]string, 0, len(helpKeys))
	for _, k := range helpKeys {
		parts = append(parts, StyleHelpKey.Render(k.key)+" "+StyleHelpDesc.Render(k.desc))
	}
	return StyleHelp.Render(strings.Join(parts, "  •  "))
}
