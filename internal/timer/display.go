// Package timer drives real-time and stepped playback previews of a clip.
package timer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PlaybackDisplay draws the one-line playback status.
type PlaybackDisplay struct {
	Writer   io.Writer
	UseColor bool
}

// NewPlaybackDisplay creates a display writing to stdout.
func NewPlaybackDisplay() *PlaybackDisplay {
	return &PlaybackDisplay{
		Writer:   os.Stdout,
		UseColor: true,
	}
}

// Styles for the playback line.
var (
	playStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981")) // Green

	pauseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B")) // Yellow

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")) // Purple

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")) // Gray

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6B7280")) // Gray
)

// FormatClock formats clip seconds as SS.ss or M:SS.ss.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	rest := seconds - float64(minutes*60)
	if minutes > 0 {
		return fmt.Sprintf("%d:%05.2f", minutes, rest)
	}
	return fmt.Sprintf("%05.2f", rest)
}

func (d *PlaybackDisplay) style(s lipgloss.Style, text string) string {
	if !d.UseColor {
		return text
	}
	return s.Render(text)
}

// RenderLine renders the status line for state.
func (d *PlaybackDisplay) RenderLine(state PlaybackState) string {
	var sb strings.Builder

	if state.Paused {
		sb.WriteString(d.style(pauseStyle, "PAUSED"))
	} else {
		sb.WriteString(d.style(playStyle, "PLAY  "))
	}
	sb.WriteString(" ")
	sb.WriteString(d.style(clockStyle, FormatClock(state.Playhead)))
	sb.WriteString(fmt.Sprintf(" f%-4d ", state.Frame))

	span := state.To - state.From
	progress := 1.0
	if span > 0 {
		progress = (state.Playhead - state.From) / span
	}
	sb.WriteString(d.style(barStyle, renderProgressBar(progress, 30)))

	sb.WriteString("  ")
	sb.WriteString(d.style(hintStyle, "SPACE pause, Q stop"))
	return sb.String()
}

// Render overwrites the current terminal line with the status of state.
func (d *PlaybackDisplay) Render(state PlaybackState) {
	if d == nil || d.Writer == nil {
		return
	}
	fmt.Fprint(d.Writer, "\r\033[2K"+d.RenderLine(state))
}

// Finish ends the status line.
func (d *PlaybackDisplay) Finish() {
	if d == nil || d.Writer == nil {
		return
	}
	fmt.Fprint(d.Writer, "\r\n")
}

// renderProgressBar creates a progress bar string.
func renderProgressBar(progress float64, width int) string {
	progress = max(0, min(1, progress))
	filled := int(progress * float64(width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %3d%%", bar, int(progress*100))
}
