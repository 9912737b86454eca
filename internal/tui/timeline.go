package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/output"
)

const (
	glyphKeyed = "◆"
	glyphEmpty = "·"
)

// TimelineComponent draws one row per frame of the clip, windowed around
// the cursor when the clip is wider than the terminal.
type TimelineComponent struct {
	Keyed  map[int]bool
	Length int
	Cursor int
	Width  int
}

// NewTimelineComponent creates a timeline for frames 0..length.
func NewTimelineComponent(frames []int, length, cursor, width int) *TimelineComponent {
	keyed := make(map[int]bool, len(frames))
	for _, f := range frames {
		keyed[f] = true
	}
	return &TimelineComponent{Keyed: keyed, Length: length, Cursor: cursor, Width: width}
}

// Window returns the first and last frame drawn.
func (tc *TimelineComponent) Window() (int, int) {
	span := tc.Width - 8
	if span < 8 {
		span = 8
	}
	if tc.Length+1 <= span {
		return 0, tc.Length
	}
	first := tc.Cursor - span/2
	if first < 0 {
		first = 0
	}
	last := first + span - 1
	if last > tc.Length {
		last = tc.Length
		first = last - span + 1
	}
	return first, last
}

// View renders the strip and a ruler under it.
func (tc *TimelineComponent) View() string {
	first, last := tc.Window()

	var strip strings.Builder
	for f := first; f <= last; f++ {
		glyph := StyleEmpty.Render(glyphEmpty)
		if tc.Keyed[f] {
			glyph = StyleKeyed.Render(glyphKeyed)
		}
		if f == tc.Cursor {
			g := glyphEmpty
			if tc.Keyed[f] {
				g = glyphKeyed
			}
			glyph = StyleCursor.Render(g)
		}
		strip.WriteString(glyph)
	}

	left := fmt.Sprintf("%d", first)
	right := fmt.Sprintf("%d", last)
	gap := last - first + 1 - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	ruler := StyleSubtitle.Render(left + strings.Repeat(" ", gap) + right)

	return StyleTimelineBox.Render(strip.String() + "\n" + ruler)
}

// EntriesComponent lists everything keyed on the cursor frame.
type EntriesComponent struct {
	Agg   *keyframe.Aggregate
	Width int
}

// View renders the entries box.
func (ec *EntriesComponent) View() string {
	var content strings.Builder

	if ec.Agg == nil || ec.Agg.IsEmpty() {
		content.WriteString(StyleSubtitle.Render("Nothing keyed on this frame"))
		return ec.box().Render(content.String())
	}

	lines := make([]string, 0, ec.Agg.Len())
	for _, e := range ec.Agg.Sampled {
		name := e.Target
		if !e.Property {
			name += " " + e.Channel.String()
		}
		lines = append(lines, fmt.Sprintf("%s  %s %s",
			StyleTarget.Render(name),
			StyleValue.Render(output.FormatValue(e.Key.Value)),
			StyleSubtitle.Render("@ "+output.FormatSeconds(e.Key.Time))))
	}
	for _, e := range ec.Agg.Linear {
		lines = append(lines, fmt.Sprintf("%s  %s",
			StyleTarget.Render(e.Target+" linear"),
			StyleValue.Render(output.FormatValues(e.Key.Values))))
	}
	for _, ev := range ec.Agg.Events {
		lines = append(lines, fmt.Sprintf("%s  %s",
			StyleTarget.Render("event "+ev.Name),
			StyleSubtitle.Render("@ "+output.FormatSeconds(ev.Time))))
	}
	content.WriteString(strings.Join(lines, "\n"))
	return ec.box().Render(content.String())
}

func (ec *EntriesComponent) box() lipgloss.Style {
	if ec.Width > 4 {
		return StyleEntriesBox.Width(ec.Width - 4)
	}
	return StyleEntriesBox
}
