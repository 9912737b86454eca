package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/history"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/storage"
)

var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red
	colorAccent    = lipgloss.Color("#3B82F6") // Blue

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSecondary)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleClip    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleTarget  = lipgloss.NewStyle().Foreground(colorSecondary)
	styleFrame   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(s lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return s.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// ClipName formats a clip name.
func (c *CLIFormatter) ClipName(name string) string {
	return c.render(styleClip, name)
}

// Target formats a bone name or property path.
func (c *CLIFormatter) Target(name string) string {
	return c.render(styleTarget, name)
}

// Frame formats a frame index.
func (c *CLIFormatter) Frame(f int) string {
	return c.render(styleFrame, fmt.Sprintf("f%d", f))
}

// PrintClip prints a clip summary.
func (c *CLIFormatter) PrintClip(doc *model.ClipDoc, active bool) {
	title := c.ClipName(doc.Name)
	if active {
		title += c.render(styleMuted, " (active)")
	}
	c.Println(title)
	c.Printf("  Rate:   %s fps\n", FormatValue(doc.FrameRate))
	c.Printf("  Length: %d frames (%s)\n", doc.FrameCount(), FormatSeconds(doc.Duration()))
	c.Printf("  Bones:  %d   Properties: %d   Events: %d\n", len(doc.Bones), len(doc.Properties), len(doc.Events))
	c.Printf("  Keys:   %d\n", doc.KeyCount())
	if !doc.UpdatedAt.IsZero() {
		c.Printf("  Saved:  %s\n", FormatTime(doc.UpdatedAt))
	}
}

// PrintClips prints the stored clips as a table.
func (c *CLIFormatter) PrintClips(docs []*model.ClipDoc, active string) {
	if len(docs) == 0 {
		c.Muted("No clips yet.")
		c.Muted("Use 'keyline new <name>' to create one.")
		return
	}
	rows := make([]TableRow, 0, len(docs))
	for _, d := range docs {
		marker := ""
		if d.Name == active {
			marker = "*"
		}
		rows = append(rows, TableRow{Columns: []string{
			marker,
			d.Name,
			FormatValue(d.FrameRate),
			fmt.Sprint(d.FrameCount()),
			fmt.Sprint(len(d.Bones)),
			fmt.Sprint(d.KeyCount()),
		}})
	}
	c.PrintTable([]string{"", "CLIP", "FPS", "FRAMES", "BONES", "KEYS"}, rows)
}

// PrintFrames prints the occupied frames of a scope.
func (c *CLIFormatter) PrintFrames(scope keyframe.Scope, frames []int) {
	c.Printf("%s: %s\n", c.Target(scope.String()), FormatFrames(frames))
}

// PrintAggregate prints everything keyed on one frame.
func (c *CLIFormatter) PrintAggregate(agg *keyframe.Aggregate) {
	c.Printf("%s %s\n", c.Frame(agg.Frame), c.render(styleMuted, agg.Scope.String()))
	if agg.IsEmpty() {
		c.Muted("  (empty)")
		return
	}
	for _, e := range agg.Sampled {
		name := e.Target
		if !e.Property {
			name += " " + e.Channel.String()
		}
		c.Printf("  %-24s %s @ %s\n", c.Target(name), FormatValue(e.Key.Value), FormatSeconds(e.Key.Time))
	}
	for _, e := range agg.Linear {
		c.Printf("  %-24s %s\n", c.Target(e.Target+" linear"), FormatValues(e.Key.Values))
	}
	for _, ev := range agg.Events {
		c.Printf("  %-24s %s @ %s\n", c.Target("event "+ev.Name), c.render(styleMuted, ev.ID), FormatSeconds(ev.Time))
	}
}

// PrintHistory prints the undo history, marking the current position.
func (c *CLIFormatter) PrintHistory(entries []history.Info, position int) {
	if len(entries) == 0 {
		c.Muted("History is empty.")
		return
	}
	for _, e := range entries {
		marker := "  "
		if e.Index == position {
			marker = "> "
		}
		line := fmt.Sprintf("%s%3d  %s", marker, e.Index, e.Name)
		if e.Undone {
			line = c.render(styleMuted, line+" (undone)")
		}
		c.Println(line)
	}
}

// ProgressBar renders a fixed-width bar for percentage.
func ProgressBar(percentage float64, width int) string {
	percentage = max(0, min(percentage, 100))
	filled := int(float64(width) * percentage / 100)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// TableRow is one row for PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple aligned table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && len(col) > widths[i] {
				widths[i] = len(col)
			}
		}
	}

	var headerLine strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&headerLine, "%-*s  ", widths[i], h)
	}
	c.Println(c.render(styleBold, strings.TrimRight(headerLine.String(), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				fmt.Fprintf(&rowLine, "%-*s  ", widths[i], col)
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

// PrintBaked prints a summary of a bake run.
func (c *CLIFormatter) PrintBaked(b *editor.Baked, path string) {
	c.Success(fmt.Sprintf("Baked %s: %d tracks × %d frames", c.ClipName(b.Clip), len(b.Tracks), b.Frames))
	if path != "" {
		c.Muted("  Written to " + path)
	}
}

// PrintDoctor prints a database health report.
func (c *CLIFormatter) PrintDoctor(status *storage.RecoveryStatus, path, diskWarning string) {
	c.Title("Clip store")
	if path == "" {
		path = "(in memory)"
	}
	c.Printf("  Path:    %s\n", path)
	c.Printf("  Checked: %d entries\n", status.Checked)
	if status.Locked {
		c.Printf("  Lock:    held by this process\n")
	}
	if status.Healthy {
		c.Success("Database is healthy")
	} else {
		c.Error(fmt.Sprintf("Database has %d problem(s)", status.ErrorCount))
		for _, e := range status.Errors {
			c.Muted("  " + e)
		}
		if status.Recoverable {
			c.Muted("Run 'keyline doctor --repair' to back up and compact the store.")
		}
	}
	if status.BackupPath != "" {
		c.Muted("  Backup: " + status.BackupPath)
	}
	if diskWarning != "" {
		c.Warning(diskWarning)
	}
}
