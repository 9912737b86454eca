package tui

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/output"
)

// tickMsg is sent when the refresh timer fires.
type tickMsg time.Time

// BrowserModel is the bubbletea model of the clip browser.
type BrowserModel struct {
	session *editor.Session
	save    func() error
	yank    func(string) error

	scopes   []keyframe.Scope
	scopeIdx int
	cursor   int
	frames   []int
	agg      *keyframe.Aggregate

	// frame the clipboard was copied from; paste offsets are relative to it
	copiedFrom int

	// UI state
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	refreshInterval time.Duration
	now             func() time.Time
}

// BrowserConfig holds configuration for the browser.
type BrowserConfig struct {
	Session *editor.Session

	// Save persists the session's clip. Optional; without it 's' is refused.
	Save func() error

	// Yank receives the cursor frame as JSON. Default: the system clipboard.
	Yank func(string) error

	RefreshInterval time.Duration
	Clock           func() time.Time
}

// NewBrowserModel creates a browser over cfg.Session in its current edit
// mode.
func NewBrowserModel(cfg BrowserConfig) *BrowserModel {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 100 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Yank == nil {
		cfg.Yank = clipboard.WriteAll
	}
	m := &BrowserModel{
		session:         cfg.Session,
		save:            cfg.Save,
		yank:            cfg.Yank,
		refreshInterval: cfg.RefreshInterval,
		now:             cfg.Clock,
	}
	m.loadScopes()
	m.reload()
	return m
}

// Cursor returns the frame under the cursor.
func (m *BrowserModel) Cursor() int { return m.cursor }

// Scope returns the edit mode being browsed.
func (m *BrowserModel) Scope() keyframe.Scope { return m.scopes[m.scopeIdx] }

// Frames returns the keyed frames of the current scope.
func (m *BrowserModel) Frames() []int { return m.frames }

// Message returns the status line text.
func (m *BrowserModel) Message() string { return m.message }

// Err returns the last error shown.
func (m *BrowserModel) Err() error { return m.err }

// Init starts the refresh timer.
func (m *BrowserModel) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model.
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// commits a drag left pending by the session's debounce
		if committed, err := m.session.Tick(time.Time(msg)); err == nil && committed {
			m.reload()
		}
		if !m.messageExp.IsZero() && m.now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		return m, m.tickCmd()
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *BrowserModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	length := s.Clip().Length

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "left", "h":
		m.seek(m.cursor - 1)
	case "right", "l":
		m.seek(m.cursor + 1)
	case "home", "g":
		m.seek(0)
	case "end", "G":
		m.seek(length)
	case "[":
		if i, _ := slices.BinarySearch(m.frames, m.cursor); i > 0 {
			m.seek(m.frames[i-1])
		}
	case "]":
		i, ok := slices.BinarySearch(m.frames, m.cursor)
		if ok {
			i++
		}
		if i < len(m.frames) {
			m.seek(m.frames[i])
		}

	case "tab":
		m.cycleScope(1)
	case "shift+tab":
		m.cycleScope(-1)

	case "x", "delete":
		n, err := s.DeleteFrames([]int{m.cursor})
		m.result(err, "Deleted %d key(s) on frame %d", n, m.cursor)
	case "c":
		n, err := s.CopyFrames([]int{m.cursor})
		if err == nil {
			m.copiedFrom = m.cursor
		}
		m.result(err, "Copied %d key(s)", n)
	case "p":
		n, err := s.PasteFrames(m.cursor - m.copiedFrom)
		m.result(err, "Pasted %d key(s) on frame %d", n, m.cursor)
	case "y":
		m.yankFrame()
	case "<", ",":
		m.nudge(-1)
	case ">", ".":
		m.nudge(1)

	case "u":
		m.result(s.Undo(), "Undo")
	case "U", "ctrl+r":
		m.result(s.Redo(), "Redo")

	case "s":
		if m.save == nil {
			m.setMessage("Saving is disabled", 2*time.Second)
			return m, nil
		}
		if err := m.save(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.setMessage("Saved", 2*time.Second)
	}

	return m, nil
}

// nudge moves the keys on the cursor frame by delta and follows them.
func (m *BrowserModel) nudge(delta int) {
	n, err := m.session.MoveFrames([]int{m.cursor}, delta)
	m.result(err, "Moved %d key(s) by %+d", n, delta)
	if err == nil {
		m.seek(m.cursor + delta)
	}
}

// yankFrame copies the keys on the cursor frame out of the program.
func (m *BrowserModel) yankFrame() {
	if m.agg.IsEmpty() {
		m.setMessage("Nothing to yank", 2*time.Second)
		return
	}
	data, err := json.MarshalIndent(output.NewAggregateOutput(m.agg), "", "  ")
	if err == nil {
		err = m.yank(string(data))
	}
	m.result(err, "Yanked %d key(s) from frame %d", m.agg.Len(), m.cursor)
}

// result shows err, or the formatted message on success, and refreshes.
// Undo can restore an earlier edit mode, so the scope is re-read too.
func (m *BrowserModel) result(err error, format string, args ...any) {
	m.loadScopes()
	m.reload()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.setMessage(fmt.Sprintf(format, args...), 2*time.Second)
}

func (m *BrowserModel) seek(frame int) {
	length := m.session.Clip().Length
	if frame < 0 {
		frame = 0
	}
	if frame > length {
		frame = length
	}
	m.cursor = frame
	m.session.SetPlayhead(m.session.Clip().Rate.FrameToTime(frame))
	m.loadEntries()
}

func (m *BrowserModel) cycleScope(step int) {
	m.loadScopes()
	n := len(m.scopes)
	next := ((m.scopeIdx+step)%n + n) % n
	if err := m.session.SetEditMode(m.scopes[next]); err != nil {
		m.err = err
		return
	}
	m.scopeIdx = next
	m.err = nil
	m.reload()
}

// loadScopes lists global, events, every bone and every property, keeping
// the session's current mode selected.
func (m *BrowserModel) loadScopes() {
	clip := m.session.Clip()
	scopes := []keyframe.Scope{keyframe.Global(), keyframe.EventScope()}
	for _, b := range clip.Bones() {
		scopes = append(scopes, keyframe.BoneScope(b.Name))
	}
	for _, p := range clip.Properties() {
		scopes = append(scopes, keyframe.PropertyScope(p.Path))
	}
	m.scopes = scopes
	m.scopeIdx = max(slices.Index(scopes, m.session.Mode()), 0)
}

// reload refreshes the keyed frames and the entries under the cursor.
func (m *BrowserModel) reload() {
	frames, err := m.session.Frames(m.Scope())
	if err != nil {
		m.err = err
		return
	}
	m.frames = frames
	if m.cursor > m.session.Clip().Length {
		m.cursor = m.session.Clip().Length
	}
	m.loadEntries()
}

func (m *BrowserModel) loadEntries() {
	agg, err := m.session.FrameEntries(m.Scope(), m.cursor)
	if err != nil {
		m.err = err
		return
	}
	m.agg = agg
}

// View renders the browser.
func (m *BrowserModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	length := m.session.Clip().Length
	sections = append(sections, NewTimelineComponent(m.frames, length, m.cursor, m.width).View())
	sections = append(sections, (&EntriesComponent{Agg: m.agg, Width: m.width}).View())
	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *BrowserModel) renderHeader() string {
	s := m.session
	clip := s.Clip()
	title := StyleTitle.Render(clip.Name)
	info := StyleSubtitle.Render(fmt.Sprintf("frame %d/%d  %s  history %d/%d",
		m.cursor, clip.Length, m.Scope(), s.HistoryPosition()+1, s.HistoryLength()))
	parts := []string{title, "  ", info}
	if s.IsDirty() {
		parts = append(parts, "  ", StyleDirty.Render("modified"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n"
}

// setMessage sets a temporary message.
func (m *BrowserModel) setMessage(msg string, d time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(d)
}

// tickCmd returns a command that sends a tick message.
func (m *BrowserModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run opens the browser full-screen and blocks until the user quits.
func Run(cfg BrowserConfig) error {
	p := tea.NewProgram(NewBrowserModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
