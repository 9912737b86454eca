package timer

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/logging"
)

// Config holds the configuration for one playback run.
type Config struct {
	// From and To bound the played range in clip seconds. A zero To means
	// the end of the clip.
	From float64
	To   float64
	// Speed scales wall time to clip time. Zero means 1.
	Speed float64
	Loop  bool
	// Interval is the redraw interval of Run. Zero means one frame.
	Interval time.Duration
}

// PlaybackState represents the current state of a playback run.
type PlaybackState struct {
	Playhead float64 `json:"playhead"`
	Frame    int     `json:"frame"`
	From     float64 `json:"from"`
	To       float64 `json:"to"`
	Paused   bool    `json:"paused"`
	// Played is the clip time covered so far, including loops.
	Played float64 `json:"played"`
	Loops  int     `json:"loops"`
}

// Event represents events from the player.
type Event int

const (
	EventTick Event = iota
	EventLooped
	EventComplete
	EventPaused
	EventResumed
	EventQuit
)

// Callback is called when events occur.
type Callback func(event Event, state PlaybackState)

// Player moves a session's playhead through a clip. While it runs the
// session reports itself as previewing, which holds back edits and drag
// commits.
type Player struct {
	session  *editor.Session
	rate     curve.FrameRate
	config   Config
	state    PlaybackState
	display  *PlaybackDisplay
	callback Callback

	mu sync.RWMutex

	// Control channels
	pauseCh chan struct{}
	quitCh  chan struct{}
}

// NewPlayer creates a player for s. The range is clamped to the clip.
func NewPlayer(s *editor.Session, cfg Config) *Player {
	clip := s.Clip()
	end := clip.Rate.FrameToTime(clip.Length)
	if cfg.To <= 0 || cfg.To > end {
		cfg.To = end
	}
	cfg.From = max(0, min(cfg.From, cfg.To))
	if cfg.Speed <= 0 {
		cfg.Speed = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Duration(float64(time.Second) / float64(clip.Rate))
	}

	p := &Player{
		session: s,
		rate:    clip.Rate,
		config:  cfg,
		pauseCh: make(chan struct{}, 1),
		quitCh:  make(chan struct{}, 1),
	}
	p.state = PlaybackState{From: cfg.From, To: cfg.To}
	p.seek(cfg.From)
	return p
}

// SetCallback sets the event callback.
func (p *Player) SetCallback(cb Callback) {
	p.callback = cb
}

// SetDisplay sets the status display. A nil display draws nothing.
func (p *Player) SetDisplay(display *PlaybackDisplay) {
	p.display = display
}

// GetState returns a copy of the current state.
func (p *Player) GetState() PlaybackState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Pause toggles pause. Safe to call from another goroutine.
func (p *Player) Pause() {
	select {
	case p.pauseCh <- struct{}{}:
	default:
	}
}

// Quit stops a running playback. Safe to call from another goroutine.
func (p *Player) Quit() {
	select {
	case p.quitCh <- struct{}{}:
	default:
	}
}

func (p *Player) seek(t float64) {
	p.state.Playhead = t
	p.state.Frame = p.rate.TimeToFrame(t)
	p.session.SetPlayhead(t)
}

func (p *Player) emit(ev Event) {
	if p.callback != nil {
		p.callback(ev, p.GetState())
	}
}

// Step advances the playhead by wall time d. It reports true once a
// non-looping run reaches the end of its range.
func (p *Player) Step(d time.Duration) bool {
	p.mu.Lock()
	span := p.state.To - p.state.From
	adv := d.Seconds() * p.config.Speed
	p.state.Played += adv
	next := p.state.Playhead + adv
	looped, done := false, false
	switch {
	case next < p.state.To:
	case p.config.Loop && span > 0:
		wraps := math.Floor((next - p.state.From) / span)
		p.state.Loops += int(wraps)
		next -= wraps * span
		looped = true
	default:
		next = p.state.To
		done = true
	}
	p.seek(next)
	p.mu.Unlock()

	if looped {
		p.emit(EventLooped)
	}
	if done {
		p.emit(EventComplete)
	} else {
		p.emit(EventTick)
	}
	return done
}

// Advance plays d of wall time in frame-sized steps without waiting. It
// stops early at the end of a non-looping range.
func (p *Player) Advance(d time.Duration) {
	p.session.SetPreviewing(true)
	defer p.session.SetPreviewing(false)

	for d > 0 {
		step := min(d, p.config.Interval)
		d -= step
		if p.Step(step) {
			return
		}
	}
}

// PlayToEnd plays the whole remaining range without waiting. Looping runs
// stop after one pass.
func (p *Player) PlayToEnd() {
	st := p.GetState()
	remaining := time.Duration((st.To - st.Playhead) / p.config.Speed * float64(time.Second))
	if !p.config.Loop {
		// Overshoot by a step so rounding cannot leave the playhead short.
		remaining += p.config.Interval
	}
	p.Advance(remaining)
}

// Run plays in real time until the range ends, ctx is cancelled or Quit is
// called. The session is marked previewing for the whole run.
func (p *Player) Run(ctx context.Context) error {
	p.session.SetPreviewing(true)
	defer p.session.SetPreviewing(false)
	defer p.display.Finish()

	logging.DebugLog("playback started", logging.KeyClip, p.session.Clip().Name,
		"from", p.config.From, "to", p.config.To)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	lastUpdate := time.Now()
	p.display.Render(p.GetState())

	for {
		select {
		case <-ctx.Done():
			p.emit(EventQuit)
			return ctx.Err()

		case <-p.quitCh:
			p.emit(EventQuit)
			return nil

		case <-p.pauseCh:
			p.mu.Lock()
			p.state.Paused = !p.state.Paused
			paused := p.state.Paused
			p.mu.Unlock()

			if paused {
				p.emit(EventPaused)
			} else {
				lastUpdate = time.Now()
				p.emit(EventResumed)
			}
			p.display.Render(p.GetState())

		case now := <-ticker.C:
			if p.GetState().Paused {
				continue
			}
			done := p.Step(now.Sub(lastUpdate))
			lastUpdate = now
			p.display.Render(p.GetState())
			if done {
				return nil
			}
		}
	}
}

// ListenKeyboard reads single key presses from r until ctx is done: space
// toggles pause, q or Ctrl+C stops. r is expected to be a terminal in raw
// mode.
func (p *Player) ListenKeyboard(ctx context.Context, r io.Reader) {
	buf := make([]byte, 1)
	f, isFile := r.(*os.File)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if isFile {
			// Poll so the goroutine notices ctx; not every platform supports deadlines.
			_ = f.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		}
		n, err := r.Read(buf)
		if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
			return
		}
		if n == 0 {
			continue
		}

		switch buf[0] {
		case ' ':
			p.Pause()
		case 'q', 'Q', 3:
			p.Quit()
		}
	}
}
