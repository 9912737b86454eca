// Package editor provides the editing session hosts drive: it owns the undo
// history and the current edit record of one clip, coalesces drag gestures,
// routes keyframe operations through edit records and refuses edits while
// the clip is being previewed or compiled.
package editor

import (
	"log/slog"
	"time"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/history"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/logging"
	"github.com/manav03panchal/keyline/internal/record"
)

// DefaultDebounce is the quiet period after the last drag mutation before
// the gesture is committed.
const DefaultDebounce = 100 * time.Millisecond

// Hooks are the host callbacks a session fires. All are optional.
type Hooks struct {
	// Refresh asks the UI to redraw.
	Refresh func()
	// ReconcileIK lets the rig re-solve after poses changed.
	ReconcileIK func()
	// Dirty reports that clip content changed and needs saving.
	Dirty func()
}

// Options configure a Session.
type Options struct {
	MaxHistory int
	Debounce   time.Duration
	Converter  keyframe.Converter
	Clock      func() time.Time
	Hooks      Hooks
}

// Session is the editing context of one clip. It is not safe for
// concurrent use; hosts drive it from a single control thread.
type Session struct {
	clip     *curve.Clip
	hist     *history.History
	recorder *record.Recorder
	agg      *keyframe.Aggregator
	debounce *record.Debouncer
	clock    func() time.Time
	hooks    Hooks
	logger   *slog.Logger

	// entities mutated by the pending drag gesture
	dragged  []curve.Entity
	draggedH map[curve.Handle]bool

	mode      keyframe.Scope
	clipboard *keyframe.Clipboard
	playhead  float64

	previewing bool
	compiling  bool
	dirty      bool
}

// NewSession opens an editing session on clip.
func NewSession(clip *curve.Clip, opts Options) *Session {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = history.DefaultMaxSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Session{
		clip:     clip,
		hist:     history.New(opts.MaxHistory),
		agg:      keyframe.New(clip, opts.Converter),
		debounce: record.NewDebouncer(opts.Debounce),
		clock:    opts.Clock,
		hooks:    opts.Hooks,
		logger:   logging.With(logging.KeyClip, clip.Name),
		draggedH: make(map[curve.Handle]bool),
		mode:     keyframe.Global(),
	}
	s.recorder = record.NewRecorder(clip, record.Hooks{
		Refresh:     s.hooks.Refresh,
		ReconcileIK: s.hooks.ReconcileIK,
		Dirty:       s.markDirty,
		Playhead:    func() float64 { return s.playhead },
		Seek:        func(t float64) { s.playhead = t },
	})
	return s
}

// Clip returns the clip being edited.
func (s *Session) Clip() *curve.Clip { return s.clip }

// Playhead returns the current playback position in seconds.
func (s *Session) Playhead() float64 { return s.playhead }

// SetPlayhead moves the playback position. Records remember the playhead
// at open and commit and seek back to it on undo and redo.
func (s *Session) SetPlayhead(t float64) { s.playhead = t }

// IsDirty reports whether the clip changed since MarkClean.
func (s *Session) IsDirty() bool { return s.dirty }

// MarkClean clears the dirty flag, typically after a save.
func (s *Session) MarkClean() { s.dirty = false }

func (s *Session) markDirty() {
	s.dirty = true
	if s.hooks.Dirty != nil {
		s.hooks.Dirty()
	}
}

func (s *Session) refresh() {
	if s.hooks.Refresh != nil {
		s.hooks.Refresh()
	}
}

// -----------------------------------------------------------------------------
// Busy state
// -----------------------------------------------------------------------------

// SetPreviewing marks the clip as playing back. Edits and history moves are
// refused until it is cleared.
func (s *Session) SetPreviewing(on bool) { s.previewing = on }

// Previewing reports whether playback is running.
func (s *Session) Previewing() bool { return s.previewing }

// Compiling reports whether Compile is running.
func (s *Session) Compiling() bool { return s.compiling }

// Busy reports whether the session refuses edits.
func (s *Session) Busy() bool { return s.previewing || s.compiling }

func (s *Session) guard(op string) error {
	if !s.Busy() {
		return nil
	}
	s.logger.Warn("request ignored while busy",
		logging.KeyOperation, op,
		"previewing", s.previewing,
		"compiling", s.compiling)
	return errors.Wrapf(errors.ErrSessionBusy, "%s", op)
}

// -----------------------------------------------------------------------------
// Records and history
// -----------------------------------------------------------------------------

// BeginEditRecord opens the current edit record, or returns the open one.
func (s *Session) BeginEditRecord() *record.Record {
	return s.recorder.Begin()
}

// Commit turns rec into a history entry. A nil rec commits the open record.
// It reports false when the record touched nothing. While busy the record
// stays open and ErrSessionBusy is returned.
func (s *Session) Commit(rec *record.Record) (bool, error) {
	if err := s.guard("commit"); err != nil {
		return false, err
	}
	if rec == nil || rec == s.recorder.Open() {
		s.clearDrag()
	}
	action, ok := s.recorder.Commit(rec)
	if !ok {
		return false, nil
	}
	s.hist.Push(action)
	s.markDirty()
	s.logger.Debug("edit committed",
		logging.KeyGestureID, action.Record().ID,
		logging.KeyAction, action.Name(),
		logging.KeyCount, action.Record().Count())
	return true, nil
}

// Discard drops rec without touching history or reverting its entities.
func (s *Session) Discard(rec *record.Record) {
	if rec == nil || rec == s.recorder.Open() {
		s.clearDrag()
	}
	s.recorder.Discard(rec)
}

// RecordAction pushes an already applied action.
func (s *Session) RecordAction(a history.Action) error {
	if err := s.guard("record action"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	s.hist.Push(a)
	return nil
}

// Undo reverts the newest applied action. A pending drag is committed first
// so it is what gets undone.
func (s *Session) Undo() error {
	if err := s.guard("undo"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	if !s.hist.Undo() {
		return errors.ErrNothingToUndo
	}
	return nil
}

// Redo reapplies the oldest undone action.
func (s *Session) Redo() error {
	if err := s.guard("redo"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	if !s.hist.Redo() {
		return errors.ErrNothingToRedo
	}
	return nil
}

// CanUndo reports whether Undo has something to revert.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() || s.debounce.Pending() }

// CanRedo reports whether Redo has something to reapply.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// HistoryLength returns the number of actions in the window.
func (s *Session) HistoryLength() int { return s.hist.Len() }

// HistoryPosition returns the index of the newest applied action, or -1.
func (s *Session) HistoryPosition() int { return s.hist.Position() }

// History describes the window, oldest first.
func (s *Session) History() []history.Info { return s.hist.Entries() }

// ClearHistory finalizes and drops every action.
func (s *Session) ClearHistory() error {
	if err := s.guard("clear history"); err != nil {
		return err
	}
	s.hist.Clear()
	return nil
}

// -----------------------------------------------------------------------------
// Drag gestures
// -----------------------------------------------------------------------------

// Mutate applies fn to e as part of the current drag gesture. The original
// state of e is captured before fn runs; the edited state is captured when
// the gesture goes quiet (see Tick) or is flushed.
func (s *Session) Mutate(e curve.Entity, fn func()) error {
	if err := s.guard("mutate"); err != nil {
		return err
	}
	rec := s.recorder.Current()
	rec.SetOriginal(e)
	if fn != nil {
		fn()
	}
	if e != nil && e.Handle() != 0 && !s.draggedH[e.Handle()] {
		s.draggedH[e.Handle()] = true
		s.dragged = append(s.dragged, e)
	}
	s.debounce.Touch(s.clock())
	s.refresh()
	return nil
}

// Tick commits the pending drag gesture once it has been quiet for the
// debounce delay. It reports whether a commit happened. While busy the
// gesture is kept for a later tick.
func (s *Session) Tick(now time.Time) (bool, error) {
	if !s.debounce.Due(now) || s.Busy() {
		return false, nil
	}
	return s.commitDrag()
}

// DragDue reports when the pending drag gesture will be committed by Tick.
// ok is false when no drag is pending.
func (s *Session) DragDue() (due time.Time, ok bool) {
	if !s.debounce.Pending() {
		return time.Time{}, false
	}
	return s.debounce.Deadline(), true
}

// Flush commits the pending drag gesture immediately.
func (s *Session) Flush() error {
	if err := s.guard("flush"); err != nil {
		return err
	}
	return s.flush()
}

func (s *Session) flush() error {
	if !s.debounce.Pending() {
		return nil
	}
	_, err := s.commitDrag()
	return err
}

func (s *Session) commitDrag() (bool, error) {
	rec := s.recorder.Open()
	if rec == nil {
		s.clearDrag()
		return false, nil
	}
	for _, e := range s.dragged {
		rec.RecordEdit(e)
	}
	if rec.Label == "" {
		rec.Label = "drag"
	}
	return s.Commit(rec)
}

func (s *Session) clearDrag() {
	s.debounce.Reset()
	s.dragged = nil
	clear(s.draggedH)
}

// -----------------------------------------------------------------------------
// One-shot edits
// -----------------------------------------------------------------------------

// edit runs fn against a fresh record and commits it. If fn fails the
// record is discarded and nothing reaches history. A gesture the host left
// open is committed first under its own label, so the one-shot edit never
// absorbs or drops it.
func (s *Session) edit(label string, fn func(rec *record.Record) error) error {
	if err := s.guard(label); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	if open := s.recorder.Open(); open != nil {
		if _, err := s.Commit(open); err != nil {
			return err
		}
	}
	rec := s.recorder.Begin()
	rec.Label = label
	if err := fn(rec); err != nil {
		s.recorder.Discard(rec)
		return err
	}
	_, err := s.Commit(rec)
	if err == nil {
		s.refresh()
	}
	return err
}

// KeyBone sets a key on one channel of a bone's main curve.
func (s *Session) KeyBone(bone string, ch curve.Channel, k curve.Key) error {
	b := s.clip.Bone(bone)
	if b == nil {
		return errors.Wrapf(errors.ErrBoneNotFound, "bone %q", bone)
	}
	if !ch.Valid() {
		return errors.Wrapf(errors.ErrInvalidChannel, "channel %d", int(ch))
	}
	return s.edit("key "+bone+" "+ch.String(), func(rec *record.Record) error {
		rec.SetOriginalTransform(b.Main)
		b.Main.Ensure(ch).SetKey(k)
		rec.RecordTransformEdit(b.Main)
		return nil
	})
}

// KeyProperty sets a key on a property's main curve.
func (s *Session) KeyProperty(path string, k curve.Key) error {
	p := s.clip.Property(path)
	if p == nil {
		return errors.Wrapf(errors.ErrPropertyNotFound, "property %q", path)
	}
	return s.edit("key "+path, func(rec *record.Record) error {
		rec.SetOriginalProperty(p.Main)
		p.Main.Ensure().SetKey(k)
		rec.RecordPropertyEdit(p.Main)
		return nil
	})
}

// KeyLinear sets a frame on a bone's or property's linear track.
func (s *Session) KeyLinear(target string, k curve.FrameKey) error {
	var fc *curve.FrameCurve
	if b := s.clip.Bone(target); b != nil {
		fc = b.Linear
	} else if p := s.clip.Property(target); p != nil {
		fc = p.Linear
	} else {
		return errors.Wrapf(errors.ErrBoneNotFound, "track %q", target)
	}
	if k.Frame < 0 || k.Frame > s.clip.Length {
		return errors.Wrapf(errors.ErrFrameOutOfRange, "frame %d", k.Frame)
	}
	return s.edit("key linear "+target, func(rec *record.Record) error {
		rec.SetOriginalFrame(fc)
		fc.SetFrame(k)
		rec.RecordFrameEdit(fc)
		return nil
	})
}

// AddEvent adds a named event at t and returns it with its assigned ID.
func (s *Session) AddEvent(name string, t float64) (curve.Event, error) {
	var added curve.Event
	err := s.edit("event "+name, func(rec *record.Record) error {
		rec.SetOriginalEvents(s.clip.Events())
		added = s.clip.Events().Add(curve.Event{Name: name, Time: t})
		rec.SetEditedEvents(s.clip.Events())
		return nil
	})
	return added, err
}

// SetPose moves a bone's pose node.
func (s *Session) SetPose(bone string, st curve.PoseState) error {
	b := s.clip.Bone(bone)
	if b == nil {
		return errors.Wrapf(errors.ErrBoneNotFound, "bone %q", bone)
	}
	return s.edit("pose "+bone, func(rec *record.Record) error {
		rec.SetOriginalPose(b.Node)
		b.Node.Restore(st)
		rec.RecordPoseEdit(b.Node)
		return nil
	})
}
