package editor

import (
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/logging"
	"github.com/manav03panchal/keyline/internal/record"
)

// FrameEntries returns the keyframe at frame within scope.
func (s *Session) FrameEntries(scope keyframe.Scope, frame int) (*keyframe.Aggregate, error) {
	return s.agg.At(scope, frame)
}

// Frames returns the frames within scope that hold content.
func (s *Session) Frames(scope keyframe.Scope) ([]int, error) {
	return s.agg.Frames(scope)
}

// MoveFrames shifts the keyframes on frames by delta in the current edit
// mode, as one history entry. A rejected move leaves the clip and history
// untouched.
func (s *Session) MoveFrames(frames []int, delta int) (int, error) {
	var n int
	err := s.edit("move frames", func(rec *record.Record) error {
		var err error
		n, err = s.agg.Relocate(rec, s.mode, frames, delta)
		return err
	})
	if err != nil {
		s.logger.Debug("move rejected", logging.KeyDelta, delta, logging.KeyError, err)
		return 0, err
	}
	return n, nil
}

// DeleteFrames removes the keyframes on frames in the current edit mode.
func (s *Session) DeleteFrames(frames []int) (int, error) {
	var n int
	err := s.edit("delete frames", func(rec *record.Record) error {
		var err error
		n, err = s.agg.Delete(rec, s.mode, frames)
		return err
	})
	return n, err
}

// CopyFrames copies the keyframes on frames in the current edit mode to the
// session clipboard and returns the number of entries copied.
func (s *Session) CopyFrames(frames []int) (int, error) {
	cb, err := s.agg.Copy(s.mode, frames)
	if err != nil {
		return 0, err
	}
	if cb.IsEmpty() {
		return 0, errors.Wrapf(errors.ErrEmptyClipboard, "no keyframes on %v", frames)
	}
	s.clipboard = cb
	return cb.Len(), nil
}

// PasteFrames pastes the clipboard offset frames after where it was
// copied from, in the current edit mode.
func (s *Session) PasteFrames(offset int) (int, error) {
	if s.clipboard.IsEmpty() {
		return 0, errors.ErrEmptyClipboard
	}
	var n int
	err := s.edit("paste frames", func(rec *record.Record) error {
		var err error
		n, err = s.agg.Paste(rec, s.mode, s.clipboard, offset)
		return err
	})
	return n, err
}

// Clipboard returns the last copied keyframes, or nil.
func (s *Session) Clipboard() *keyframe.Clipboard { return s.clipboard }
