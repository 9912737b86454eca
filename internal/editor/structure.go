package editor

import (
	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/history"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/logging"
)

// Mode returns the current edit mode.
func (s *Session) Mode() keyframe.Scope { return s.mode }

// SetEditMode switches the scope frame operations work in. The switch is a
// history entry of its own so undo walks back through mode changes too.
func (s *Session) SetEditMode(mode keyframe.Scope) error {
	if err := s.guard("set mode"); err != nil {
		return err
	}
	switch mode.Kind {
	case keyframe.ScopeBone:
		if s.clip.Bone(mode.Target) == nil {
			return errors.Wrapf(errors.ErrBoneNotFound, "bone %q", mode.Target)
		}
	case keyframe.ScopeProperty:
		if s.clip.Property(mode.Target) == nil {
			return errors.Wrapf(errors.ErrPropertyNotFound, "property %q", mode.Target)
		}
	}
	if mode == s.mode {
		return nil
	}
	prev := s.mode
	err := s.RecordAction(&history.Func{
		Label: "mode " + mode.String(),
		Apply: func() { s.mode = mode; s.refresh() },
		Undo:  func() { s.mode = prev; s.refresh() },
	})
	if err != nil {
		return err
	}
	// The mode flips only once its entry is in history.
	s.mode = mode
	s.refresh()
	return nil
}

// RemoveBone takes a bone out of the clip. The bone is parked so undo can
// bring it back; it is destroyed once the removal leaves history applied.
func (s *Session) RemoveBone(name string) error {
	if err := s.guard("remove bone"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	b, idx := s.clip.ParkBone(name)
	if b == nil {
		return errors.Wrapf(errors.ErrBoneNotFound, "bone %q", name)
	}
	s.leaveBoneMode(name)
	s.markDirty()
	s.refresh()
	s.logger.Debug("bone parked", logging.KeyBone, name)

	return s.RecordAction(&history.Func{
		Label: "remove bone " + name,
		Apply: func() { s.park(b) },
		Undo:  func() { s.unpark(b, idx) },
		OnFinalizeApplied: func() {
			if s.clip.DestroyBone(b) {
				s.logger.Debug("bone destroyed", logging.KeyBone, b.Name)
			}
		},
	})
}

// AddBone adds an empty bone. Undoing the add parks it; it is destroyed if
// the add is discarded from history while undone.
func (s *Session) AddBone(name string) (*curve.Bone, error) {
	if err := s.guard("add bone"); err != nil {
		return nil, err
	}
	if s.clip.Bone(name) != nil {
		return nil, errors.NewUserErrorWithField("bone", name, "bone already exists", "Pick another bone name.")
	}
	if err := s.flush(); err != nil {
		return nil, err
	}
	b := s.clip.AddBone(name)
	idx := len(s.clip.Bones()) - 1
	s.markDirty()
	s.refresh()

	err := s.RecordAction(&history.Func{
		Label: "add bone " + name,
		Apply: func() { s.unpark(b, idx) },
		Undo:  func() { s.park(b) },
		OnFinalizeUndone: func() {
			if s.clip.DestroyBone(b) {
				s.logger.Debug("bone destroyed", logging.KeyBone, b.Name)
			}
		},
	})
	return b, err
}

func (s *Session) park(b *curve.Bone) {
	if s.clip.IsParked(b) {
		return
	}
	// active bone names are unique, so the name finds b itself
	if _, i := s.clip.ParkBone(b.Name); i >= 0 {
		s.leaveBoneMode(b.Name)
		s.logger.Debug("bone parked", logging.KeyBone, b.Name, logging.KeyPosition, i)
	}
	s.markDirty()
	s.refresh()
}

func (s *Session) unpark(b *curve.Bone, idx int) {
	s.clip.UnparkBone(b, idx)
	s.markDirty()
	s.refresh()
}

// leaveBoneMode drops back to global mode when the bone being edited goes
// away.
func (s *Session) leaveBoneMode(name string) {
	if s.mode.Kind == keyframe.ScopeBone && s.mode.Target == name {
		s.mode = keyframe.Global()
	}
}
