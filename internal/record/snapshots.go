package record

import "github.com/manav03panchal/keyline/internal/curve"

// snapshots holds the original and edited states of one entity kind, keyed
// by handle. order keeps first-touch order so restores are deterministic.
type snapshots[S any] struct {
	order    []curve.Handle
	original map[curve.Handle]S
	edited   map[curve.Handle]S
}

func newSnapshots[S any]() *snapshots[S] {
	return &snapshots[S]{
		original: make(map[curve.Handle]S),
		edited:   make(map[curve.Handle]S),
	}
}

func (s *snapshots[S]) track(h curve.Handle) {
	_, hasOrig := s.original[h]
	_, hasEdit := s.edited[h]
	if !hasOrig && !hasEdit {
		s.order = append(s.order, h)
	}
}

// setOriginal stores capture() for h unless an original already exists.
// capture is not called when the original is kept.
func (s *snapshots[S]) setOriginal(h curve.Handle, capture func() S) bool {
	if _, ok := s.original[h]; ok {
		return false
	}
	s.track(h)
	s.original[h] = capture()
	return true
}

// setEdited overwrites the edited state for h.
func (s *snapshots[S]) setEdited(h curve.Handle, st S) {
	s.track(h)
	s.edited[h] = st
}

func (s *snapshots[S]) len() int {
	return len(s.order)
}

