package history

import (
	"log/slog"

	"github.com/manav03panchal/keyline/internal/logging"
)

// DefaultMaxSize is the history length used when none is configured.
const DefaultMaxSize = 100

// entry is one slot of the ring.
type entry struct {
	action    Action
	undone    bool
	finalized bool
}

func (e *entry) finalize() {
	if e.finalized {
		return
	}
	e.finalized = true
	if e.undone {
		e.action.FinalizeUndone()
	} else {
		e.action.FinalizeApplied()
	}
}

// Info describes one history entry for display.
type Info struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Undone bool   `json:"undone"`
}

// History is a bounded, positioned sequence of actions stored in a ring
// buffer. Entries at or below Position are applied; entries above it are
// undone and only exist until the next Push.
//
// History is not safe for concurrent use; an editor session drives it from
// one goroutine.
type History struct {
	ring     []*entry
	head     int
	size     int
	position int
	logger   *slog.Logger
}

// New creates a history holding at most maxSize actions. Values below 1
// fall back to DefaultMaxSize.
func New(maxSize int) *History {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &History{
		ring:     make([]*entry, maxSize),
		position: -1,
		logger:   logging.WithGroup("history"),
	}
}

func (h *History) at(i int) *entry {
	return h.ring[(h.head+i)%len(h.ring)]
}

func (h *History) set(i int, e *entry) {
	h.ring[(h.head+i)%len(h.ring)] = e
}

// Len returns the number of actions in the window.
func (h *History) Len() int { return h.size }

// Position returns the index of the last applied action, or -1.
func (h *History) Position() int { return h.position }

// MaxSize returns the window capacity.
func (h *History) MaxSize() int { return len(h.ring) }

// CanUndo reports whether an applied action exists.
func (h *History) CanUndo() bool { return h.position >= 0 }

// CanRedo reports whether an undone action exists.
func (h *History) CanRedo() bool { return h.position < h.size-1 }

// Push appends a newly applied action. Undone actions above the position
// are finalized and dropped first; if the window is full the oldest action
// is finalized and dequeued.
func (h *History) Push(a Action) {
	if a == nil {
		return
	}
	dropped := h.truncate()

	evicted := false
	if h.size == len(h.ring) {
		oldest := h.at(0)
		h.set(0, nil)
		h.head = (h.head + 1) % len(h.ring)
		h.size--
		h.position--
		oldest.finalize()
		evicted = true
	}

	h.set(h.size, &entry{action: a})
	h.size++
	h.position = h.size - 1

	h.logger.Debug("action pushed",
		logging.KeyAction, NameOf(a),
		logging.KeyPosition, h.position,
		logging.KeyLength, h.size,
		"dropped", dropped,
		"evicted", evicted)
}

// truncate finalizes and drops every entry above the position, newest
// first, and returns how many were dropped.
func (h *History) truncate() int {
	n := 0
	for h.size-1 > h.position {
		i := h.size - 1
		e := h.at(i)
		h.set(i, nil)
		h.size--
		e.finalize()
		n++
	}
	return n
}

// Undo reverts the action at the position and moves the position back.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	e := h.at(h.position)
	e.action.Revert()
	e.undone = true
	h.position--
	h.logger.Debug("undo", logging.KeyAction, NameOf(e.action), logging.KeyPosition, h.position)
	return true
}

// Redo moves the position forward and reapplies the action there, unless
// the action's redo policy says moving the position is enough.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.position++
	e := h.at(h.position)
	if reapplyOnRedo(e.action) {
		e.action.Reapply()
	}
	e.undone = false
	h.logger.Debug("redo", logging.KeyAction, NameOf(e.action), logging.KeyPosition, h.position)
	return true
}

// Clear finalizes every action, newest first, and empties the window.
func (h *History) Clear() {
	for i := h.size - 1; i >= 0; i-- {
		e := h.at(i)
		h.set(i, nil)
		e.finalize()
	}
	h.head = 0
	h.size = 0
	h.position = -1
}

// Entries describes the window, oldest first.
func (h *History) Entries() []Info {
	out := make([]Info, h.size)
	for i := range out {
		e := h.at(i)
		out[i] = Info{Index: i, Name: NameOf(e.action), Undone: e.undone}
	}
	return out
}
