package record

import (
	"github.com/manav03panchal/keyline/internal/logging"
)

// Recorder owns the "current record" slot of an editor session. At most one
// record is open at a time.
type Recorder struct {
	resolver Resolver
	hooks    Hooks
	current  *Record
}

// NewRecorder creates a recorder that opens records against resolver.
func NewRecorder(resolver Resolver, hooks Hooks) *Recorder {
	return &Recorder{resolver: resolver, hooks: hooks}
}

// Begin opens a record, or returns the one already open.
func (rc *Recorder) Begin() *Record {
	if rc.current == nil {
		rc.current = New(rc.resolver, rc.hooks)
		logging.DebugLog("edit record opened", logging.KeyGestureID, rc.current.ID)
	}
	return rc.current
}

// Current returns the open record, opening one lazily.
func (rc *Recorder) Current() *Record {
	return rc.Begin()
}

// Open returns the open record without creating one.
func (rc *Recorder) Open() *Record {
	return rc.current
}

// Active reports whether a record is open.
func (rc *Recorder) Active() bool {
	return rc.current != nil
}

// Commit seals rec and clears the slot. Empty records are dropped and
// commit reports false, as does a record that was already committed: its
// action owns the sealed snapshots. A nil rec commits the open record.
func (rc *Recorder) Commit(rec *Record) (*Action, bool) {
	if rec == nil {
		rec = rc.current
	}
	if rec == nil {
		return nil, false
	}
	if rec == rc.current {
		rc.current = nil
	}
	if rec.Sealed() {
		logging.DebugLog("sealed edit record not committed again", logging.KeyGestureID, rec.ID)
		return nil, false
	}
	if rec.IsEmpty() {
		logging.DebugLog("empty edit record dropped", logging.KeyGestureID, rec.ID)
		return nil, false
	}
	rec.Seal()
	return NewAction(rec), true
}

// Discard drops rec without touching history. Entities keep whatever state
// they were last mutated into; callers that want an abort call Revert first.
func (rc *Recorder) Discard(rec *Record) {
	if rec == nil || rec == rc.current {
		if rc.current != nil {
			logging.DebugLog("edit record discarded", logging.KeyGestureID, rc.current.ID)
		}
		rc.current = nil
	}
}
