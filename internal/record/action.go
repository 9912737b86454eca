package record

// Action is the history unit produced by committing a record.
// Records hold only value snapshots, so finalizing one releases nothing.
type Action struct {
	rec *Record
}

// NewAction wraps a sealed record.
func NewAction(rec *Record) *Action {
	return &Action{rec: rec}
}

// Record returns the wrapped record.
func (a *Action) Record() *Record { return a.rec }

// Name returns the record label, or "edit".
func (a *Action) Name() string {
	if a.rec.Label != "" {
		return a.rec.Label
	}
	return "edit"
}

// Reapply restores the edited snapshots.
func (a *Action) Reapply() { a.rec.Reapply() }

// Revert restores the original snapshots.
func (a *Action) Revert() { a.rec.Revert() }

// FinalizeApplied does nothing.
func (a *Action) FinalizeApplied() {}

// FinalizeUndone does nothing.
func (a *Action) FinalizeUndone() {}
