// Package history implements the bounded undo history of an editor
// session and the reversible action contract stored in it.
package history

// Action is one reversible unit of work.
//
// An action is applied when it is pushed. Undo calls Revert and Redo calls
// Reapply, any number of times while the action is inside the history
// window. When the action leaves the window, by eviction, by branch discard
// or by Clear, exactly one of FinalizeApplied or FinalizeUndone is called,
// matching the state the action was left in. Finalizers are where parked
// (soft-deleted) resources are released for good.
type Action interface {
	Reapply()
	Revert()
	FinalizeApplied()
	FinalizeUndone()
}

// RedoPolicy is implemented by actions that are re-established by the
// history position alone and must not be replayed on Redo. Actions that do
// not implement it are always replayed.
type RedoPolicy interface {
	ReapplyOnRedo() bool
}

// Named is implemented by actions that have a display name.
type Named interface {
	Name() string
}

// NameOf returns the action's name, or "action".
func NameOf(a Action) string {
	if n, ok := a.(Named); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return "action"
}

func reapplyOnRedo(a Action) bool {
	if p, ok := a.(RedoPolicy); ok {
		return p.ReapplyOnRedo()
	}
	return true
}

// Func is an Action built from closures, for atomic changes such as mode
// switches. Nil closures are skipped.
type Func struct {
	Label string

	Apply func()
	Undo  func()

	OnFinalizeApplied func()
	OnFinalizeUndone  func()

	// SkipRedoReplay marks a toggle whose state is recomputed from the
	// history position, so Redo only moves the position. Leave it false
	// unless that is actually true for the action.
	SkipRedoReplay bool
}

// Name implements Named.
func (f *Func) Name() string { return f.Label }

// Reapply implements Action.
func (f *Func) Reapply() {
	if f.Apply != nil {
		f.Apply()
	}
}

// Revert implements Action.
func (f *Func) Revert() {
	if f.Undo != nil {
		f.Undo()
	}
}

// FinalizeApplied implements Action.
func (f *Func) FinalizeApplied() {
	if f.OnFinalizeApplied != nil {
		f.OnFinalizeApplied()
	}
}

// FinalizeUndone implements Action.
func (f *Func) FinalizeUndone() {
	if f.OnFinalizeUndone != nil {
		f.OnFinalizeUndone()
	}
}

// ReapplyOnRedo implements RedoPolicy.
func (f *Func) ReapplyOnRedo() bool { return !f.SkipRedoReplay }
