package keyframe

import (
	"slices"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
)

// touched collects the owning entities an operation mutates, in first-touch
// order, and brackets the mutation with original and edited captures.
type touched struct {
	seen  map[curve.Handle]bool
	order []curve.Entity
}

func (t *touched) add(e curve.Entity) {
	if t.seen == nil {
		t.seen = make(map[curve.Handle]bool)
	}
	if t.seen[e.Handle()] {
		return
	}
	t.seen[e.Handle()] = true
	t.order = append(t.order, e)
}

func (t *touched) begin(rec Recorder) {
	for _, e := range t.order {
		rec.SetOriginal(e)
	}
}

func (t *touched) end(rec Recorder) {
	for _, e := range t.order {
		rec.RecordEdit(e)
	}
}

func frameSet(frames []int) map[int]bool {
	set := make(map[int]bool, len(frames))
	for _, f := range frames {
		set[f] = true
	}
	return set
}

func (a *Aggregator) inRange(frame int) bool {
	return frame >= 0 && frame <= a.clip.Length
}

// -----------------------------------------------------------------------------
// Relocate
// -----------------------------------------------------------------------------

// Relocate shifts every entry in scope sitting on one of frames by delta
// frames. The move is validated before anything is touched: a destination
// outside the clip fails with ErrFrameOutOfRange, and a destination held by
// an unselected entry of the same curve fails with ErrFrameOccupied. Events
// never block a move. It returns the number of entries moved.
func (a *Aggregator) Relocate(rec Recorder, scope Scope, frames []int, delta int) (int, error) {
	ts, err := a.tracks(scope)
	if err != nil {
		return 0, err
	}
	if delta == 0 || len(frames) == 0 {
		return 0, nil
	}
	sel := frameSet(frames)

	var tt touched
	moved := 0

	check := func(present []int) (int, error) {
		occupied := frameSet(present)
		n := 0
		for _, f := range present {
			if !sel[f] {
				continue
			}
			dest := f + delta
			if !a.inRange(dest) {
				return 0, errors.Wrapf(errors.ErrFrameOutOfRange, "frame %d moved by %d", f, delta)
			}
			if occupied[dest] && !sel[dest] {
				return 0, errors.Wrapf(errors.ErrFrameOccupied, "frame %d", dest)
			}
			n++
		}
		return n, nil
	}

	for _, t := range ts.sampled {
		n, err := check(a.sampledFrames(t.curve))
		if err != nil {
			return 0, err
		}
		if n > 0 {
			tt.add(t.owner)
			moved += n
		}
	}
	for _, t := range ts.linear {
		n, err := check(linearFrames(t.curve))
		if err != nil {
			return 0, err
		}
		if n > 0 {
			tt.add(t.curve)
			moved += n
		}
	}
	for _, ev := range ts.events.Events() {
		f := a.conv.TimeToFrame(ev.Time)
		if !sel[f] {
			continue
		}
		if !a.inRange(f + delta) {
			return 0, errors.Wrapf(errors.ErrFrameOutOfRange, "event %q moved by %d", ev.Name, delta)
		}
		tt.add(ts.events)
		moved++
	}
	if moved == 0 {
		return 0, nil
	}

	dt := a.conv.FrameToTime(delta)
	tt.begin(rec)
	for _, t := range ts.sampled {
		keys := t.curve.Keys()
		for i := range keys {
			if sel[a.conv.TimeToFrame(keys[i].Time)] {
				keys[i].Time += dt
			}
		}
		t.curve.Restore(curve.SampledState{Keys: keys})
	}
	for _, t := range ts.linear {
		keys := t.curve.Frames()
		for i := range keys {
			if sel[keys[i].Frame] {
				keys[i].Frame += delta
			}
		}
		t.curve.Restore(curve.FrameState{Frames: keys})
	}
	if ts.events != nil {
		events := ts.events.Events()
		for i := range events {
			if sel[a.conv.TimeToFrame(events[i].Time)] {
				events[i].Time += dt
			}
		}
		ts.events.Restore(curve.EventsState{Events: events})
	}
	tt.end(rec)
	return moved, nil
}

func (a *Aggregator) sampledFrames(c *curve.SampledCurve) []int {
	keys := c.Keys()
	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = a.conv.TimeToFrame(k.Time)
	}
	return out
}

func linearFrames(c *curve.FrameCurve) []int {
	keys := c.Frames()
	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = k.Frame
	}
	return out
}

// -----------------------------------------------------------------------------
// Delete
// -----------------------------------------------------------------------------

// Delete removes every entry in scope sitting on one of frames and returns
// how many were removed. Entries on other frames are left alone.
func (a *Aggregator) Delete(rec Recorder, scope Scope, frames []int) (int, error) {
	ts, err := a.tracks(scope)
	if err != nil {
		return 0, err
	}
	sel := frameSet(frames)

	var tt touched
	for _, t := range ts.sampled {
		if slices.ContainsFunc(a.sampledFrames(t.curve), func(f int) bool { return sel[f] }) {
			tt.add(t.owner)
		}
	}
	for _, t := range ts.linear {
		if slices.ContainsFunc(linearFrames(t.curve), func(f int) bool { return sel[f] }) {
			tt.add(t.curve)
		}
	}
	for _, ev := range ts.events.Events() {
		if sel[a.conv.TimeToFrame(ev.Time)] {
			tt.add(ts.events)
			break
		}
	}
	if len(tt.order) == 0 {
		return 0, nil
	}

	removed := 0
	tt.begin(rec)
	for _, t := range ts.sampled {
		keys := slices.DeleteFunc(t.curve.Keys(), func(k curve.Key) bool {
			return sel[a.conv.TimeToFrame(k.Time)]
		})
		removed += t.curve.Len() - len(keys)
		t.curve.Restore(curve.SampledState{Keys: keys})
	}
	for _, t := range ts.linear {
		for f := range sel {
			if t.curve.RemoveFrame(f) {
				removed++
			}
		}
	}
	for _, ev := range ts.events.Events() {
		if sel[a.conv.TimeToFrame(ev.Time)] && ts.events.Remove(ev.ID) {
			removed++
		}
	}
	tt.end(rec)
	return removed, nil
}

// -----------------------------------------------------------------------------
// Copy / Paste
// -----------------------------------------------------------------------------

// Clipboard holds copied keyframes. Entries keep their source coordinates;
// Paste applies the offset.
type Clipboard struct {
	Scope   Scope
	Frames  []int
	Sampled []SampledEntry
	Linear  []LinearEntry
	Events  []curve.Event
}

// Len returns the number of copied entries.
func (c *Clipboard) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Sampled) + len(c.Linear) + len(c.Events)
}

// IsEmpty reports whether the clipboard holds nothing.
func (c *Clipboard) IsEmpty() bool {
	return c.Len() == 0
}

// Copy snapshots the keyframes on frames. Frames without content are
// dropped from the result.
func (a *Aggregator) Copy(scope Scope, frames []int) (*Clipboard, error) {
	want := slices.Clone(frames)
	slices.Sort(want)
	want = slices.Compact(want)

	cb := &Clipboard{Scope: scope}
	for _, f := range want {
		agg, err := a.At(scope, f)
		if err != nil {
			return nil, err
		}
		if agg.IsEmpty() {
			continue
		}
		cb.Frames = append(cb.Frames, f)
		cb.Sampled = append(cb.Sampled, agg.Sampled...)
		for _, l := range agg.Linear {
			l.Key.Values = slices.Clone(l.Key.Values)
			cb.Linear = append(cb.Linear, l)
		}
		cb.Events = append(cb.Events, agg.Events...)
	}
	return cb, nil
}

// Paste inserts the clipboard content offset frames later, restricted to
// scope. Pasted keys replace keys already at the same time, pasted events
// get fresh IDs, and entries whose bone or property is gone are skipped.
// If any entry kept by scope would land outside the clip nothing is pasted
// and ErrFrameOutOfRange is returned.
func (a *Aggregator) Paste(rec Recorder, scope Scope, cb *Clipboard, offset int) (int, error) {
	if cb.IsEmpty() {
		return 0, errors.ErrEmptyClipboard
	}
	if _, err := a.tracks(scope); err != nil {
		return 0, err
	}

	var sampled []SampledEntry
	var linear []LinearEntry
	var events []curve.Event
	var frames []int
	var tt touched
	for _, e := range cb.Sampled {
		if owner := a.sampledOwner(scope, e.Target, e.Property); owner != nil {
			sampled = append(sampled, e)
			frames = append(frames, a.conv.TimeToFrame(e.Key.Time))
			tt.add(owner)
		}
	}
	for _, e := range cb.Linear {
		if lc := a.linearOwner(scope, e.Target, e.Property); lc != nil {
			linear = append(linear, e)
			frames = append(frames, e.Key.Frame)
			tt.add(lc)
		}
	}
	if scope.Kind == ScopeGlobal || scope.Kind == ScopeEvents {
		events = cb.Events
		for _, ev := range events {
			frames = append(frames, a.conv.TimeToFrame(ev.Time))
		}
		if len(events) > 0 {
			tt.add(a.clip.Events())
		}
	}
	if len(tt.order) == 0 {
		return 0, nil
	}
	// Only entries that survive the scope filter have to land in the clip.
	for _, f := range frames {
		if !a.inRange(f + offset) {
			return 0, errors.Wrapf(errors.ErrFrameOutOfRange, "frame %d pasted at %d", f, f+offset)
		}
	}

	dt := a.conv.FrameToTime(offset)
	tt.begin(rec)
	for _, e := range sampled {
		k := e.Key
		k.Time += dt
		a.sampledSlot(e).SetKey(k)
	}
	for _, e := range linear {
		k := e.Key
		k.Frame += offset
		k.Values = slices.Clone(k.Values)
		a.linearOwner(scope, e.Target, e.Property).SetFrame(k)
	}
	for _, ev := range events {
		ev.ID = ""
		ev.Time += dt
		a.clip.Events().Add(ev)
	}
	tt.end(rec)
	return len(sampled) + len(linear) + len(events), nil
}

func inScope(scope Scope, target string, property bool) bool {
	switch scope.Kind {
	case ScopeGlobal:
		return true
	case ScopeBone:
		return !property && scope.Target == target
	case ScopeProperty:
		return property && scope.Target == target
	}
	return false
}

// sampledOwner resolves the compound curve a pasted sampled key lands in.
func (a *Aggregator) sampledOwner(scope Scope, target string, property bool) curve.Entity {
	if !inScope(scope, target, property) {
		return nil
	}
	if property {
		if p := a.clip.Property(target); p != nil {
			return p.Main
		}
		return nil
	}
	if b := a.clip.Bone(target); b != nil {
		return b.Main
	}
	return nil
}

func (a *Aggregator) linearOwner(scope Scope, target string, property bool) *curve.FrameCurve {
	if !inScope(scope, target, property) {
		return nil
	}
	if property {
		if p := a.clip.Property(target); p != nil {
			return p.Linear
		}
		return nil
	}
	if b := a.clip.Bone(target); b != nil {
		return b.Linear
	}
	return nil
}

// sampledSlot returns the slot for e, creating it when the destination
// track has no keys on that channel yet.
func (a *Aggregator) sampledSlot(e SampledEntry) *curve.SampledCurve {
	if e.Property {
		return a.clip.Property(e.Target).Main.Ensure()
	}
	return a.clip.Bone(e.Target).Main.Ensure(e.Channel)
}
