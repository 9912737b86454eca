// Package record implements the edit record: the diff recorder that
// captures before and after snapshots of every entity a gesture touches and
// can push either set back into the clip.
package record

import (
	"fmt"
	"log/slog"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/logging"
)

// Resolver maps handles back to live entities. *curve.Clip and
// *curve.Registry both satisfy it.
type Resolver interface {
	Lookup(h curve.Handle) curve.Entity
}

// Hooks are the host callbacks a record fires after restoring snapshots.
// Every field is optional.
type Hooks struct {
	// Refresh asks the rendering layer to redraw.
	Refresh func()
	// ReconcileIK lets the rig re-solve after poses changed.
	ReconcileIK func()
	// Dirty tells the persistence layer that curve content changed.
	Dirty func()
	// Playhead reports the current playback position.
	Playhead func() float64
	// Seek moves the playback position.
	Seek func(t float64)
}

// Record accumulates the snapshots of one gesture. Originals are captured
// at most once per entity; edited states are overwritten on every capture.
type Record struct {
	ID    string
	Label string

	resolver Resolver
	hooks    Hooks
	logger   *slog.Logger

	sampled    *snapshots[curve.SampledState]
	frames     *snapshots[curve.FrameState]
	transforms *snapshots[curve.TransformState]
	props      *snapshots[curve.PropertyState]
	poses      *snapshots[curve.PoseState]
	events     *snapshots[curve.EventsState]

	originalPlayhead float64
	editedPlayhead   float64
	sealed           bool
}

// New opens a record against resolver. The original playhead is taken now.
func New(resolver Resolver, hooks Hooks) *Record {
	id := logging.GenerateGestureID()
	r := &Record{
		ID:         id,
		resolver:   resolver,
		hooks:      hooks,
		logger:     logging.With(logging.KeyGestureID, id),
		sampled:    newSnapshots[curve.SampledState](),
		frames:     newSnapshots[curve.FrameState](),
		transforms: newSnapshots[curve.TransformState](),
		props:      newSnapshots[curve.PropertyState](),
		poses:      newSnapshots[curve.PoseState](),
		events:     newSnapshots[curve.EventsState](),
	}
	if hooks.Playhead != nil {
		r.originalPlayhead = hooks.Playhead()
		r.editedPlayhead = r.originalPlayhead
	}
	return r
}

// Count returns the number of distinct entities captured.
func (r *Record) Count() int {
	return r.sampled.len() + r.frames.len() + r.transforms.len() +
		r.props.len() + r.poses.len() + r.events.len()
}

// IsEmpty reports whether the gesture touched nothing.
func (r *Record) IsEmpty() bool {
	return r.Count() == 0
}

// Sealed reports whether the record has been committed.
func (r *Record) Sealed() bool {
	return r.sealed
}

// -----------------------------------------------------------------------------
// Per-kind capture
// -----------------------------------------------------------------------------

// SetOriginalSampled captures c's pre-edit state unless already captured.
func (r *Record) SetOriginalSampled(c *curve.SampledCurve) {
	if c == nil || c.Handle() == 0 {
		return
	}
	r.sampled.setOriginal(c.Handle(), c.Snapshot)
}

// RecordSampledEdit captures c's current state as its edited state.
func (r *Record) RecordSampledEdit(c *curve.SampledCurve) {
	if c == nil || c.Handle() == 0 {
		return
	}
	r.sampled.setEdited(c.Handle(), c.Snapshot())
}

// SetOriginalFrame captures c's pre-edit state unless already captured.
func (r *Record) SetOriginalFrame(c *curve.FrameCurve) {
	if c == nil || c.Handle() == 0 {
		return
	}
	r.frames.setOriginal(c.Handle(), c.Snapshot)
}

// RecordFrameEdit captures c's current state as its edited state.
func (r *Record) RecordFrameEdit(c *curve.FrameCurve) {
	if c == nil || c.Handle() == 0 {
		return
	}
	r.frames.setEdited(c.Handle(), c.Snapshot())
}

// SetOriginalTransform captures t's pre-edit state unless already captured.
func (r *Record) SetOriginalTransform(t *curve.TransformCurve) {
	if t == nil || t.Handle() == 0 {
		return
	}
	r.transforms.setOriginal(t.Handle(), t.Snapshot)
}

// RecordTransformEdit captures t's current state as its edited state.
func (r *Record) RecordTransformEdit(t *curve.TransformCurve) {
	if t == nil || t.Handle() == 0 {
		return
	}
	r.transforms.setEdited(t.Handle(), t.Snapshot())
}

// SetOriginalProperty captures p's pre-edit state unless already captured.
func (r *Record) SetOriginalProperty(p *curve.PropertyCurve) {
	if p == nil || p.Handle() == 0 {
		return
	}
	r.props.setOriginal(p.Handle(), p.Snapshot)
}

// RecordPropertyEdit captures p's current state as its edited state.
func (r *Record) RecordPropertyEdit(p *curve.PropertyCurve) {
	if p == nil || p.Handle() == 0 {
		return
	}
	r.props.setEdited(p.Handle(), p.Snapshot())
}

// SetOriginalPose captures n's pre-edit pose unless already captured.
func (r *Record) SetOriginalPose(n *curve.Node) {
	if n == nil || n.Handle() == 0 {
		return
	}
	r.poses.setOriginal(n.Handle(), n.Snapshot)
}

// RecordPoseEdit captures n's current pose as its edited pose.
func (r *Record) RecordPoseEdit(n *curve.Node) {
	if n == nil || n.Handle() == 0 {
		return
	}
	r.poses.setEdited(n.Handle(), n.Snapshot())
}

// SetOriginalEvents captures the whole event array unless already captured.
func (r *Record) SetOriginalEvents(l *curve.EventList) {
	if l == nil || l.Handle() == 0 {
		return
	}
	r.events.setOriginal(l.Handle(), l.Snapshot)
}

// SetEditedEvents captures the whole event array as its edited state.
func (r *Record) SetEditedEvents(l *curve.EventList) {
	if l == nil || l.Handle() == 0 {
		return
	}
	r.events.setEdited(l.Handle(), l.Snapshot())
}

// SetOriginal dispatches to the kind-specific original capture.
func (r *Record) SetOriginal(e curve.Entity) {
	switch v := e.(type) {
	case *curve.SampledCurve:
		r.SetOriginalSampled(v)
	case *curve.FrameCurve:
		r.SetOriginalFrame(v)
	case *curve.TransformCurve:
		r.SetOriginalTransform(v)
	case *curve.PropertyCurve:
		r.SetOriginalProperty(v)
	case *curve.Node:
		r.SetOriginalPose(v)
	case *curve.EventList:
		r.SetOriginalEvents(v)
	}
}

// RecordEdit dispatches to the kind-specific edited capture.
func (r *Record) RecordEdit(e curve.Entity) {
	switch v := e.(type) {
	case *curve.SampledCurve:
		r.RecordSampledEdit(v)
	case *curve.FrameCurve:
		r.RecordFrameEdit(v)
	case *curve.TransformCurve:
		r.RecordTransformEdit(v)
	case *curve.PropertyCurve:
		r.RecordPropertyEdit(v)
	case *curve.Node:
		r.RecordPoseEdit(v)
	case *curve.EventList:
		r.SetEditedEvents(v)
	}
}

// Seal captures the commit-time state of every touched entity as its
// edited state, along with the playhead. Entities that no longer resolve
// keep whatever edited state they had.
func (r *Record) Seal() {
	for _, h := range r.handles() {
		if e := r.resolver.Lookup(h); e != nil {
			r.RecordEdit(e)
		}
	}
	if r.hooks.Playhead != nil {
		r.editedPlayhead = r.hooks.Playhead()
	}
	r.sealed = true
}

func (r *Record) handles() []curve.Handle {
	out := make([]curve.Handle, 0, r.Count())
	out = append(out, r.sampled.order...)
	out = append(out, r.frames.order...)
	out = append(out, r.transforms.order...)
	out = append(out, r.props.order...)
	out = append(out, r.poses.order...)
	out = append(out, r.events.order...)
	return out
}

// -----------------------------------------------------------------------------
// Replay
// -----------------------------------------------------------------------------

// Reapply pushes every edited snapshot back into its entity, then notifies
// the host and seeks to the edited playhead.
func (r *Record) Reapply() {
	n := r.restore(true)
	r.logger.Debug("record reapplied", logging.KeyCount, n)
	r.notify(r.editedPlayhead)
}

// Revert pushes every original snapshot back into its entity, then notifies
// the host and seeks to the original playhead.
func (r *Record) Revert() {
	n := r.restore(false)
	r.logger.Debug("record reverted", logging.KeyCount, n)
	r.notify(r.originalPlayhead)
}

func (r *Record) restore(edited bool) int {
	n := 0
	n += restoreEach(r, r.sampled, edited, func(e curve.Entity, s curve.SampledState) bool {
		c, ok := e.(*curve.SampledCurve)
		if ok {
			c.Restore(s)
		}
		return ok
	})
	n += restoreEach(r, r.frames, edited, func(e curve.Entity, s curve.FrameState) bool {
		c, ok := e.(*curve.FrameCurve)
		if ok {
			c.Restore(s)
		}
		return ok
	})
	n += restoreEach(r, r.transforms, edited, func(e curve.Entity, s curve.TransformState) bool {
		c, ok := e.(*curve.TransformCurve)
		if ok {
			c.Restore(s)
		}
		return ok
	})
	n += restoreEach(r, r.props, edited, func(e curve.Entity, s curve.PropertyState) bool {
		c, ok := e.(*curve.PropertyCurve)
		if ok {
			c.Restore(s)
		}
		return ok
	})
	n += restoreEach(r, r.poses, edited, func(e curve.Entity, s curve.PoseState) bool {
		c, ok := e.(*curve.Node)
		if ok {
			c.Restore(s)
		}
		return ok
	})
	n += restoreEach(r, r.events, edited, func(e curve.Entity, s curve.EventsState) bool {
		c, ok := e.(*curve.EventList)
		if ok {
			c.Restore(s)
		}
		return ok
	})
	return n
}

// restoreEach applies one side of set. Handles that no longer resolve, or
// resolve to a different kind, are skipped.
func restoreEach[S any](r *Record, set *snapshots[S], edited bool, apply func(curve.Entity, S) bool) int {
	from := set.original
	if edited {
		from = set.edited
	}
	n := 0
	for _, h := range set.order {
		st, ok := from[h]
		if !ok {
			continue
		}
		e := r.resolver.Lookup(h)
		if e == nil || !apply(e, st) {
			r.logger.Debug("skipping missing entity", logging.KeyHandle, uint64(h))
			continue
		}
		n++
	}
	return n
}

func (r *Record) notify(playhead float64) {
	r.call("refresh", r.hooks.Refresh)
	r.call("reconcile_ik", r.hooks.ReconcileIK)
	r.call("dirty", r.hooks.Dirty)
	if r.hooks.Seek != nil {
		r.call("seek", func() { r.hooks.Seek(playhead) })
	}
}

// call runs a host callback. A panic is logged and swallowed so the rest of
// the replay still happens.
func (r *Record) call(name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("host callback failed", "hook", name, logging.KeyError, fmt.Sprint(p))
		}
	}()
	fn()
}
