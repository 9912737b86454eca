// Package keyframe presents the content of a clip as per-frame keyframes.
//
// A keyframe is not stored anywhere. It is the set of sampled keys, linear
// frames and events that quantize to the same frame index inside the
// current scope. The Aggregator builds that view on demand and carries out
// relocate, delete and copy/paste across every representation at once,
// capturing each touched entity in an edit record.
package keyframe

import (
	"fmt"
	"slices"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
)

// NoChannel marks a sampled entry that belongs to a property track.
const NoChannel curve.Channel = -1

// ScopeKind selects which tracks an operation sees.
type ScopeKind int

const (
	// ScopeGlobal covers every bone, property and event.
	ScopeGlobal ScopeKind = iota
	// ScopeBone covers one bone's main and linear tracks.
	ScopeBone
	// ScopeProperty covers one property's main and linear tracks.
	ScopeProperty
	// ScopeEvents covers the event list only.
	ScopeEvents
)

var scopeNames = map[ScopeKind]string{
	ScopeGlobal:   "global",
	ScopeBone:     "bone",
	ScopeProperty: "property",
	ScopeEvents:   "events",
}

func (k ScopeKind) String() string {
	if s, ok := scopeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("scope(%d)", int(k))
}

// ParseScopeKind resolves a scope name such as "bone".
func ParseScopeKind(s string) (ScopeKind, bool) {
	for k, name := range scopeNames {
		if name == s {
			return k, true
		}
	}
	return ScopeGlobal, false
}

// Scope is the edit mode an aggregate is built for.
type Scope struct {
	Kind   ScopeKind
	Target string
}

// Global returns the scope covering the whole clip.
func Global() Scope { return Scope{Kind: ScopeGlobal} }

// BoneScope returns the scope of one bone.
func BoneScope(name string) Scope { return Scope{Kind: ScopeBone, Target: name} }

// PropertyScope returns the scope of one property track.
func PropertyScope(path string) Scope { return Scope{Kind: ScopeProperty, Target: path} }

// EventScope returns the scope of the clip's events.
func EventScope() Scope { return Scope{Kind: ScopeEvents} }

func (s Scope) String() string {
	if s.Target == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + ":" + s.Target
}

// Converter maps clip time to frame indices. curve.FrameRate implements it.
type Converter interface {
	TimeToFrame(t float64) int
	FrameToTime(f int) float64
}

// Recorder receives the entities an operation touches. *record.Record
// implements it.
type Recorder interface {
	SetOriginal(e curve.Entity)
	RecordEdit(e curve.Entity)
}

// SampledEntry is one sampled key inside an aggregate. Target is the bone
// name, or the property path when Property is set.
type SampledEntry struct {
	Owner    curve.Handle
	Target   string
	Property bool
	Channel  curve.Channel
	Key      curve.Key
}

// LinearEntry is one frame-array entry inside an aggregate.
type LinearEntry struct {
	Owner    curve.Handle
	Target   string
	Property bool
	Key      curve.FrameKey
}

// Aggregate is the keyframe at one frame index.
type Aggregate struct {
	Frame   int
	Scope   Scope
	Sampled []SampledEntry
	Linear  []LinearEntry
	Events  []curve.Event
}

// Len returns the number of entries in the aggregate.
func (a *Aggregate) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Sampled) + len(a.Linear) + len(a.Events)
}

// IsEmpty reports whether nothing sits on the frame.
func (a *Aggregate) IsEmpty() bool {
	return a.Len() == 0
}

// Aggregator builds keyframe views over one clip.
type Aggregator struct {
	clip *curve.Clip
	conv Converter
}

// New returns an aggregator for clip. A nil conv uses the clip's frame rate.
func New(clip *curve.Clip, conv Converter) *Aggregator {
	if conv == nil {
		conv = clip.Rate
	}
	return &Aggregator{clip: clip, conv: conv}
}

// Clip returns the clip the aggregator reads.
func (a *Aggregator) Clip() *curve.Clip {
	return a.clip
}

// At collects every entry in scope whose frame is frame.
func (a *Aggregator) At(scope Scope, frame int) (*Aggregate, error) {
	ts, err := a.tracks(scope)
	if err != nil {
		return nil, err
	}
	agg := &Aggregate{Frame: frame, Scope: scope}
	for _, t := range ts.sampled {
		for _, k := range t.curve.Keys() {
			if a.conv.TimeToFrame(k.Time) == frame {
				agg.Sampled = append(agg.Sampled, SampledEntry{
					Owner:    t.owner.Handle(),
					Target:   t.target,
					Property: t.property,
					Channel:  t.channel,
					Key:      k,
				})
			}
		}
	}
	for _, t := range ts.linear {
		if k, ok := t.curve.Find(frame); ok {
			agg.Linear = append(agg.Linear, LinearEntry{
				Owner:    t.curve.Handle(),
				Target:   t.target,
				Property: t.property,
				Key:      k,
			})
		}
	}
	for _, ev := range ts.events.Events() {
		if a.conv.TimeToFrame(ev.Time) == frame {
			agg.Events = append(agg.Events, ev)
		}
	}
	return agg, nil
}

// Frames returns the sorted frame indices in scope that hold content.
func (a *Aggregator) Frames(scope Scope) ([]int, error) {
	ts, err := a.tracks(scope)
	if err != nil {
		return nil, err
	}
	var frames []int
	for _, t := range ts.sampled {
		for _, k := range t.curve.Keys() {
			frames = append(frames, a.conv.TimeToFrame(k.Time))
		}
	}
	for _, t := range ts.linear {
		for _, k := range t.curve.Frames() {
			frames = append(frames, k.Frame)
		}
	}
	for _, ev := range ts.events.Events() {
		frames = append(frames, a.conv.TimeToFrame(ev.Time))
	}
	slices.Sort(frames)
	return slices.Compact(frames), nil
}

// -----------------------------------------------------------------------------
// Track enumeration
// -----------------------------------------------------------------------------

type sampledTrack struct {
	owner    curve.Entity
	target   string
	property bool
	channel  curve.Channel
	curve    *curve.SampledCurve
}

type linearTrack struct {
	target   string
	property bool
	curve    *curve.FrameCurve
}

type trackSet struct {
	sampled []sampledTrack
	linear  []linearTrack
	events  *curve.EventList
}

func (a *Aggregator) tracks(scope Scope) (trackSet, error) {
	var ts trackSet
	switch scope.Kind {
	case ScopeGlobal:
		for _, b := range a.clip.Bones() {
			ts.addBone(b)
		}
		for _, p := range a.clip.Properties() {
			ts.addProperty(p)
		}
		ts.events = a.clip.Events()
	case ScopeBone:
		b := a.clip.Bone(scope.Target)
		if b == nil {
			return ts, errors.Wrapf(errors.ErrBoneNotFound, "bone %q", scope.Target)
		}
		ts.addBone(b)
	case ScopeProperty:
		p := a.clip.Property(scope.Target)
		if p == nil {
			return ts, errors.Wrapf(errors.ErrPropertyNotFound, "property %q", scope.Target)
		}
		ts.addProperty(p)
	case ScopeEvents:
		ts.events = a.clip.Events()
	default:
		return ts, fmt.Errorf("unknown scope %s", scope.Kind)
	}
	return ts, nil
}

func (ts *trackSet) addBone(b *curve.Bone) {
	for ch := curve.Channel(0); ch < curve.ChannelCount; ch++ {
		if slot := b.Main.Slot(ch); slot != nil {
			ts.sampled = append(ts.sampled, sampledTrack{owner: b.Main, target: b.Name, channel: ch, curve: slot})
		}
	}
	ts.linear = append(ts.linear, linearTrack{target: b.Name, curve: b.Linear})
}

func (ts *trackSet) addProperty(p *curve.Property) {
	if c := p.Main.Curve(); c != nil {
		ts.sampled = append(ts.sampled, sampledTrack{owner: p.Main, target: p.Path, property: true, channel: NoChannel, curve: c})
	}
	ts.linear = append(ts.linear, linearTrack{target: p.Path, property: true, curve: p.Linear})
}
