package curve

import (
	"fmt"
	"strings"
)

// Channel addresses one slot of a TransformCurve.
type Channel int

const (
	PosX Channel = iota
	PosY
	PosZ
	RotX
	RotY
	RotZ
	RotW
	ScaleX
	ScaleY
	ScaleZ

	// ChannelCount is the number of transform slots.
	ChannelCount
)

var channelNames = [ChannelCount]string{
	"pos.x", "pos.y", "pos.z",
	"rot.x", "rot.y", "rot.z", "rot.w",
	"scale.x", "scale.y", "scale.z",
}

// String returns the channel's short name, e.g. "pos.x".
func (c Channel) String() string {
	if c < 0 || c >= ChannelCount {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid reports whether c addresses a real slot.
func (c Channel) Valid() bool {
	return c >= 0 && c < ChannelCount
}

// ParseChannel resolves a short channel name.
func ParseChannel(s string) (Channel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range channelNames {
		if name == s {
			return Channel(i), true
		}
	}
	return -1, false
}

// TransformState is the value snapshot of a TransformCurve. Nil slots were
// absent when captured.
type TransformState struct {
	Slots [ChannelCount]*SampledState
}

// TransformCurve groups up to ten lazily created sampled slots for a bone's
// position, rotation and scale.
type TransformCurve struct {
	ident
	slots [ChannelCount]*SampledCurve
}

// NewTransformCurve creates a transform curve with no slots.
func NewTransformCurve() *TransformCurve {
	return &TransformCurve{}
}

// Kind implements Entity.
func (t *TransformCurve) Kind() Kind { return KindTransform }

// Slot returns the curve for ch, or nil if it has not been created.
func (t *TransformCurve) Slot(ch Channel) *SampledCurve {
	if t == nil || !ch.Valid() {
		return nil
	}
	return t.slots[ch]
}

// Ensure returns the curve for ch, creating it if needed.
func (t *TransformCurve) Ensure(ch Channel) *SampledCurve {
	if t == nil || !ch.Valid() {
		return nil
	}
	if t.slots[ch] == nil {
		t.slots[ch] = &SampledCurve{}
	}
	return t.slots[ch]
}

// Snapshot captures every present slot.
func (t *TransformCurve) Snapshot() TransformState {
	var s TransformState
	if t == nil {
		return s
	}
	for ch, slot := range t.slots {
		if slot != nil {
			st := slot.Snapshot()
			s.Slots[ch] = &st
		}
	}
	return s
}

// Restore makes the slot layout and content match s. Existing slot curves
// are reused so references held by aggregates stay valid.
func (t *TransformCurve) Restore(s TransformState) {
	if t == nil {
		return
	}
	for ch := range t.slots {
		if s.Slots[ch] == nil {
			t.slots[ch] = nil
			continue
		}
		t.Ensure(Channel(ch)).Restore(*s.Slots[ch])
	}
}

// PropertyState is the value snapshot of a PropertyCurve.
type PropertyState struct {
	Curve *SampledState
}

// PropertyCurve binds one lazily created sampled slot to a property path.
type PropertyCurve struct {
	ident
	Path  string
	curve *SampledCurve
}

// NewPropertyCurve creates an empty property curve for path.
func NewPropertyCurve(path string) *PropertyCurve {
	return &PropertyCurve{Path: path}
}

// Kind implements Entity.
func (p *PropertyCurve) Kind() Kind { return KindProperty }

// Curve returns the bound curve, or nil if none has been written.
func (p *PropertyCurve) Curve() *SampledCurve {
	if p == nil {
		return nil
	}
	return p.curve
}

// Ensure returns the bound curve, creating it if needed.
func (p *PropertyCurve) Ensure() *SampledCurve {
	if p == nil {
		return nil
	}
	if p.curve == nil {
		p.curve = &SampledCurve{}
	}
	return p.curve
}

// Snapshot captures the bound curve.
func (p *PropertyCurve) Snapshot() PropertyState {
	if p == nil || p.curve == nil {
		return PropertyState{}
	}
	st := p.curve.Snapshot()
	return PropertyState{Curve: &st}
}

// Restore makes the bound curve match s.
func (p *PropertyCurve) Restore(s PropertyState) {
	if p == nil {
		return
	}
	if s.Curve == nil {
		p.curve = nil
		return
	}
	p.Ensure().Restore(*s.Curve)
}
