package model

import (
	"time"

	"github.com/manav03panchal/keyline/internal/curve"
)

// ClipDoc is the stored form of a curve.Clip.
type ClipDoc struct {
	Key        string        `json:"key"`
	Name       string        `json:"name"`
	FrameRate  float64       `json:"frame_rate"`
	Length     int           `json:"length"`
	Bones      []BoneDoc     `json:"bones,omitempty"`
	Properties []PropertyDoc `json:"properties,omitempty"`
	Events     []curve.Event `json:"events,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// BoneDoc is the stored form of a bone. Transform curves are keyed by
// channel name; channels without a slot are omitted.
type BoneDoc struct {
	Name     string                 `json:"name"`
	Position curve.Vec3             `json:"position"`
	Rotation curve.Quat             `json:"rotation"`
	Scale    curve.Vec3             `json:"scale"`
	Main     map[string][]curve.Key `json:"main,omitempty"`
	Base     map[string][]curve.Key `json:"base,omitempty"`
	Linear   []curve.FrameKey       `json:"linear,omitempty"`
}

// PropertyDoc is the stored form of a property track. A nil curve means the
// slot was never created.
type PropertyDoc struct {
	Path   string           `json:"path"`
	Main   []curve.Key      `json:"main,omitempty"`
	Base   []curve.Key      `json:"base,omitempty"`
	Linear []curve.FrameKey `json:"linear,omitempty"`
}

// SetKey sets the database key for this clip.
func (d *ClipDoc) SetKey(key string) {
	d.Key = key
}

// GetKey returns the database key for this clip.
func (d *ClipDoc) GetKey() string {
	return d.Key
}

// NewClipDoc creates an empty clip document.
func NewClipDoc(name string, rate float64, length int) *ClipDoc {
	now := time.Now()
	return &ClipDoc{
		Key:       GenerateClipKey(name),
		Name:      name,
		FrameRate: rate,
		Length:    length,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FrameCount returns the number of frames in the clip.
func (d *ClipDoc) FrameCount() int {
	return d.Length + 1
}

// Duration returns the clip length in seconds.
func (d *ClipDoc) Duration() float64 {
	return curve.FrameRate(d.FrameRate).FrameToTime(d.Length)
}

// KeyCount returns the number of sampled keys, linear frames and events.
func (d *ClipDoc) KeyCount() int {
	n := len(d.Events)
	for _, b := range d.Bones {
		for _, keys := range b.Main {
			n += len(keys)
		}
		n += len(b.Linear)
	}
	for _, p := range d.Properties {
		n += len(p.Main) + len(p.Linear)
	}
	return n
}

// FromClip captures the active content of c. Parked bones are not stored.
func FromClip(c *curve.Clip) *ClipDoc {
	d := &ClipDoc{
		Key:       GenerateClipKey(c.Name),
		Name:      c.Name,
		FrameRate: c.Rate.FPS(),
		Length:    c.Length,
		Events:    c.Events().Events(),
	}
	for _, b := range c.Bones() {
		pose := b.Node.Snapshot()
		d.Bones = append(d.Bones, BoneDoc{
			Name:     b.Name,
			Position: pose.Position,
			Rotation: pose.Rotation,
			Scale:    pose.Scale,
			Main:     transformDoc(b.Main),
			Base:     transformDoc(b.Base),
			Linear:   b.Linear.Frames(),
		})
	}
	for _, p := range c.Properties() {
		d.Properties = append(d.Properties, PropertyDoc{
			Path:   p.Path,
			Main:   propertyDoc(p.Main),
			Base:   propertyDoc(p.Base),
			Linear: p.Linear.Frames(),
		})
	}
	return d
}

// ToClip builds a live clip from the document. Unknown channel names are
// dropped and events without an ID get a fresh one.
func (d *ClipDoc) ToClip() *curve.Clip {
	c := curve.NewClip(d.Name, curve.FrameRate(d.FrameRate), d.Length)
	for _, bd := range d.Bones {
		b := c.AddBone(bd.Name)
		b.Node.Restore(curve.PoseState{Position: bd.Position, Rotation: bd.Rotation, Scale: bd.Scale})
		b.Main.Restore(transformState(bd.Main))
		b.Base.Restore(transformState(bd.Base))
		b.Linear.Restore(curve.FrameState{Frames: bd.Linear})
	}
	for _, pd := range d.Properties {
		p := c.AddProperty(pd.Path)
		p.Main.Restore(propertyState(pd.Main))
		p.Base.Restore(propertyState(pd.Base))
		p.Linear.Restore(curve.FrameState{Frames: pd.Linear})
	}
	events := make([]curve.Event, len(d.Events))
	for i, ev := range d.Events {
		if ev.ID == "" {
			ev.ID = curve.NewEventID()
		}
		events[i] = ev
	}
	c.Events().Restore(curve.EventsState{Events: events})
	return c
}

func transformDoc(t *curve.TransformCurve) map[string][]curve.Key {
	var out map[string][]curve.Key
	for ch := curve.Channel(0); ch < curve.ChannelCount; ch++ {
		slot := t.Slot(ch)
		if slot == nil {
			continue
		}
		if out == nil {
			out = make(map[string][]curve.Key)
		}
		out[ch.String()] = slot.Keys()
	}
	return out
}

func transformState(m map[string][]curve.Key) curve.TransformState {
	var s curve.TransformState
	for name, keys := range m {
		ch, ok := curve.ParseChannel(name)
		if !ok {
			continue
		}
		s.Slots[ch] = &curve.SampledState{Keys: keys}
	}
	return s
}

func propertyDoc(p *curve.PropertyCurve) []curve.Key {
	c := p.Curve()
	if c == nil {
		return nil
	}
	keys := c.Keys()
	if keys == nil {
		keys = []curve.Key{}
	}
	return keys
}

func propertyState(keys []curve.Key) curve.PropertyState {
	if keys == nil {
		return curve.PropertyState{}
	}
	return curve.PropertyState{Curve: &curve.SampledState{Keys: keys}}
}
