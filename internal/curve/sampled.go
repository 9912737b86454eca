package curve

import (
	"slices"
	"sort"
)

// Interp holds per-key interpolation flags.
type Interp uint8

const (
	// InterpBroken lets the in and out tangents differ.
	InterpBroken Interp = 1 << iota
	// InterpConstant holds the key value until the next key.
	InterpConstant
	// InterpLinear ignores tangents and interpolates linearly.
	InterpLinear
)

// Key is one sample of a continuous curve.
type Key struct {
	Time       float64 `json:"time"`
	Value      float64 `json:"value"`
	InTangent  float64 `json:"in_tangent"`
	OutTangent float64 `json:"out_tangent"`
	Flags      Interp  `json:"flags,omitempty"`
}

// SampledState is the value snapshot of a SampledCurve.
type SampledState struct {
	Keys []Key
}

// SampledCurve is a continuous curve of time-ordered keys.
type SampledCurve struct {
	ident
	keys []Key
}

// NewSampledCurve creates a curve from keys in any order.
func NewSampledCurve(keys ...Key) *SampledCurve {
	c := &SampledCurve{}
	c.keys = normalizeKeys(slices.Clone(keys))
	return c
}

// Kind implements Entity.
func (c *SampledCurve) Kind() Kind { return KindSampled }

// Len returns the number of keys.
func (c *SampledCurve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns a copy of the keys.
func (c *SampledCurve) Keys() []Key {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// Key returns the key at index i.
func (c *SampledCurve) Key(i int) (Key, bool) {
	if c == nil || i < 0 || i >= len(c.keys) {
		return Key{}, false
	}
	return c.keys[i], true
}

// IndexOf returns the index of the key at time t, or -1.
func (c *SampledCurve) IndexOf(t float64) int {
	if c == nil {
		return -1
	}
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time >= t-timeEpsilon })
	if i < len(c.keys) && SameTime(c.keys[i].Time, t) {
		return i
	}
	return -1
}

// SetKey inserts k, replacing any key at the same time, and returns its index.
func (c *SampledCurve) SetKey(k Key) int {
	if c == nil {
		return -1
	}
	if i := c.IndexOf(k.Time); i >= 0 {
		c.keys[i] = k
		return i
	}
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time > k.Time })
	c.keys = slices.Insert(c.keys, i, k)
	return i
}

// UpdateKey replaces the key at index i and re-sorts if its time moved.
// It returns the key's new index.
func (c *SampledCurve) UpdateKey(i int, k Key) int {
	if c == nil || i < 0 || i >= len(c.keys) {
		return -1
	}
	if SameTime(c.keys[i].Time, k.Time) {
		c.keys[i] = k
		return i
	}
	c.keys = slices.Delete(c.keys, i, i+1)
	return c.SetKey(k)
}

// RemoveKey deletes the key at index i.
func (c *SampledCurve) RemoveKey(i int) bool {
	if c == nil || i < 0 || i >= len(c.keys) {
		return false
	}
	c.keys = slices.Delete(c.keys, i, i+1)
	return true
}

// Snapshot captures the curve content.
func (c *SampledCurve) Snapshot() SampledState {
	if c == nil {
		return SampledState{}
	}
	return SampledState{Keys: slices.Clone(c.keys)}
}

// Restore replaces the curve content with s.
func (c *SampledCurve) Restore(s SampledState) {
	if c == nil {
		return
	}
	c.keys = normalizeKeys(slices.Clone(s.Keys))
}

// Evaluate samples the curve at t using cubic Hermite interpolation between
// neighbouring keys. Outside the key range the end values are held.
func (c *SampledCurve) Evaluate(t float64) float64 {
	if c == nil || len(c.keys) == 0 {
		return 0
	}
	if t <= c.keys[0].Time {
		return c.keys[0].Value
	}
	last := c.keys[len(c.keys)-1]
	if t >= last.Time {
		return last.Value
	}
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time > t }) - 1
	a, b := c.keys[i], c.keys[i+1]
	dt := b.Time - a.Time
	if dt <= 0 || a.Flags&InterpConstant != 0 {
		return a.Value
	}
	s := (t - a.Time) / dt
	if a.Flags&InterpLinear != 0 {
		return a.Value + (b.Value-a.Value)*s
	}
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return h00*a.Value + h10*dt*a.OutTangent + h01*b.Value + h11*dt*b.InTangent
}

// normalizeKeys stable-sorts by time and keeps the last of any keys sharing
// a time.
func normalizeKeys(keys []Key) []Key {
	slices.SortStableFunc(keys, func(a, b Key) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	out := keys[:0]
	for _, k := range keys {
		if n := len(out); n > 0 && SameTime(out[n-1].Time, k.Time) {
			out[n-1] = k
			continue
		}
		out = append(out, k)
	}
	return out
}
