package curve

import (
	"slices"
	"sort"
)

// FrameKey is one explicitly keyed frame of a frame-array curve.
type FrameKey struct {
	Frame  int       `json:"frame"`
	Values []float64 `json:"values"`
}

func (k FrameKey) clone() FrameKey {
	return FrameKey{Frame: k.Frame, Values: slices.Clone(k.Values)}
}

// FrameState is the value snapshot of a FrameCurve.
type FrameState struct {
	Frames []FrameKey
}

// FrameCurve is a sparse, frame-ordered array of keyed frames used for
// linear (non-interpolated) tracks.
type FrameCurve struct {
	ident
	frames []FrameKey
}

// NewFrameCurve creates a frame-array curve from frames in any order.
func NewFrameCurve(frames ...FrameKey) *FrameCurve {
	c := &FrameCurve{}
	c.Restore(FrameState{Frames: frames})
	return c
}

// Kind implements Entity.
func (c *FrameCurve) Kind() Kind { return KindFrame }

// Len returns the number of keyed frames.
func (c *FrameCurve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.frames)
}

// Frames returns a deep copy of the keyed frames.
func (c *FrameCurve) Frames() []FrameKey {
	if c == nil {
		return nil
	}
	out := make([]FrameKey, len(c.frames))
	for i, k := range c.frames {
		out[i] = k.clone()
	}
	return out
}

func (c *FrameCurve) search(frame int) (int, bool) {
	i := sort.Search(len(c.frames), func(i int) bool { return c.frames[i].Frame >= frame })
	return i, i < len(c.frames) && c.frames[i].Frame == frame
}

// Find returns a copy of the key at frame.
func (c *FrameCurve) Find(frame int) (FrameKey, bool) {
	if c == nil {
		return FrameKey{}, false
	}
	i, ok := c.search(frame)
	if !ok {
		return FrameKey{}, false
	}
	return c.frames[i].clone(), true
}

// Has reports whether frame is keyed.
func (c *FrameCurve) Has(frame int) bool {
	if c == nil {
		return false
	}
	_, ok := c.search(frame)
	return ok
}

// SetFrame inserts k or replaces the key at the same frame.
func (c *FrameCurve) SetFrame(k FrameKey) {
	if c == nil {
		return
	}
	k = k.clone()
	i, ok := c.search(k.Frame)
	if ok {
		c.frames[i] = k
		return
	}
	c.frames = slices.Insert(c.frames, i, k)
}

// RemoveFrame deletes the key at frame.
func (c *FrameCurve) RemoveFrame(frame int) bool {
	if c == nil {
		return false
	}
	i, ok := c.search(frame)
	if !ok {
		return false
	}
	c.frames = slices.Delete(c.frames, i, i+1)
	return true
}

// Snapshot captures the curve content.
func (c *FrameCurve) Snapshot() FrameState {
	return FrameState{Frames: c.Frames()}
}

// Restore replaces the curve content with s. Out-of-order input is sorted
// and duplicate frames keep the last occurrence.
func (c *FrameCurve) Restore(s FrameState) {
	if c == nil {
		return
	}
	frames := make([]FrameKey, len(s.Frames))
	for i, k := range s.Frames {
		frames[i] = k.clone()
	}
	slices.SortStableFunc(frames, func(a, b FrameKey) int { return a.Frame - b.Frame })
	out := frames[:0]
	for _, k := range frames {
		if n := len(out); n > 0 && out[n-1].Frame == k.Frame {
			out[n-1] = k
			continue
		}
		out = append(out, k)
	}
	c.frames = out
}
