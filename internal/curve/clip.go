package curve

import "slices"

// Bone is an animated transform with its pose node, its editable (main)
// curve, its reference (base) curve and an optional linear frame track.
// Main and Base are separate entities and are never merged.
type Bone struct {
	Name   string
	Node   *Node
	Main   *TransformCurve
	Base   *TransformCurve
	Linear *FrameCurve
}

// Property is an animated property path with main, base and linear tracks.
type Property struct {
	Path   string
	Main   *PropertyCurve
	Base   *PropertyCurve
	Linear *FrameCurve
}

// Clip is one animation source. It exclusively owns every curve, event and
// node in it; edit records and aggregates only hold handles.
type Clip struct {
	Name   string
	Rate   FrameRate
	Length int

	reg    *Registry
	bones  []*Bone
	props  []*Property
	events *EventList
	parked map[*Bone]struct{}
}

// NewClip creates an empty clip. Length is the last valid frame index.
func NewClip(name string, rate FrameRate, length int) *Clip {
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	if length < 0 {
		length = 0
	}
	reg := NewRegistry()
	c := &Clip{
		Name:   name,
		Rate:   rate,
		Length: length,
		reg:    reg,
		events: NewEventList(reg),
		parked: make(map[*Bone]struct{}),
	}
	reg.Register(c.events)
	return c
}

// Registry returns the clip's entity arena.
func (c *Clip) Registry() *Registry {
	return c.reg
}

// Events returns the clip's event list.
func (c *Clip) Events() *EventList {
	return c.events
}

// Lookup resolves a handle in the clip's arena.
func (c *Clip) Lookup(h Handle) Entity {
	return c.reg.Lookup(h)
}

// AddBone creates and registers a bone, or returns the existing one.
func (c *Clip) AddBone(name string) *Bone {
	if b := c.Bone(name); b != nil {
		return b
	}
	b := &Bone{
		Name:   name,
		Node:   NewNode(name),
		Main:   NewTransformCurve(),
		Base:   NewTransformCurve(),
		Linear: NewFrameCurve(),
	}
	c.registerBone(b)
	c.bones = append(c.bones, b)
	return b
}

func (c *Clip) registerBone(b *Bone) {
	c.reg.Register(b.Node)
	c.reg.Register(b.Main)
	c.reg.Register(b.Base)
	c.reg.Register(b.Linear)
}

// Bone returns the active bone called name, or nil.
func (c *Clip) Bone(name string) *Bone {
	for _, b := range c.bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Bones returns the active bones in insertion order.
func (c *Clip) Bones() []*Bone {
	return slices.Clone(c.bones)
}

// AddProperty creates and registers a property track, or returns the
// existing one.
func (c *Clip) AddProperty(path string) *Property {
	if p := c.Property(path); p != nil {
		return p
	}
	p := &Property{
		Path:   path,
		Main:   NewPropertyCurve(path),
		Base:   NewPropertyCurve(path),
		Linear: NewFrameCurve(),
	}
	c.reg.Register(p.Main)
	c.reg.Register(p.Base)
	c.reg.Register(p.Linear)
	c.props = append(c.props, p)
	return p
}

// Property returns the property track for path, or nil.
func (c *Clip) Property(path string) *Property {
	for _, p := range c.props {
		if p.Path == path {
			return p
		}
	}
	return nil
}

// Properties returns the property tracks in insertion order.
func (c *Clip) Properties() []*Property {
	return slices.Clone(c.props)
}

// ParkBone deactivates a bone without destroying it. Its entities stay
// registered so history can still restore into them. It returns the bone's
// former index, or -1 if there is no such active bone.
func (c *Clip) ParkBone(name string) (*Bone, int) {
	for i, b := range c.bones {
		if b.Name == name {
			c.bones = slices.Delete(c.bones, i, i+1)
			c.parked[b] = struct{}{}
			return b, i
		}
	}
	return nil, -1
}

// UnparkBone reactivates a parked bone at index.
func (c *Clip) UnparkBone(b *Bone, index int) {
	if b == nil {
		return
	}
	if _, ok := c.parked[b]; !ok {
		return
	}
	delete(c.parked, b)
	index = min(max(index, 0), len(c.bones))
	c.bones = slices.Insert(c.bones, index, b)
}

// IsParked reports whether b is currently parked.
func (c *Clip) IsParked(b *Bone) bool {
	if b == nil {
		return false
	}
	_, ok := c.parked[b]
	return ok
}

// DestroyBone releases a parked bone for good. Its handles stop resolving.
// Active bones are left alone.
func (c *Clip) DestroyBone(b *Bone) bool {
	if !c.IsParked(b) {
		return false
	}
	delete(c.parked, b)
	c.reg.Remove(b.Node.Handle())
	c.reg.Remove(b.Main.Handle())
	c.reg.Remove(b.Base.Handle())
	c.reg.Remove(b.Linear.Handle())
	return true
}

// ParkedCount returns the number of parked bones.
func (c *Clip) ParkedCount() int {
	return len(c.parked)
}
