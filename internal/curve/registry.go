// Package curve defines the animation content edited by keyline: sampled
// curves, frame-array curves, compound transform and property curves, named
// events and raw poses, plus the clip that owns them.
//
// Every editable entity is registered in a Registry and addressed by an
// opaque Handle. Edit records and keyframe aggregates hold handles, never
// owning references, so a torn-down entity simply stops resolving.
package curve

// Handle identifies a registered entity. The zero Handle is never issued.
type Handle uint64

// Kind tells the edit recorder which snapshot shape an entity uses.
type Kind int

const (
	KindSampled Kind = iota
	KindFrame
	KindTransform
	KindProperty
	KindEvents
	KindPose
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindSampled:
		return "sampled"
	case KindFrame:
		return "frame"
	case KindTransform:
		return "transform"
	case KindProperty:
		return "property"
	case KindEvents:
		return "events"
	case KindPose:
		return "pose"
	default:
		return "unknown"
	}
}

// Entity is anything the edit recorder can snapshot and restore.
type Entity interface {
	Handle() Handle
	Kind() Kind
}

// ident is embedded by every entity type to carry its handle.
type ident struct {
	handle Handle
}

// Handle returns the registry handle, or 0 if the entity is unregistered.
func (i *ident) Handle() Handle {
	return i.handle
}

func (i *ident) bind(h Handle) {
	i.handle = h
}

type binder interface {
	Entity
	bind(h Handle)
}

// Registry is the arena of live entities for one clip.
type Registry struct {
	next     Handle
	entities map[Handle]Entity
	events   map[string]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[Handle]Entity),
		events:   make(map[string]Handle),
	}
}

// Register assigns a handle to e. Registering an already registered entity
// returns its existing handle.
func (r *Registry) Register(e Entity) Handle {
	b, ok := e.(binder)
	if !ok || isNil(e) {
		return 0
	}
	if h := b.Handle(); h != 0 {
		if _, live := r.entities[h]; live {
			return h
		}
	}
	r.next++
	b.bind(r.next)
	r.entities[r.next] = e
	return r.next
}

// Lookup returns the entity for h, or nil if it was never registered or has
// been removed.
func (r *Registry) Lookup(h Handle) Entity {
	if r == nil || h == 0 {
		return nil
	}
	return r.entities[h]
}

// Remove drops h from the arena. Later lookups return nil.
func (r *Registry) Remove(h Handle) {
	if r == nil || h == 0 {
		return
	}
	delete(r.entities, h)
	for id, eh := range r.events {
		if eh == h {
			delete(r.events, id)
		}
	}
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// RegisterEvent maps an event's stable id into the handle space. Copies of an
// event that share the id share the handle.
func (r *Registry) RegisterEvent(id string) Handle {
	if h, ok := r.events[id]; ok {
		return h
	}
	r.next++
	r.events[id] = r.next
	return r.next
}

// EventHandle returns the handle mapped to an event id.
func (r *Registry) EventHandle(id string) (Handle, bool) {
	h, ok := r.events[id]
	return h, ok
}

// ForgetEvent removes the id mapping for an event that no longer exists.
func (r *Registry) ForgetEvent(id string) {
	delete(r.events, id)
}

func isNil(e Entity) bool {
	switch v := e.(type) {
	case *SampledCurve:
		return v == nil
	case *FrameCurve:
		return v == nil
	case *TransformCurve:
		return v == nil
	case *PropertyCurve:
		return v == nil
	case *EventList:
		return v == nil
	case *Node:
		return v == nil
	}
	return e == nil
}
