package curve

import (
	"slices"

	"github.com/google/uuid"
)

// Event is a named marker on the timeline. ID is the event's identity and
// survives copies; two events with different IDs are different events even
// if every other field matches.
type Event struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Time     float64 `json:"time"`
	Priority int     `json:"priority,omitempty"`
	Payload  string  `json:"payload,omitempty"`
}

// NewEventID returns a fresh stable id.
func NewEventID() string {
	return uuid.NewString()
}

// EventsState is the value snapshot of an EventList.
type EventsState struct {
	Events []Event
}

// EventList is the clip's event array. It is captured and restored as a
// whole because additions and removals change its shape.
type EventList struct {
	ident
	reg    *Registry
	events []Event
}

// NewEventList creates an empty list. Event ids are mapped into reg when
// it is non-nil.
func NewEventList(reg *Registry) *EventList {
	return &EventList{reg: reg}
}

// Kind implements Entity.
func (l *EventList) Kind() Kind { return KindEvents }

// Len returns the number of events.
func (l *EventList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.events)
}

// Events returns a copy of the events in time order.
func (l *EventList) Events() []Event {
	if l == nil {
		return nil
	}
	return slices.Clone(l.events)
}

// Add inserts e after any events at the same time, assigning an ID if it
// has none, and returns the stored event.
func (l *EventList) Add(e Event) Event {
	if l == nil {
		return e
	}
	if e.ID == "" {
		e.ID = NewEventID()
	}
	i := len(l.events)
	for j, cur := range l.events {
		if cur.Time > e.Time && !SameTime(cur.Time, e.Time) {
			i = j
			break
		}
	}
	l.events = slices.Insert(l.events, i, e)
	if l.reg != nil {
		l.reg.RegisterEvent(e.ID)
	}
	return e
}

// Find returns the event with id.
func (l *EventList) Find(id string) (Event, bool) {
	if l == nil {
		return Event{}, false
	}
	for _, e := range l.events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// Remove deletes the event with id.
func (l *EventList) Remove(id string) bool {
	if l == nil {
		return false
	}
	for i, e := range l.events {
		if e.ID == id {
			l.events = slices.Delete(l.events, i, i+1)
			return true
		}
	}
	return false
}

// Update replaces the event sharing e.ID and keeps the list time ordered.
func (l *EventList) Update(e Event) bool {
	if !l.Remove(e.ID) {
		return false
	}
	l.Add(e)
	return true
}

// Snapshot captures the whole array.
func (l *EventList) Snapshot() EventsState {
	return EventsState{Events: l.Events()}
}

// Restore replaces the whole array with s, stable-sorted by time. When s
// repeats an id the last occurrence wins.
func (l *EventList) Restore(s EventsState) {
	if l == nil {
		return
	}
	events := dedupeEvents(s.Events)
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case SameTime(a.Time, b.Time):
			return 0
		case a.Time < b.Time:
			return -1
		}
		return 1
	})
	l.events = events
	if l.reg != nil {
		for _, e := range events {
			l.reg.RegisterEvent(e.ID)
		}
	}
}

// dedupeEvents returns a copy of events with one entry per id, the last
// occurrence replacing earlier ones in place. Events without an id are kept.
func dedupeEvents(events []Event) []Event {
	out := make([]Event, 0, len(events))
	at := make(map[string]int, len(events))
	for _, e := range events {
		if i, ok := at[e.ID]; ok && e.ID != "" {
			out[i] = e
			continue
		}
		at[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
