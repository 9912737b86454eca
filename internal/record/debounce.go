package record

import "time"

// Debouncer coalesces a burst of mutations into one capture. Each Touch
// pushes the deadline out by the delay; Due reports when the burst has been
// quiet long enough.
type Debouncer struct {
	delay    time.Duration
	deadline time.Time
	pending  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Touch records a mutation at now.
func (d *Debouncer) Touch(now time.Time) {
	d.deadline = now.Add(d.delay)
	d.pending = true
}

// Pending reports whether a burst is waiting to be captured.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Deadline returns when the pending burst becomes due.
func (d *Debouncer) Deadline() time.Time {
	return d.deadline
}

// Due reports whether the pending burst has been quiet until now.
func (d *Debouncer) Due(now time.Time) bool {
	return d.pending && !now.Before(d.deadline)
}

// Reset clears the pending burst.
func (d *Debouncer) Reset() {
	d.pending = false
	d.deadline = time.Time{}
}
