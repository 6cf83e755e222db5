// Package debounce coalesces a stream of search-term changes into a single
// settled value.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet is the quiet period search input waits before it is emitted.
const DefaultQuiet = 300 * time.Millisecond

// Debouncer delivers the last submitted term once no new term has been
// submitted for the quiet period. Emission is trailing-edge only.
//
// At most one emission is pending at a time, and emissions never run
// concurrently with each other.
type Debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	quiet   time.Duration
	emit    func(string)

	// emitting serializes calls to emit.
	emitting sync.Mutex
}

// New creates a debouncer that calls emit with the settled term.
// A non-positive quiet period falls back to DefaultQuiet.
func New(quiet time.Duration, emit func(string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{
		quiet: quiet,
		emit:  emit,
	}
}

// Submit schedules term for emission after the quiet period, replacing
// any pending term and restarting the timer.
func (d *Debouncer) Submit(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = time.AfterFunc(d.quiet, func() {
		d.fire(gen, term)
	})
}

// Cancel discards the pending emission, if any, without firing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	// A timer that already fired but has not taken the lock yet sees a
	// stale generation and drops its term.
	d.gen++
	d.pending = false
}

// Pending reports whether an emission is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Quiet returns the configured quiet period.
func (d *Debouncer) Quiet() time.Duration {
	return d.quiet
}

func (d *Debouncer) fire(gen uint64, term string) {
	d.emitting.Lock()
	defer d.emitting.Unlock()

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.pending = false
	d.mu.Unlock()

	d.emit(term)
}
