package snapshot

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into one call of fn, at most
// delay after the first trigger of the burst. Triggers that arrive while a
// call is pending are absorbed by it.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool
	running sync.Mutex // serializes fn
}

// NewDebouncer creates a debouncer running fn
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn unless a call is already pending. It never blocks on fn.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending || d.stopped {
		return
	}
	d.pending = true
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Pending reports whether a call is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.run()
}

func (d *Debouncer) run() {
	d.running.Lock()
	defer d.running.Unlock()
	d.fn()
}

// Flush runs a pending call now instead of waiting for the timer
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.run()
}

// Stop flushes any pending call, waits for a call already in progress, and
// ignores later triggers
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.Flush()

	d.running.Lock()
	d.running.Unlock()
}
