// Package schedule provides a cancel-and-reschedule timer.
package schedule

import (
	"sync"
	"time"
)

// Debouncer keeps at most one pending callback. Scheduling a new callback
// cancels the previous one, so only the last call in a burst runs.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
	closed  bool
}

// NewDebouncer returns a Debouncer that waits delay after the last Schedule.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay reports the quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// SetDelay changes the quiet period for subsequent calls to Schedule.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

// Schedule replaces any pending callback with fn.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}

// Cancel drops the pending callback and reports whether one existed.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.stopLocked()
	return had
}

// Flush runs the pending callback now, on the calling goroutine.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	d.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a callback is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending callback and ignores later calls to Schedule.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.closed = true
	d.stopLocked()
	d.mu.Unlock()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
