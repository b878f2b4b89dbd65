package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces bursts of file events into one callback. Editors and
// helm often write a file in several steps; only the last event within the
// interval triggers a rerun.
type Debouncer struct {
	interval time.Duration
	callback func(trigger string)

	// runMu serializes callbacks; a slow run delays the next one.
	runMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	last    string
	stopped bool
}

// NewDebouncer creates a debouncer that waits for interval of quiet before
// firing callback with the name of the last event.
func NewDebouncer(interval time.Duration, callback func(trigger string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records an event. It is a no-op after Stop.
func (d *Debouncer) Trigger(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.last = name

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	name := d.last
	d.mu.Unlock()

	d.callback(name)
}

// Stop cancels any pending callback and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
