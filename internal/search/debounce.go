package search

import (
	"sync"
	"time"
)

// DefaultDebounce is how long input must be stable before it is dispatched.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces rapid submissions and dispatches only the latest one
// once no new submission has arrived for the interval. Every submission
// gets the next generation number; a dispatch carries the generation of
// the submission it delivers.
type Debouncer struct {
	interval time.Duration
	dispatch func(query string, gen uint64)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending string
	armed   bool
	stopped bool
}

// NewDebouncer creates a Debouncer that calls dispatch on its own
// goroutine. A non-positive interval dispatches on the next tick.
func NewDebouncer(interval time.Duration, dispatch func(query string, gen uint64)) *Debouncer {
	return &Debouncer{interval: max(interval, 0), dispatch: dispatch}
}

// Submit records query as the latest input and restarts the quiet period.
// It returns the generation assigned to query.
func (d *Debouncer) Submit(query string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	d.pending = query
	if d.stopped {
		return d.gen
	}
	d.armed = true

	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() { d.fire(gen) })
	return gen
}

// Flush dispatches the pending submission immediately on the calling
// goroutine. It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.armed || d.stopped {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
	query, gen := d.pending, d.gen
	d.mu.Unlock()

	d.dispatch(query, gen)
	return true
}

// Generation returns the generation of the latest submission.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Stop cancels any pending dispatch. Later submissions are recorded but
// never dispatched.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer can fire after being replaced or stopped; only the timer of
	// the latest armed submission dispatches.
	if !d.armed || d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.armed = false
	query := d.pending
	d.mu.Unlock()

	d.dispatch(query, gen)
}
