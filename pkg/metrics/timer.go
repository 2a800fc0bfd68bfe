package metrics

import "time"

// Timer is an explicit handle for the start-then-complete instrumentation
// pattern: the transport starts a timer before dispatching a request and
// completes it once the final labels (notably the status code) are known.
// The handle is a value capturing the start instant, so no closure over
// shared mutable state is needed.
type Timer struct {
	start time.Time
	h     *Histogram
}

// NewTimer starts a timer for the given histogram.
func NewTimer(h *Histogram) Timer {
	return Timer{start: time.Now(), h: h}
}

// Elapsed returns the seconds since the timer started.
func (t Timer) Elapsed() float64 {
	return time.Since(t.start).Seconds()
}

// ObserveWithLabels records the elapsed seconds under the given label values.
// It must be called exactly once per unit of work, on success and failure
// paths alike.
func (t Timer) ObserveWithLabels(values ...string) error {
	vec, err := t.h.WithLabels(values...)
	if err != nil {
		return err
	}
	return vec.Observe(t.Elapsed())
}
