package metrics

import (
	"fmt"
	"sync"
)

// Counter is a monotonically increasing metric.
// It can only increase or be reset to zero.
type Counter struct {
	desc     desc
	defaults func() []LabelPair
	mu       sync.RWMutex
	entries  map[string]*counterEntry
	order    []*counterEntry
}

type counterEntry struct {
	labels []LabelPair
	value  atomicFloat64
}

// newCounter creates a new counter. Should be called via Registry.NewCounter.
func newCounter(d desc, defaults func() []LabelPair) *Counter {
	return &Counter{
		desc:     d,
		defaults: defaults,
		entries:  make(map[string]*counterEntry),
	}
}

// Name returns the metric name.
func (c *Counter) Name() string { return c.desc.name }

// Help returns the help text.
func (c *Counter) Help() string { return c.desc.help }

// Type returns the metric type.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// WithLabels returns a CounterVec for the given label values, creating the
// label combination on first use. The number of values must match the
// declared label names; otherwise ErrLabelCountMismatch is returned and no
// state changes.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	if err := c.desc.checkLabelValues(values); err != nil {
		return nil, err
	}

	key := labelsKey(values)
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		labels := c.desc.buildLabels(values, c.defaults())

		c.mu.Lock()
		// Double-check after acquiring the write lock so concurrent first
		// observations of the same combination land on one entry.
		entry, ok = c.entries[key]
		if !ok {
			entry = &counterEntry{labels: labels}
			c.entries[key] = entry
			c.order = append(c.order, entry)
		}
		c.mu.Unlock()
	}

	return &CounterVec{entry: entry}, nil
}

// Inc increments the counter by 1 (for counters without labels).
func (c *Counter) Inc() error {
	return c.Add(1)
}

// Add adds the given value to the counter (for counters without labels).
// Returns an error if delta is negative.
func (c *Counter) Add(delta float64) error {
	if delta < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeCounterValue, c.desc.name)
	}
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

// Collect returns all metric samples in label-combination creation order.
func (c *Counter) Collect() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	samples := make([]Sample, 0, len(c.order))
	for _, entry := range c.order {
		samples = append(samples, Sample{
			Name:   c.desc.name,
			Labels: entry.labels,
			Value:  entry.value.Load(),
		})
	}
	return samples
}

// CounterVec provides methods for a specific label combination.
type CounterVec struct {
	entry *counterEntry
}

// Inc increments the counter by 1.
func (v *CounterVec) Inc() error {
	return v.Add(1)
}

// Add adds the given value to the counter.
// Returns an error if delta is negative.
func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	v.entry.value.Add(delta)
	return nil
}
