package metrics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// ErrMissingField is returned when a metric is constructed without a required
// descriptor field (name or help text).
var ErrMissingField = errors.New("missing required metric field")

// ErrInvalidBuckets is returned when a histogram is constructed with an empty
// or non-strictly-ascending bucket ladder.
var ErrInvalidBuckets = errors.New("invalid histogram buckets")

// ErrDuplicateMetric is returned when registering a metric with a name that is
// already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// ErrLabelCountMismatch is returned when the number of label values doesn't
// match the declared label names.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when attempting to add a negative value
// to a counter.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrInvalidObservation is returned when observing a value that is negative,
// NaN, or infinite.
var ErrInvalidObservation = errors.New("observation must be a finite non-negative value")

// MetricType represents the type of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is the interface implemented by all metric types. Additional
// collectors (such as the runtime collector's gauges) are composed into a
// Registry through this interface.
type Metric interface {
	// Name returns the metric name.
	Name() string
	// Help returns the help text.
	Help() string
	// Type returns the metric type.
	Type() MetricType
	// Collect returns all metric samples for exposition, in a deterministic
	// order that is stable across calls when no observations intervene.
	Collect() []Sample
}

// LabelPair is a single label name/value pair. Sample labels are ordered:
// declared label names first, registry default labels after.
type LabelPair struct {
	Name  string
	Value string
}

// Sample represents a single exposition line: a name, ordered labels, and a
// value. Samples are transient and constructed only during collection.
type Sample struct {
	Name   string
	Labels []LabelPair
	Value  float64
}

// desc is the static identity of a metric: its name, help text, and declared
// label dimensions. Immutable after registration.
type desc struct {
	name       string
	help       string
	labelNames []string
}

func (d desc) validate() error {
	if d.name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if d.help == "" {
		return fmt.Errorf("%w: help text for %s", ErrMissingField, d.name)
	}
	for _, n := range d.labelNames {
		if n == "" {
			return fmt.Errorf("%w: empty label name for %s", ErrMissingField, d.name)
		}
	}
	return nil
}

// checkLabelValues verifies that the supplied values match the declared
// dimensions exactly.
func (d desc) checkLabelValues(values []string) error {
	if len(values) != len(d.labelNames) {
		return fmt.Errorf("%w: %s expected %d labels, got %d",
			ErrLabelCountMismatch, d.name, len(d.labelNames), len(values))
	}
	return nil
}

// buildLabels pairs the declared label names with the supplied values and
// appends the registry default labels that are not shadowed by a declared
// name. Declared labels keep their declared order; defaults arrive sorted.
func (d desc) buildLabels(values []string, defaults []LabelPair) []LabelPair {
	labels := make([]LabelPair, 0, len(d.labelNames)+len(defaults))
	for i, n := range d.labelNames {
		labels = append(labels, LabelPair{Name: n, Value: values[i]})
	}
	for _, def := range defaults {
		shadowed := false
		for _, n := range d.labelNames {
			if n == def.Name {
				shadowed = true
				break
			}
		}
		if !shadowed {
			labels = append(labels, def)
		}
	}
	return labels
}

// labelsKey generates a unique map key for a set of label values.
func labelsKey(values []string) string {
	return strings.Join(values, "\x00")
}

// atomicFloat64 provides atomic operations for float64 values.
// It stores the bits of the float64 as a uint64 for atomic access.
type atomicFloat64 struct {
	bits uint64
}

// Load atomically loads and returns the float64 value.
func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&a.bits))
}

// Store atomically stores the float64 value.
func (a *atomicFloat64) Store(val float64) {
	atomic.StoreUint64(&a.bits, math.Float64bits(val))
}

// Add atomically adds delta to the float64 value using a CAS loop.
func (a *atomicFloat64) Add(delta float64) {
	for {
		old := atomic.LoadUint64(&a.bits)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(&a.bits, old, math.Float64bits(newVal)) {
			return
		}
	}
}
