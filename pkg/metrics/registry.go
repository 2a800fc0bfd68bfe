package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
)

// ContentType identifies the Prometheus text exposition format served by
// Registry.Handler.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Registry holds all registered metrics. It is constructed explicitly and
// passed by reference to every component that observes or renders; there is
// no process-wide registry.
type Registry struct {
	mu       sync.RWMutex
	metrics  []Metric
	names    map[string]struct{} // guards against duplicate registrations
	defaults []LabelPair         // sorted by name
}

// NewRegistry creates a new metric registry.
func NewRegistry() *Registry {
	return &Registry{
		metrics: make([]Metric, 0),
		names:   make(map[string]struct{}),
	}
}

// SetDefaultLabels replaces the registry-wide default label set. Defaults are
// merged into a label combination when that combination is first observed, so
// the call is not retroactive; set defaults once at initialization, before
// the first observation.
func (r *Registry) SetDefaultLabels(labels map[string]string) {
	pairs := make([]LabelPair, 0, len(labels))
	for name, value := range labels {
		pairs = append(pairs, LabelPair{Name: name, Value: value})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })

	r.mu.Lock()
	r.defaults = pairs
	r.mu.Unlock()
}

// defaultLabels returns a snapshot of the current default label set.
func (r *Registry) defaultLabels() []LabelPair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LabelPair, len(r.defaults))
	copy(out, r.defaults)
	return out
}

// NewCounter creates and registers a new counter.
func (r *Registry) NewCounter(name, help string, labelNames ...string) (*Counter, error) {
	d := desc{name: name, help: help, labelNames: labelNames}
	if err := d.validate(); err != nil {
		return nil, err
	}
	c := newCounter(d, r.defaultLabels)
	if err := r.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NewGauge creates and registers a new gauge.
func (r *Registry) NewGauge(name, help string, labelNames ...string) (*Gauge, error) {
	d := desc{name: name, help: help, labelNames: labelNames}
	if err := d.validate(); err != nil {
		return nil, err
	}
	g := newGauge(d, r.defaultLabels)
	if err := r.Register(g); err != nil {
		return nil, err
	}
	return g, nil
}

// NewHistogram creates and registers a new histogram. A nil bucket ladder
// selects DefaultBuckets.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labelNames ...string) (*Histogram, error) {
	d := desc{name: name, help: help, labelNames: labelNames}
	if err := d.validate(); err != nil {
		return nil, err
	}
	h, err := newHistogram(d, buckets, r.defaultLabels)
	if err != nil {
		return nil, err
	}
	if err := r.Register(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Register adds an externally constructed collector to the registry.
// Registration order determines rendering order. Returns ErrDuplicateMetric
// if the metric name is already taken; duplicate names would produce invalid
// Prometheus output.
func (r *Registry) Register(m Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMetric, m.Name())
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
	return nil
}

// Render writes the current state of all registered metrics to w in the
// Prometheus text exposition format, in registration order. A registry with
// no metrics (or no observations) renders an empty, valid body.
func (r *Registry) Render(w io.Writer) error {
	r.mu.RLock()
	metrics := make([]Metric, len(r.metrics))
	copy(metrics, r.metrics)
	r.mu.RUnlock()

	for _, m := range metrics {
		if err := writeMetric(w, m); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns an http.Handler that serves the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", ContentType)
		_ = r.Render(w)
	})
}
