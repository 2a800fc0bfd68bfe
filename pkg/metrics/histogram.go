package metrics

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// DefaultBuckets is the default bucket ladder for request durations in
// seconds. The order simulator completes in the 3-6s range, so the ladder
// extends well past typical sub-second latencies.
var DefaultBuckets = []float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10}

// Histogram tracks the distribution of observed values. Per label
// combination it keeps one occurrence count per bucket plus a running sum
// and a total count; cumulative bucket counts are computed at collection
// time.
type Histogram struct {
	desc     desc
	upper    []float64 // finite upper bounds, strictly ascending
	defaults func() []LabelPair
	mu       sync.RWMutex
	entries  map[string]*histogramEntry
	order    []*histogramEntry
}

type histogramEntry struct {
	labels []LabelPair

	// mu guards counts, sum, and count as a group so that an observation is
	// never visible half-applied and collection never reads a torn entry.
	mu     sync.Mutex
	counts []uint64 // one slot per finite bound, final slot is +Inf
	sum    float64
	count  uint64
}

// newHistogram creates a new histogram. Should be called via
// Registry.NewHistogram. A nil bucket ladder selects DefaultBuckets; an
// empty or non-strictly-ascending ladder is rejected.
func newHistogram(d desc, buckets []float64, defaults func() []LabelPair) (*Histogram, error) {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	if len(buckets) == 0 {
		return nil, fmt.Errorf("%w: %s has no buckets", ErrInvalidBuckets, d.name)
	}
	upper := make([]float64, len(buckets))
	copy(upper, buckets)
	for i, b := range upper {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("%w: %s bucket %v is not finite", ErrInvalidBuckets, d.name, b)
		}
		if i > 0 && b <= upper[i-1] {
			return nil, fmt.Errorf("%w: %s buckets must be strictly ascending (%v after %v)",
				ErrInvalidBuckets, d.name, b, upper[i-1])
		}
	}

	return &Histogram{
		desc:     d,
		upper:    upper,
		defaults: defaults,
		entries:  make(map[string]*histogramEntry),
	}, nil
}

// Name returns the metric name.
func (h *Histogram) Name() string { return h.desc.name }

// Help returns the help text.
func (h *Histogram) Help() string { return h.desc.help }

// Type returns the metric type.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// Buckets returns a copy of the finite bucket upper bounds.
func (h *Histogram) Buckets() []float64 {
	out := make([]float64, len(h.upper))
	copy(out, h.upper)
	return out
}

// WithLabels returns a HistogramVec for the given label values, creating the
// label combination on first use. The number of values must match the
// declared label names; otherwise ErrLabelCountMismatch is returned and
// existing aggregates are left unchanged.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	if err := h.desc.checkLabelValues(values); err != nil {
		return nil, err
	}

	key := labelsKey(values)
	h.mu.RLock()
	entry, ok := h.entries[key]
	h.mu.RUnlock()

	if !ok {
		labels := h.desc.buildLabels(values, h.defaults())

		h.mu.Lock()
		// Double-check after acquiring the write lock so concurrent first
		// observations of the same combination land on one entry.
		entry, ok = h.entries[key]
		if !ok {
			entry = &histogramEntry{
				labels: labels,
				counts: make([]uint64, len(h.upper)+1),
			}
			h.entries[key] = entry
			h.order = append(h.order, entry)
		}
		h.mu.Unlock()
	}

	return &HistogramVec{entry: entry, upper: h.upper}, nil
}

// Observe records a value in the histogram (for histograms without labels).
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	return vec.Observe(value)
}

// Collect returns all metric samples in label-combination creation order.
// Each combination is read under its own lock, so the bucket counts, sum,
// and count of one combination are always mutually consistent.
func (h *Histogram) Collect() []Sample {
	h.mu.RLock()
	entries := make([]*histogramEntry, len(h.order))
	copy(entries, h.order)
	h.mu.RUnlock()

	samples := make([]Sample, 0, (len(h.upper)+3)*len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		counts := make([]uint64, len(entry.counts))
		copy(counts, entry.counts)
		sum := entry.sum
		count := entry.count
		entry.mu.Unlock()

		cumulative := uint64(0)
		for i := range counts {
			cumulative += counts[i]
			le := "+Inf"
			if i < len(h.upper) {
				le = formatFloat(h.upper[i])
			}
			labels := make([]LabelPair, 0, len(entry.labels)+1)
			labels = append(labels, entry.labels...)
			labels = append(labels, LabelPair{Name: "le", Value: le})
			samples = append(samples, Sample{
				Name:   h.desc.name + "_bucket",
				Labels: labels,
				Value:  float64(cumulative),
			})
		}

		samples = append(samples, Sample{
			Name:   h.desc.name + "_sum",
			Labels: entry.labels,
			Value:  sum,
		})
		samples = append(samples, Sample{
			Name:   h.desc.name + "_count",
			Labels: entry.labels,
			Value:  float64(count),
		})
	}
	return samples
}

// HistogramVec provides methods for a specific label combination.
type HistogramVec struct {
	entry *histogramEntry
	upper []float64
}

// Observe records a value in the histogram. The value must be a finite
// non-negative number; anything else is rejected without touching the
// aggregates.
func (v *HistogramVec) Observe(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidObservation, value)
	}

	// Smallest bucket whose upper bound is >= value; past the last finite
	// bound the observation lands in the +Inf slot.
	idx := sort.SearchFloat64s(v.upper, value)

	v.entry.mu.Lock()
	v.entry.counts[idx]++
	v.entry.sum += value
	v.entry.count++
	v.entry.mu.Unlock()
	return nil
}
