package metrics

import "sync"

// Gauge is a metric that can arbitrarily go up and down.
type Gauge struct {
	desc     desc
	defaults func() []LabelPair
	mu       sync.RWMutex
	entries  map[string]*gaugeEntry
	order    []*gaugeEntry
}

type gaugeEntry struct {
	labels []LabelPair
	value  atomicFloat64
}

// newGauge creates a new gauge. Should be called via Registry.NewGauge.
func newGauge(d desc, defaults func() []LabelPair) *Gauge {
	return &Gauge{
		desc:     d,
		defaults: defaults,
		entries:  make(map[string]*gaugeEntry),
	}
}

// Name returns the metric name.
func (g *Gauge) Name() string { return g.desc.name }

// Help returns the help text.
func (g *Gauge) Help() string { return g.desc.help }

// Type returns the metric type.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// WithLabels returns a GaugeVec for the given label values, creating the
// label combination on first use.
// Returns ErrLabelCountMismatch if the value count doesn't match.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	if err := g.desc.checkLabelValues(values); err != nil {
		return nil, err
	}

	key := labelsKey(values)
	g.mu.RLock()
	entry, ok := g.entries[key]
	g.mu.RUnlock()

	if !ok {
		labels := g.desc.buildLabels(values, g.defaults())

		g.mu.Lock()
		entry, ok = g.entries[key]
		if !ok {
			entry = &gaugeEntry{labels: labels}
			g.entries[key] = entry
			g.order = append(g.order, entry)
		}
		g.mu.Unlock()
	}

	return &GaugeVec{entry: entry}, nil
}

// Set sets the gauge to the given value (for gauges without labels).
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Inc increments the gauge by 1 (for gauges without labels).
func (g *Gauge) Inc() error {
	return g.Add(1)
}

// Dec decrements the gauge by 1 (for gauges without labels).
func (g *Gauge) Dec() error {
	return g.Add(-1)
}

// Add adds the given value to the gauge (for gauges without labels).
func (g *Gauge) Add(delta float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Add(delta)
	return nil
}

// Collect returns all metric samples in label-combination creation order.
func (g *Gauge) Collect() []Sample {
	g.mu.RLock()
	defer g.mu.RUnlock()

	samples := make([]Sample, 0, len(g.order))
	for _, entry := range g.order {
		samples = append(samples, Sample{
			Name:   g.desc.name,
			Labels: entry.labels,
			Value:  entry.value.Load(),
		})
	}
	return samples
}

// GaugeVec provides methods for a specific label combination.
type GaugeVec struct {
	entry *gaugeEntry
}

// Set sets the gauge to the given value.
func (v *GaugeVec) Set(value float64) {
	v.entry.value.Store(value)
}

// Inc increments the gauge by 1.
func (v *GaugeVec) Inc() {
	v.Add(1)
}

// Dec decrements the gauge by 1.
func (v *GaugeVec) Dec() {
	v.Add(-1)
}

// Add adds the given value to the gauge.
func (v *GaugeVec) Add(delta float64) {
	v.entry.value.Add(delta)
}
