package metrics

import (
	"errors"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	t.Run("without labels", func(t *testing.T) {
		r := NewRegistry()
		c, err := r.NewCounter("test_counter", "A test counter")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_ = c.Inc()
		_ = c.Inc()
		_ = c.Add(3)

		samples := c.Collect()
		if len(samples) != 1 {
			t.Fatalf("expected 1 sample, got %d", len(samples))
		}
		if samples[0].Value != 5 {
			t.Errorf("expected value 5, got %f", samples[0].Value)
		}
	})

	t.Run("with labels", func(t *testing.T) {
		r := NewRegistry()
		c, err := r.NewCounter("http_requests", "Total HTTP requests", "method", "code")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		vec, err := c.WithLabels("GET", "200")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = vec.Inc()
		vec, _ = c.WithLabels("GET", "200")
		_ = vec.Inc()
		vec, _ = c.WithLabels("POST", "201")
		_ = vec.Add(5)

		samples := c.Collect()
		if len(samples) != 2 {
			t.Fatalf("expected 2 samples, got %d", len(samples))
		}

		found := make(map[string]float64)
		for _, s := range samples {
			found[labelValue(s, "method")+"_"+labelValue(s, "code")] = s.Value
		}

		if found["GET_200"] != 2 {
			t.Errorf("expected GET_200=2, got %f", found["GET_200"])
		}
		if found["POST_201"] != 5 {
			t.Errorf("expected POST_201=5, got %f", found["POST_201"])
		}
	})

	t.Run("wrong label count returns error", func(t *testing.T) {
		r := NewRegistry()
		c, _ := r.NewCounter("test", "test", "label1", "label2")
		_, err := c.WithLabels("only_one")
		if err == nil {
			t.Error("expected error for wrong label count")
		}
		if !errors.Is(err, ErrLabelCountMismatch) {
			t.Errorf("expected ErrLabelCountMismatch, got %v", err)
		}
	})

	t.Run("negative add returns error", func(t *testing.T) {
		r := NewRegistry()
		c, _ := r.NewCounter("test", "test")
		err := c.Add(-1)
		if err == nil {
			t.Error("expected error for negative add")
		}
		if !errors.Is(err, ErrNegativeCounterValue) {
			t.Errorf("expected ErrNegativeCounterValue, got %v", err)
		}
	})
}

func TestGauge(t *testing.T) {
	t.Run("without labels", func(t *testing.T) {
		r := NewRegistry()
		g, err := r.NewGauge("test_gauge", "A test gauge")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_ = g.Set(10)
		samples := g.Collect()
		if len(samples) != 1 || samples[0].Value != 10 {
			t.Errorf("expected value 10")
		}

		_ = g.Inc()
		samples = g.Collect()
		if samples[0].Value != 11 {
			t.Errorf("expected value 11, got %f", samples[0].Value)
		}

		_ = g.Dec()
		_ = g.Dec()
		samples = g.Collect()
		if samples[0].Value != 9 {
			t.Errorf("expected value 9, got %f", samples[0].Value)
		}

		_ = g.Add(-5)
		samples = g.Collect()
		if samples[0].Value != 4 {
			t.Errorf("expected value 4, got %f", samples[0].Value)
		}
	})

	t.Run("with labels", func(t *testing.T) {
		r := NewRegistry()
		g, err := r.NewGauge("inflight", "In-flight requests", "route")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		vec, err := g.WithLabels("/order")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		vec.Set(100)
		vec, _ = g.WithLabels("/healthz")
		vec.Set(50)
		vec, _ = g.WithLabels("/order")
		vec.Inc()

		samples := g.Collect()
		if len(samples) != 2 {
			t.Fatalf("expected 2 samples, got %d", len(samples))
		}

		found := make(map[string]float64)
		for _, s := range samples {
			found[labelValue(s, "route")] = s.Value
		}

		if found["/order"] != 101 {
			t.Errorf("expected /order=101, got %f", found["/order"])
		}
		if found["/healthz"] != 50 {
			t.Errorf("expected /healthz=50, got %f", found["/healthz"])
		}
	})
}

func TestDescriptorValidation(t *testing.T) {
	r := NewRegistry()

	t.Run("missing name", func(t *testing.T) {
		_, err := r.NewCounter("", "help")
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("missing help", func(t *testing.T) {
		_, err := r.NewGauge("named", "")
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("empty label name", func(t *testing.T) {
		_, err := r.NewHistogram("named_hist", "help", nil, "method", "")
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})
}

func TestServiceMetrics(t *testing.T) {
	r := NewRegistry()
	sm, err := NewServiceMetrics(r, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sm.RequestDuration == nil || sm.RequestsTotal == nil || sm.OrdersTotal == nil ||
		sm.InflightRequests == nil || sm.UptimeSeconds == nil {
		t.Fatal("expected all service metrics to be constructed")
	}

	if got := sm.RequestDuration.Name(); got != "http_request_duration_seconds" {
		t.Errorf("unexpected duration metric name: %s", got)
	}

	// A second set on the same registry collides on every name.
	if _, err := NewServiceMetrics(r, nil); !errors.Is(err, ErrDuplicateMetric) {
		t.Errorf("expected ErrDuplicateMetric, got %v", err)
	}
}

func TestRuntimeCollector(t *testing.T) {
	r := NewRegistry()
	uptime, err := r.NewGauge("test_uptime_seconds", "Uptime")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rc, err := NewRuntimeCollector(r, uptime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rc.Collect()

	var sb strings.Builder
	if err := r.Render(&sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	output := sb.String()

	for _, want := range []string{"go_goroutines", "go_memstats_heap_alloc_bytes", "go_info", "test_uptime_seconds"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s", want)
		}
	}
}

// labelValue returns the value of the named label in a sample, or "".
func labelValue(s Sample, name string) string {
	for _, l := range s.Labels {
		if l.Name == name {
			return l.Value
		}
	}
	return ""
}
