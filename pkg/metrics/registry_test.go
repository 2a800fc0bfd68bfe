package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.NewCounter("dup", "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := r.NewGauge("dup", "second")
	if !errors.Is(err, ErrDuplicateMetric) {
		t.Errorf("expected ErrDuplicateMetric, got %v", err)
	}
}

func TestRegistryDefaultLabels(t *testing.T) {
	t.Run("defaults appended after declared labels", func(t *testing.T) {
		r := NewRegistry()
		r.SetDefaultLabels(map[string]string{"service": "orderd", "env": "test"})

		c, err := r.NewCounter("c", "help", "method")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		vec, _ := c.WithLabels("GET")
		_ = vec.Inc()

		output := render(t, r)
		if !strings.Contains(output, `c{method="GET",env="test",service="orderd"} 1`) {
			t.Errorf("expected declared-then-sorted-default label order, got:\n%s", output)
		}
	})

	t.Run("declared labels shadow defaults", func(t *testing.T) {
		r := NewRegistry()
		r.SetDefaultLabels(map[string]string{"method": "DEFAULT"})

		c, _ := r.NewCounter("c", "help", "method")
		vec, _ := c.WithLabels("GET")
		_ = vec.Inc()

		output := render(t, r)
		if !strings.Contains(output, `c{method="GET"} 1`) {
			t.Errorf("expected observation value to win over default, got:\n%s", output)
		}
		if strings.Contains(output, "DEFAULT") {
			t.Errorf("default must not appear for a declared label name:\n%s", output)
		}
	})

	t.Run("not retroactive for existing combinations", func(t *testing.T) {
		r := NewRegistry()
		c, _ := r.NewCounter("c", "help", "method")
		vec, _ := c.WithLabels("GET")
		_ = vec.Inc()

		r.SetDefaultLabels(map[string]string{"service": "orderd"})

		vec, _ = c.WithLabels("POST")
		_ = vec.Inc()

		output := render(t, r)
		if !strings.Contains(output, `c{method="GET"} 1`) {
			t.Errorf("pre-existing combination picked up new defaults:\n%s", output)
		}
		if !strings.Contains(output, `c{method="POST",service="orderd"} 1`) {
			t.Errorf("new combination missing defaults:\n%s", output)
		}
	})
}

func TestRegistryRender(t *testing.T) {
	t.Run("empty registry renders empty body", func(t *testing.T) {
		r := NewRegistry()
		if got := render(t, r); got != "" {
			t.Errorf("expected empty body, got %q", got)
		}
	})

	t.Run("registration order preserved", func(t *testing.T) {
		r := NewRegistry()
		a, _ := r.NewCounter("aaa_second", "registered first")
		b, _ := r.NewCounter("zzz_first", "registered second")
		_ = b.Inc()
		_ = a.Inc()

		output := render(t, r)
		if strings.Index(output, "aaa_second") > strings.Index(output, "zzz_first") {
			t.Errorf("expected registration order, got:\n%s", output)
		}
	})

	t.Run("idempotent without intervening observations", func(t *testing.T) {
		r := NewRegistry()
		h, _ := r.NewHistogram("h", "help", []float64{1, 5}, "route")
		vec, _ := h.WithLabels("/order")
		_ = vec.Observe(2)
		vec, _ = h.WithLabels("/healthz")
		_ = vec.Observe(0.5)
		c, _ := r.NewCounter("c", "help", "route")
		cv, _ := c.WithLabels("/order")
		_ = cv.Inc()

		first := render(t, r)
		second := render(t, r)
		if first != second {
			t.Errorf("renders differ:\n--- first\n%s\n--- second\n%s", first, second)
		}
	})
}

func TestRegistryEndToEnd(t *testing.T) {
	r := NewRegistry()
	h, err := r.NewHistogram(
		"http_request_duration_seconds",
		"Duration of HTTP requests in seconds",
		[]float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10},
		"method", "route", "code",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vec, err := h.WithLabels("GET", "/order", "200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := vec.Observe(4.2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := render(t, r)

	expectedLines := []string{
		"# HELP http_request_duration_seconds Duration of HTTP requests in seconds",
		"# TYPE http_request_duration_seconds histogram",
		`http_request_duration_seconds_bucket{method="GET",route="/order",code="200",le="5"} 1`,
		`http_request_duration_seconds_bucket{method="GET",route="/order",code="200",le="7"} 1`,
		`http_request_duration_seconds_bucket{method="GET",route="/order",code="200",le="10"} 1`,
		`http_request_duration_seconds_bucket{method="GET",route="/order",code="200",le="+Inf"} 1`,
		`http_request_duration_seconds_sum{method="GET",route="/order",code="200"} 4.2`,
		`http_request_duration_seconds_count{method="GET",route="/order",code="200"} 1`,
	}
	for _, expected := range expectedLines {
		if !strings.Contains(output, expected+"\n") {
			t.Errorf("output missing expected line: %s\ngot:\n%s", expected, output)
		}
	}

	// Buckets below the observed value report 0.
	for _, le := range []string{"0.1", "0.3", "0.5", "0.7", "1", "3"} {
		line := `http_request_duration_seconds_bucket{method="GET",route="/order",code="200",le="` + le + `"} 0`
		if !strings.Contains(output, line+"\n") {
			t.Errorf("output missing expected line: %s", line)
		}
	}
}

func TestRegistryHandler(t *testing.T) {
	r := NewRegistry()
	c, _ := r.NewCounter("test_requests_total", "Total requests", "method")
	vec, _ := c.WithLabels("GET")
	_ = vec.Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	resp := rec.Result()
	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != ContentType {
		t.Errorf("unexpected Content-Type: %s", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `test_requests_total{method="GET"} 1`) {
		t.Errorf("unexpected body:\n%s", body)
	}
}

// render renders a registry to a string, failing the test on error.
func render(t *testing.T, r *Registry) string {
	t.Helper()
	var sb strings.Builder
	if err := r.Render(&sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return sb.String()
}
