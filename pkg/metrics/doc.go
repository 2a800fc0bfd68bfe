// Package metrics provides Prometheus-compatible metrics collection for the
// order service.
//
// This package implements the Prometheus text exposition format (text/plain;
// version=0.0.4) without any external dependencies, using only the standard
// library.
//
// Supported metric types:
//   - Counter: monotonically increasing value (e.g., request counts)
//   - Gauge: value that can go up or down (e.g., in-flight requests)
//   - Histogram: distribution of values with configurable buckets (e.g., latencies)
//
// All metrics are safe for concurrent use. Observing never blocks on I/O and
// rendering never blocks an observation for more than a per-combination
// critical section.
//
// # Registry
//
// There is no package-level registry. A Registry is constructed explicitly
// and passed to every component that observes or renders:
//
//	registry := metrics.NewRegistry()
//	registry.SetDefaultLabels(map[string]string{"service": "orderd"})
//
//	duration, err := registry.NewHistogram(
//		"http_request_duration_seconds",
//		"Duration of HTTP requests in seconds",
//		nil, // DefaultBuckets
//		"method", "route", "code",
//	)
//	if err != nil {
//		return err
//	}
//
//	vec, err := duration.WithLabels("GET", "/order", "200")
//	if err != nil {
//		return err
//	}
//	vec.Observe(4.2)
//
//	http.Handle("/metrics", registry.Handler())
//
// # Label Conventions
//
//   - method: uppercase HTTP methods (GET, POST, ...)
//   - route: the registered route template, never the raw request path
//   - code: numeric HTTP status (200, 400, 500, ...)
//   - status: order outcome (accepted, failed)
//
// Default labels set on the registry are merged into a label combination when
// that combination is first observed. Labels supplied by the observation take
// precedence over registry defaults of the same name.
package metrics
