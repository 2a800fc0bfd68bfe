package metrics

// Service metrics for the order server.
//
// # Label Conventions
//
// ## method label values
//   - uppercase HTTP methods (GET, POST, ...)
//
// ## route label values
//   - the registered route template (/order, /metrics, /healthz), never the
//     raw request path, to keep cardinality bounded
//
// ## code label values
//   - numeric HTTP status codes (200, 201, 400, 502, 500, ...)
//
// ## status label values (OrdersTotal)
//   - accepted, failed

// ServiceMetrics bundles the metrics the order server records. It is
// constructed from an explicit registry and passed to the transport layer;
// there is no package-level instance.
type ServiceMetrics struct {
	// RequestDuration tracks HTTP request latency in seconds.
	// Labels: method, route, code.
	RequestDuration *Histogram

	// RequestsTotal counts HTTP requests.
	// Labels: method, route, code.
	RequestsTotal *Counter

	// OrdersTotal counts processed orders by outcome.
	// Labels: status (accepted, failed).
	OrdersTotal *Counter

	// InflightRequests is the number of requests currently being served.
	InflightRequests *Gauge

	// UptimeSeconds is the server uptime in seconds, updated by the runtime
	// collector.
	UptimeSeconds *Gauge
}

// NewServiceMetrics creates and registers the order server's metrics on r.
// A nil bucket ladder selects DefaultBuckets for the duration histogram.
func NewServiceMetrics(r *Registry, buckets []float64) (*ServiceMetrics, error) {
	sm := &ServiceMetrics{}
	var err error

	sm.RequestDuration, err = r.NewHistogram(
		"http_request_duration_seconds",
		"Duration of HTTP requests in seconds",
		buckets,
		"method", "route", "code",
	)
	if err != nil {
		return nil, err
	}

	sm.RequestsTotal, err = r.NewCounter(
		"orderd_requests_total",
		"Total number of HTTP requests",
		"method", "route", "code",
	)
	if err != nil {
		return nil, err
	}

	sm.OrdersTotal, err = r.NewCounter(
		"orderd_orders_total",
		"Total number of processed orders by outcome",
		"status",
	)
	if err != nil {
		return nil, err
	}

	sm.InflightRequests, err = r.NewGauge(
		"orderd_inflight_requests",
		"Number of requests currently being served",
	)
	if err != nil {
		return nil, err
	}

	sm.UptimeSeconds, err = r.NewGauge(
		"orderd_uptime_seconds",
		"Server uptime in seconds",
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}
