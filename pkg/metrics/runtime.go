package metrics

import (
	"runtime"
	"runtime/pprof"
	"time"
)

// RuntimeCollector collects Go runtime metrics. It is an independent
// collector composed into the same registry as the service metrics.
type RuntimeCollector struct {
	goroutines  *Gauge
	threads     *Gauge
	heapAlloc   *Gauge
	heapSys     *Gauge
	heapIdle    *Gauge
	heapInuse   *Gauge
	heapObjects *Gauge
	stackInuse  *Gauge
	gcPause     *Gauge
	gcLastPause *Gauge
	numGC       *Gauge
	goInfo      *Gauge

	// Uptime gauge (passed in from the service metrics)
	uptime *Gauge

	// Start time for uptime calculation
	startTime time.Time
}

// NewRuntimeCollector creates a runtime metrics collector and registers its
// gauges on r. The uptimeGauge parameter should be the UptimeSeconds gauge
// from ServiceMetrics; pass nil to skip uptime reporting.
func NewRuntimeCollector(r *Registry, uptimeGauge *Gauge) (*RuntimeCollector, error) {
	rc := &RuntimeCollector{
		startTime: time.Now(),
		uptime:    uptimeGauge,
	}

	gauges := []struct {
		dst  **Gauge
		name string
		help string
	}{
		{&rc.goroutines, "go_goroutines", "Number of goroutines that currently exist"},
		{&rc.threads, "go_threads", "Number of OS threads created"},
		{&rc.heapAlloc, "go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use"},
		{&rc.heapSys, "go_memstats_heap_sys_bytes", "Number of heap bytes obtained from system"},
		{&rc.heapIdle, "go_memstats_heap_idle_bytes", "Number of heap bytes waiting to be used"},
		{&rc.heapInuse, "go_memstats_heap_inuse_bytes", "Number of heap bytes that are in use"},
		{&rc.heapObjects, "go_memstats_heap_objects", "Number of allocated heap objects"},
		{&rc.stackInuse, "go_memstats_stack_inuse_bytes", "Number of bytes in use by the stack allocator"},
		{&rc.gcPause, "go_gc_duration_seconds", "Total GC pause duration in seconds"},
		{&rc.gcLastPause, "go_gc_last_pause_seconds", "Duration of the last GC pause in seconds"},
		{&rc.numGC, "go_gc_cycles_total", "Total number of completed GC cycles"},
	}
	for _, g := range gauges {
		gauge, err := r.NewGauge(g.name, g.help)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}

	goInfo, err := r.NewGauge("go_info", "Information about the Go environment", "version")
	if err != nil {
		return nil, err
	}
	rc.goInfo = goInfo

	if vec, err := rc.goInfo.WithLabels(runtime.Version()); err == nil {
		vec.Set(1)
	}

	return rc, nil
}

// Collect updates all runtime metrics with current values.
// Call this periodically (e.g., every few seconds) to keep metrics current.
func (rc *RuntimeCollector) Collect() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	if rc.uptime != nil {
		_ = rc.uptime.Set(time.Since(rc.startTime).Seconds())
	}

	_ = rc.goroutines.Set(float64(runtime.NumGoroutine()))

	// OS thread count from the pprof threadcreate profile
	if numThreads, ok := getNumThreads(); ok {
		_ = rc.threads.Set(float64(numThreads))
	}

	_ = rc.heapAlloc.Set(float64(mem.HeapAlloc))
	_ = rc.heapSys.Set(float64(mem.HeapSys))
	_ = rc.heapIdle.Set(float64(mem.HeapIdle))
	_ = rc.heapInuse.Set(float64(mem.HeapInuse))
	_ = rc.heapObjects.Set(float64(mem.HeapObjects))
	_ = rc.stackInuse.Set(float64(mem.StackInuse))

	// PauseTotalNs is the authoritative cumulative total; the PauseNs
	// circular buffer wraps after 256 entries.
	_ = rc.gcPause.Set(float64(mem.PauseTotalNs) / 1e9)

	if mem.NumGC > 0 {
		lastPause := mem.PauseNs[(mem.NumGC-1)%256]
		_ = rc.gcLastPause.Set(float64(lastPause) / 1e9)
	}
	_ = rc.numGC.Set(float64(mem.NumGC))
}

// getNumThreads returns the number of OS threads via the pprof
// "threadcreate" profile, which tracks threads created by the runtime.
func getNumThreads() (int, bool) {
	p := pprof.Lookup("threadcreate")
	if p == nil {
		return 0, false
	}
	return p.Count(), true
}

// StartCollector starts a goroutine that periodically collects runtime
// metrics. Returns a stop function to cancel the collection.
func (rc *RuntimeCollector) StartCollector(interval time.Duration) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Collect immediately
		rc.Collect()

		for {
			select {
			case <-ticker.C:
				rc.Collect()
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
