package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/orderlab/orderd/pkg/httputil"
	"github.com/orderlab/orderd/pkg/metrics"
)

// statusRecorder wraps http.ResponseWriter to capture the final status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default
	}
}

// WriteHeader captures the status code and writes it to the underlying
// ResponseWriter.
func (w *statusRecorder) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write writes data to the underlying ResponseWriter.
func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// instrument records one latency observation and one request count per
// request, labeled {method, route, code}, where code reflects the final
// outcome. The observation fires exactly once, on success, handler error,
// and panic alike. The metrics endpoint itself is not instrumented so
// scrapes don't pollute the request metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == s.cfg.Server.MetricsPath {
			next.ServeHTTP(w, r)
			return
		}

		// The route template, not the raw path, keeps label cardinality
		// bounded.
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		timer := metrics.NewTimer(s.svc.RequestDuration)
		rec := newStatusRecorder(w)
		_ = s.svc.InflightRequests.Inc()

		defer func() {
			if p := recover(); p != nil {
				s.log.Error("handler panic", "route", route, "panic", p)
				rec.statusCode = http.StatusInternalServerError
				if !rec.written {
					httputil.WriteInternalError(w, "internal_error", "internal server error")
				}
			}
			_ = s.svc.InflightRequests.Dec()

			code := strconv.Itoa(rec.statusCode)
			if err := timer.ObserveWithLabels(r.Method, route, code); err != nil {
				s.log.Error("recording request duration", "error", err)
			}
			if vec, err := s.svc.RequestsTotal.WithLabels(r.Method, route, code); err == nil {
				_ = vec.Inc()
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
