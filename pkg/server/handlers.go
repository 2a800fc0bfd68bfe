package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orderlab/orderd/pkg/httputil"
	"github.com/orderlab/orderd/pkg/order"
)

// handleCreateOrder decodes an order request and hands it to the simulated
// processor. The status code written here is what the instrumentation
// middleware records as the request outcome.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "bad_request", "request body must be a JSON order")
		return
	}

	res, err := s.processor.Process(r.Context(), req)
	switch {
	case err == nil:
		s.countOrder("accepted")
		httputil.WriteCreated(w, res)
	case errors.Is(err, order.ErrInvalidRequest):
		httputil.WriteBadRequest(w, "invalid_order", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away mid-processing; the response likely never
		// arrives, but the middleware still records the outcome.
		httputil.WriteError(w, http.StatusServiceUnavailable, "cancelled", "order processing cancelled")
	default:
		s.countOrder("failed")
		httputil.WriteBadGateway(w, "processing_failed", "order processing failed")
	}
}

func (s *Server) countOrder(status string) {
	if vec, err := s.svc.OrdersTotal.WithLabels(status); err == nil {
		_ = vec.Inc()
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]string{"status": "ok"})
}
