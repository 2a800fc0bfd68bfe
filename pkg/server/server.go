// Package server provides the HTTP transport for the order service: the
// simulated order endpoint, the metrics export endpoint, and the
// instrumentation middleware that ties request handling to the metrics core.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/orderlab/orderd/pkg/config"
	"github.com/orderlab/orderd/pkg/metrics"
	"github.com/orderlab/orderd/pkg/order"
)

// runtimeCollectInterval is how often the Go runtime gauges refresh.
const runtimeCollectInterval = 10 * time.Second

// shutdownTimeout bounds the graceful drain. It exceeds the slowest
// simulated order in the default configuration.
const shutdownTimeout = 10 * time.Second

// Server is the order service HTTP server.
type Server struct {
	cfg       *config.Config
	log       *slog.Logger
	registry  *metrics.Registry
	svc       *metrics.ServiceMetrics
	runtime   *metrics.RuntimeCollector
	processor *order.Processor

	httpServer *http.Server
	handler    http.Handler
}

// New builds a server from the given configuration: an explicit metrics
// registry with the configured default labels and bucket ladder, the service
// and runtime collectors, the order processor, and the router.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := metrics.NewRegistry()
	if len(cfg.Metrics.DefaultLabels) > 0 {
		registry.SetDefaultLabels(cfg.Metrics.DefaultLabels)
	}

	svc, err := metrics.NewServiceMetrics(registry, cfg.Metrics.Buckets)
	if err != nil {
		return nil, err
	}

	runtimeCollector, err := metrics.NewRuntimeCollector(registry, svc.UptimeSeconds)
	if err != nil {
		return nil, err
	}

	processor := order.NewProcessor(order.Config{
		MinDelay:    cfg.Simulation.MinDelay.Std(),
		MaxDelay:    cfg.Simulation.MaxDelay.Std(),
		FailureRate: cfg.Simulation.FailureRate,
	}, nil, log)

	s := &Server{
		cfg:       cfg,
		log:       log,
		registry:  registry,
		svc:       svc,
		runtime:   runtimeCollector,
		processor: processor,
	}
	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}
	return s, nil
}

// Handler returns the server's root handler. Used by tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Registry returns the server's metrics registry.
func (s *Server) Registry() *metrics.Registry { return s.registry }

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)
	r.Handle(s.cfg.Server.MetricsPath, s.registry.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/order", s.handleCreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests. The
// runtime collector runs for the lifetime of the server.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("server listening",
		"addr", ln.Addr().String(),
		"metrics_path", s.cfg.Server.MetricsPath,
	)

	stopRuntime := s.runtime.StartCollector(runtimeCollectInterval)
	defer stopRuntime()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
