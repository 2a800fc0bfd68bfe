// Package order implements the simulated order processor. It stands in for a
// real downstream fulfillment system: each order takes a random amount of
// time to process and fails with a configurable probability. The processor
// never touches the metrics registry; the transport layer observes its
// latency and outcome.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrProcessingFailed is the simulated downstream failure.
var ErrProcessingFailed = errors.New("order processing failed")

// ErrInvalidRequest is returned for malformed order requests.
var ErrInvalidRequest = errors.New("invalid order request")

// Request is an inbound order.
type Request struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Validate checks the request fields.
func (r Request) Validate() error {
	if r.Item == "" {
		return fmt.Errorf("%w: item is required", ErrInvalidRequest)
	}
	if r.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidRequest)
	}
	return nil
}

// Result is a processed order.
type Result struct {
	OrderID  string `json:"order_id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

// Config configures the simulation.
type Config struct {
	// MinDelay and MaxDelay bound the simulated processing time.
	MinDelay time.Duration
	MaxDelay time.Duration

	// FailureRate is the probability (0..1) that processing fails after the
	// delay has elapsed.
	FailureRate float64
}

// Processor simulates order processing.
type Processor struct {
	cfg Config
	log *slog.Logger

	// mu guards rng; math/rand.Rand is not safe for concurrent use.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewProcessor creates a processor. A nil rng gets a time-seeded source;
// tests pass a fixed seed for deterministic outcomes.
func NewProcessor(cfg Config, rng *rand.Rand, log *slog.Logger) *Processor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Processor{cfg: cfg, log: log, rng: rng}
}

// Process validates the request, sleeps for the simulated processing time,
// and either fails (per the configured failure rate) or returns the
// fulfilled order. The sleep honors context cancellation; a cancelled order
// returns ctx.Err() and produces no result.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	delay := p.delay()
	p.log.Debug("processing order", "item", req.Item, "quantity", req.Quantity, "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	if p.roll() < p.cfg.FailureRate {
		p.log.Warn("order failed", "item", req.Item)
		return nil, fmt.Errorf("%w: item %q", ErrProcessingFailed, req.Item)
	}

	res := &Result{
		OrderID:  uuid.NewString(),
		Item:     req.Item,
		Quantity: req.Quantity,
		Status:   "accepted",
	}
	p.log.Info("order accepted", "order_id", res.OrderID, "item", req.Item)
	return res, nil
}

// delay picks a processing time uniformly from [MinDelay, MaxDelay].
func (p *Processor) delay() time.Duration {
	spread := p.cfg.MaxDelay - p.cfg.MinDelay
	if spread <= 0 {
		return p.cfg.MinDelay
	}
	p.mu.Lock()
	jitter := time.Duration(p.rng.Int63n(int64(spread) + 1))
	p.mu.Unlock()
	return p.cfg.MinDelay + jitter
}

// roll returns a uniform value in [0,1).
func (p *Processor) roll() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()
}
