package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kingrea/tirereq/internal/request"
)

const (
	// DefaultLatency is the fixed delay applied to every simulated call.
	DefaultLatency = time.Second
	// DefaultSubmitFailureRate never fails submissions.
	DefaultSubmitFailureRate = 0.0
	// DefaultItemFailureRate fails one in ten update/delete calls.
	DefaultItemFailureRate = 0.1
)

// Settings tunes the simulated backend.
type Settings struct {
	Latency           time.Duration
	SubmitFailureRate float64
	ItemFailureRate   float64
}

// DefaultSettings mirrors the reference behaviour.
func DefaultSettings() Settings {
	return Settings{
		Latency:           DefaultLatency,
		SubmitFailureRate: DefaultSubmitFailureRate,
		ItemFailureRate:   DefaultItemFailureRate,
	}
}

func (s Settings) normalized() Settings {
	if s.Latency < 0 {
		s.Latency = 0
	}
	s.SubmitFailureRate = clampRate(s.SubmitFailureRate)
	s.ItemFailureRate = clampRate(s.ItemFailureRate)
	return s
}

func clampRate(rate float64) float64 {
	if rate < 0 || rate != rate {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// Simulated resolves every call after a fixed delay and fails at random.
// Calls always resolve; the context only cuts the delay short on shutdown.
type Simulated struct {
	mu       sync.Mutex
	settings Settings
	rng      *rand.Rand
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *log.Logger
}

// Option customizes a Simulated gateway.
type Option func(*Simulated)

// WithRand supplies the random source used for failure injection.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulated) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSleep replaces the delay implementation. Tests use it to skip waiting.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Simulated) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Simulated) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSimulated builds a simulated backend.
func NewSimulated(settings Settings, opts ...Option) *Simulated {
	s := &Simulated{
		settings: settings.normalized(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Settings returns the active tuning.
func (s *Simulated) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Configure swaps the tuning for subsequent calls.
func (s *Simulated) Configure(settings Settings) {
	s.mu.Lock()
	s.settings = settings.normalized()
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Info("gateway reconfigured",
			"latency", settings.Latency,
			"submit_failure_rate", settings.SubmitFailureRate,
			"item_failure_rate", settings.ItemFailureRate)
	}
}

func (s *Simulated) Submit(ctx context.Context, draft request.Draft) error {
	return s.call(ctx, OpSubmit, 0)
}

func (s *Simulated) Update(ctx context.Context, id int64, req request.Submitted) error {
	return s.call(ctx, OpUpdate, id)
}

func (s *Simulated) Delete(ctx context.Context, id int64) error {
	return s.call(ctx, OpDelete, id)
}

func (s *Simulated) call(ctx context.Context, op Op, id int64) error {
	s.mu.Lock()
	settings := s.settings
	rate := settings.ItemFailureRate
	if op == OpSubmit {
		rate = settings.SubmitFailureRate
	}
	fail := rate > 0 && s.rng.Float64() < rate
	s.mu.Unlock()

	if err := s.sleep(ctx, settings.Latency); err != nil {
		return fmt.Errorf("gateway: %s: %w", op.Route(id), err)
	}
	if fail {
		err := &StatusError{Op: op, ID: id, Code: http.StatusInternalServerError}
		if s.logger != nil {
			s.logger.Warn("simulated call failed", "op", op, "id", id, "code", err.Code)
		}
		return err
	}
	if s.logger != nil {
		s.logger.Debug("simulated call ok", "op", op, "id", id)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
