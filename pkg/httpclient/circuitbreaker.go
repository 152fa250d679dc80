package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker rejects a request.
var ErrCircuitOpen = gobreaker.ErrOpenState

// FallbackFunc answers a request the breaker refused to send. Returning an
// error reports the request as failed.
type FallbackFunc func(req *http.Request, err error) (*http.Response, error)

// CircuitBreakerConfig tunes a breaker in front of one downstream.
type CircuitBreakerConfig struct {
	Name string

	// HalfOpenRequests allowed through while probing a recovering backend.
	HalfOpenRequests uint32

	// Window after which closed-state counts are reset.
	Window time.Duration

	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration

	// The breaker trips once at least MinRequests were seen in the window
	// and FailureRatio of them failed.
	MinRequests  uint32
	FailureRatio float64

	// Fallback, if set, serves requests while the breaker is open.
	Fallback FallbackFunc
}

// CatalogBreakerConfig returns settings for a read-only catalog API: menus
// are fetched once per view, so a handful of failures is already a signal.
func CatalogBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		HalfOpenRequests: 1,
		Window:           time.Minute,
		Cooldown:         15 * time.Second,
		MinRequests:      5,
		FailureRatio:     0.5,
	}
}

func (c CircuitBreakerConfig) shouldTrip(counts gobreaker.Counts) bool {
	if counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRatio
}

var (
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "httpclient_circuit_breaker_state",
			Help: "Circuit breaker state per downstream (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	breakerFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpclient_circuit_breaker_fallback_total",
			Help: "Requests answered by the fallback while the breaker was open",
		},
		[]string{"name", "outcome"},
	)
)

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}

// Doer sends one HTTP request.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitBreakerClient guards a Doer with a circuit breaker. 5xx responses
// and transport errors count as failures.
type CircuitBreakerClient struct {
	next     Doer
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	fallback FallbackFunc
	name     string
	logger   *slog.Logger
}

// NewCircuitBreakerClient wraps next with a breaker configured by cfg.
func NewCircuitBreakerClient(next Doer, cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: cfg.shouldTrip,
		// A cancelled request says nothing about the backend's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	breakerState.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))

	return &CircuitBreakerClient{
		next:     next,
		breaker:  breaker,
		fallback: cfg.Fallback,
		name:     cfg.Name,
		logger:   logger,
	}
}

// Do sends req through the breaker. When the breaker refuses the request and
// a fallback is configured, the fallback answers instead.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.next.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ParseResponseError(resp, c.name)
		}
		return resp, nil
	})
	if err == nil {
		return resp, nil
	}
	if c.fallback == nil || !refused(err) {
		return nil, err
	}

	resp, err = c.fallback(req, err)
	outcome := "served"
	if err != nil {
		outcome = "failed"
	}
	breakerFallbacks.WithLabelValues(c.name, outcome).Inc()
	c.logger.WarnContext(ctx, "circuit breaker refused request, used fallback",
		slog.String("breaker", c.name),
		slog.String("outcome", outcome),
	)
	return resp, err
}

func refused(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
