package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		HalfOpenRequests: 1,
		Window:           time.Minute,
		Cooldown:         5 * time.Second,
		MinRequests:      3,
		FailureRatio:     0.5,
	}
}

func noRetryClient() *Client {
	return New(Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10})
}

func get(ctx context.Context, d Doer, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	return d.Do(ctx, req)
}

func TestCircuitBreaker_ClosedStateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("cb-closed"), testLogger())

	resp, err := get(context.Background(), cb, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.breaker.State())
}

func TestCircuitBreaker_TripsAndRejects(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"XX000","message":"db down"}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("cb-trip"), testLogger())

	for i := 0; i < 3; i++ {
		_, err := get(context.Background(), cb, server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.breaker.State())

	before := hits.Load()
	_, err := get(context.Background(), cb, server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, hits.Load(), "open breaker must not reach the server")
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := testCBConfig("cb-recover")
	cfg.Cooldown = 100 * time.Millisecond
	cb := NewCircuitBreakerClient(noRetryClient(), cfg, testLogger())

	for i := 0; i < 3; i++ {
		_, _ = get(context.Background(), cb, server.URL)
	}
	require.Equal(t, gobreaker.StateOpen, cb.breaker.State())

	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err := get(context.Background(), cb, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.breaker.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("cb-4xx"), testLogger())

	for i := 0; i < 5; i++ {
		resp, err := get(context.Background(), cb, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.breaker.State())
}

func TestCircuitBreaker_FallbackAnswersWhenOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var seen atomic.Value
	cfg := testCBConfig("cb-fallback")
	cfg.Fallback = func(req *http.Request, err error) (*http.Response, error) {
		seen.Store(req.URL.Path)
		assert.ErrorIs(t, err, ErrCircuitOpen)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`["cached"]`)),
			Request:    req,
		}, nil
	}
	cb := NewCircuitBreakerClient(noRetryClient(), cfg, testLogger())

	for i := 0; i < 3; i++ {
		_, err := get(context.Background(), cb, server.URL+"/rest/v1/coffees")
		require.Error(t, err)
	}
	assert.Nil(t, seen.Load(), "fallback must not run while the breaker is closed")

	resp, err := get(context.Background(), cb, server.URL+"/rest/v1/coffees")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `["cached"]`, string(body))
	assert.Equal(t, "/rest/v1/coffees", seen.Load())
}

func TestCircuitBreaker_FallbackErrorIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testCBConfig("cb-fallback-miss")
	cfg.Fallback = func(_ *http.Request, err error) (*http.Response, error) {
		return nil, err
	}
	cb := NewCircuitBreakerClient(noRetryClient(), cfg, testLogger())

	for i := 0; i < 3; i++ {
		_, _ = get(context.Background(), cb, server.URL)
	}

	_, err := get(context.Background(), cb, server.URL)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
}

func TestCircuitBreaker_CancelledRequestsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("cb-cancel"), testLogger())

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err := get(ctx, cb, server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.breaker.State())
}

func TestCatalogBreakerConfig(t *testing.T) {
	cfg := CatalogBreakerConfig("catalog-rest")
	assert.Equal(t, "catalog-rest", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 15*time.Second, cfg.Cooldown)
	assert.Nil(t, cfg.Fallback)

	assert.False(t, cfg.shouldTrip(gobreaker.Counts{Requests: 4, TotalFailures: 4}))
	assert.True(t, cfg.shouldTrip(gobreaker.Counts{Requests: 6, TotalFailures: 3}))
	assert.False(t, cfg.shouldTrip(gobreaker.Counts{Requests: 6, TotalFailures: 2}))
}
