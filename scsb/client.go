package scsb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/s0up4200/scsb/gate"
)

// Config holds the connection settings used by every request.
type Config struct {
	BaseURL          string
	APIKey           string
	ConcurrencyLimit int
}

// Client represents an SCSB API client. A single Client is meant to be
// created once and shared; all of its requests pass through one concurrency
// gate.
type Client struct {
	mu         sync.RWMutex
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	gate       *gate.Gate
	metrics    atomic.Pointer[metrics]
	logger     zerolog.Logger
}

// NewClient creates a new SCSB client. Unlike the other API clients no
// connection test is made: SCSB has no cheap probe endpoint and an
// unconfigured client is valid until a request is issued.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg: Config{ConcurrencyLimit: DefaultConcurrencyLimit},
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
	c.gate = gate.New(c.cfg.ConcurrencyLimit, gate.WithObserver(c.observeGate))
	c.Configure(opts...)
	return c
}

// Configure merges opts into the current settings. Nothing is validated
// here; a client without a base URL or API key fails at request time.
// Requests that have already started keep the settings they started with.
func (c *Client) Configure(opts ...Option) {
	c.mu.Lock()
	for _, opt := range opts {
		opt(c)
	}
	limit := c.cfg.ConcurrencyLimit
	c.mu.Unlock()

	// Outside c.mu: the gate observer must never wait on it.
	c.gate.SetLimit(limit)
}

// Config returns the current settings.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Stats reports the state of the request gate.
func (c *Client) Stats() gate.Stats {
	return c.gate.Stats()
}

// Query POSTs payload to path and returns the raw JSON response. It is the
// operation behind every named endpoint and can reach any SCSB path.
func (c *Client) Query(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	return c.execute(ctx, "query", path, payload)
}

// execute validates the call, waits for a gate slot and performs exactly one
// HTTP round trip. The slot is released before the result is returned.
func (c *Client) execute(ctx context.Context, op, path string, payload any) (json.RawMessage, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	body, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	cfg := c.cfg
	httpClient := c.httpClient
	limiter := c.limiter
	c.mu.RUnlock()

	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	if err := c.gate.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("waiting for request slot: %w", err)
	}
	defer c.gate.Release()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, httpClient, cfg, path, body)
	elapsed := time.Since(start)

	if m := c.metrics.Load(); m != nil {
		m.observeRequest(op, outcome(err), elapsed)
	}

	c.logger.Debug().
		Str("operation", op).
		Str("path", path).
		Int("status", StatusCode(err)).
		Dur("duration", elapsed).
		Err(err).
		Msg("SCSB API request")

	return resp, err
}

// doRequest performs the POST with the SCSB headers
func (c *Client) doRequest(ctx context.Context, httpClient *http.Client, cfg Config, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Path: path, Message: "failed to create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	// Set directly: SCSB expects the lower-case name as sent by other clients.
	req.Header["api_key"] = []string{cfg.APIKey}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Path: path, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    http.StatusText(resp.StatusCode),
			Body:       string(data),
		}
	}

	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return nil, &DecodeError{Path: path, Body: string(data), Err: err}
	}

	return json.RawMessage(data), nil
}

// encodePayload serializes payload and checks it is a JSON object with at
// least one key.
func encodePayload(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyPayload, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil, ErrEmptyPayload
	}

	return body, nil
}

func (c *Client) observeGate(s gate.Stats) {
	if m := c.metrics.Load(); m != nil {
		m.observeGate(s)
	}
}
