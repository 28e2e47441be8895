package scsb

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// DefaultConcurrencyLimit is the number of requests allowed in flight when
// no limit has been configured.
const DefaultConcurrencyLimit = 10

// DefaultTimeout bounds a single HTTP round trip.
const DefaultTimeout = 30 * time.Second

// Option configures a Client. Options passed to Configure are merged into the
// current settings; anything not mentioned keeps its value.
type Option func(*Client)

// WithBaseURL sets the SCSB API origin, e.g. https://scsb.example.org:9093.
// A trailing slash is dropped so paths can be appended directly.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAPIKey sets the key sent in the api_key header.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.cfg.APIKey = apiKey
	}
}

// WithConcurrencyLimit sets how many requests may be in flight at once.
// Values below 1 are treated as 1. Requests already running are not
// interrupted when the limit shrinks.
func WithConcurrencyLimit(n int) Option {
	return func(c *Client) {
		c.cfg.ConcurrencyLimit = max(n, 1)
	}
}

// WithConfig merges every field of cfg; empty strings and a zero limit are
// skipped.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		if cfg.BaseURL != "" {
			WithBaseURL(cfg.BaseURL)(c)
		}
		if cfg.APIKey != "" {
			c.cfg.APIKey = cfg.APIKey
		}
		if cfg.ConcurrencyLimit != 0 {
			WithConcurrencyLimit(cfg.ConcurrencyLimit)(c)
		}
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the HTTP client timeout. The client is copied so requests
// already in flight keep the old value.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithRateLimit paces outbound calls to r requests per second with the given
// burst, on top of the concurrency limit. A non-positive r disables pacing.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// WithRegisterer exports client metrics to reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		if reg != nil {
			c.metrics.Store(newMetrics(reg))
		}
	}
}
