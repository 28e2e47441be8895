package scsb

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/s0up4200/scsb/gate"
)

const metricsNamespace = "scsb_client"

// metrics tracks the gate and every round trip
type metrics struct {
	inFlight        prometheus.Gauge
	queued          prometheus.Gauge
	limit           prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		inFlight: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "requests_in_flight",
			Help:      "Number of SCSB API requests holding a gate slot",
		})),
		queued: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "requests_queued",
			Help:      "Number of SCSB API requests waiting for a gate slot",
		})),
		limit: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "concurrency_limit",
			Help:      "Configured maximum of concurrent SCSB API requests",
		})),
		requestsTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of SCSB API requests by operation and outcome",
		}, []string{"operation", "outcome"})),
		requestDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of SCSB API round trips in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"})),
	}
}

// register adds c to reg, reusing an identical collector that is already
// registered so several clients can share one registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observeGate(s gate.Stats) {
	m.inFlight.Set(float64(s.Active))
	m.queued.Set(float64(s.Waiting))
	m.limit.Set(float64(s.Limit))
}

func (m *metrics) observeRequest(op, outcome string, d time.Duration) {
	m.requestsTotal.WithLabelValues(op, outcome).Inc()
	m.requestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// outcome classifies a request result for the requests_total metric
func outcome(err error) string {
	if err == nil {
		return "success"
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return "decode_error"
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsTransport() {
			return "transport_error"
		}
		return "status_error"
	}

	return "error"
}
