package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/devayla/base-counter/common/httpx"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics for a service
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter      *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	RequestsInFlight    *prometheus.GaugeVec
	CacheResults        *prometheus.CounterVec
	RewardsSigned       *prometheus.CounterVec
	CredentialFailovers *prometheus.CounterVec
}

// NewMetrics creates a metrics set on its own registry so several instances
// can coexist in tests.
func NewMetrics(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "basecounter",
				Subsystem: serviceName,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "basecounter",
				Subsystem: serviceName,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		RequestsInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "basecounter",
				Subsystem: serviceName,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
			[]string{"route"},
		),
		CacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "basecounter",
				Subsystem: serviceName,
				Name:      "cache_results_total",
				Help:      "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"}, // result: hit, miss, error
		),
		RewardsSigned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "basecounter",
				Subsystem: serviceName,
				Name:      "rewards_signed_total",
				Help:      "Reward payouts signed by source",
			},
			[]string{"source", "token"},
		),
		CredentialFailovers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "basecounter",
				Subsystem: serviceName,
				Name:      "credential_failovers_total",
				Help:      "Requests retried with the next credential",
			},
			[]string{"provider"},
		),
	}

	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.RequestsInFlight,
		m.CacheResults,
		m.RewardsSigned,
		m.CredentialFailovers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records per-route metrics. Routes are labelled by their mux
// template so label cardinality stays bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		m.RequestsInFlight.WithLabelValues(route).Inc()
		defer m.RequestsInFlight.WithLabelValues(route).Dec()

		start := time.Now()
		wrapped := httpx.NewResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.StatusCode)).Inc()
	})
}

func (m *Metrics) RecordCache(cache, result string) {
	m.CacheResults.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) RecordRewardSigned(source, token string) {
	m.RewardsSigned.WithLabelValues(source, token).Inc()
}

func (m *Metrics) RecordFailover(provider string) {
	m.CredentialFailovers.WithLabelValues(provider).Inc()
}
