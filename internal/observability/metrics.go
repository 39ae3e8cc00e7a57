// Package observability exposes Prometheus metrics and request correlation
// middleware for the HTTP server.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/propagation"
)

// Auth failure reasons.
const (
	ReasonNoSession          = "no_session"
	ReasonInvalidSession     = "invalid_session"
	ReasonUnknownUser        = "unknown_user"
	ReasonInvalidCredentials = "invalid_credentials"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	AuthFailures     *prometheus.CounterVec
	TerrariumUpdates *prometheus.CounterVec
	LiveConnections  prometheus.Gauge
}

// NewMetrics creates a private registry with the Go and process collectors
// plus the application metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terrarium_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "terrarium_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terrarium_auth_failures_total",
				Help: "Rejected logins and gated requests by reason",
			},
			[]string{"reason"},
		),
		TerrariumUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terrarium_updates_total",
				Help: "Terrarium mutations by kind",
			},
			[]string{"kind"},
		),
		LiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "terrarium_live_connections",
				Help: "Open live-update websocket connections",
			},
		),
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.AuthFailures)
	reg.MustRegister(m.TerrariumUpdates)
	reg.MustRegister(m.LiveConnections)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordAuthFailure is nil-safe so services can run without metrics.
func (m *Metrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordTerrariumUpdate(kind string) {
	if m == nil {
		return
	}
	m.TerrariumUpdates.WithLabelValues(kind).Inc()
}

func (m *Metrics) LiveConnectionOpened() {
	if m == nil {
		return
	}
	m.LiveConnections.Inc()
}

func (m *Metrics) LiveConnectionClosed() {
	if m == nil {
		return
	}
	m.LiveConnections.Dec()
}

// Middleware records request count and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

var traceContext = propagation.TraceContext{}

// TraceContext lifts an incoming W3C traceparent header into the request
// context so log lines carry the caller's trace id.
func TraceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := traceContext.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
