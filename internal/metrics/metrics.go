package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry prometheus.Gatherer

	AccessDecisions     *prometheus.CounterVec
	DirectoryQueries    *prometheus.CounterVec
	DirectoryDuration   prometheus.Histogram
	ModerationDecisions *prometheus.CounterVec
	PendingMembers      prometheus.Gauge
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New registers every collector on reg. Pass a fresh registry in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		AccessDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alumninet_access_decisions_total",
				Help: "Access gate outcomes by path family.",
			},
			[]string{"family", "outcome"},
		),
		DirectoryQueries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alumninet_directory_queries_total",
				Help: "Directory searches by result.",
			},
			[]string{"result"},
		),
		DirectoryDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alumninet_directory_query_duration_seconds",
				Help:    "Directory search latency including the count.",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		ModerationDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alumninet_moderation_decisions_total",
				Help: "Admin moderation decisions.",
			},
			[]string{"decision", "source"},
		),
		PendingMembers: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "alumninet_pending_members",
				Help: "Onboarded profiles awaiting moderation, as of the last maintenance run.",
			},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alumninet_http_requests_total",
				Help: "HTTP requests by route pattern and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alumninet_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAccess is safe to call on a nil *Metrics.
func (m *Metrics) ObserveAccess(family, outcome string) {
	if m == nil {
		return
	}
	m.AccessDecisions.WithLabelValues(family, outcome).Inc()
}

func (m *Metrics) ObserveDirectory(start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DirectoryQueries.WithLabelValues(result).Inc()
	m.DirectoryDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveModeration(decision, source string) {
	if m == nil {
		return
	}
	m.ModerationDecisions.WithLabelValues(decision, source).Inc()
}

func (m *Metrics) SetPending(n int64) {
	if m == nil {
		return
	}
	m.PendingMembers.Set(float64(n))
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so ids in paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
