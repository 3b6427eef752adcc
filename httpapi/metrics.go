package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the handful of request-level counters exposed at
// /metrics (§2 domain stack).
type metrics struct {
	reg          *prometheus.Registry
	requests     *prometheus.CounterVec
	latencySecs  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	registry, ok := reg.(*prometheus.Registry)
	if !ok || registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &metrics{
		reg: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqasend",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests served, by request path and status code.",
		}, []string{"route", "status"}),
		latencySecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aqasend",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP handler latency in seconds, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	registry.MustRegister(m.requests, m.latencySecs)
	return m
}

func (m *metrics) registry() *prometheus.Registry { return m.reg }

// statusRecorder captures the status code a handler wrote, since
// http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.latencySecs.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
