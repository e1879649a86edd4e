package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exported on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	httpInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Domain counters.
var (
	ComplaintsClassified = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grievance_complaints_classified_total",
			Help: "Classifier runs by resulting category.",
		},
		[]string{"category"},
	)

	StageTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grievance_stage_transitions_total",
			Help: "Stage change attempts by target stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)

	AuditFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "grievance_audit_write_failures_total",
		Help: "Audit entries that could not be appended.",
	})

	StoreErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grievance_store_errors_total",
			Help: "Failed store operations.",
		},
		[]string{"op"},
	)

	DroppedNotifications = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grievance_dropped_notifications_total",
			Help: "Change notifications dropped because a subscriber was full.",
		},
		[]string{"collection"},
	)

	StaleSnapshots = factory.NewCounter(prometheus.CounterOpts{
		Name: "grievance_stale_snapshots_served_total",
		Help: "Analytics responses served from the last-known-good cache.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records RPS, latency and in-flight requests. route should be the
// router pattern, not the raw path, to keep label cardinality bounded.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
