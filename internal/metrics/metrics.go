// Package metrics exposes Prometheus collectors for the HTTP server and the
// sweep service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasweeper"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	filesParsed     *prometheus.CounterVec
	parseDuration   *prometheus.HistogramVec
	filesRejected   *prometheus.CounterVec
	conversions     *prometheus.CounterVec
	convertDuration *prometheus.HistogramVec
	sessions        prometheus.Gauge
}

// New creates and registers all collectors, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		filesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_parsed_total",
			Help:      "Uploaded files parsed by source format and result.",
		}, []string{"format", "result"}),
		parseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing uploaded files.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format"}),
		filesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_rejected_total",
			Help:      "Uploaded files rejected before parsing, by reason.",
		}, []string{"reason"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions by source format, target format and result.",
		}, []string{"source", "target", "result"}),
		convertDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "convert_duration_seconds",
			Help:      "Time spent running the conversion pipeline.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"target"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upload_sessions_active",
			Help:      "Uploaded files currently held in memory.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.filesParsed,
		m.parseDuration,
		m.filesRejected,
		m.conversions,
		m.convertDuration,
		m.sessions,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency labelled by chi route
// pattern, so path parameters do not explode label cardinality.
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
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// FileParsed records one parse attempt.
func (m *Metrics) FileParsed(format string, d time.Duration, err error) {
	m.filesParsed.WithLabelValues(format, result(err)).Inc()
	m.parseDuration.WithLabelValues(format).Observe(d.Seconds())
}

// FileRejected records a file refused before parsing.
func (m *Metrics) FileRejected(reason string) {
	m.filesRejected.WithLabelValues(reason).Inc()
}

// Converted records one pipeline run.
func (m *Metrics) Converted(source, target string, d time.Duration, err error) {
	m.conversions.WithLabelValues(source, target, result(err)).Inc()
	m.convertDuration.WithLabelValues(target).Observe(d.Seconds())
}

// SessionsActive sets the number of stored files.
func (m *Metrics) SessionsActive(n int) {
	m.sessions.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
