package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sentinel label values for requests that matched no registered route.
// Substituting fixed values for the attacker-controlled method and path
// keeps series cardinality bounded under scanning traffic.
const (
	UndefinedMethod = "undefined"
	UndefinedPath   = "route_undefined"
)

// Recorder records the outcome of a dispatched request. Implementations
// must be safe for concurrent use.
type Recorder interface {
	// RecordRequest records one completed request. The path argument is
	// the matched route's declared template; pass an empty string for
	// requests that matched no route and the sentinel values are used
	// instead.
	RecordRequest(method, path string, status int, duration time.Duration)
}

// NopRecorder is a Recorder that does nothing. It is used when metrics
// reporting is disabled so the dispatch hot path carries no metrics
// cost at all.
type NopRecorder struct{}

// RecordRequest implements Recorder.
func (NopRecorder) RecordRequest(string, string, int, time.Duration) {}

// Metrics holds all Prometheus metrics for the routing engine.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	registry        *prometheus.Registry
}

// NewMetrics creates a new Metrics instance backed by a private
// Prometheus registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "http"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of HTTP requests that ended with a 5xx status",
		},
		[]string{"method", "path", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "path"},
	)

	m.registerCollectors()

	return m
}

// registerCollectors registers all metric collectors with the
// Prometheus registry.
func (m *Metrics) registerCollectors() {
	m.registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.requestDuration,
	)

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)
}

// RecordRequest implements Recorder. The path argument must be the
// matched route's declared template, never the raw request path; requests
// that matched no route are recorded under the sentinel labels.
func (m *Metrics) RecordRequest(
	method, path string,
	status int,
	duration time.Duration,
) {
	if path == "" {
		method = UndefinedMethod
		path = UndefinedPath
	}

	statusStr := strconv.Itoa(status)

	m.requestsTotal.WithLabelValues(method, path, statusStr).Inc()
	if status >= http.StatusInternalServerError {
		m.errorsTotal.WithLabelValues(method, path, statusStr).Inc()
	}
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		m.registry,
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
