package proxy

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "anthropic_proxy"

// requestDurationBuckets covers interactive completions through long
// streamed responses.
var requestDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// Metrics holds the Prometheus instruments exposed at /metrics. The
// registry is private to the proxy so tests can run side by side without
// default-registry collisions.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamTotal   *prometheus.CounterVec
	streamEvents    *prometheus.CounterVec
}

// NewMetrics creates and registers the proxy instruments on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "Total number of handled client requests",
			},
			[]string{"endpoint", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of client requests in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"endpoint"},
		),

		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream exchanges by status code, code=error on transport failure",
			},
			[]string{"code"},
		),

		streamEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "stream_events_total",
				Help:      "Total number of translated stream events by event type",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.upstreamTotal,
		m.streamEvents,
	)

	return m
}

// Handler exposes the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// ObserveStreamEvent counts one translated stream event. Safe on a nil
// receiver so handlers can run without metrics.
func (m *Metrics) ObserveStreamEvent(eventType string) {
	if m == nil {
		return
	}
	m.streamEvents.WithLabelValues(eventType).Inc()
}

// InstrumentHandler records request count and latency for one endpoint.
func (m *Metrics) InstrumentHandler(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		m.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status code. Flush must be
// forwarded or instrumented handlers could no longer stream.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// instrumentedTransport counts upstream exchanges by response status.
type instrumentedTransport struct {
	metrics *Metrics
	base    http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.metrics.upstreamTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	t.metrics.upstreamTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}
