package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mlserved"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace, Subsystem: "http", Name: "request_duration_seconds",
		Help: "HTTP request latency by route and method.",
		// training requests in sync mode can run for minutes
		Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
	}, []string{"route", "method"})

	httpResponseBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace, Subsystem: "http", Name: "response_bytes",
		Help:    "Size of HTTP response bodies.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"route"})

	// keyed by method: raw paths carry service names
	httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace, Subsystem: "http", Name: "inflight_requests",
		Help: "HTTP requests being served.",
	}, []string{"method"})

	refusals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace, Subsystem: "http", Name: "backpressure_total",
		Help: "Requests refused for load (queue) or a running training job (training).",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency, httpResponseBytes, httpInflight, refusals)
}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Flush keeps streaming handlers working behind the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware records request counts, latency and response sizes.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflight := httpInflight.WithLabelValues(r.Method)
		inflight.Inc()
		defer inflight.Dec()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)

		route := routePatternOrPath(r)
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(sr.status)).Inc()
		httpLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		httpResponseBytes.WithLabelValues(route).Observe(float64(sr.bytes))
	})
}

// routePatternOrPath prefers the matched chi pattern (known only after
// routing) so service names do not become label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// IncrementBackpressure counts a refused request.
func IncrementBackpressure(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	refusals.WithLabelValues(reason).Inc()
}
