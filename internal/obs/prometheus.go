package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// latencyBuckets are in milliseconds.
var latencyBuckets = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// PromMetrics holds the Prometheus-facing metric vectors.
type PromMetrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
	cost     *prometheus.CounterVec
	active   prometheus.Gauge
}

// NewPromMetrics builds and registers the metric vectors on a private
// registry, keeping Go runtime collectors out of the scrape.
func NewPromMetrics() *PromMetrics {
	pm := &PromMetrics{registry: prometheus.NewRegistry()}

	pm.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polygate",
		Name:      "requests_total",
		Help:      "Total requests by provider kind and model",
	}, []string{"kind", "model"})

	pm.errors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polygate",
		Name:      "errors_total",
		Help:      "Total failed requests by provider kind and error kind",
	}, []string{"kind", "error"})

	pm.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "polygate",
		Name:      "request_latency_milliseconds",
		Help:      "Upstream request latency in milliseconds",
		Buckets:   latencyBuckets,
	}, []string{"kind", "model"})

	pm.tokens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polygate",
		Name:      "tokens_total",
		Help:      "Total tokens by provider kind, model and direction",
	}, []string{"kind", "model", "direction"})

	pm.cost = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polygate",
		Name:      "cost_usd_total",
		Help:      "Estimated cost in USD by provider kind and model",
	}, []string{"kind", "model"})

	pm.active = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "polygate",
		Name:      "active_requests",
		Help:      "Requests currently in flight",
	})

	pm.registry.MustRegister(pm.requests, pm.errors, pm.latency, pm.tokens, pm.cost, pm.active)
	return pm
}

// ObserveRequest records a completed upstream call.
func (pm *PromMetrics) ObserveRequest(kind, model string, latencyMS float64, inputTokens, outputTokens int) {
	pm.requests.WithLabelValues(kind, model).Inc()
	pm.latency.WithLabelValues(kind, model).Observe(latencyMS)
	pm.tokens.WithLabelValues(kind, model, "input").Add(float64(inputTokens))
	pm.tokens.WithLabelValues(kind, model, "output").Add(float64(outputTokens))
	pm.cost.WithLabelValues(kind, model).Add(EstimateCost(model, inputTokens, outputTokens))
}

// ObserveError records a failed upstream call.
func (pm *PromMetrics) ObserveError(kind, errorKind string) {
	pm.errors.WithLabelValues(kind, errorKind).Inc()
}

// SetActive mirrors the active-request gauge.
func (pm *PromMetrics) SetActive(n int64) {
	pm.active.Set(float64(n))
}

// Handler serves the text scrape endpoint.
func (pm *PromMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}
