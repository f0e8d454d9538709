package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances (tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusCategory  *prometheus.CounterVec

	aiCalls    *prometheus.CounterVec
	aiDuration *prometheus.HistogramVec
	aiTokens   *prometheus.CounterVec
}

func New(service string) *Metrics {
	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		statusCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_status_category_total",
			Help:        "Total number of responses by status category (2xx, 4xx, 5xx)",
			ConstLabels: labels,
		}, []string{"category"}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ai_calls_total",
			Help:        "Language model calls by operation and outcome",
			ConstLabels: labels,
		}, []string{"operation", "outcome"}),
		aiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "ai_call_duration_seconds",
			Help:        "Duration of language model calls in seconds",
			Buckets:     []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			ConstLabels: labels,
		}, []string{"operation"}),
		aiTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ai_tokens_total",
			Help:        "Tokens reported by the language model provider",
			ConstLabels: labels,
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.statusCategory,
		m.aiCalls, m.aiDuration, m.aiTokens,
	)
	return m
}

func statusCategory(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return ""
}

// Middleware records request count and latency per route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		statusStr := strconv.Itoa(status)

		m.requests.WithLabelValues(c.Request.Method, path, statusStr).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path, statusStr).Observe(time.Since(start).Seconds())
		if category := statusCategory(status); category != "" {
			m.statusCategory.WithLabelValues(category).Inc()
		}
	}
}

// ObserveAICall records one language model call. outcome is "success" or "failure".
func (m *Metrics) ObserveAICall(operation, outcome string, took time.Duration, promptTokens, completionTokens int) {
	m.aiCalls.WithLabelValues(operation, outcome).Inc()
	m.aiDuration.WithLabelValues(operation).Observe(took.Seconds())
	if promptTokens > 0 {
		m.aiTokens.WithLabelValues("prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.aiTokens.WithLabelValues("completion").Add(float64(completionTokens))
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
