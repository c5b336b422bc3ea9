package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llms_generations_total",
			Help: "llms.txt generation runs by outcome.",
		},
		[]string{"outcome"},
	)
	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llms_generation_duration_seconds",
			Help:    "Duration of llms.txt generation runs.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	redirectFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llms_redirect_failures_total",
			Help: "Failed attempts to register the /llms.txt redirect.",
		},
	)
	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopify_webhooks_total",
			Help: "Received Shopify webhooks by topic and result.",
		},
		[]string{"topic", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(generationsTotal)
	prometheus.MustRegister(generationDuration)
	prometheus.MustRegister(redirectFailuresTotal)
	prometheus.MustRegister(webhooksTotal)
}

// RecordRequest records metrics for one HTTP request
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordGeneration records the outcome of one generation run. outcome is
// "success" or an error kind.
func RecordGeneration(outcome string, duration time.Duration) {
	generationsTotal.WithLabelValues(outcome).Inc()
	generationDuration.Observe(duration.Seconds())
}

// RecordRedirectFailure counts a failed redirect registration
func RecordRedirectFailure() {
	redirectFailuresTotal.Inc()
}

// RecordWebhook counts a received webhook
func RecordWebhook(topic, result string) {
	webhooksTotal.WithLabelValues(topic, result).Inc()
}

// classifyStatus groups an HTTP status code into its class
func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "unknown"
}

// Handler returns the Prometheus exposition handler
func Handler() http.Handler {
	return promhttp.Handler()
}
