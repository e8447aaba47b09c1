package metrics

import "github.com/prometheus/client_golang/prometheus"

// Completion provider Prometheus metrics.
var (
	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "completion_requests_total",
			Help:      "Total number of completion requests",
		},
		[]string{"model", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "runway",
			Name:      "completion_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"model"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "completion_tokens_total",
			Help:      "Provider tokens consumed by completions",
		},
		[]string{"model", "type"}, // "prompt" / "completion"
	)

	CompletionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "completion_errors_total",
			Help:      "Total completion errors",
		},
		[]string{"model", "error_type"},
	)

	AssistRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "assist_requests_total",
			Help:      "Assist gateway requests by feature and outcome",
		},
		[]string{"feature", "outcome"},
	)
)

var completionMetricsRegistered bool

// RegisterCompletionMetrics registers Prometheus completion metrics. Must be called once from main.
func RegisterCompletionMetrics() {
	if completionMetricsRegistered {
		return
	}
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionRequestDuration)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(CompletionErrorsTotal)
	prometheus.MustRegister(AssistRequestsTotal)
	completionMetricsRegistered = true
}
