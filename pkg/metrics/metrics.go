// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route pattern, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartbuddy_http_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// Completions counts completion calls by outcome ("ok" or "error").
	Completions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartbuddy_completions_total",
		Help: "Completion calls by final outcome.",
	}, []string{"outcome"})

	// CompletionRetries counts retries after transient provider failures.
	CompletionRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartbuddy_completion_retries_total",
		Help: "Retries issued after transient provider failures.",
	})

	// CompletionDuration tracks end-to-end completion latency including retries.
	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartbuddy_completion_duration_seconds",
		Help:    "Time spent in a completion call, retries included.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"model"})

	// ScriptRatio tracks the measured share of the expected script per language.
	ScriptRatio = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartbuddy_script_ratio",
		Help:    "Share of counted characters written in the selected language's script.",
		Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
	}, []string{"language"})

	// Corrections counts corrective rewrites by language and outcome.
	Corrections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartbuddy_language_corrections_total",
		Help: "Corrective rewrites issued by the language check.",
	}, []string{"language", "outcome"})

	// ProviderAvailable reports whether the configured provider has a credential.
	ProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "smartbuddy_provider_available",
		Help: "Whether the completion provider is configured (1) or not (0).",
	}, []string{"provider"})
)

// Outcome returns the label value for err.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
