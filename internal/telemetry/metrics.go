package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ModelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluebot_model_calls_total",
			Help: "Total number of model completion calls.",
		},
		[]string{"provider", "outcome"},
	)

	ModelCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bluebot_model_call_duration_seconds",
			Help:    "Model completion call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluebot_searches_total",
			Help: "Total number of web searches issued.",
		},
		[]string{"outcome"},
	)

	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluebot_turns_total",
			Help: "Total number of chat turns answered.",
		},
		[]string{"searched"},
	)

	MemoriesSavedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluebot_memories_saved_total",
			Help: "Memory records written, split into new and refreshed.",
		},
		[]string{"kind"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluebot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bluebot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		ModelCallsTotal,
		ModelCallDuration,
		SearchesTotal,
		TurnsTotal,
		MemoriesSavedTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ObserveModelCall records the outcome and latency of one model call.
func ObserveModelCall(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ModelCallsTotal.WithLabelValues(provider, outcome).Inc()
	ModelCallDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// ObserveTurn counts an answered turn.
func ObserveTurn(searched bool) {
	label := "false"
	if searched {
		label = "true"
	}
	TurnsTotal.WithLabelValues(label).Inc()
}
