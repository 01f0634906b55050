package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// The four queue metrics are part of the engine's contract; their names
// and labels are observed by dashboards and must not change, so they
// carry no namespace.
var (
	JobQueueLag = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "job_queue_lag_seconds",
		Help:    "Seconds from a job becoming eligible to a worker picking it up.",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	JobExecutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "job_execution_duration_seconds",
		Help:    "Duration of one worker iteration, claim to settle.",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	JobExecutionResult = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_execution_result",
		Help: "Executions settled, by outcome.",
	}, []string{"status"})

	JobQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "job_queue_depth",
		Help: "Number of Pending jobs currently eligible to run.",
	})
)

// Ambient process metrics.
var (
	WorkerStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hookq",
		Name:      "worker_start_time_seconds",
		Help:      "Unix timestamp when the worker started.",
	})

	WorkerShutdownsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hookq",
		Name:      "worker_shutdowns_total",
		Help:      "Number of times a worker loop has shut down.",
	})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hookq",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hookq",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		JobQueueLag,
		JobExecutionDuration,
		JobExecutionResult,
		JobQueueDepth,
		WorkerStartTime,
		WorkerShutdownsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}
