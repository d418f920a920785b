// Package metrics exposes prometheus collectors for extraction requests and
// analysis jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extraction requests by mode (sync, async, stored) and outcome.
	ExtractionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docextract_requests_total",
			Help: "Total number of extraction requests",
		},
		[]string{"mode", "outcome"},
	)

	JobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docextract_jobs_started_total",
		Help: "Number of asynchronous analysis jobs started",
	})

	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docextract_jobs_finished_total",
			Help: "Number of analysis jobs that left polling, by final status",
		},
		[]string{"status"},
	)

	JobStatusChecks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docextract_job_status_checks_total",
		Help: "Number of job status requests issued while polling",
	})

	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docextract_job_duration_seconds",
		Help:    "Time from job start until a terminal status was observed",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	BlocksFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docextract_blocks_fetched_total",
		Help: "Number of blocks retrieved from result pages",
	})

	CleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docextract_cleanup_failures_total",
		Help: "Number of stored documents that could not be deleted after analysis",
	})

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docextract_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docextract_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
