package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Registration workflow metrics
	RegistrationsSubmitted *prometheus.CounterVec
	RegistrationsRejected  prometheus.Counter
	SubmissionsInFlight    prometheus.Gauge
	SubmissionLatency      prometheus.Histogram

	// Print pipeline metrics
	PrintJobsEnqueued  prometheus.Counter
	PrintJobsCompleted prometheus.Counter
	PrintJobsFailed    prometheus.Counter
	PrintSpoolLatency  prometheus.Histogram
	PrintQueueSize     prometheus.Gauge

	// Hospital backend call metrics
	BackendCalls   *prometheus.CounterVec
	BackendLatency *prometheus.HistogramVec

	// Doctor directory metrics
	DirectoryLoads   *prometheus.CounterVec
	DirectorySize    prometheus.Gauge
	DirectoryLookups *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		RegistrationsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registrations_submitted_total",
			Help:      "Total number of registration submissions by outcome",
		}, []string{"variant", "status"}),
		RegistrationsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registrations_rejected_total",
			Help:      "Total number of drafts rejected by client-side validation",
		}),
		SubmissionsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submissions_in_flight",
			Help:      "Current number of registration submissions in flight",
		}),
		SubmissionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submission_duration_seconds",
			Help:      "Time spent persisting a registration draft",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),

		PrintJobsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "print_jobs_enqueued_total",
			Help:      "Total number of prescription print jobs enqueued",
		}),
		PrintJobsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "print_jobs_completed_total",
			Help:      "Total number of prescription print jobs completed",
		}),
		PrintJobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "print_jobs_failed_total",
			Help:      "Total number of prescription print jobs that failed",
		}),
		PrintSpoolLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "print_spool_duration_seconds",
			Help:      "Time from job pickup to print dispatch",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		PrintQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "print_queue_size",
			Help:      "Current number of pending print jobs",
		}),

		BackendCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backend_calls_total",
			Help:      "Total number of hospital backend calls",
		}, []string{"operation", "status"}),
		BackendLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backend_call_duration_seconds",
			Help:      "Duration of hospital backend calls",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),

		DirectoryLoads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "directory_loads_total",
			Help:      "Total number of doctor directory loads",
		}, []string{"status"}),
		DirectorySize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "directory_size",
			Help:      "Number of active doctors currently cached",
		}),
		DirectoryLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "directory_lookups_total",
			Help:      "Total number of doctor lookups by result",
		}, []string{"result"}),
	}
}
