// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Funnel metrics.
var (
	FunnelAnswersRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_answers_recorded_total",
			Help: "Answers accepted by the funnel controller",
		},
		[]string{"category"},
	)

	FunnelCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_completed_total",
			Help: "Transitions into the complete state",
		},
		[]string{"category"},
	)

	FunnelStaleResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_stale_resets_total",
			Help: "Saved answer sets discarded on load because the catalog no longer produces them",
		},
		[]string{"category", "reason"},
	)

	FunnelSlotWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_slot_write_failures_total",
			Help: "Answer slot writes that failed and were ignored",
		},
		[]string{"category"},
	)

	FunnelSyncJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_sync_jobs_total",
			Help: "Remote answer sync jobs by outcome (succeeded, failed, dropped)",
		},
		[]string{"outcome"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "funnel_scoring_duration_seconds",
			Help:    "Time spent ranking providers",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"category"},
	)

	ScoredProviders = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "funnel_scored_providers",
			Help:    "Providers surviving the hard-constraint filter",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"category"},
	)

	ProviderCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_cache_lookups_total",
			Help: "Provider cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_http_requests_total",
			Help: "Funnel API requests by route and status",
		},
		[]string{"route", "status"},
	)
)
