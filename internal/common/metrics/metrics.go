package metrics

import (
	"time"

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
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.DefBuckets,
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

	DocumentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_documents_generated_total",
			Help: "Invoices and remit invoices submitted to the agency API",
		},
		[]string{"kind"},
	)

	DocumentsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_documents_rendered_total",
			Help: "PDF and XLSX documents rendered",
		},
		[]string{"kind", "format"},
	)

	TotalDrift = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_total_drift_total",
			Help: "Renders whose recomputed total differed from the stored total",
		},
		[]string{"kind"},
	)

	RollRowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roll_import_rows_total",
			Help: "Roll CSV rows classified during import",
		},
		[]string{"status"},
	)
)

// JobTimer tracks one job through the worker metrics. Call Done with the
// error code on failure or "" on success.
type JobTimer struct {
	taskType string
	start    time.Time
}

func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

func (t *JobTimer) Done(errorCode string) {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	if errorCode != "" {
		WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
		return
	}
	WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
}
