package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Job results recorded by MaintenanceMetrics.
const (
	JobSucceeded = "success"
	JobFailed    = "failure"
)

// MaintenanceMetrics tracks the scheduled jobs of the cron worker.
type MaintenanceMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	affected *prometheus.CounterVec
}

// NewMaintenanceMetrics registers the job metrics on the provided registerer.
func NewMaintenanceMetrics(reg prometheus.Registerer) *MaintenanceMetrics {
	if reg == nil {
		return &MaintenanceMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_maintenance_job_runs_total",
		Help: "Maintenance job executions, by job and result.",
	}, []string{"job", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "offers_maintenance_job_duration_seconds",
		Help:    "Maintenance job duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	affected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_maintenance_rows_affected_total",
		Help: "Rows deleted or updated by maintenance jobs.",
	}, []string{"job"})
	reg.MustRegister(runs, duration, affected)
	return &MaintenanceMetrics{runs: runs, duration: duration, affected: affected}
}

// ObserveRun records one job execution.
func (m *MaintenanceMetrics) ObserveRun(job, result string, duration time.Duration) {
	if m == nil || m.runs == nil {
		return
	}
	job = normalizeLabel(job)
	m.runs.WithLabelValues(job, normalizeLabel(result)).Inc()
	m.duration.WithLabelValues(job).Observe(duration.Seconds())
}

// AddAffected counts rows a job changed.
func (m *MaintenanceMetrics) AddAffected(job string, rows int64) {
	if m == nil || m.affected == nil || rows <= 0 {
		return
	}
	m.affected.WithLabelValues(normalizeLabel(job)).Add(float64(rows))
}
