// Package jobmetrics exposes Prometheus collectors for background jobs.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs       *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	compliance *prometheus.GaugeVec
	lastScan   prometheus.Gauge
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker provides lifecycle instrumentation helpers for a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	if m == nil {
		return &Tracker{job: job, start: time.Now()}
	}
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End finalises the tracker, recording duration, success/failure counts and
// returning the provided error untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// ComplianceCounts maps report type to status label to unit count.
type ComplianceCounts map[string]map[string]int

// SetCompliance replaces the compliance gauges with counts from the latest scan.
// Series absent from counts are removed.
func (m *Metrics) SetCompliance(counts ComplianceCounts, at time.Time) {
	if m == nil {
		return
	}
	m.compliance.Reset()
	for reportType, byStatus := range counts {
		for status, n := range byStatus {
			m.compliance.WithLabelValues(reportType, status).Set(float64(n))
		}
	}
	m.lastScan.Set(float64(at.Unix()))
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelaudit_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelaudit_jobs_failures_total",
		Help: "Total failures observed for background jobs.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotelaudit_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	compliance := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hotelaudit_compliance_status",
		Help: "Hotel report units per report type and submission status at the last scan.",
	}, []string{"report_type", "status"})
	lastScan := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hotelaudit_compliance_last_scan_timestamp_seconds",
		Help: "Unix time of the last completed compliance scan.",
	})
	registerer.MustRegister(runs, failures, duration, compliance, lastScan)
	return &Metrics{runs: runs, failures: failures, duration: duration, compliance: compliance, lastScan: lastScan}
}
