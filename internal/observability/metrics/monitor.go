// Package metrics provides polling service metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MonitorMetrics contains Prometheus metrics for the polling service
type MonitorMetrics struct {
	registry *prometheus.Registry

	pollCyclesTotal         prometheus.Counter
	pollDurationSeconds     prometheus.Histogram
	checksEvaluatedTotal    *prometheus.CounterVec
	thresholdBreachesTotal  *prometheus.CounterVec
	lastPollTimestampSecond prometheus.Gauge
}

// NewMonitorMetrics creates and registers new polling service metrics
func NewMonitorMetrics(registry *prometheus.Registry) (*MonitorMetrics, error) {
	m := &MonitorMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *MonitorMetrics) initMetrics() error {
	m.pollCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "diskwatch_monitor_poll_cycles_total",
		Help: "Total number of completed poll cycles",
	})

	m.pollDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "diskwatch_monitor_poll_duration_seconds",
		Help:    "Time taken for one full poll cycle over all checks",
		Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10), // 1ms to ~1s
	})

	m.checksEvaluatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskwatch_monitor_checks_evaluated_total",
			Help: "Total number of check evaluations by resulting state",
		},
		[]string{"state"}, // state: ok, warning, critical, error
	)

	m.thresholdBreachesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskwatch_monitor_threshold_breaches_total",
			Help: "Total number of usage threshold breaches",
		},
		[]string{"path", "severity"}, // severity: warning, critical
	)

	m.lastPollTimestampSecond = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "diskwatch_monitor_last_poll_timestamp_seconds",
		Help: "Unix timestamp of the last completed poll cycle",
	})

	return nil
}

// Describe implements the Collector interface
func (m *MonitorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.pollCyclesTotal.Describe(ch)
	m.pollDurationSeconds.Describe(ch)
	m.checksEvaluatedTotal.Describe(ch)
	m.thresholdBreachesTotal.Describe(ch)
	m.lastPollTimestampSecond.Describe(ch)
}

// Collect implements the Collector interface
func (m *MonitorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.pollCyclesTotal.Collect(ch)
	m.pollDurationSeconds.Collect(ch)
	m.checksEvaluatedTotal.Collect(ch)
	m.thresholdBreachesTotal.Collect(ch)
	m.lastPollTimestampSecond.Collect(ch)
}

// RecordPollCycle records one completed poll cycle
func (m *MonitorMetrics) RecordPollCycle(duration float64, completedAt float64) {
	m.pollCyclesTotal.Inc()
	m.pollDurationSeconds.Observe(duration)
	m.lastPollTimestampSecond.Set(completedAt)
}

// RecordCheckEvaluated records the resulting state of one check evaluation
func (m *MonitorMetrics) RecordCheckEvaluated(state string) {
	m.checksEvaluatedTotal.WithLabelValues(state).Inc()
}

// RecordThresholdBreach records a usage threshold breach
func (m *MonitorMetrics) RecordThresholdBreach(path, severity string) {
	m.thresholdBreachesTotal.WithLabelValues(path, severity).Inc()
}
