// Package metrics provides filesystem metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FilesystemMetrics contains Prometheus metrics for monitored filesystems
type FilesystemMetrics struct {
	registry *prometheus.Registry

	// Usage metrics
	spaceUsedBytes            *prometheus.GaugeVec
	spaceTotalBytes           *prometheus.GaugeVec
	spaceUtilizationPercent   *prometheus.GaugeVec
	inodeUtilizationPercent   *prometheus.GaugeVec
	activitySupported         *prometheus.GaugeVec
	mountFlagTransitionsTotal *prometheus.CounterVec

	// Activity rate metrics, in per-second units
	readBytesPerSecond       *prometheus.GaugeVec
	writeBytesPerSecond      *prometheus.GaugeVec
	readOperationsPerSecond  *prometheus.GaugeVec
	writeOperationsPerSecond *prometheus.GaugeVec
	deviceBusyRatio          *prometheus.GaugeVec

	// Refresh metrics
	refreshesTotal         *prometheus.CounterVec
	refreshErrorsTotal     *prometheus.CounterVec
	refreshDurationSeconds *prometheus.HistogramVec
}

// NewFilesystemMetrics creates and registers new filesystem metrics
func NewFilesystemMetrics(registry *prometheus.Registry) (*FilesystemMetrics, error) {
	m := &FilesystemMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *FilesystemMetrics) initMetrics() error {
	m.spaceUsedBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_space_used_bytes",
			Help: "Used space on the filesystem in bytes",
		},
		[]string{"path"},
	)

	m.spaceTotalBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_space_total_bytes",
			Help: "Total space on the filesystem in bytes",
		},
		[]string{"path"},
	)

	m.spaceUtilizationPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_space_utilization_percent",
			Help: "Space utilization of the filesystem as a percentage",
		},
		[]string{"path"},
	)

	m.inodeUtilizationPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_inode_utilization_percent",
			Help: "Inode utilization of the filesystem as a percentage",
		},
		[]string{"path"},
	)

	m.activitySupported = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_activity_supported",
			Help: "Whether I/O activity statistics are available for the filesystem (1 or 0)",
		},
		[]string{"path"},
	)

	m.mountFlagTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskwatch_filesystem_mount_flag_transitions_total",
			Help: "Total number of observed mount flag changes",
		},
		[]string{"path"},
	)

	m.readBytesPerSecond = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_read_bytes_per_second",
			Help: "Read throughput of the backing device in bytes per second",
		},
		[]string{"path"},
	)

	m.writeBytesPerSecond = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_write_bytes_per_second",
			Help: "Write throughput of the backing device in bytes per second",
		},
		[]string{"path"},
	)

	m.readOperationsPerSecond = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_read_operations_per_second",
			Help: "Read operations of the backing device per second",
		},
		[]string{"path"},
	)

	m.writeOperationsPerSecond = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_write_operations_per_second",
			Help: "Write operations of the backing device per second",
		},
		[]string{"path"},
	)

	m.deviceBusyRatio = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskwatch_filesystem_device_busy_ratio",
			Help: "Fraction of time the backing device was busy with I/O",
		},
		[]string{"path"},
	)

	m.refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskwatch_filesystem_refreshes_total",
			Help: "Total number of filesystem refresh cycles",
		},
		[]string{"path", "status"}, // status: success, error
	)

	m.refreshErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskwatch_filesystem_refresh_errors_total",
			Help: "Total number of filesystem refresh errors",
		},
		[]string{"path", "error_type"},
	)

	m.refreshDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diskwatch_filesystem_refresh_duration_seconds",
			Help:    "Time taken to refresh one filesystem",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount12), // 0.1ms to ~400ms
		},
		[]string{"path"},
	)

	return nil
}

// Describe implements the Collector interface
func (m *FilesystemMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.spaceUsedBytes.Describe(ch)
	m.spaceTotalBytes.Describe(ch)
	m.spaceUtilizationPercent.Describe(ch)
	m.inodeUtilizationPercent.Describe(ch)
	m.activitySupported.Describe(ch)
	m.mountFlagTransitionsTotal.Describe(ch)
	m.readBytesPerSecond.Describe(ch)
	m.writeBytesPerSecond.Describe(ch)
	m.readOperationsPerSecond.Describe(ch)
	m.writeOperationsPerSecond.Describe(ch)
	m.deviceBusyRatio.Describe(ch)
	m.refreshesTotal.Describe(ch)
	m.refreshErrorsTotal.Describe(ch)
	m.refreshDurationSeconds.Describe(ch)
}

// Collect implements the Collector interface
func (m *FilesystemMetrics) Collect(ch chan<- prometheus.Metric) {
	m.spaceUsedBytes.Collect(ch)
	m.spaceTotalBytes.Collect(ch)
	m.spaceUtilizationPercent.Collect(ch)
	m.inodeUtilizationPercent.Collect(ch)
	m.activitySupported.Collect(ch)
	m.mountFlagTransitionsTotal.Collect(ch)
	m.readBytesPerSecond.Collect(ch)
	m.writeBytesPerSecond.Collect(ch)
	m.readOperationsPerSecond.Collect(ch)
	m.writeOperationsPerSecond.Collect(ch)
	m.deviceBusyRatio.Collect(ch)
	m.refreshesTotal.Collect(ch)
	m.refreshErrorsTotal.Collect(ch)
	m.refreshDurationSeconds.Collect(ch)
}

// UpdateUsage updates the usage metrics for one monitored path
func (m *FilesystemMetrics) UpdateUsage(path string, usedBytes, totalBytes uint64, spacePercent, inodePercent float64) {
	m.spaceUsedBytes.WithLabelValues(path).Set(float64(usedBytes))
	m.spaceTotalBytes.WithLabelValues(path).Set(float64(totalBytes))
	m.spaceUtilizationPercent.WithLabelValues(path).Set(spacePercent)
	m.inodeUtilizationPercent.WithLabelValues(path).Set(inodePercent)
}

// UpdateActivitySupport records whether activity statistics are available
func (m *FilesystemMetrics) UpdateActivitySupport(path string, supported bool) {
	v := 0.0
	if supported {
		v = 1.0
	}
	m.activitySupported.WithLabelValues(path).Set(v)
}

// RecordMountFlagTransition records a change in the filesystem's mount flags
func (m *FilesystemMetrics) RecordMountFlagTransition(path string) {
	m.mountFlagTransitionsTotal.WithLabelValues(path).Inc()
}

// UpdateActivityRates updates the per-second activity gauges. All rates are
// expected in per-second units.
func (m *FilesystemMetrics) UpdateActivityRates(path string, readBytes, writeBytes, readOps, writeOps, busyRatio float64) {
	m.readBytesPerSecond.WithLabelValues(path).Set(readBytes)
	m.writeBytesPerSecond.WithLabelValues(path).Set(writeBytes)
	m.readOperationsPerSecond.WithLabelValues(path).Set(readOps)
	m.writeOperationsPerSecond.WithLabelValues(path).Set(writeOps)
	m.deviceBusyRatio.WithLabelValues(path).Set(busyRatio)
}

// ClearActivityRates removes the activity gauges for a path whose rates have
// become unknown, so scrapes never report a stale throughput.
func (m *FilesystemMetrics) ClearActivityRates(path string) {
	m.readBytesPerSecond.DeleteLabelValues(path)
	m.writeBytesPerSecond.DeleteLabelValues(path)
	m.readOperationsPerSecond.DeleteLabelValues(path)
	m.writeOperationsPerSecond.DeleteLabelValues(path)
	m.deviceBusyRatio.DeleteLabelValues(path)
}

// RecordRefresh records the outcome of one refresh cycle
func (m *FilesystemMetrics) RecordRefresh(path, status string) {
	m.refreshesTotal.WithLabelValues(path, status).Inc()
}

// RecordRefreshError records a refresh error by type
func (m *FilesystemMetrics) RecordRefreshError(path, errorType string) {
	m.refreshErrorsTotal.WithLabelValues(path, errorType).Inc()
}

// RecordRefreshDuration records the time taken to refresh one filesystem
func (m *FilesystemMetrics) RecordRefreshDuration(path string, duration float64) {
	m.refreshDurationSeconds.WithLabelValues(path).Observe(duration)
}
