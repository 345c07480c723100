// Package monitor provides filesystem monitoring with threshold-based alerting
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"diskwatch/internal/conf"
	"diskwatch/internal/errors"
	"diskwatch/internal/fsstat"
	"diskwatch/internal/logging"
	"diskwatch/internal/observability"
	"diskwatch/internal/observability/metrics"
)

// Check evaluation states reported in logs and metrics.
const (
	StateOK       = "ok"
	StateWarning  = "warning"
	StateCritical = "critical"
	StateError    = "error"
)

// Default configuration values
const (
	defaultInterval          = 30 * time.Second
	defaultHysteresisPercent = 5.0
	snapshotExpiryIntervals  = 3
)

// AlertState tracks the current alert state for one monitored path
type AlertState struct {
	InWarning  bool
	InCritical bool
	LastValue  float64
	LastCheck  time.Time
}

// Publisher receives the snapshots of every poll cycle. Implementations must
// tolerate being called from the monitor goroutine.
type Publisher interface {
	Publish(ctx context.Context, snapshots []fsstat.FilesystemInfo) error
}

// FilesystemMonitor polls every configured filesystem check on a fixed
// interval, evaluates usage thresholds and keeps the latest snapshot of each
// path available for the API and publishers.
type FilesystemMonitor struct {
	settings    *conf.Settings
	interval    time.Duration
	checks      []*fsstat.Check
	thresholds  map[string]conf.CheckSettings
	alertStates map[string]*AlertState
	snapshots   *gocache.Cache
	metrics     *observability.Metrics
	publisher   Publisher
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	log         *slog.Logger
}

// NewFilesystemMonitor creates a monitor for every check in the settings. All
// checks share one activity cache so the device counters are queried at most
// once per cycle.
func NewFilesystemMonitor(settings *conf.Settings, metrics *observability.Metrics) *FilesystemMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	interval := defaultInterval
	if settings.Monitor.Interval > 0 {
		interval = time.Duration(settings.Monitor.Interval) * time.Second
	}

	cache := fsstat.NewActivityCache()
	checks := make([]*fsstat.Check, 0, len(settings.Monitor.Checks))
	thresholds := make(map[string]conf.CheckSettings, len(settings.Monitor.Checks))
	for _, cs := range settings.Monitor.Checks {
		checks = append(checks, fsstat.NewCheck(cs.Path, cache))
		thresholds[cs.Path] = cs
	}

	m := &FilesystemMonitor{
		settings:    settings,
		interval:    interval,
		checks:      checks,
		thresholds:  thresholds,
		alertStates: make(map[string]*AlertState),
		// No janitor goroutine: expired snapshots are dropped lazily on Get.
		snapshots: gocache.New(snapshotExpiryIntervals*interval, 0),
		metrics:   metrics,
		ctx:       ctx,
		cancel:    cancel,
		log:       logging.ForService("monitor"),
	}

	m.log.Info("filesystem monitor created",
		"interval", interval,
		"checks", len(checks))
	return m
}

// SetPublisher attaches a snapshot publisher. Must be called before Start.
func (m *FilesystemMonitor) SetPublisher(p Publisher) {
	m.publisher = p
}

// Start begins the polling loop.
func (m *FilesystemMonitor) Start() {
	m.log.Info("starting filesystem monitoring",
		"interval", m.interval,
		"paths", m.MonitoredPaths())

	m.wg.Add(1)
	go m.monitorLoop()
}

// Stop stops the polling loop and waits for it to finish.
func (m *FilesystemMonitor) Stop() {
	m.log.Info("stopping filesystem monitoring")
	m.cancel()
	m.wg.Wait()
}

// monitorLoop is the main polling loop
func (m *FilesystemMonitor) monitorLoop() {
	defer m.wg.Done()

	// Initial poll so the API has data before the first tick.
	m.pollAll()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.pollAll()
		case <-m.ctx.Done():
			m.log.Info("filesystem monitor loop stopping")
			return
		}
	}
}

// pollAll refreshes every check once and hands the cycle's snapshots to the
// publisher.
func (m *FilesystemMonitor) pollAll() {
	start := time.Now()
	snapshots := make([]fsstat.FilesystemInfo, 0, len(m.checks))

	for _, check := range m.checks {
		snapshots = append(snapshots, m.pollCheck(check))
	}

	elapsed := time.Since(start)
	if m.metrics != nil {
		m.metrics.Monitor.RecordPollCycle(elapsed.Seconds(), float64(time.Now().Unix()))
	}
	m.log.Debug("poll cycle completed",
		"checks", len(m.checks),
		"duration", elapsed)

	if m.publisher != nil {
		if err := m.publisher.Publish(m.ctx, snapshots); err != nil {
			m.log.Error("snapshot publish failed", "error", err)
		}
	}
}

// pollCheck refreshes one check, stores its snapshot and evaluates thresholds.
func (m *FilesystemMonitor) pollCheck(check *fsstat.Check) fsstat.FilesystemInfo {
	path := check.Path()
	start := time.Now()
	info, err := check.Refresh()
	elapsed := time.Since(start)

	if m.metrics != nil {
		m.metrics.Filesystem.RecordRefreshDuration(path, elapsed.Seconds())
	}

	state := StateError
	if err == nil {
		state = m.evaluateThresholds(path, &info)
	} else {
		m.recordRefreshError(path, err)
	}

	if m.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.metrics.Filesystem.RecordRefresh(path, status)
		m.metrics.Monitor.RecordCheckEvaluated(state)
		m.updateFilesystemMetrics(path, &info)
	}

	m.snapshots.Set(path, info, gocache.DefaultExpiration)
	return info
}

func (m *FilesystemMonitor) recordRefreshError(path string, err error) {
	if m.metrics != nil {
		m.metrics.Filesystem.RecordRefreshError(path, errorType(err))
	}
	m.log.Error("filesystem check failed",
		"path", path,
		"error", err)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, fsstat.ErrPathUnresolvable):
		return "path_unresolvable"
	case errors.Is(err, fsstat.ErrNotMountOrDevice):
		return "not_mount_or_device"
	case errors.Is(err, fsstat.ErrDeviceLookup):
		return "device_lookup"
	case errors.Is(err, fsstat.ErrDeviceNameParse):
		return "device_parse"
	case errors.Is(err, fsstat.ErrProbeFailed):
		return "probe_failed"
	default:
		return "other"
	}
}

// updateFilesystemMetrics pushes one snapshot into the Prometheus gauges.
func (m *FilesystemMonitor) updateFilesystemMetrics(path string, info *fsstat.FilesystemInfo) {
	usedBytes := info.SpaceUsed * info.BlockSize
	totalBytes := info.BlocksTotal * info.BlockSize
	m.metrics.Filesystem.UpdateUsage(path, usedBytes, totalBytes, info.SpacePercent, info.InodePercent)
	m.metrics.Filesystem.UpdateActivitySupport(path, info.ActivitySupported)

	readBytes, readOK := info.ReadStats.Bytes.Rate()
	writeBytes, writeOK := info.WriteStats.Bytes.Rate()
	readOps, _ := info.ReadStats.Operations.Rate()
	writeOps, _ := info.WriteStats.Operations.Rate()
	runTime, _ := info.RunTime.Rate()
	if readOK && writeOK {
		// Rates are tracked in units per millisecond; scrapes want per second.
		m.metrics.Filesystem.UpdateActivityRates(path,
			readBytes*metrics.MillisecondsPerSecond,
			writeBytes*metrics.MillisecondsPerSecond,
			readOps*metrics.MillisecondsPerSecond,
			writeOps*metrics.MillisecondsPerSecond,
			runTime) // ms busy per ms elapsed, already a ratio
	} else {
		m.metrics.Filesystem.ClearActivityRates(path)
	}
}

// evaluateThresholds compares space usage against the configured thresholds
// and tracks state transitions with hysteresis, so a filesystem hovering at a
// threshold does not flap between states on every cycle.
func (m *FilesystemMonitor) evaluateThresholds(path string, info *fsstat.FilesystemInfo) string {
	ts, ok := m.thresholds[path]
	if !ok {
		return StateOK
	}

	if info.PreviousMountFlags != 0 && info.PreviousMountFlags != info.MountFlags {
		m.log.Warn("mount flags changed",
			"path", path,
			"previous", fmt.Sprintf("%#x", info.PreviousMountFlags),
			"current", fmt.Sprintf("%#x", info.MountFlags))
		if m.metrics != nil {
			m.metrics.Filesystem.RecordMountFlagTransition(path)
		}
	}

	current := info.SpacePercent

	m.mu.Lock()
	state, exists := m.alertStates[path]
	if !exists {
		state = &AlertState{}
		m.alertStates[path] = state
	}
	state.LastValue = current
	state.LastCheck = time.Now()
	m.mu.Unlock()

	// A threshold left at zero is disabled and never trips.
	result := StateOK
	switch {
	case ts.Critical > 0 && current >= ts.Critical:
		result = StateCritical
		if !state.InCritical {
			m.log.Warn("critical space threshold exceeded",
				"path", path,
				"current", fmt.Sprintf("%.2f%%", current),
				"threshold", fmt.Sprintf("%.2f%%", ts.Critical))
			if m.metrics != nil {
				m.metrics.Monitor.RecordThresholdBreach(path, StateCritical)
			}
			state.InCritical = true
			state.InWarning = true
		}
	case ts.Warning > 0 && current >= ts.Warning:
		result = StateWarning
		if !state.InWarning {
			m.log.Warn("space threshold exceeded",
				"path", path,
				"current", fmt.Sprintf("%.2f%%", current),
				"threshold", fmt.Sprintf("%.2f%%", ts.Warning))
			if m.metrics != nil {
				m.metrics.Monitor.RecordThresholdBreach(path, StateWarning)
			}
			state.InWarning = true
		}
		if state.InCritical && current < ts.Critical-defaultHysteresisPercent {
			m.log.Info("recovered from critical space usage",
				"path", path,
				"current", fmt.Sprintf("%.2f%%", current))
			state.InCritical = false
		} else if state.InCritical {
			result = StateCritical
		}
	default:
		// With warning disabled, recovery is measured against critical.
		clearBelow := ts.Warning
		if clearBelow <= 0 {
			clearBelow = ts.Critical
		}
		if state.InWarning && current < clearBelow-defaultHysteresisPercent {
			m.log.Info("space usage recovered",
				"path", path,
				"current", fmt.Sprintf("%.2f%%", current))
			state.InWarning = false
			state.InCritical = false
		} else if state.InCritical {
			result = StateCritical
		} else if state.InWarning {
			result = StateWarning
		}
	}
	return result
}

// Snapshots returns the latest snapshot for every monitored path, in the
// configured check order. Paths with no snapshot yet are skipped.
func (m *FilesystemMonitor) Snapshots() []fsstat.FilesystemInfo {
	out := make([]fsstat.FilesystemInfo, 0, len(m.checks))
	for _, check := range m.checks {
		if v, ok := m.snapshots.Get(check.Path()); ok {
			out = append(out, v.(fsstat.FilesystemInfo))
		}
	}
	return out
}

// SnapshotFor returns the latest snapshot for one path.
func (m *FilesystemMonitor) SnapshotFor(path string) (fsstat.FilesystemInfo, bool) {
	v, ok := m.snapshots.Get(path)
	if !ok {
		return fsstat.FilesystemInfo{}, false
	}
	return v.(fsstat.FilesystemInfo), true
}

// AlertStatus returns the current alert state of every monitored path.
func (m *FilesystemMonitor) AlertStatus() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]any, len(m.alertStates))
	for path, state := range m.alertStates {
		status[path] = map[string]any{
			"current_value": fmt.Sprintf("%.1f%%", state.LastValue),
			"in_warning":    state.InWarning,
			"in_critical":   state.InCritical,
			"last_check":    state.LastCheck.Format(time.RFC3339),
		}
	}
	return status
}

// TriggerPoll runs one poll cycle immediately.
func (m *FilesystemMonitor) TriggerPoll() {
	m.pollAll()
}

// MonitoredPaths returns the configured paths in check order.
func (m *FilesystemMonitor) MonitoredPaths() []string {
	paths := make([]string, 0, len(m.checks))
	for _, check := range m.checks {
		paths = append(paths, check.Path())
	}
	return paths
}
