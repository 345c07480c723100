package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"diskwatch/internal/conf"
	"diskwatch/internal/fsstat"
)

func newTestSettings(checks ...conf.CheckSettings) *conf.Settings {
	return &conf.Settings{
		Monitor: conf.MonitorSettings{
			Interval: 1,
			Checks:   checks,
		},
	}
}

func TestNewFilesystemMonitorBuildsOneCheckPerPath(t *testing.T) {
	t.Parallel()

	m := NewFilesystemMonitor(newTestSettings(
		conf.CheckSettings{Path: "/", Warning: 80, Critical: 90},
		conf.CheckSettings{Path: "/data", Warning: 70, Critical: 85},
	), nil)

	assert.Equal(t, []string{"/", "/data"}, m.MonitoredPaths())
}

func TestEvaluateThresholdsTransitions(t *testing.T) {
	t.Parallel()

	m := NewFilesystemMonitor(newTestSettings(
		conf.CheckSettings{Path: "/data", Warning: 80, Critical: 90},
	), nil)

	eval := func(percent float64) string {
		info := fsstat.FilesystemInfo{Path: "/data", SpacePercent: percent}
		return m.evaluateThresholds("/data", &info)
	}

	assert.Equal(t, StateOK, eval(50))
	assert.Equal(t, StateWarning, eval(82))
	assert.Equal(t, StateCritical, eval(95))

	// Hovering just below critical keeps the critical state (hysteresis).
	assert.Equal(t, StateCritical, eval(88))
	// Dropping far enough clears critical but keeps warning.
	assert.Equal(t, StateWarning, eval(84))
	// Just below warning still reports warning.
	assert.Equal(t, StateWarning, eval(78))
	// Well below warning clears everything.
	assert.Equal(t, StateOK, eval(70))
	assert.Equal(t, StateOK, eval(50))
}

func TestEvaluateThresholdsZeroMeansDisabled(t *testing.T) {
	t.Parallel()

	m := NewFilesystemMonitor(newTestSettings(
		conf.CheckSettings{Path: "/dev/sda1"},
	), nil)

	eval := func(percent float64) string {
		info := fsstat.FilesystemInfo{Path: "/dev/sda1", SpacePercent: percent}
		return m.evaluateThresholds("/dev/sda1", &info)
	}

	// No warning or critical configured: never trips, no matter the usage.
	assert.Equal(t, StateOK, eval(12))
	assert.Equal(t, StateOK, eval(99.9))

	status := m.AlertStatus()
	require.Contains(t, status, "/dev/sda1")
	entry := status["/dev/sda1"].(map[string]any)
	assert.False(t, entry["in_warning"].(bool))
	assert.False(t, entry["in_critical"].(bool))
}

func TestEvaluateThresholdsCriticalOnly(t *testing.T) {
	t.Parallel()

	m := NewFilesystemMonitor(newTestSettings(
		conf.CheckSettings{Path: "/data", Critical: 90},
	), nil)

	eval := func(percent float64) string {
		info := fsstat.FilesystemInfo{Path: "/data", SpacePercent: percent}
		return m.evaluateThresholds("/data", &info)
	}

	assert.Equal(t, StateOK, eval(85))
	assert.Equal(t, StateCritical, eval(95))
	// Hovering just below critical keeps the alert (hysteresis).
	assert.Equal(t, StateCritical, eval(88))
	// Dropping below critical minus hysteresis clears it.
	assert.Equal(t, StateOK, eval(82))
}

func TestEvaluateThresholdsUnknownPathIsOK(t *testing.T) {
	t.Parallel()

	m := NewFilesystemMonitor(newTestSettings(), nil)
	info := fsstat.FilesystemInfo{Path: "/elsewhere", SpacePercent: 99}
	assert.Equal(t, StateOK, m.evaluateThresholds("/elsewhere", &info))
}

func TestAlertStatusReflectsLastEvaluation(t *testing.T) {
	t.Parallel()

	m := NewFilesystemMonitor(newTestSettings(
		conf.CheckSettings{Path: "/data", Warning: 80, Critical: 90},
	), nil)

	info := fsstat.FilesystemInfo{Path: "/data", SpacePercent: 95}
	m.evaluateThresholds("/data", &info)

	status := m.AlertStatus()
	require.Contains(t, status, "/data")
	entry := status["/data"].(map[string]any)
	assert.True(t, entry["in_critical"].(bool))
	assert.True(t, entry["in_warning"].(bool))
}

func TestSnapshotsReturnConfiguredOrder(t *testing.T) {
	t.Parallel()

	m := NewFilesystemMonitor(newTestSettings(
		conf.CheckSettings{Path: "/a", Warning: 80, Critical: 90},
		conf.CheckSettings{Path: "/b", Warning: 80, Critical: 90},
	), nil)

	m.snapshots.Set("/b", fsstat.FilesystemInfo{Path: "/b"}, time.Minute)
	m.snapshots.Set("/a", fsstat.FilesystemInfo{Path: "/a"}, time.Minute)

	snaps := m.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "/a", snaps[0].Path)
	assert.Equal(t, "/b", snaps[1].Path)

	got, ok := m.SnapshotFor("/a")
	require.True(t, ok)
	assert.Equal(t, "/a", got.Path)

	_, ok = m.SnapshotFor("/missing")
	assert.False(t, ok)
}

func TestStartStopDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewFilesystemMonitor(newTestSettings(), nil)
	m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()
}

func TestErrorTypeClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{fsstat.ErrPathUnresolvable, "path_unresolvable"},
		{fsstat.ErrNotMountOrDevice, "not_mount_or_device"},
		{fsstat.ErrDeviceLookup, "device_lookup"},
		{fsstat.ErrDeviceNameParse, "device_parse"},
		{fsstat.ErrProbeFailed, "probe_failed"},
		{assert.AnError, "other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorType(tc.err))
	}
}
