package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemMetricsUsageGauges(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewFilesystemMetrics(registry)
	require.NoError(t, err)

	m.UpdateUsage("/data", 500, 1000, 50.0, 70.0)

	assert.InDelta(t, 500.0, testutil.ToFloat64(m.spaceUsedBytes.WithLabelValues("/data")), 1e-9)
	assert.InDelta(t, 1000.0, testutil.ToFloat64(m.spaceTotalBytes.WithLabelValues("/data")), 1e-9)
	assert.InDelta(t, 50.0, testutil.ToFloat64(m.spaceUtilizationPercent.WithLabelValues("/data")), 1e-9)
	assert.InDelta(t, 70.0, testutil.ToFloat64(m.inodeUtilizationPercent.WithLabelValues("/data")), 1e-9)
}

func TestFilesystemMetricsClearActivityRemovesSeries(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewFilesystemMetrics(registry)
	require.NoError(t, err)

	m.UpdateActivityRates("/data", 1024, 2048, 10, 20, 0.5)
	assert.Equal(t, 1, testutil.CollectAndCount(m.readBytesPerSecond))

	m.ClearActivityRates("/data")
	assert.Equal(t, 0, testutil.CollectAndCount(m.readBytesPerSecond),
		"cleared rates must not be scraped")
}

func TestMonitorMetricsStates(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewMonitorMetrics(registry)
	require.NoError(t, err)

	m.RecordCheckEvaluated("ok")
	m.RecordCheckEvaluated("ok")
	m.RecordCheckEvaluated("critical")
	m.RecordThresholdBreach("/data", "critical")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.checksEvaluatedTotal.WithLabelValues("ok")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.checksEvaluatedTotal.WithLabelValues("critical")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.thresholdBreachesTotal.WithLabelValues("/data", "critical")), 1e-9)
}
