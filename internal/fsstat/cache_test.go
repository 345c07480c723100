package fsstat

import (
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskwatch/internal/errors"
)

// countingFetcher records how many times the OS counter query ran.
type countingFetcher struct {
	calls    int
	counters map[string]disk.IOCountersStat
	err      error
}

func (f *countingFetcher) fetch() (map[string]disk.IOCountersStat, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.counters, nil
}

func TestActivityCacheRefreshesAtMostOncePerWindow(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{counters: map[string]disk.IOCountersStat{
		"sd0": {Name: "sd0", ReadBytes: 1000},
	}}
	cache := &ActivityCache{fetch: f.fetch}

	_, ok, err := cache.Counters(5000, "sd0")
	require.NoError(t, err)
	require.True(t, ok)

	// Second query within 1000 ms must reuse the snapshot.
	_, ok, err = cache.Counters(5900, "sd0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, f.calls)

	// Past the window: one more query.
	_, _, err = cache.Counters(6100, "sd0")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestActivityCacheBackwardClockJumpForcesRefresh(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{counters: map[string]disk.IOCountersStat{
		"sd0": {Name: "sd0"},
	}}
	cache := &ActivityCache{fetch: f.fetch}

	_, _, err := cache.Counters(5000, "sd0")
	require.NoError(t, err)

	// Clock regressed 1500 ms, e.g. an NTP step. The snapshot must not be
	// treated as fresh forever.
	_, _, err = cache.Counters(3500, "sd0")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestActivityCacheLookupMissIsNotAnError(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{counters: map[string]disk.IOCountersStat{
		"sd0": {Name: "sd0"},
	}}
	cache := &ActivityCache{fetch: f.fetch}

	_, ok, err := cache.Counters(5000, "wd1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivityCacheKeepsStaleSnapshotOnFetchFailure(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{counters: map[string]disk.IOCountersStat{
		"sd0": {Name: "sd0", ReadBytes: 42},
	}}
	cache := &ActivityCache{fetch: f.fetch}

	_, ok, err := cache.Counters(5000, "sd0")
	require.NoError(t, err)
	require.True(t, ok)

	f.err = errors.NewStd("sysctl failed")
	_, _, err = cache.Counters(7000, "sd0")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategorySampleCache))

	// The failure did not corrupt the snapshot; a recovered source serves
	// data again on the next cycle.
	f.err = nil
	stats, ok, err := cache.Counters(7500, "sd0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), stats.ReadBytes)
}
