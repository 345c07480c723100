package fsstat

import (
	"sync"

	"github.com/shirou/gopsutil/v3/disk"

	"diskwatch/internal/errors"
)

// sampleWindowMilli bounds how often the per-device counter snapshot is
// refreshed. One counter query returns data for every device at once and is
// comparatively expensive, so all checks share a single snapshot per window.
const sampleWindowMilli = 1000

// counterFetcher returns cumulative I/O counters for all devices in one call.
type counterFetcher func() (map[string]disk.IOCountersStat, error)

// ActivityCache is the process-wide, time-bounded snapshot of per-device
// cumulative I/O counters. Refresh and lookup are serialized under one mutex
// since checks may be refreshed from different goroutines.
type ActivityCache struct {
	mu        sync.Mutex
	timestamp int64 // milliseconds of the last successful refresh
	counters  map[string]disk.IOCountersStat
	fetch     counterFetcher
}

// NewActivityCache returns a cache backed by the OS counter source. The
// snapshot is populated lazily on first use.
func NewActivityCache() *ActivityCache {
	return &ActivityCache{fetch: fetchCounters}
}

func fetchCounters() (map[string]disk.IOCountersStat, error) {
	return disk.IOCounters()
}

// Counters returns the cumulative counters for the named device from a
// snapshot no older than the sample window. The boolean reports whether the
// device exists in the snapshot; a miss is not an error. A refresh failure
// keeps the previous snapshot and is returned as an error: no fresh data is
// available this cycle.
func (c *ActivityCache) Counters(now int64, device string) (disk.IOCountersStat, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refreshLocked(now); err != nil {
		return disk.IOCountersStat{}, false, err
	}

	stats, ok := c.counters[device]
	return stats, ok, nil
}

// refreshLocked re-queries the OS when the snapshot is more than one sample
// window away from now in either direction. The backward case covers clock
// regressions (NTP correction, suspend/resume), which would otherwise pin the
// snapshot as permanently fresh.
func (c *ActivityCache) refreshLocked(now int64) error {
	if now <= c.timestamp+sampleWindowMilli && now >= c.timestamp-sampleWindowMilli {
		return nil
	}

	counters, err := c.fetch()
	if err != nil {
		return errors.New(err).
			Component("fsstat").
			Category(errors.CategorySampleCache).
			Build()
	}

	c.counters = counters
	c.timestamp = now
	return nil
}
