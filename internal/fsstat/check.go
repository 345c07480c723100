package fsstat

import (
	"log/slog"
	"os"
	"path/filepath"

	"diskwatch/internal/errors"
	"diskwatch/internal/logging"
)

// Check owns the state of one monitored filesystem path. Rate baselines live
// inside it across refresh cycles, so a Check must be reused, not recreated,
// for rates to ever become known. A Check is not safe for concurrent use;
// the shared ActivityCache is.
type Check struct {
	info  FilesystemInfo
	table mountTable
	cache *ActivityCache
	usage func(mountpoint string) (usageStats, error)
	now   func() int64
	log   *slog.Logger
}

// NewCheck creates a check for the configured path, sharing the given
// activity cache with every other check in the process.
func NewCheck(path string, cache *ActivityCache) *Check {
	return &Check{
		info:  FilesystemInfo{Path: path},
		table: defaultMountTable(),
		cache: cache,
		usage: queryUsage,
		now:   nowMilli,
		log:   logging.ForService("fsstat"),
	}
}

// Path returns the configured path this check monitors.
func (c *Check) Path() string {
	return c.info.Path
}

// Info returns a snapshot of the current state without refreshing.
func (c *Check) Info() FilesystemInfo {
	return c.info
}

// Refresh resolves the configured path to its filesystem, probes usage and
// activity, and returns the updated snapshot. On any failure the activity
// statistics are reset and the device type cleared so stale data never
// outlives an unmount; the error reports the failure kind and the next cycle
// simply retries. The returned snapshot is always usable.
func (c *Check) Refresh() (FilesystemInfo, error) {
	if err := c.refresh(); err != nil {
		c.info.resetActivity()
		c.info.DeviceType = ""
		c.log.Error("filesystem refresh failed",
			"path", c.info.Path,
			"error", err)
		return c.info, err
	}
	return c.info, nil
}

func (c *Check) refresh() error {
	path := c.info.Path

	fi, err := os.Lstat(path)
	if err == nil && fi.Mode()&os.ModeSymlink != 0 {
		resolved, rerr := filepath.EvalSymlinks(path)
		if rerr != nil {
			return errors.Newf("cannot dereference symlink %q: %v: %w", path, rerr, ErrPathUnresolvable).
				Component("fsstat").
				Category(errors.CategoryPathResolution).
				Context("path", path).
				Build()
		}
		path = resolved
		fi, err = os.Stat(path)
	}

	if err != nil {
		// Not stat-able at all: a connection string (NFS/CIFS/SSHFS), a
		// mountpoint that no longer exists, or an unplugged device. The
		// string may still match a device field in the mount table.
		c.info.Mode, c.info.UID, c.info.GID = 0, 0, 0
		return c.refreshByDevice(c.info.Path)
	}

	c.info.Mode = fi.Mode()
	c.info.UID, c.info.GID = ownerOf(fi)

	switch {
	case fi.IsDir():
		return c.refreshByMountpoint(path)
	case fi.Mode()&os.ModeDevice != 0:
		return c.refreshByDevice(path)
	default:
		return errors.Newf("cannot get filesystem for %q: %w", c.info.Path, ErrNotMountOrDevice).
			Component("fsstat").
			Category(errors.CategoryPathResolution).
			Context("path", c.info.Path).
			Build()
	}
}

func (c *Check) refreshByMountpoint(mountpoint string) error {
	entry, ok, err := c.table.byMountpoint(mountpoint)
	if err != nil {
		return c.lookupError("mountpoint", mountpoint, err)
	}
	if !ok {
		return c.lookupMiss("mountpoint", mountpoint)
	}
	return c.refreshMounted(entry)
}

func (c *Check) refreshByDevice(device string) error {
	entry, ok, err := c.table.byDevice(device)
	if err != nil {
		return c.lookupError("device", device, err)
	}
	if !ok {
		return c.lookupMiss("device", device)
	}
	return c.refreshMounted(entry)
}

// refreshMounted probes a filesystem known to the mount table: usage counters
// first, then activity rates for the backing device.
func (c *Check) refreshMounted(entry MountEntry) error {
	usage, err := c.usage(entry.Mountpoint)
	if err != nil {
		return errors.Newf("usage probe for %q: %v: %w", entry.Mountpoint, err, ErrProbeFailed).
			Component("fsstat").
			Category(errors.CategoryProbe).
			Context("mountpoint", entry.Mountpoint).
			Build()
	}
	c.info.applyUsage(usage)
	c.info.DeviceType = entry.Type

	return c.updateActivity(entry)
}

// updateActivity maps the mount entry to its base device, reads the device's
// cumulative counters from the shared snapshot and feeds them to the rate
// samples. Any break in that chain resets the activity statistics: callers
// must never observe last known good rates once the mapping is gone.
func (c *Check) updateActivity(entry MountEntry) error {
	if !activitySupported {
		c.info.ActivitySupported = false
		c.info.resetActivity()
		return nil
	}
	c.info.ActivitySupported = true

	device, err := baseDeviceName(entry.Device)
	if err != nil {
		c.info.resetActivity()
		return err
	}

	now := c.now()
	counters, ok, err := c.cache.Counters(now, device)
	if err != nil {
		c.info.resetActivity()
		return errors.Newf("activity snapshot for %q: %v: %w", device, err, ErrProbeFailed).
			Component("fsstat").
			Category(errors.CategoryProbe).
			Context("device", device).
			Build()
	}
	if !ok {
		c.info.resetActivity()
		return errors.Newf("device %q not present in counter snapshot: %w", device, ErrDeviceLookup).
			Component("fsstat").
			Category(errors.CategoryDeviceLookup).
			Context("device", device).
			Build()
	}

	c.info.ReadStats.Bytes.update(now, counters.ReadBytes)
	c.info.ReadStats.Operations.update(now, counters.ReadCount)
	c.info.ReadStats.BusyTime.update(now, counters.ReadTime)
	c.info.WriteStats.Bytes.update(now, counters.WriteBytes)
	c.info.WriteStats.Operations.update(now, counters.WriteCount)
	c.info.WriteStats.BusyTime.update(now, counters.WriteTime)
	c.info.RunTime.update(now, counters.IoTime)
	return nil
}

func (c *Check) lookupError(kind, key string, err error) error {
	return errors.Newf("%s lookup for %q: %v: %w", kind, key, err, ErrDeviceLookup).
		Component("fsstat").
		Category(errors.CategoryDeviceLookup).
		Context(kind, key).
		Build()
}

func (c *Check) lookupMiss(kind, key string) error {
	return errors.Newf("%s %q not found in mount table: %w", kind, key, ErrDeviceLookup).
		Component("fsstat").
		Category(errors.CategoryDeviceLookup).
		Context(kind, key).
		Build()
}
