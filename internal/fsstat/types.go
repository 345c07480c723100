// Package fsstat resolves monitored paths to the filesystems and block
// devices behind them and maintains usage and I/O activity statistics for
// each. It is the core the polling service, API and publisher are built on.
package fsstat

import (
	"os"
)

// IOStats is the per-direction activity triple of a filesystem's device.
type IOStats struct {
	Bytes      RateSample `json:"bytes"`
	Operations RateSample `json:"operations"`
	BusyTime   RateSample `json:"busy_time"`
}

func (s *IOStats) reset() {
	s.Bytes.reset()
	s.Operations.reset()
	s.BusyTime.reset()
}

// FilesystemInfo is the per-monitored-path state and the public contract
// consumed by the service layer. It is either fully populated from the last
// successful probe or has all statistics fields in the unknown state; no
// partially populated state is exposed.
type FilesystemInfo struct {
	Path string      `json:"path"` // configured path, identity key
	Mode os.FileMode `json:"mode"` // 0 when the path could not be resolved
	UID  uint32      `json:"uid"`
	GID  uint32      `json:"gid"`

	// Raw counters from the last successful usage probe.
	BlockSize       uint64 `json:"block_size"`
	BlocksTotal     uint64 `json:"blocks_total"`
	BlocksFreeUser  uint64 `json:"blocks_free_user"`  // free to unprivileged users
	BlocksFreeTotal uint64 `json:"blocks_free_total"` // free including reserved
	FilesTotal      uint64 `json:"files_total"`
	FilesFree       uint64 `json:"files_free"`

	// Derived values, recomputed on every successful usage probe.
	SpaceUsed    uint64  `json:"space_used"`
	SpacePercent float64 `json:"space_percent"`
	InodeUsed    uint64  `json:"inode_used"`
	InodePercent float64 `json:"inode_percent"`

	DeviceType string `json:"device_type"` // filesystem type name, empty when unresolved

	// Mount flags from the usage probe; the previous value is retained so a
	// caller can detect transitions such as a read-only remount.
	MountFlags         uint64 `json:"mount_flags"`
	PreviousMountFlags uint64 `json:"previous_mount_flags"`

	ActivitySupported bool `json:"activity_supported"`

	ReadStats  IOStats    `json:"read_stats"`
	WriteStats IOStats    `json:"write_stats"`
	RunTime    RateSample `json:"run_time"` // cumulative device busy time
}

// applyUsage stores raw usage counters and recomputes the derived fields.
func (info *FilesystemInfo) applyUsage(u usageStats) {
	info.BlockSize = u.blockSize
	info.BlocksTotal = u.blocksTotal
	info.BlocksFreeUser = u.blocksFreeUser
	info.BlocksFreeTotal = u.blocksFreeTotal
	info.FilesTotal = u.filesTotal
	info.FilesFree = u.filesFree
	info.PreviousMountFlags = info.MountFlags
	info.MountFlags = u.mountFlags
	info.deriveUsage()
}

// deriveUsage computes used space/inode counts and percentages, guarding the
// zero-denominator cases.
func (info *FilesystemInfo) deriveUsage() {
	info.SpaceUsed = info.BlocksTotal - info.BlocksFreeTotal
	if info.BlocksTotal > 0 {
		info.SpacePercent = 100 * float64(info.SpaceUsed) / float64(info.BlocksTotal)
	} else {
		info.SpacePercent = 0
	}

	info.InodeUsed = info.FilesTotal - info.FilesFree
	if info.FilesTotal > 0 {
		info.InodePercent = 100 * float64(info.InodeUsed) / float64(info.FilesTotal)
	} else {
		info.InodePercent = 0
	}
}

// resetActivity puts every activity statistic back into the unknown state so
// stale rates never leak past an unmount or probe failure.
func (info *FilesystemInfo) resetActivity() {
	info.ReadStats.reset()
	info.WriteStats.reset()
	info.RunTime.reset()
}

// usageStats is the result of one platform usage probe.
type usageStats struct {
	blockSize       uint64
	blocksTotal     uint64
	blocksFreeUser  uint64
	blocksFreeTotal uint64
	filesTotal      uint64
	filesFree       uint64
	mountFlags      uint64
}
