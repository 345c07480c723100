//go:build !linux && !darwin

package fsstat

import (
	"os"

	"github.com/shirou/gopsutil/v3/disk"
)

// Zero-capability variant: no per-device counter source is available here,
// so activity is reported as unsupported instead of fabricating zero rates.
const activitySupported = false

// defaultMtabPath is the mount table text file consumed when the OS offers
// no mount enumeration syscall.
const defaultMtabPath = "/etc/mtab"

// queryUsage fetches usage through the portable statfs equivalent. Raw block
// counters and mount flags are not available on this path; usage is reported
// at byte granularity with a block size of 1.
func queryUsage(mountpoint string) (usageStats, error) {
	usage, err := disk.Usage(mountpoint)
	if err != nil {
		return usageStats{}, err
	}
	return usageStats{
		blockSize:       1,
		blocksTotal:     usage.Total,
		blocksFreeUser:  usage.Free,
		blocksFreeTotal: usage.Free,
		filesTotal:      usage.InodesTotal,
		filesFree:       usage.InodesFree,
	}, nil
}

func ownerOf(_ os.FileInfo) (uid, gid uint32) {
	return 0, 0
}

func defaultMountTable() mountTable {
	return newFileTable(defaultMtabPath)
}
