package fsstat

import (
	"bufio"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// MountEntry is one row of the mount table.
type MountEntry struct {
	Device     string
	Mountpoint string
	Type       string
	Opts       []string
}

// mountTable resolves devices and mountpoints against the mount table.
// Matching is exact on the device or mountpoint field and the first match
// wins. A miss is reported through the boolean, distinct from a query error.
type mountTable interface {
	byMountpoint(mountpoint string) (MountEntry, bool, error)
	byDevice(device string) (MountEntry, bool, error)
}

// partitionTable enumerates the live mount table through the OS.
type partitionTable struct {
	partitions func(all bool) ([]disk.PartitionStat, error)
}

func newPartitionTable() *partitionTable {
	return &partitionTable{partitions: disk.Partitions}
}

func (t *partitionTable) byMountpoint(mountpoint string) (MountEntry, bool, error) {
	return t.find(func(p *disk.PartitionStat) bool { return p.Mountpoint == mountpoint })
}

func (t *partitionTable) byDevice(device string) (MountEntry, bool, error) {
	return t.find(func(p *disk.PartitionStat) bool { return p.Device == device })
}

func (t *partitionTable) find(match func(*disk.PartitionStat) bool) (MountEntry, bool, error) {
	partitions, err := t.partitions(true)
	if err != nil {
		return MountEntry{}, false, err
	}
	for i := range partitions {
		if match(&partitions[i]) {
			p := &partitions[i]
			return MountEntry{
				Device:     p.Device,
				Mountpoint: p.Mountpoint,
				Type:       p.Fstype,
				Opts:       p.Opts,
			}, true, nil
		}
	}
	return MountEntry{}, false, nil
}

// fileTable reads an mtab-style mount table file. Lines are whitespace
// delimited: <device> <mountpoint> <type> <options> <dump> <pass>. Used on
// platforms without a mount enumeration syscall, and as the base for tests.
type fileTable struct {
	path string
}

func newFileTable(path string) *fileTable {
	return &fileTable{path: path}
}

func (t *fileTable) byMountpoint(mountpoint string) (MountEntry, bool, error) {
	return t.find(func(e *MountEntry) bool { return e.Mountpoint == mountpoint })
}

func (t *fileTable) byDevice(device string) (MountEntry, bool, error) {
	return t.find(func(e *MountEntry) bool { return e.Device == device })
}

func (t *fileTable) find(match func(*MountEntry) bool) (MountEntry, bool, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return MountEntry{}, false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, ok := parseMountLine(scanner.Text())
		if !ok {
			continue
		}
		if match(&entry) {
			return entry, true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return MountEntry{}, false, err
	}
	return MountEntry{}, false, nil
}

// parseMountLine parses one mount table line. Short and comment lines are
// skipped.
func parseMountLine(line string) (MountEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return MountEntry{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return MountEntry{}, false
	}

	entry := MountEntry{
		Device:     fields[0],
		Mountpoint: fields[1],
	}
	if len(fields) > 2 {
		entry.Type = fields[2]
	}
	if len(fields) > 3 {
		entry.Opts = strings.Split(fields[3], ",")
	}
	return entry, true
}
