package fsstat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mtabFixture = `/dev/sd0a / ffs rw,nodev 1 1
/dev/sd0e /home ffs rw,nodev,nosuid 1 2

# comment line
remotehost:/export /mnt/backup nfs rw,tcp 0 0
/dev/sd0e /home/dup ffs rw 1 2
malformed
`

func writeMtab(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mtab")
	require.NoError(t, os.WriteFile(path, []byte(mtabFixture), 0o644))
	return path
}

func TestFileTableByMountpoint(t *testing.T) {
	t.Parallel()

	table := newFileTable(writeMtab(t))

	entry, ok, err := table.byMountpoint("/home")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/dev/sd0e", entry.Device)
	assert.Equal(t, "ffs", entry.Type)
	assert.Equal(t, []string{"rw", "nodev", "nosuid"}, entry.Opts)
}

func TestFileTableByDeviceFirstMatchWins(t *testing.T) {
	t.Parallel()

	table := newFileTable(writeMtab(t))

	// /dev/sd0e appears twice; the first line is authoritative.
	entry, ok, err := table.byDevice("/dev/sd0e")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/home", entry.Mountpoint)
}

func TestFileTableMatchesConnectionStrings(t *testing.T) {
	t.Parallel()

	table := newFileTable(writeMtab(t))

	entry, ok, err := table.byDevice("remotehost:/export")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/mnt/backup", entry.Mountpoint)
	assert.Equal(t, "nfs", entry.Type)
}

func TestFileTableMissIsNotAnError(t *testing.T) {
	t.Parallel()

	table := newFileTable(writeMtab(t))

	_, ok, err := table.byMountpoint("/nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = table.byDevice("/dev/wd9z")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileTableMissingFileIsAnError(t *testing.T) {
	t.Parallel()

	table := newFileTable("/nonexistent/mtab")
	_, _, err := table.byDevice("/dev/sd0a")
	assert.Error(t, err)
}

func TestParseMountLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want MountEntry
		ok   bool
	}{
		{
			name: "full line",
			line: "/dev/sd0a / ffs rw,nodev 1 1",
			want: MountEntry{Device: "/dev/sd0a", Mountpoint: "/", Type: "ffs", Opts: []string{"rw", "nodev"}},
			ok:   true,
		},
		{
			name: "tabs as delimiters",
			line: "/dev/sd0e\t/home\tffs\trw",
			want: MountEntry{Device: "/dev/sd0e", Mountpoint: "/home", Type: "ffs", Opts: []string{"rw"}},
			ok:   true,
		},
		{
			name: "two fields only",
			line: "/dev/sd0d /tmp",
			want: MountEntry{Device: "/dev/sd0d", Mountpoint: "/tmp"},
			ok:   true,
		},
		{name: "blank", line: "   ", ok: false},
		{name: "comment", line: "# mounted filesystems", ok: false},
		{name: "single field", line: "garbage", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entry, ok := parseMountLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, entry)
			}
		})
	}
}

func TestPartitionTableExactMatch(t *testing.T) {
	t.Parallel()

	table := &partitionTable{partitions: func(bool) ([]disk.PartitionStat, error) {
		return []disk.PartitionStat{
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Opts: []string{"rw"}},
			{Device: "/dev/sda2", Mountpoint: "/home", Fstype: "ext4", Opts: []string{"rw"}},
		}, nil
	}}

	entry, ok, err := table.byMountpoint("/home")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/dev/sda2", entry.Device)

	// Prefix is not a match; resolution is exact-string only.
	_, ok, err = table.byMountpoint("/home/user")
	require.NoError(t, err)
	assert.False(t, ok)
}
