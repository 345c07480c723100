package fsstat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateSampleFirstSampleEstablishesBaselineOnly(t *testing.T) {
	t.Parallel()

	var s RateSample
	s.update(1000, 500)

	_, ok := s.Rate()
	assert.False(t, ok, "first sample must not produce a rate")
	assert.Equal(t, uint64(500), s.LastValue())
	assert.Equal(t, int64(1000), s.LastTimestamp())
}

func TestRateSampleComputesDelta(t *testing.T) {
	t.Parallel()

	var s RateSample
	s.update(1000, 500)
	s.update(3000, 1500)

	rate, ok := s.Rate()
	require.True(t, ok)
	assert.InDelta(t, 0.5, rate, 1e-9) // 1000 units over 2000 ms
}

func TestRateSampleIsNonNegativeForIncreasingCounters(t *testing.T) {
	t.Parallel()

	var s RateSample
	values := []uint64{0, 10, 10, 400, 401}
	now := int64(1)
	for _, v := range values {
		s.update(now, v)
		if rate, ok := s.Rate(); ok {
			assert.GreaterOrEqual(t, rate, 0.0)
		}
		now += 100
	}
}

func TestRateSampleDecreasingCounterResetsBaseline(t *testing.T) {
	t.Parallel()

	var s RateSample
	s.update(1000, 5000)
	s.update(2000, 6000)
	// Device reset: counter went backwards. No negative rate, new baseline.
	s.update(3000, 100)

	_, ok := s.Rate()
	assert.False(t, ok)
	assert.Equal(t, uint64(100), s.LastValue())

	// Rates resume from the fresh baseline.
	s.update(4000, 1100)
	rate, ok := s.Rate()
	require.True(t, ok)
	assert.InDelta(t, 1.0, rate, 1e-9)
}

func TestRateSampleNonAdvancingClockYieldsUnknown(t *testing.T) {
	t.Parallel()

	var s RateSample
	s.update(1000, 100)
	s.update(2000, 200)
	s.update(2000, 300) // same timestamp

	_, ok := s.Rate()
	assert.False(t, ok)
}

func TestRateSampleReset(t *testing.T) {
	t.Parallel()

	var s RateSample
	s.update(1000, 100)
	s.update(2000, 200)
	s.reset()

	_, ok := s.Rate()
	assert.False(t, ok, "reset must clear the rate")
	assert.Equal(t, uint64(0), s.LastValue())
	assert.Equal(t, int64(0), s.LastTimestamp())
}

func TestRateSampleJSONNullWhileUnknown(t *testing.T) {
	t.Parallel()

	var s RateSample
	s.update(1000, 100)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":null,"last_value":100,"last_timestamp":1000}`, string(data))

	s.update(2000, 1100)
	data, err = json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":1,"last_value":1100,"last_timestamp":2000}`, string(data))
}

func TestDeriveUsagePercentages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		usage     usageStats
		wantSpace float64
		wantInode float64
	}{
		{
			name:      "zero totals never divide",
			usage:     usageStats{},
			wantSpace: 0,
			wantInode: 0,
		},
		{
			name: "seventy percent of inodes used",
			usage: usageStats{
				blocksTotal: 0, filesTotal: 100, filesFree: 30,
			},
			wantSpace: 0,
			wantInode: 70.0,
		},
		{
			name: "half of blocks used",
			usage: usageStats{
				blockSize: 4096, blocksTotal: 1000, blocksFreeTotal: 500, blocksFreeUser: 400,
			},
			wantSpace: 50.0,
			wantInode: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info := FilesystemInfo{}
			info.applyUsage(tt.usage)
			assert.InDelta(t, tt.wantSpace, info.SpacePercent, 1e-9)
			assert.InDelta(t, tt.wantInode, info.InodePercent, 1e-9)
		})
	}
}

func TestApplyUsageRetainsPreviousMountFlags(t *testing.T) {
	t.Parallel()

	info := FilesystemInfo{}
	info.applyUsage(usageStats{mountFlags: 0x1})
	info.applyUsage(usageStats{mountFlags: 0x5})

	assert.Equal(t, uint64(0x5), info.MountFlags)
	assert.Equal(t, uint64(0x1), info.PreviousMountFlags)
}
