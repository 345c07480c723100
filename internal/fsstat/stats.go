package fsstat

import (
	"encoding/json"
	"time"
)

// RateSample converts a monotonically increasing raw counter into a rate by
// differencing consecutive samples. The zero value is the unknown state.
type RateSample struct {
	rate          float64 // units per millisecond, valid only when rateValid
	rateValid     bool
	lastValue     uint64 // last raw counter seen
	lastTimestamp int64  // milliseconds since epoch, 0 = no baseline
}

// Rate returns the computed rate in units per millisecond. The boolean is
// false until two consecutive samples with increasing timestamps exist.
func (s *RateSample) Rate() (float64, bool) {
	return s.rate, s.rateValid
}

// LastValue returns the last raw counter fed to the sample.
func (s *RateSample) LastValue() uint64 {
	return s.lastValue
}

// LastTimestamp returns the timestamp of the last raw sample in milliseconds,
// or 0 when no baseline exists.
func (s *RateSample) LastTimestamp() int64 {
	return s.lastTimestamp
}

// update feeds a raw counter reading taken at now (milliseconds). The rate is
// computed only when a baseline exists, time moved forward and the counter did
// not decrease; a decreasing counter (wraparound, device reset) re-establishes
// the baseline without ever producing a negative rate. The reading becomes the
// new baseline unconditionally.
func (s *RateSample) update(now int64, value uint64) {
	if s.lastTimestamp != 0 && now > s.lastTimestamp && value >= s.lastValue {
		s.rate = float64(value-s.lastValue) / float64(now-s.lastTimestamp)
		s.rateValid = true
	} else {
		s.rate = 0
		s.rateValid = false
	}
	s.lastValue = value
	s.lastTimestamp = now
}

// reset clears the rate and baseline back to the unknown state.
func (s *RateSample) reset() {
	*s = RateSample{}
}

// MarshalJSON emits the rate as null while unknown, so consumers never
// mistake the sentinel for a real zero rate.
func (s RateSample) MarshalJSON() ([]byte, error) {
	out := struct {
		Rate          *float64 `json:"rate"`
		LastValue     uint64   `json:"last_value"`
		LastTimestamp int64    `json:"last_timestamp"`
	}{
		LastValue:     s.lastValue,
		LastTimestamp: s.lastTimestamp,
	}
	if s.rateValid {
		r := s.rate
		out.Rate = &r
	}
	return json.Marshal(out)
}

// nowMilli is the default time source for refresh and rate computation.
func nowMilli() int64 {
	return time.Now().UnixMilli()
}
