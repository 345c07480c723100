package fsstat

import (
	"diskwatch/internal/errors"
)

// Error kinds returned by Check.Refresh. All of them are recoverable: a
// failed cycle degrades the check to its reset state and the next cycle
// simply tries again.
var (
	// ErrPathUnresolvable marks stat or symlink dereference failures.
	ErrPathUnresolvable = errors.NewStd("path cannot be resolved")
	// ErrNotMountOrDevice marks paths that exist but are neither a
	// directory nor a block/character device.
	ErrNotMountOrDevice = errors.NewStd("not mountpoint nor device")
	// ErrDeviceLookup marks mount table queries that failed or matched
	// nothing.
	ErrDeviceLookup = errors.NewStd("device lookup failed")
	// ErrProbeFailed marks OS usage or activity queries that failed.
	ErrProbeFailed = errors.NewStd("filesystem probe failed")
	// ErrDeviceNameParse marks device paths the trailing-digit truncation
	// cannot handle.
	ErrDeviceNameParse = errors.NewStd("no digit in device name")
)

// ActivitySupported reports whether the compiled platform variant has a
// per-device counter source. Where it does not, usage probing still works
// and activity statistics stay in the unknown state instead of fabricating
// zero rates.
func ActivitySupported() bool {
	return activitySupported
}
