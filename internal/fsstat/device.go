package fsstat

import (
	"path/filepath"

	"diskwatch/internal/errors"
)

// baseDeviceName derives the base disk name from a device path where the OS
// reports a partition path instead of a disk name: take the final path
// component and truncate it right after the last digit, so /dev/sd0a becomes
// sd0 while wd1 and cd0 stay as they are. A name without any digit cannot be
// resolved and fails rather than guessing.
func baseDeviceName(path string) (string, error) {
	base := filepath.Base(path)
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] >= '0' && base[i] <= '9' {
			return base[:i+1], nil
		}
	}
	return "", errors.Newf("device %q: %w", path, ErrDeviceNameParse).
		Component("fsstat").
		Category(errors.CategoryDeviceParse).
		Build()
}
