//go:build darwin

package mediadate

import (
	"os"
	"syscall"
	"time"
)

// fileTime returns the filesystem birth time for path, falling back to the
// modification time if the stat shape is unexpected.
func fileTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), nil
	}
	return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec), nil
}
