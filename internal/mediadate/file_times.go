//go:build !darwin

package mediadate

import (
	"os"
	"time"
)

// fileTime returns the best available filesystem timestamp for path. Linux
// does not expose birth time through os.FileInfo, so the modification time
// stands in for it.
func fileTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
