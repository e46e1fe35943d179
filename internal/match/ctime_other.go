//go:build !linux

package match

import (
	"os"
	"time"
)

// creationTime falls back to the modification time on platforms without a
// portable inode change time.
func creationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
