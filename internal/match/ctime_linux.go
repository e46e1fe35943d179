//go:build linux

package match

import (
	"time"

	"golang.org/x/sys/unix"
)

// creationTime approximates file creation time with the inode change time,
// which matches how the positional fallback orders freshly recorded files.
func creationTime(path string) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, err
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec), nil
}
