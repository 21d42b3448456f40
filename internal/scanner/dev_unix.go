//go:build darwin || linux

package scanner

import "golang.org/x/sys/unix"

// deviceOf returns the device ID of path without following symlinks. The
// second return is false when the ID could not be read, in which case callers
// skip the cross-device check for that entry.
func deviceOf(path string) (uint64, bool) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return 0, false
	}
	//nolint:unconvert // Dev is int32 on darwin, uint64 on linux
	return uint64(st.Dev), true
}
