//go:build linux

package filesystem

import (
	"golang.org/x/sys/unix"
)

// freeDiskSpace returns the free space in bytes available to unprivileged
// callers on the volume containing the path.
func freeDiskSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, NewFileError("unable to query free disk space", err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
