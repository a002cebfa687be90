//go:build !windows

package filesystem

import (
	"os"
	"syscall"
)

// filePrint extracts a device-persistent file identifier from the item's
// metadata. On POSIX systems this is the inode number.
func filePrint(info os.FileInfo) uint64 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(stat.Ino)
	}
	return 0
}

// copyOwnership copies ownership from source to target without following a
// terminal symbolic link on the target.
func copyOwnership(source, target string) error {
	info, err := os.Lstat(source)
	if err != nil {
		return err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	return os.Lchown(target, int(stat.Uid), int(stat.Gid))
}
