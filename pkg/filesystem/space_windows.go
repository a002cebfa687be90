//go:build windows

package filesystem

import (
	"golang.org/x/sys/windows"
)

// freeDiskSpace returns the free space in bytes available to unprivileged
// callers on the volume containing the path.
func freeDiskSpace(path string) (uint64, error) {
	var available, total, free uint64
	pathPointer, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, NewFileError("unable to encode path for free disk space query", err)
	}
	if err := windows.GetDiskFreeSpaceEx(pathPointer, &available, &total, &free); err != nil {
		return 0, NewFileError("unable to query free disk space", err)
	}
	return available, nil
}
