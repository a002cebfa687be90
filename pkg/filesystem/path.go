package filesystem

import (
	"strings"
)

// JoinPath is a fast alternative to path.Join designed specifically for
// device-relative paths. It avoids the unnecessary path cleaning overhead
// incurred by path.Join. The provided leaf name must be non-empty, otherwise
// this function will panic.
func JoinPath(base, leaf string) string {
	// Disallow empty leaf names.
	if leaf == "" {
		panic("empty leaf name")
	}

	// When joining a path to the device root, we don't want to concatenate.
	if base == "" {
		return leaf
	}

	// Concatenate the paths.
	return base + "/" + leaf
}

// DirPath is a fast alternative to path.Dir designed specifically for
// device-relative paths. The provided path must be non-empty, otherwise this
// function will panic.
func DirPath(path string) string {
	// Disallow device root paths.
	if path == "" {
		panic("empty path")
	}

	// Identify the index of the last slash in the path.
	lastSlashIndex := strings.LastIndexByte(path, '/')

	// If there is no slash, then the parent is the device root.
	if lastSlashIndex == -1 {
		return ""
	}

	// Verify that the parent path isn't empty. There aren't any scenarios
	// where this is allowed.
	if lastSlashIndex == 0 {
		panic("empty parent path")
	}

	// Trim off the slash and everything that follows.
	return path[:lastSlashIndex]
}

// BaseName is a fast alternative to path.Base designed specifically for
// device-relative paths. If the provided path is empty (i.e. the root path),
// this function returns an empty string. If the path ends with a slash, this
// function panics, because that represents an invalid device-relative path.
func BaseName(path string) string {
	// If this is the root path, then just return an empty string.
	if path == "" {
		return ""
	}

	// Identify the index of the last slash in the path.
	lastSlashIndex := strings.LastIndexByte(path, '/')

	// If there is no slash, then the path is an item directly under the
	// device root.
	if lastSlashIndex == -1 {
		return path
	}

	// Verify that the base name isn't empty (i.e. that the string doesn't end
	// with a slash).
	if lastSlashIndex == len(path)-1 {
		panic("empty base name")
	}

	// Extract the base name.
	return path[lastSlashIndex+1:]
}

// SplitPath decomposes a device-relative path into its name components. The
// root path decomposes to a nil slice.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// PathAncestorOf returns true if ancestor is the root path or a strict prefix
// of path along component boundaries, or if the two paths are equal.
func PathAncestorOf(ancestor, path string) bool {
	if ancestor == "" {
		return true
	}
	if ancestor == path {
		return true
	}
	return strings.HasPrefix(path, ancestor+"/")
}

// splitFront splits a non-empty device-relative path into its front
// component and the remainder (empty for single-component paths). Splitting
// on substrings keeps path comparison allocation-free.
func splitFront(path string) (string, string) {
	if index := strings.IndexByte(path, '/'); index != -1 {
		return path[:index], path[index+1:]
	}
	return path, ""
}

// PathLess orders device-relative paths by depth-first traversal position:
// paths are compared component by component, and a folder sorts before its
// own contents. It is the ordering used wherever items from one tree are
// processed as a flat list.
func PathLess(first, second string) bool {
	for first != "" && second != "" {
		firstComponent, firstRest := splitFront(first)
		secondComponent, secondRest := splitFront(second)
		if firstComponent != secondComponent {
			return firstComponent < secondComponent
		}
		first, second = firstRest, secondRest
	}
	return first == "" && second != ""
}

// AbstractPath pairs a device with a device-relative path, fully identifying
// an item across the set of devices known to a session.
type AbstractPath struct {
	// Device is the device on which the path resides.
	Device Device
	// Path is the device-relative path.
	Path string
}

// Join returns an AbstractPath for the named child of the path.
func (p AbstractPath) Join(leaf string) AbstractPath {
	return AbstractPath{p.Device, JoinPath(p.Path, leaf)}
}

// String provides a human-readable representation of the path for status and
// log messages.
func (p AbstractPath) String() string {
	if p.Device == nil {
		return p.Path
	}
	return p.Device.DisplayPath(p.Path)
}
