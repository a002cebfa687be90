package core

import (
	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core/filter"
)

// PathDependency describes a base folder nested inside another base folder
// on the same device, in a way that the ancestor's filter doesn't provably
// exclude. Such configurations read and write the same storage area and
// deserve a warning.
type PathDependency struct {
	// Ancestor is the enclosing base folder.
	Ancestor filesystem.AbstractPath
	// Descendant is the enclosed base folder.
	Descendant filesystem.AbstractPath
	// RelPath is the descendant's path relative to the ancestor.
	RelPath string
}

// CheckPathDependency determines whether one of two base folders is an
// ancestor of the other on the same device. If so, and the ancestor's hard
// filter would not exclude the descendant's relative path (or might not,
// when descendants could still match), a dependency record is returned;
// otherwise nil.
func CheckPathDependency(first, second filesystem.AbstractPath, firstFilter, secondFilter *filter.HardFilter) *PathDependency {
	if !filesystem.Equivalent(first.Device, second.Device) {
		return nil
	}

	if filesystem.PathAncestorOf(first.Path, second.Path) {
		return dependencyIfNotExcluded(first, second, firstFilter)
	} else if filesystem.PathAncestorOf(second.Path, first.Path) {
		return dependencyIfNotExcluded(second, first, secondFilter)
	}
	return nil
}

// dependencyIfNotExcluded builds the dependency record unless the ancestor's
// filter provably excludes the descendant's subtree.
func dependencyIfNotExcluded(ancestor, descendant filesystem.AbstractPath, ancestorFilter *filter.HardFilter) *PathDependency {
	// Compute the descendant's path relative to the ancestor.
	relPath := descendant.Path
	if ancestor.Path != "" {
		if relPath == ancestor.Path {
			relPath = ""
		} else {
			relPath = relPath[len(ancestor.Path)+1:]
		}
	}

	// Identical roots always conflict.
	if relPath == "" {
		return &PathDependency{Ancestor: ancestor, Descendant: descendant}
	}

	// The dependency is real unless the filter rejects the descendant folder
	// with no chance of any of its contents matching.
	if ancestorFilter != nil {
		passed, childMightMatch := ancestorFilter.PassFolderFilter(relPath)
		if !passed && !childMightMatch {
			return nil
		}
	}

	return &PathDependency{Ancestor: ancestor, Descendant: descendant, RelPath: relPath}
}
