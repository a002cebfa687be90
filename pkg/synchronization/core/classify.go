package core

import (
	"fmt"
)

// Classify assigns a category to every pair in the tree based on the two
// sides' attributes and the comparison variant. Classification is a pure
// function of the attributes except under the content variant, where the
// configured content comparer is consulted for files of equal size.
// Directions are not touched.
func Classify(base *BaseFolderPair, config *CompareConfig) {
	classifyFolderContents(base.RootPair(), config)
}

// classifyFolderContents classifies the children of a folder pair
// recursively.
func classifyFolderContents(folder *FolderPair, config *CompareConfig) {
	for _, file := range folder.Files() {
		classifyFile(file, config)
	}
	for _, symlink := range folder.Symlinks() {
		classifySymlink(symlink, config)
	}
	for _, subfolder := range folder.Folders() {
		classifyFolder(subfolder, config)
		classifyFolderContents(subfolder, config)
	}
}

// classifyFile assigns a category to a file pair.
func classifyFile(file *FilePair, config *CompareConfig) {
	left := file.Attributes(SideLeft)
	right := file.Attributes(SideRight)

	// Handle one-sided pairs.
	if left == nil {
		file.SetCategory(CategoryRightOnly, "")
		return
	} else if right == nil {
		file.SetCategory(CategoryLeftOnly, "")
		return
	}

	// Both sides are present; dispatch on the comparison variant.
	switch config.Variant {
	case VariantTimeSize:
		if left.Size == right.Size {
			if config.timesMatchSides(left.ModTime, right.ModTime) {
				if left.IsFollowedSymlink != right.IsFollowedSymlink {
					file.SetCategory(CategoryDifferentMetadata, "")
				} else {
					file.SetCategory(CategoryEqual, "")
				}
			} else if left.ModTime > right.ModTime {
				file.SetCategory(CategoryLeftNewer, "")
			} else {
				file.SetCategory(CategoryRightNewer, "")
			}
		} else {
			if config.timesMatchSides(left.ModTime, right.ModTime) {
				file.SetCategory(CategoryConflict, "files have the same modification time but a different size")
			} else {
				// One side is newer, but the size difference means this
				// can't be treated as a simple newer-file relationship.
				file.SetCategory(CategoryDifferentContent, "")
			}
		}
	case VariantContent:
		if left.Size != right.Size {
			file.SetCategory(CategoryDifferentContent, "")
			return
		}
		if config.ContentCompare == nil {
			file.SetCategory(CategoryConflict, "content comparison unavailable")
			return
		}
		equal, err := config.ContentCompare(file.PathOnSide(SideLeft), file.PathOnSide(SideRight))
		if err != nil {
			file.SetCategory(CategoryConflict, fmt.Sprintf("content comparison failed: %v", err))
		} else if equal {
			file.SetCategory(CategoryEqual, "")
		} else {
			file.SetCategory(CategoryDifferentContent, "")
		}
	case VariantSize:
		if left.Size == right.Size {
			file.SetCategory(CategoryEqual, "")
		} else {
			file.SetCategory(CategoryDifferentContent, "")
		}
	}
}

// classifySymlink assigns a category to a symbolic link pair.
func classifySymlink(symlink *SymlinkPair, config *CompareConfig) {
	left := symlink.Attributes(SideLeft)
	right := symlink.Attributes(SideRight)

	// Handle one-sided pairs.
	if left == nil {
		symlink.SetCategory(CategoryRightOnly, "")
		return
	} else if right == nil {
		symlink.SetCategory(CategoryLeftOnly, "")
		return
	}

	// Both sides are present; dispatch on the comparison variant. Under the
	// time-size variant, links compare by modification time alone; under the
	// content and size variants, they compare by target string.
	switch config.Variant {
	case VariantTimeSize:
		if config.timesMatchSides(left.ModTime, right.ModTime) {
			symlink.SetCategory(CategoryEqual, "")
		} else if left.ModTime > right.ModTime {
			symlink.SetCategory(CategoryLeftNewer, "")
		} else {
			symlink.SetCategory(CategoryRightNewer, "")
		}
	case VariantContent, VariantSize:
		if left.Target == right.Target {
			symlink.SetCategory(CategoryEqual, "")
		} else {
			symlink.SetCategory(CategoryDifferentContent, "")
		}
	}
}

// classifyFolder assigns a category to a folder pair. Folders compare by
// metadata only.
func classifyFolder(folder *FolderPair, config *CompareConfig) {
	left := folder.Attributes(SideLeft)
	right := folder.Attributes(SideRight)

	// Handle one-sided pairs.
	if left == nil {
		folder.SetCategory(CategoryRightOnly, "")
		return
	} else if right == nil {
		folder.SetCategory(CategoryLeftOnly, "")
		return
	}

	// Both sides are present.
	if left.IsFollowedSymlink != right.IsFollowedSymlink {
		folder.SetCategory(CategoryDifferentMetadata, "")
	} else {
		folder.SetCategory(CategoryEqual, "")
	}
}
