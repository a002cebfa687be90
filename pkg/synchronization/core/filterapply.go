package core

import (
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core/filter"
)

// FilterStrategy selects how a filter result combines with an item's
// existing active flag.
type FilterStrategy uint8

const (
	// StrategySet overwrites the active flag with the filter result. It is
	// used for a full re-apply.
	StrategySet FilterStrategy = iota
	// StrategyAnd combines the filter result conjunctively with the existing
	// active flag. It is used for additive tightening.
	StrategyAnd
)

// applyResult combines a filter result with a pair's active flag according
// to the strategy.
func applyResult(pair Pair, result bool, strategy FilterStrategy) {
	if strategy == StrategySet {
		pair.SetActive(result)
	} else {
		pair.SetActive(pair.Active() && result)
	}
}

// HardFilterSource is the interface through which filter application
// consults a hard filter; it is satisfied by both filter.HardFilter and
// filter.CachedHardFilter.
type HardFilterSource interface {
	PassFileFilter(path string) bool
	PassFolderFilter(path string) (bool, bool)
}

// ApplyHardFilter applies a path-based filter to the tree's active flags
// using the specified strategy. When a folder is rejected and the filter
// proves that no descendant can match, the folder's entire subtree is
// deactivated without further pattern evaluation; this shortcut is sound for
// the set and and strategies (both yield an inactive item from a false
// result) but would not be for a disjunctive strategy.
func ApplyHardFilter(base *BaseFolderPair, hardFilter HardFilterSource, strategy FilterStrategy) {
	applyHardFilterToContents(base.RootPair(), hardFilter, strategy)
}

// applyHardFilterToContents applies a hard filter to a folder pair's
// children recursively.
func applyHardFilterToContents(folder *FolderPair, hardFilter HardFilterSource, strategy FilterStrategy) {
	for _, file := range folder.Files() {
		applyResult(file, hardFilter.PassFileFilter(file.RelPath()), strategy)
	}
	for _, symlink := range folder.Symlinks() {
		applyResult(symlink, hardFilter.PassFileFilter(symlink.RelPath()), strategy)
	}
	for _, subfolder := range folder.Folders() {
		passed, childMightMatch := hardFilter.PassFolderFilter(subfolder.RelPath())
		if !passed && !childMightMatch {
			deactivateSubtree(subfolder)
			continue
		}
		applyResult(subfolder, passed, strategy)
		applyHardFilterToContents(subfolder, hardFilter, strategy)
	}
}

// deactivateSubtree deactivates a folder pair and all of its descendants.
func deactivateSubtree(folder *FolderPair) {
	folder.SetActive(false)
	folder.Walk(func(pair Pair) {
		pair.SetActive(false)
	})
}

// ApplySoftFilter applies a time/size filter to the tree's active flags
// using the specified strategy. For two-sided items, the item stays active
// if either side matches.
func ApplySoftFilter(base *BaseFolderPair, softFilter *filter.SoftFilter, strategy FilterStrategy) {
	base.Walk(func(pair Pair) {
		switch item := pair.(type) {
		case *FilePair:
			matched := false
			for _, side := range []Side{SideLeft, SideRight} {
				if attributes := item.Attributes(side); attributes != nil {
					if softFilter.MatchesFile(attributes.Size, attributes.ModTime) {
						matched = true
					}
				}
			}
			applyResult(pair, matched, strategy)
		case *SymlinkPair:
			matched := false
			for _, side := range []Side{SideLeft, SideRight} {
				if attributes := item.Attributes(side); attributes != nil {
					if softFilter.MatchesSymlink(attributes.ModTime) {
						matched = true
					}
				}
			}
			applyResult(pair, matched, strategy)
		case *FolderPair:
			applyResult(pair, softFilter.MatchesFolder(), strategy)
		}
	})
}

// ApplyTimeSpanFilter activates exactly the items whose modification time on
// either present side falls within [from, to], expressed in seconds since
// the epoch. Folders are always deactivated (their descendants are still
// evaluated), dropping empty-folder noise from the filtered view.
func ApplyTimeSpanFilter(base *BaseFolderPair, from, to int64) {
	span := &filter.SoftFilter{
		TimeFrom:      from,
		TimeTo:        to,
		FilterFolders: true,
	}
	ApplySoftFilter(base, span, StrategySet)
}
