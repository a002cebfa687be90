// Package filter provides the path-based (hard) and time/size-based (soft)
// filters used to control which items participate in synchronization.
// Filters are pure predicates over relative paths and item metadata; applying
// them to a pair tree is the concern of the core package.
package filter

import (
	"errors"
	"fmt"
	pathpkg "path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pattern represents a single parsed filter pattern.
type pattern struct {
	// directoryOnly indicates whether or not the pattern should only match
	// folders.
	directoryOnly bool
	// matchLeaf indicates whether or not the pattern should be matched
	// against a path's base name in addition to the whole path.
	matchLeaf bool
	// pattern is the pattern to use in matching.
	pattern string
}

// newPattern validates and parses a user-provided filter pattern.
func newPattern(raw string) (*pattern, error) {
	// Check for invalid patterns, or at least those that would leave us with
	// an empty string after parsing.
	if raw == "" {
		return nil, errors.New("empty pattern")
	} else if raw == "/" || raw == "//" {
		return nil, errors.New("root pattern")
	}

	// Check if this is an absolute pattern. If so, remove the forward slash
	// prefix, since it won't enter into pattern matching.
	absolute := false
	if raw[0] == '/' {
		absolute = true
		raw = raw[1:]
	}

	// Check if this is a directory-only pattern. If so, remove the trailing
	// slash, since it won't enter into pattern matching.
	directoryOnly := false
	if len(raw) > 0 && raw[len(raw)-1] == '/' {
		directoryOnly = true
		raw = raw[:len(raw)-1]
	}
	if raw == "" {
		return nil, errors.New("empty pattern")
	}

	// Determine whether or not the pattern contains a slash.
	containsSlash := strings.IndexByte(raw, '/') >= 0

	// Attempt to do a match with the pattern to ensure validity. We have to
	// match against a non-empty path, otherwise bad pattern errors won't be
	// detected.
	if _, err := doublestar.Match(raw, "a"); err != nil {
		return nil, fmt.Errorf("unable to validate pattern: %w", err)
	}

	// Success.
	return &pattern{
		directoryOnly: directoryOnly,
		matchLeaf:     !absolute && !containsSlash,
		pattern:       raw,
	}, nil
}

// matches indicates whether or not the pattern matches the specified relative
// path and item kind.
func (p *pattern) matches(path string, folder bool) bool {
	// If this pattern only applies to folders and this is not a folder, then
	// this is not a match.
	if p.directoryOnly && !folder {
		return false
	}

	// Check if there is a direct match. Since we've already validated the
	// pattern in the constructor, we know Match can't fail.
	if match, _ := doublestar.Match(p.pattern, path); match {
		return true
	}

	// If it makes sense, attempt to match on the last component of the path,
	// assuming the path is non-empty (non-root).
	if p.matchLeaf && path != "" {
		if match, _ := doublestar.Match(p.pattern, pathpkg.Base(path)); match {
			return true
		}
	}

	// No match.
	return false
}

// couldMatchBelow indicates whether or not the pattern could match some path
// strictly below the specified folder path. It may return false positives but
// never false negatives, keeping folder pruning sound.
func (p *pattern) couldMatchBelow(folderPath string) bool {
	// Leaf patterns and recursive patterns can match at any depth.
	if p.matchLeaf || strings.Contains(p.pattern, "**") {
		return true
	}

	// Compare pattern segments against folder path segments: the pattern can
	// only match below the folder if it has more segments than the folder
	// path and its leading segments match the folder path's segments.
	patternSegments := strings.Split(p.pattern, "/")
	var folderSegments []string
	if folderPath != "" {
		folderSegments = strings.Split(folderPath, "/")
	}
	if len(patternSegments) <= len(folderSegments) {
		return false
	}
	for i, segment := range folderSegments {
		if match, _ := doublestar.Match(patternSegments[i], segment); !match {
			return false
		}
	}
	return true
}

// HardFilter is the path-based filter: an item passes if it matches the
// include pattern list and no exclude pattern. An empty include list admits
// everything.
type HardFilter struct {
	// includes are the include patterns.
	includes []*pattern
	// excludes are the exclude patterns.
	excludes []*pattern
}

// NewHardFilter creates a hard filter from user-provided include and exclude
// pattern lists.
func NewHardFilter(includes, excludes []string) (*HardFilter, error) {
	filter := &HardFilter{}
	for _, raw := range includes {
		parsed, err := newPattern(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to parse include pattern %q: %w", raw, err)
		}
		filter.includes = append(filter.includes, parsed)
	}
	for _, raw := range excludes {
		parsed, err := newPattern(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to parse exclude pattern %q: %w", raw, err)
		}
		filter.excludes = append(filter.excludes, parsed)
	}
	return filter, nil
}

// Null returns true if the filter admits every path.
func (f *HardFilter) Null() bool {
	return f == nil || (len(f.includes) == 0 && len(f.excludes) == 0)
}

// included indicates whether the path matches the include set.
func (f *HardFilter) included(path string, folder bool) bool {
	if len(f.includes) == 0 {
		return true
	}
	for _, p := range f.includes {
		if p.matches(path, folder) {
			return true
		}
	}
	return false
}

// excluded indicates whether the path matches the exclude set.
func (f *HardFilter) excluded(path string, folder bool) bool {
	for _, p := range f.excludes {
		if p.matches(path, folder) {
			return true
		}
	}
	return false
}

// PassFileFilter indicates whether a file or symbolic link at the specified
// relative path passes the filter.
func (f *HardFilter) PassFileFilter(path string) bool {
	if f.Null() {
		return true
	}
	return f.included(path, false) && !f.excluded(path, false)
}

// PassFolderFilter indicates whether a folder at the specified relative path
// passes the filter. It additionally returns a hint indicating whether some
// descendant of the folder might still pass, allowing traversal to prune
// rejected folders whose subtrees are provably rejected as well. The hint
// errs on the side of true.
func (f *HardFilter) PassFolderFilter(path string) (bool, bool) {
	if f.Null() {
		return true, true
	}

	// An excluded folder excludes its entire subtree: traversal stops at the
	// folder, so no descendant can re-enter the view.
	if f.excluded(path, true) {
		return false, false
	}

	// The folder itself passes only if included; descendants might match the
	// include set even when the folder doesn't.
	if f.included(path, true) {
		return true, true
	}
	for _, p := range f.includes {
		if p.couldMatchBelow(path) {
			return false, true
		}
	}
	return false, false
}
