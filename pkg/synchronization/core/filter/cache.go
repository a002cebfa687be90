package filter

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// cacheKey is the key type for cached hard filter decisions.
type cacheKey struct {
	// path is the relative path that was tested.
	path string
	// folder is whether or not the path was tested as a folder.
	folder bool
}

// cacheEntry is the value type for cached hard filter decisions.
type cacheEntry struct {
	// passed is the filter decision.
	passed bool
	// childMightMatch is the pruning hint for folder decisions.
	childMightMatch bool
}

// CachedHardFilter wraps a HardFilter with a bounded LRU cache of match
// results. Pattern matching is pure, so cached results never go stale; the
// cache just avoids recomputing decisions for paths that traversal-heavy
// operations test repeatedly. It is safe for concurrent usage.
type CachedHardFilter struct {
	// filter is the underlying hard filter.
	filter *HardFilter
	// lock serializes cache access.
	lock sync.Mutex
	// cache is the bounded result cache.
	cache *lru.Cache
}

// NewCachedHardFilter creates a caching wrapper around the specified hard
// filter, retaining up to capacity decisions.
func NewCachedHardFilter(filter *HardFilter, capacity int) *CachedHardFilter {
	return &CachedHardFilter{
		filter: filter,
		cache:  lru.New(capacity),
	}
}

// lookup consults the cache, computing and recording the decision on a miss.
func (c *CachedHardFilter) lookup(path string, folder bool) cacheEntry {
	key := cacheKey{path: path, folder: folder}

	c.lock.Lock()
	defer c.lock.Unlock()
	if cached, ok := c.cache.Get(key); ok {
		return cached.(cacheEntry)
	}

	var entry cacheEntry
	if folder {
		entry.passed, entry.childMightMatch = c.filter.PassFolderFilter(path)
	} else {
		entry.passed = c.filter.PassFileFilter(path)
	}
	c.cache.Add(key, entry)
	return entry
}

// PassFileFilter indicates whether a file or symbolic link at the specified
// relative path passes the filter.
func (c *CachedHardFilter) PassFileFilter(path string) bool {
	return c.lookup(path, false).passed
}

// PassFolderFilter indicates whether a folder at the specified relative path
// passes the filter, along with the descendant-match pruning hint.
func (c *CachedHardFilter) PassFolderFilter(path string) (bool, bool) {
	entry := c.lookup(path, true)
	return entry.passed, entry.childMightMatch
}
