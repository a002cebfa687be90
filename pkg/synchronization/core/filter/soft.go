package filter

// SoftFilter restricts the active set by modification time and file size
// rather than by path. Zero-valued bounds are unbounded.
type SoftFilter struct {
	// TimeFrom is the inclusive lower bound on modification time, in seconds
	// since the epoch. A value of 0 disables the bound.
	TimeFrom int64
	// TimeTo is the inclusive upper bound on modification time, in seconds
	// since the epoch. A value of 0 disables the bound.
	TimeTo int64
	// SizeMin is the inclusive lower bound on file size in bytes.
	SizeMin uint64
	// SizeMax is the inclusive upper bound on file size in bytes. A value of
	// 0 disables the bound.
	SizeMax uint64
	// FilterFolders indicates that the filter matches folders. Since folders
	// carry neither size nor a meaningful modification time, an active
	// folder-matching soft filter deactivates all folders, dropping
	// empty-folder noise from the filtered view.
	FilterFolders bool
}

// Null returns true if the filter admits every item.
func (f *SoftFilter) Null() bool {
	return f == nil || (f.TimeFrom == 0 && f.TimeTo == 0 &&
		f.SizeMin == 0 && f.SizeMax == 0 && !f.FilterFolders)
}

// timeMatches indicates whether a modification time satisfies the time
// bounds.
func (f *SoftFilter) timeMatches(modTime int64) bool {
	if f.TimeFrom != 0 && modTime < f.TimeFrom {
		return false
	}
	if f.TimeTo != 0 && modTime > f.TimeTo {
		return false
	}
	return true
}

// sizeMatches indicates whether a file size satisfies the size bounds.
func (f *SoftFilter) sizeMatches(size uint64) bool {
	if size < f.SizeMin {
		return false
	}
	if f.SizeMax != 0 && size > f.SizeMax {
		return false
	}
	return true
}

// MatchesFile indicates whether a file with the specified size and
// modification time passes the filter.
func (f *SoftFilter) MatchesFile(size uint64, modTime int64) bool {
	if f.Null() {
		return true
	}
	return f.timeMatches(modTime) && f.sizeMatches(size)
}

// MatchesSymlink indicates whether a symbolic link with the specified
// modification time passes the filter. Symbolic links carry no size, so only
// the time bounds apply.
func (f *SoftFilter) MatchesSymlink(modTime int64) bool {
	if f.Null() {
		return true
	}
	return f.timeMatches(modTime)
}

// MatchesFolder indicates whether folders pass the filter.
func (f *SoftFilter) MatchesFolder() bool {
	if f.Null() {
		return true
	}
	return !f.FilterFolders
}
