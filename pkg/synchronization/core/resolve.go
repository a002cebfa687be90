package core

import (
	"github.com/lockstep-sync/lockstep/pkg/synchronization/status"
)

// Conflict annotations produced by two-way resolution.
const (
	// conflictBothChanged annotates items modified on both sides since the
	// last synchronization.
	conflictBothChanged = "both sides have changed since last synchronization"
	// conflictNoChange annotates items that differ although neither side has
	// changed since the last synchronization.
	conflictNoChange = "no change since last synchronization, however the items differ"
	// conflictDBNotInSync annotates items whose last-sync record is itself
	// stale under the current comparison variant.
	conflictDBNotInSync = "database not in sync with current comparison settings"
)

// firstRunLogMessage is logged when two-way resolution runs without a
// last-sync database.
const firstRunLogMessage = "Setting directions for first synchronization: old files will be overwritten with newer files"

// ResolutionMode selects how directions are derived.
type ResolutionMode uint8

const (
	// ModeOneWay derives directions from an explicit per-category policy.
	ModeOneWay ResolutionMode = iota
	// ModeTwoWay derives directions by reconciling both sides against the
	// last-sync database.
	ModeTwoWay
)

// DirectionPolicy maps categories to directions for one-way resolution. A
// DirectionNone entry means "no action" for its category, except for
// Conflict, where it means "propagate as conflict".
type DirectionPolicy struct {
	// ExLeftOnly is the direction for items existing only on the left.
	ExLeftOnly SyncDirection
	// ExRightOnly is the direction for items existing only on the right.
	ExRightOnly SyncDirection
	// LeftNewer is the direction for items newer on the left.
	LeftNewer SyncDirection
	// RightNewer is the direction for items newer on the right.
	RightNewer SyncDirection
	// Different is the direction for items with differing content or
	// metadata.
	Different SyncDirection
	// Conflict is the direction for items categorized as conflicts.
	Conflict SyncDirection
}

// firstRunPolicy is the one-way policy silently applied when two-way
// resolution is requested but no last-sync database is available: the newer
// side overwrites the older side, and anything undecidable is propagated as
// a conflict.
var firstRunPolicy = DirectionPolicy{
	ExLeftOnly:  DirectionRight,
	ExRightOnly: DirectionLeft,
	LeftNewer:   DirectionRight,
	RightNewer:  DirectionLeft,
	Different:   DirectionNone,
	Conflict:    DirectionNone,
}

// ResolutionConfig carries the settings for direction resolution.
type ResolutionConfig struct {
	// Mode selects one-way or two-way resolution.
	Mode ResolutionMode
	// Policy is the direction policy for one-way resolution.
	Policy DirectionPolicy
	// DetectMoves opts one-way resolution into move detection. Two-way
	// resolution always detects moves when a database is available.
	DetectMoves bool
	// Compare is the session's comparison configuration.
	Compare *CompareConfig
	// DB is the last-sync state for the base, or nil if unavailable.
	DB *InSyncFolder
}

// ResolveDirections assigns a synchronization direction (or conflict
// annotation) to every pair in the tree. Equal items always resolve to
// DirectionNone; one-sided items bearing the reserved temporary suffix are
// always scheduled for deletion on their side, regardless of mode and
// policy. Resolution itself cannot fail: database problems degrade to the
// first-run fallback and item-level ambiguity becomes a conflict
// annotation. Running resolution twice with unchanged input produces
// identical directions.
func ResolveDirections(base *BaseFolderPair, config *ResolutionConfig, callback status.Callback) {
	if callback == nil {
		callback = status.NopCallback{}
	}
	r := &resolver{config: config}

	if config.Mode == ModeTwoWay {
		if config.DB == nil {
			// Initial run fallback: no database means there's nothing to
			// reconcile against, so overwrite older content with newer
			// content.
			callback.LogInfo(firstRunLogMessage)
			r.policy = firstRunPolicy
			r.resolveByPolicy(base.RootPair())
		} else {
			r.resolveTwoWayContents(base.RootPair(), config.DB)
		}
	} else {
		r.policy = config.Policy
		r.resolveByPolicy(base.RootPair())
	}

	// Detect moves where the mode and configuration allow it. Move detection
	// requires a database.
	if config.DB != nil && (config.Mode == ModeTwoWay || config.DetectMoves) {
		DetectMoves(base, config.DB, config.Compare)
	}
}

// resolver provides the recursive implementation of direction resolution.
type resolver struct {
	// config is the resolution configuration.
	config *ResolutionConfig
	// policy is the active policy for policy-driven resolution.
	policy DirectionPolicy
}

// sweepTempItem checks whether the pair is a one-sided item bearing the
// reserved temporary suffix and, if so, schedules it for deletion on its
// side. It returns true if the pair was handled.
func sweepTempItem(pair Pair) bool {
	leftPresent := pair.PresentOnSide(SideLeft)
	rightPresent := pair.PresentOnSide(SideRight)
	if leftPresent == rightPresent {
		return false
	}
	if !IsTempFileName(pair.Name()) {
		return false
	}
	if leftPresent {
		pair.SetDirection(DirectionLeft)
	} else {
		pair.SetDirection(DirectionRight)
	}
	return true
}

// resolveByPolicy resolves the contents of a folder pair recursively using
// the active policy.
func (r *resolver) resolveByPolicy(folder *FolderPair) {
	folder.Walk(func(pair Pair) {
		// The temporary-artifact sweep precedes all other logic.
		if sweepTempItem(pair) {
			return
		}

		// Equal items require no action.
		category := pair.Category()
		if category == CategoryEqual {
			pair.SetDirection(DirectionNone)
			return
		}

		// Map the category through the policy.
		switch category {
		case CategoryLeftOnly:
			pair.SetDirection(r.policy.ExLeftOnly)
		case CategoryRightOnly:
			pair.SetDirection(r.policy.ExRightOnly)
		case CategoryLeftNewer:
			pair.SetDirection(r.policy.LeftNewer)
		case CategoryRightNewer:
			pair.SetDirection(r.policy.RightNewer)
		case CategoryDifferentContent, CategoryDifferentMetadata:
			pair.SetDirection(r.policy.Different)
		case CategoryConflict:
			if r.policy.Conflict == DirectionNone {
				pair.SetConflict(pair.CategoryReason())
			} else {
				pair.SetDirection(r.policy.Conflict)
			}
		}
	})
}

// resolveTwoWayContents resolves the children of a folder pair recursively
// against the corresponding last-sync folder record (which may be nil).
func (r *resolver) resolveTwoWayContents(folder *FolderPair, db *InSyncFolder) {
	for _, file := range folder.Files() {
		if sweepTempItem(file) {
			continue
		}
		r.resolveTwoWayFile(file, db)
	}
	for _, symlink := range folder.Symlinks() {
		if sweepTempItem(symlink) {
			continue
		}
		r.resolveTwoWaySymlink(symlink, db)
	}
	for _, subfolder := range folder.Folders() {
		swept := sweepTempItem(subfolder)
		if !swept {
			r.resolveTwoWayFolder(subfolder, db)
		}

		// Recurse using the record found under either side's name. The
		// record remains traversable even when it is a straw-man
		// placeholder.
		childDB := db.folderByName(subfolder.NameOnSide(SideLeft))
		if childDB == nil {
			childDB = db.folderByName(subfolder.NameOnSide(SideRight))
		}
		r.resolveTwoWayContents(subfolder, childDB)
	}
}

// assignTwoWay applies the two-way decision rules given per-side match
// results against the last-sync record. leftMatches and rightMatches
// indicate that the respective side is unchanged relative to the record;
// recordStale indicates that a record exists but is no longer acceptable
// under the current comparison variant.
func assignTwoWay(pair Pair, leftMatches, rightMatches, recordStale bool) {
	// Equal items require no action (and imply nothing about the record).
	if pair.Category() == CategoryEqual {
		pair.SetDirection(DirectionNone)
		return
	}

	if leftMatches && rightMatches {
		// Neither side has changed, yet the sides differ. A stale record
		// explains the contradiction; otherwise the database disagrees with
		// reality in a way we refuse to guess about.
		if recordStale {
			pair.SetConflict(conflictDBNotInSync)
		} else {
			pair.SetConflict(conflictNoChange)
		}
	} else if leftMatches != rightMatches {
		// Exactly one side has changed: propagate the change onto the
		// unchanged side - unless the record itself can't be trusted under
		// the current comparison variant.
		if recordStale {
			pair.SetConflict(conflictDBNotInSync)
			return
		}
		if leftMatches {
			pair.SetDirection(DirectionLeft)
		} else {
			pair.SetDirection(DirectionRight)
		}
	} else {
		// Both sides have changed.
		pair.SetConflict(conflictBothChanged)
	}
}

// resolveTwoWayFile resolves a single file pair against the last-sync
// state.
func (r *resolver) resolveTwoWayFile(file *FilePair, db *InSyncFolder) {
	// Look up the record via both sides' name keys; they differ when the two
	// sides stored different case or normalization.
	record := db.fileByName(file.NameOnSide(SideLeft))
	if record == nil {
		record = db.fileByName(file.NameOnSide(SideRight))
	}

	leftMatches := r.fileMatchesRecord(file.Attributes(SideLeft), record, SideLeft)
	rightMatches := r.fileMatchesRecord(file.Attributes(SideRight), record, SideRight)
	recordStale := record != nil && !r.config.Compare.stillInSync(record)
	assignTwoWay(file, leftMatches, rightMatches, recordStale)
}

// fileMatchesRecord determines whether one side of a file pair is unchanged
// relative to the last-sync record: an absent side matches an absent record,
// and a present side matches a record of equal size whose time agrees within
// the FAT tolerance and shift allowance.
func (r *resolver) fileMatchesRecord(attributes *FileAttributes, record *InSyncFile, side Side) bool {
	if attributes == nil {
		return record == nil
	}
	if record == nil {
		return false
	}
	descr := record.Left
	if side == SideRight {
		descr = record.Right
	}
	return attributes.Size == record.Size &&
		r.config.Compare.timesMatchDB(attributes.ModTime, descr.ModTime)
}

// resolveTwoWaySymlink resolves a single symbolic link pair against the
// last-sync state.
func (r *resolver) resolveTwoWaySymlink(symlink *SymlinkPair, db *InSyncFolder) {
	record := db.symlinkByName(symlink.NameOnSide(SideLeft))
	if record == nil {
		record = db.symlinkByName(symlink.NameOnSide(SideRight))
	}

	leftMatches := r.symlinkMatchesRecord(symlink.Attributes(SideLeft), record, SideLeft)
	rightMatches := r.symlinkMatchesRecord(symlink.Attributes(SideRight), record, SideRight)
	recordStale := record != nil && !r.config.Compare.stillInSyncLink(record)
	assignTwoWay(symlink, leftMatches, rightMatches, recordStale)
}

// symlinkMatchesRecord determines whether one side of a symbolic link pair
// is unchanged relative to the last-sync record.
func (r *resolver) symlinkMatchesRecord(attributes *SymlinkAttributes, record *InSyncSymlink, side Side) bool {
	if attributes == nil {
		return record == nil
	}
	if record == nil {
		return false
	}
	descr := record.Left
	if side == SideRight {
		descr = record.Right
	}
	return r.config.Compare.timesMatchDB(attributes.ModTime, descr.ModTime)
}

// resolveTwoWayFolder resolves a single folder pair against the last-sync
// state. Folders match by presence: a side is unchanged if its presence
// agrees with the record's, where a straw-man record counts as "not really
// there".
func (r *resolver) resolveTwoWayFolder(folder *FolderPair, db *InSyncFolder) {
	record := db.folderByName(folder.NameOnSide(SideLeft))
	if record == nil {
		record = db.folderByName(folder.NameOnSide(SideRight))
	}
	recordedPresent := record != nil && record.Status == FolderStatusNormal

	leftMatches := folder.PresentOnSide(SideLeft) == recordedPresent
	rightMatches := folder.PresentOnSide(SideRight) == recordedPresent
	assignTwoWay(folder, leftMatches, rightMatches, false)
}
