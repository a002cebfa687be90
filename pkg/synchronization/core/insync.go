package core

import (
	"fmt"

	"github.com/lockstep-sync/lockstep/pkg/synchronization/status"
)

// DescrFile describes one side of a file as recorded at the end of the last
// synchronization run.
type DescrFile struct {
	// ModTime is the modification time in seconds since the epoch (UTC).
	ModTime int64
	// FilePrint is the device-persistent file identifier, or 0 if unknown.
	FilePrint uint64
}

// DescrLink describes one side of a symbolic link as recorded at the end of
// the last synchronization run.
type DescrLink struct {
	// ModTime is the modification time in seconds since the epoch (UTC).
	ModTime int64
}

// InSyncFile records a file that was in sync at the end of the last run.
type InSyncFile struct {
	// Left and Right are the per-side descriptions.
	Left, Right DescrFile
	// Size is the file size in bytes (identical on both sides by
	// definition of being in sync).
	Size uint64
	// Variant is the comparison variant under which the file was determined
	// to be in sync.
	Variant ComparisonVariant
}

// InSyncSymlink records a symbolic link that was in sync at the end of the
// last run.
type InSyncSymlink struct {
	// Left and Right are the per-side descriptions.
	Left, Right DescrLink
	// Variant is the comparison variant under which the link was determined
	// to be in sync.
	Variant ComparisonVariant
}

// InSyncFolderStatus describes how a folder record should be interpreted.
type InSyncFolderStatus uint8

const (
	// FolderStatusNormal indicates that the folder was present and in sync.
	FolderStatusNormal InSyncFolderStatus = iota
	// FolderStatusStrawMan indicates that the folder record exists only as a
	// placeholder providing context for its descendants; the folder itself
	// was not actually present. Straw-man folders fail presence matching but
	// their children remain traversable.
	FolderStatusStrawMan
)

// InSyncFolder records a folder that was in sync at the end of the last run,
// along with its recorded children. Child keys are case-sensitive names;
// when the two sides stored different case or normalization for an item, it
// is keyed under both names.
type InSyncFolder struct {
	// Status indicates whether the folder was actually present.
	Status InSyncFolderStatus
	// Files are the recorded child files.
	Files map[string]*InSyncFile
	// Symlinks are the recorded child symbolic links.
	Symlinks map[string]*InSyncSymlink
	// Folders are the recorded child folders.
	Folders map[string]*InSyncFolder
}

// NewInSyncFolder creates an empty folder record with the specified status.
func NewInSyncFolder(status InSyncFolderStatus) *InSyncFolder {
	return &InSyncFolder{
		Status:   status,
		Files:    make(map[string]*InSyncFile),
		Symlinks: make(map[string]*InSyncSymlink),
		Folders:  make(map[string]*InSyncFolder),
	}
}

// fileByName looks up a child file record by case-sensitive name, or returns
// nil.
func (f *InSyncFolder) fileByName(name string) *InSyncFile {
	if f == nil || name == "" {
		return nil
	}
	return f.Files[name]
}

// symlinkByName looks up a child symbolic link record by case-sensitive
// name, or returns nil.
func (f *InSyncFolder) symlinkByName(name string) *InSyncSymlink {
	if f == nil || name == "" {
		return nil
	}
	return f.Symlinks[name]
}

// folderByName looks up a child folder record by case-sensitive name, or
// returns nil.
func (f *InSyncFolder) folderByName(name string) *InSyncFolder {
	if f == nil || name == "" {
		return nil
	}
	return f.Folders[name]
}

// DBLoader loads per-base last-sync state on demand. Loading may block and
// may fail; on failure the affected base falls back to having no database
// available.
type DBLoader interface {
	// LoadInSyncState loads the last-sync root for a base pair, returning
	// nil if no state has been recorded.
	LoadInSyncState(base *BaseFolderPair) (*InSyncFolder, error)
}

// LoadInSyncState requests a base pair's last-sync state from the loader,
// degrading gracefully: a nil loader or a load failure yields no database,
// with the failure surfaced as an informational message so that the host can
// explain the resulting first-run behavior.
func LoadInSyncState(loader DBLoader, base *BaseFolderPair, callback status.Callback) *InSyncFolder {
	if loader == nil {
		return nil
	}
	state, err := loader.LoadInSyncState(base)
	if err != nil {
		if callback != nil {
			callback.LogInfo(fmt.Sprintf("Unable to load synchronization database: %v", err))
		}
		return nil
	}
	return state
}

// stillInSync determines whether a last-sync file record is itself still
// acceptable as "in sync" under the current comparison variant. The
// acceptance matrix is asymmetric by design: a content-verified record
// satisfies the time-size variant, and the size variant accepts any record
// (size equality is a weak invariant preserved by construction), but the
// content variant accepts only content-verified records.
func (c *CompareConfig) stillInSync(record *InSyncFile) bool {
	switch c.Variant {
	case VariantTimeSize:
		if record.Variant == VariantContent {
			return true
		}
		return c.timesMatchDB(record.Left.ModTime, record.Right.ModTime)
	case VariantContent:
		return record.Variant == VariantContent
	case VariantSize:
		return true
	default:
		return false
	}
}

// stillInSyncLink is the symbolic link analogue of stillInSync.
func (c *CompareConfig) stillInSyncLink(record *InSyncSymlink) bool {
	switch c.Variant {
	case VariantTimeSize:
		if record.Variant == VariantContent {
			return true
		}
		return c.timesMatchDB(record.Left.ModTime, record.Right.ModTime)
	case VariantContent:
		return record.Variant == VariantContent
	case VariantSize:
		return true
	default:
		return false
	}
}
