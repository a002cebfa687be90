// Package scan provides the reference scanner that populates a pair tree
// from two base folders through the device abstraction. It carries no
// decision logic: items are recorded with both sides' attributes and the
// engine's category, direction, and filter machinery operates on the result.
package scan

import (
	"sync"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/status"
)

// Config carries the settings for a scan.
type Config struct {
	// Filter, if non-nil, prunes traversal of folders whose subtrees are
	// provably rejected and skips rejected files. Filter application to the
	// resulting tree's active flags remains the caller's concern.
	Filter core.HardFilterSource
	// ParallelOps bounds the per-device folder fan-out.
	ParallelOps int
}

// scannedFolder accumulates one side's view of a folder.
type scannedFolder struct {
	files    map[string]*filesystem.Metadata
	symlinks map[string]*filesystem.Metadata
	folders  map[string]*scannedFolder
}

// newScannedFolder creates an empty folder view.
func newScannedFolder() *scannedFolder {
	return &scannedFolder{
		files:    make(map[string]*filesystem.Metadata),
		symlinks: make(map[string]*filesystem.Metadata),
		folders:  make(map[string]*scannedFolder),
	}
}

// ScanBasePair scans both base folders and merges the results into a pair
// tree. Siblings are matched case-sensitively by name, with Unicode
// normalization applied only for equality. Storage errors are routed through
// the callback's error decisions; scanning itself runs with up to
// Config.ParallelOps concurrent folder enumerations per side.
func ScanBasePair(left, right filesystem.AbstractPath, config *Config, callback status.Callback) (*core.BaseFolderPair, error) {
	if callback == nil {
		callback = status.NopCallback{}
	}
	if config == nil {
		config = &Config{}
	}

	callback.InitNewPhase(-1, -1, status.PhaseScanning)

	// Scan the two sides.
	callback.UpdateStatus("Scanning " + left.String())
	leftView, err := scanSide(left, config, callback)
	if err != nil {
		return nil, err
	}
	if err := callback.RequestUIUpdate(true); err != nil {
		return nil, err
	}
	callback.UpdateStatus("Scanning " + right.String())
	rightView, err := scanSide(right, config, callback)
	if err != nil {
		return nil, err
	}

	// Merge the views into a pair tree.
	base := core.NewBaseFolderPair(left, right)
	mergeFolderViews(base.RootPair(), leftView, rightView)
	return base, nil
}

// scanSide scans one base folder into a folder view.
func scanSide(root filesystem.AbstractPath, config *Config, callback status.Callback) (*scannedFolder, error) {
	view := newScannedFolder()

	// Status updates arrive from concurrent enumeration workers, while the
	// callback contract is single-threaded; serialize delivery.
	var callbackLock sync.Mutex
	reportError := func(path string, err error) filesystem.ErrorDecision {
		callbackLock.Lock()
		defer callbackLock.Unlock()
		switch callback.ReportError(err.Error()) {
		case status.ResponseRetry:
			return filesystem.ErrorDecisionRetry
		case status.ResponseIgnore:
			return filesystem.ErrorDecisionIgnore
		default:
			return filesystem.ErrorDecisionAbort
		}
	}

	// callbacksFor builds the traversal callbacks filling one folder view.
	// The relative path of the folder (with respect to the base root) is
	// carried explicitly since device paths include the root prefix.
	var callbacksFor func(folder *scannedFolder, relPath string) *filesystem.TraversalCallbacks
	callbacksFor = func(folder *scannedFolder, relPath string) *filesystem.TraversalCallbacks {
		return &filesystem.TraversalCallbacks{
			OnFile: func(path string, metadata *filesystem.Metadata) {
				childRelPath := joinRelPath(relPath, metadata.Name)
				if config.Filter != nil && !config.Filter.PassFileFilter(childRelPath) {
					return
				}
				folder.files[metadata.Name] = metadata
			},
			OnSymlink: func(path string, metadata *filesystem.Metadata) {
				childRelPath := joinRelPath(relPath, metadata.Name)
				if config.Filter != nil && !config.Filter.PassFileFilter(childRelPath) {
					return
				}
				folder.symlinks[metadata.Name] = metadata
			},
			OnFolder: func(path string, metadata *filesystem.Metadata) *filesystem.TraversalCallbacks {
				childRelPath := joinRelPath(relPath, metadata.Name)
				if config.Filter != nil {
					passed, childMightMatch := config.Filter.PassFolderFilter(childRelPath)
					if !passed && !childMightMatch {
						return nil
					}
				}
				child := newScannedFolder()
				folder.folders[metadata.Name] = child
				return callbacksFor(child, childRelPath)
			},
			OnItemError:   reportError,
			OnFolderError: reportError,
		}
	}

	// Traverse.
	workload := []filesystem.TraversalTask{{
		Path:      root.Path,
		Callbacks: callbacksFor(view, ""),
	}}
	if err := root.Device.Traverse(workload, config.ParallelOps); err != nil {
		return nil, err
	}
	return view, nil
}

// joinRelPath joins a base-relative path with a child name.
func joinRelPath(relPath, name string) string {
	if relPath == "" {
		return name
	}
	return filesystem.JoinPath(relPath, name)
}

// mergeFolderViews merges the two sides' views of one folder into the pair
// tree.
func mergeFolderViews(folder *core.FolderPair, left, right *scannedFolder) {
	if left == nil {
		left = newScannedFolder()
	}
	if right == nil {
		right = newScannedFolder()
	}

	// Merge files.
	rightFilesUsed := make(map[string]bool)
	for name, metadata := range left.files {
		rightName, rightMetadata := matchName(name, right.files)
		if rightName != "" {
			rightFilesUsed[rightName] = true
		}
		folder.AddFile(fileAttributes(metadata), fileAttributes(rightMetadata))
	}
	for name, metadata := range right.files {
		if !rightFilesUsed[name] {
			folder.AddFile(nil, fileAttributes(metadata))
		}
	}

	// Merge symbolic links.
	rightSymlinksUsed := make(map[string]bool)
	for name, metadata := range left.symlinks {
		rightName, rightMetadata := matchName(name, right.symlinks)
		if rightName != "" {
			rightSymlinksUsed[rightName] = true
		}
		folder.AddSymlink(symlinkAttributes(metadata), symlinkAttributes(rightMetadata))
	}
	for name, metadata := range right.symlinks {
		if !rightSymlinksUsed[name] {
			folder.AddSymlink(nil, symlinkAttributes(metadata))
		}
	}

	// Merge subfolders and recurse.
	rightFoldersUsed := make(map[string]bool)
	for name, leftChild := range left.folders {
		rightName, rightChild := matchFolderName(name, right.folders)
		var rightAttributes *core.FolderAttributes
		if rightName != "" {
			rightFoldersUsed[rightName] = true
			rightAttributes = &core.FolderAttributes{Name: rightName}
		}
		pair := folder.AddFolder(&core.FolderAttributes{Name: name}, rightAttributes)
		mergeFolderViews(pair, leftChild, rightChild)
	}
	for name, rightChild := range right.folders {
		if !rightFoldersUsed[name] {
			pair := folder.AddFolder(nil, &core.FolderAttributes{Name: name})
			mergeFolderViews(pair, nil, rightChild)
		}
	}
}

// matchName finds the metadata entry pairing with the specified name: an
// exact match if available, otherwise a normalization-equal match.
func matchName(name string, entries map[string]*filesystem.Metadata) (string, *filesystem.Metadata) {
	if metadata, ok := entries[name]; ok {
		return name, metadata
	}
	for candidate, metadata := range entries {
		if core.NamesEqual(name, candidate) {
			return candidate, metadata
		}
	}
	return "", nil
}

// matchFolderName is the folder-view analogue of matchName.
func matchFolderName(name string, entries map[string]*scannedFolder) (string, *scannedFolder) {
	if child, ok := entries[name]; ok {
		return name, child
	}
	for candidate, child := range entries {
		if core.NamesEqual(name, candidate) {
			return candidate, child
		}
	}
	return "", nil
}

// fileAttributes converts device metadata to file pair attributes.
func fileAttributes(metadata *filesystem.Metadata) *core.FileAttributes {
	if metadata == nil {
		return nil
	}
	return &core.FileAttributes{
		Name:      metadata.Name,
		Size:      metadata.Size,
		ModTime:   metadata.ModificationTime.Unix(),
		FilePrint: metadata.FilePrint,
	}
}

// symlinkAttributes converts device metadata to symbolic link pair
// attributes.
func symlinkAttributes(metadata *filesystem.Metadata) *core.SymlinkAttributes {
	if metadata == nil {
		return nil
	}
	return &core.SymlinkAttributes{
		Name:    metadata.Name,
		ModTime: metadata.ModificationTime.Unix(),
		Target:  metadata.SymlinkTarget,
	}
}
