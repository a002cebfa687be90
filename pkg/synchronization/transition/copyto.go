// Package transition implements the manual bulk operations over the decision
// model: copying selected items to an alternate folder and deleting selected
// items with recycle-bin fallback. Operations are best-effort: per-item
// failures are surfaced through the progress callback and don't abort the
// batch unless the callback elects to, while cancellation aborts the batch
// and leaves already-completed work intact.
package transition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/logging"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/status"
)

// CopyToOptions carries the settings for a bulk copy-to operation.
type CopyToOptions struct {
	// TargetFolder is the folder receiving the copies.
	TargetFolder filesystem.AbstractPath
	// KeepRelPaths selects whether items are copied under their relative
	// paths (true) or directly under the target folder by name (false).
	KeepRelPaths bool
	// OverwriteIfExists selects whether existing target items are replaced.
	OverwriteIfExists bool
}

// workItem pairs a selected node with the side it is sourced from.
type workItem struct {
	pair core.Pair
	side core.Side
}

// gatherWork combines the per-side selections into a single work list,
// dropping nodes that are empty on their source side so that the totals stay
// accurate. For deterministic logs, the left selection is processed before
// the right, and each side is ordered by depth-first path position.
func gatherWork(leftSelection, rightSelection []core.Pair) []workItem {
	work := make([]workItem, 0, len(leftSelection)+len(rightSelection))
	appendSide := func(selection []core.Pair, side core.Side) {
		start := len(work)
		for _, pair := range selection {
			if pair.PresentOnSide(side) {
				work = append(work, workItem{pair, side})
			}
		}
		sideWork := work[start:]
		sort.Slice(sideWork, func(i, j int) bool {
			return filesystem.PathLess(
				sideWork[i].pair.RelPathOnSide(side),
				sideWork[j].pair.RelPathOnSide(side),
			)
		})
	}
	appendSide(leftSelection, core.SideLeft)
	appendSide(rightSelection, core.SideRight)
	return work
}

// CopyToAlternateFolder copies the selected items to an alternate target
// folder. The left and right selections provide the source side for their
// respective nodes.
func CopyToAlternateFolder(leftSelection, rightSelection []core.Pair, options CopyToOptions, callback status.Callback, logger *logging.Logger) error {
	if callback == nil {
		callback = status.NopCallback{}
	}

	// Assemble the work list and compute totals for progress accounting.
	work := gatherWork(leftSelection, rightSelection)
	var byteTotal int64
	for _, item := range work {
		if file, ok := item.pair.(*core.FilePair); ok {
			byteTotal += int64(file.Attributes(item.side).Size)
		}
	}
	callback.InitNewPhase(int64(len(work)), byteTotal, status.PhaseSynchronizing)

	// Process the work list.
	for _, item := range work {
		// Compute the target path.
		leaf := item.pair.NameOnSide(item.side)
		if options.KeepRelPaths {
			leaf = item.pair.RelPathOnSide(item.side)
		}
		target := options.TargetFolder.Join(leaf)
		source := item.pair.PathOnSide(item.side)

		// Copy the item, routing failures through the callback.
		err := status.TryReportingError(callback, func() error {
			return copyItem(item.pair, source, target, options, callback, logger)
		})
		if err != nil {
			return err
		}

		// Report completion of the item and poll for cancellation.
		callback.ReportProgress(1, 0)
		if err := callback.RequestUIUpdate(false); err != nil {
			return err
		}
	}

	// Done.
	return nil
}

// copyItem copies a single item to its target path.
func copyItem(pair core.Pair, source, target filesystem.AbstractPath, options CopyToOptions, callback status.Callback, logger *logging.Logger) error {
	switch pair.(type) {
	case *core.FolderPair:
		return copyFolderItem(source, target, callback)
	case *core.FilePair:
		return copyFileItem(source, target, options.OverwriteIfExists, callback, logger)
	case *core.SymlinkPair:
		return copySymlinkItem(source, target, options.OverwriteIfExists, callback)
	default:
		return fmt.Errorf("unknown item kind for %s", source)
	}
}

// copyFolderItem creates the target folder. An already-existing target is
// tolerated: intermediate parents are created on demand by file copies, so a
// folder selected together with its contents may find its target already in
// place.
func copyFolderItem(source, target filesystem.AbstractPath, callback status.Callback) error {
	callback.UpdateStatus(fmt.Sprintf("Creating folder %s", target))
	_, err := target.Device.CreateFolderIfMissingRecursively(target.Path)
	return err
}

// copyFileItem copies a single file transactionally. If the copy fails and
// the target turns out not to exist, the parent path is created and the copy
// retried once; if the target does exist, the failure is re-raised, but any
// deletion error deferred by the overwrite pre-delete step takes precedence
// since it explains the failure.
func copyFileItem(source, target filesystem.AbstractPath, overwrite bool, callback status.Callback, logger *logging.Logger) error {
	callback.UpdateStatus(fmt.Sprintf("Copying file %s", target))

	// The pre-delete step clears the way for the final rename when
	// overwriting. Its failure is deferred rather than raised: the copy may
	// still succeed (e.g. when the target vanished concurrently), and if it
	// doesn't, the deletion failure is the better explanation.
	var deferredDeleteError error
	preDelete := func() {
		if !overwrite {
			return
		}
		deferredDeleteError = removeItemIfExists(target)
	}

	// Stream progress through the byte callback, which doubles as the
	// cancellation point during the transfer.
	ioCallback := func(bytesDelta uint64) error {
		callback.ReportProgress(0, int64(bytesDelta))
		return callback.RequestUIUpdate(false)
	}

	// First attempt.
	err := copyFileTransactional(source, target, preDelete, ioCallback, logger)
	if err == nil {
		return nil
	}
	if errors.Is(err, status.ErrCancelled) {
		return err
	}

	// Probe the target to decide between re-raising and retrying.
	if _, exists, probeErr := target.Device.ItemStillExists(target.Path); probeErr == nil && exists {
		if deferredDeleteError != nil {
			return deferredDeleteError
		}
		return err
	}

	// The target doesn't exist, so the failure was likely a missing parent
	// chain: create it and retry once.
	if _, err := target.Device.CreateFolderIfMissingRecursively(parentPath(target.Path)); err != nil {
		return err
	}
	return copyFileTransactional(source, target, preDelete, ioCallback, logger)
}

// parentPath returns the parent of a device-relative path ("" for top-level
// items).
func parentPath(path string) string {
	if path == "" {
		return ""
	}
	return filesystem.DirPath(path)
}

// copySymlinkItem copies a single symbolic link, deleting an existing target
// first when overwriting.
func copySymlinkItem(source, target filesystem.AbstractPath, overwrite bool, callback status.Callback) error {
	callback.UpdateStatus(fmt.Sprintf("Copying symlink %s", target))
	if overwrite {
		if err := removeItemIfExists(target); err != nil {
			return err
		}
	}
	return filesystem.CopySymlink(source, target)
}

// removeItemIfExists removes the item at the path, whatever its type,
// treating a missing item as success.
func removeItemIfExists(target filesystem.AbstractPath) error {
	itemType, err := target.Device.GetItemType(target.Path)
	if err != nil {
		// The fast probe can't distinguish missing from inaccessible;
		// consult the conclusive check before accepting the item as gone.
		var exists bool
		itemType, exists, err = target.Device.ItemStillExists(target.Path)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
	}
	switch itemType {
	case filesystem.ItemTypeFolder:
		return target.Device.RemoveFolderIfExistsRecursively(target.Path, nil, nil)
	case filesystem.ItemTypeSymlink:
		return target.Device.RemoveSymlinkPlain(target.Path)
	default:
		return target.Device.RemoveFilePlain(target.Path)
	}
}

// copyFileTransactional copies a file so that the target path ends up either
// with the complete new content or untouched: content is written to an
// intermediate file bearing the reserved temporary suffix, the pre-rename
// step runs, and the intermediate is renamed into place. On any failure the
// intermediate is removed. A stale intermediate left by an interrupted run
// is cleared and the copy retried once.
func copyFileTransactional(source, target filesystem.AbstractPath, preRename func(), ioCallback filesystem.IOCallback, logger *logging.Logger) error {
	intermediate := filesystem.AbstractPath{
		Device: target.Device,
		Path:   target.Path + core.TempFileSuffix,
	}

	// Write the intermediate file.
	_, err := filesystem.CopyNewFile(source, intermediate, ioCallback, logger)
	if err != nil && filesystem.IsTargetExisting(err) {
		if removeErr := intermediate.Device.RemoveFilePlain(intermediate.Path); removeErr == nil {
			_, err = filesystem.CopyNewFile(source, intermediate, ioCallback, logger)
		}
	}
	if err != nil {
		return err
	}

	// Clear the way if requested.
	if preRename != nil {
		preRename()
	}

	// Swap the intermediate into place. Replacement is refused at the device
	// level, so a surviving target surfaces as a TargetExistingError here.
	if err := filesystem.Move(intermediate, target, false); err != nil {
		if removeErr := intermediate.Device.RemoveFilePlain(intermediate.Path); removeErr != nil {
			logger.Warnf("Unable to remove intermediate file '%s': %s", intermediate, removeErr.Error())
		}
		return err
	}

	// Done.
	return nil
}
