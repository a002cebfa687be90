package transition

import (
	"fmt"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/logging"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/status"
)

// DeleteOptions carries the settings for a bulk delete operation.
type DeleteOptions struct {
	// UseRecycleBin selects recycling over permanent deletion where the
	// underlying device supports it.
	UseRecycleBin bool
	// TwoWay indicates that the owning base pair synchronizes
	// bidirectionally; it governs how directions are re-derived for nodes
	// that become one-sided.
	TwoWay bool
	// Policy is the base pair's one-way direction policy, consulted for the
	// re-derivation when TwoWay is false.
	Policy core.DirectionPolicy
	// WarnRecycleMissing is the persistent "don't show again" flag for the
	// recycle-bin-unavailable warning class.
	WarnRecycleMissing *bool
}

// recycleProbe memoizes recycle-bin capability probes per base folder.
type recycleProbe struct {
	results map[string]bool
}

// supported probes (or recalls) whether the base folder containing an item
// supports recycling.
func (p *recycleProbe) supported(base filesystem.AbstractPath) (bool, error) {
	key := base.Device.Kind() + "\x00" + base.Device.DisplayPath(base.Path)
	if result, ok := p.results[key]; ok {
		return result, nil
	}
	result, err := base.Device.SupportsRecycleBin(base.Path)
	if err != nil {
		return false, err
	}
	p.results[key] = result
	return result, nil
}

// DeleteSelection deletes the selected items on their respective sides,
// recycling where requested and supported. The pair tree is updated to
// reflect each successful deletion: the deleted side's attributes are
// cleared, directions of nodes left one-sided are re-derived from the base's
// policy, and subtrees empty on both sides are pruned. The model fix-up runs
// even when the batch ends early, so an abort leaves the model consistent
// with disk.
func DeleteSelection(leftSelection, rightSelection []core.Pair, options DeleteOptions, callback status.Callback, logger *logging.Logger) error {
	if callback == nil {
		callback = status.NopCallback{}
	}

	// Assemble the work list.
	work := gatherWork(leftSelection, rightSelection)
	callback.InitNewPhase(int64(len(work)), -1, status.PhaseSynchronizing)

	// Probe recycle-bin capability once per distinct base folder touched. If
	// recycling was requested but isn't available everywhere, surface a
	// single warning for the session.
	probe := &recycleProbe{results: make(map[string]bool)}
	var unsupported []string
	recyclable := make([]bool, len(work))
	for index, item := range work {
		if !options.UseRecycleBin {
			continue
		}
		base := item.pair.Base().Root(item.side)
		supported, err := probe.supported(base)
		if err != nil {
			supported = false
		}
		recyclable[index] = supported
		if !supported {
			unsupported = append(unsupported, base.String())
		}
	}
	if options.UseRecycleBin && len(unsupported) > 0 {
		message := "The recycle bin is not supported by the following folders; deleted items will be removed permanently:"
		for _, folder := range unsupported {
			message += "\n" + folder
		}
		callback.ReportWarning(message, options.WarnRecycleMissing)
	}

	// The model fix-up must run even if the batch ends early.
	var processed []workItem
	defer func() {
		bases := make(map[*core.BaseFolderPair]bool)
		for _, item := range processed {
			fixUpDirections(item.pair, options)
			bases[item.pair.Base()] = true
		}
		for base := range bases {
			base.RootPair().PruneEmpty()
		}
	}()

	// Process the work list.
	for index, item := range work {
		source := item.pair.PathOnSide(item.side)
		callback.UpdateStatus(fmt.Sprintf("Removing %s %s", item.pair.Type(), source))

		// Delete the item, routing failures through the callback. The model
		// update happens only after a successful delete.
		err := status.TryReportingError(callback, func() error {
			return deleteItem(item.pair, item.side, source, recyclable[index], callback)
		})
		if err != nil {
			return err
		}

		// Commit the deletion to the model.
		item.pair.ClearSide(item.side)
		processed = append(processed, item)

		callback.ReportProgress(1, 0)
		if err := callback.RequestUIUpdate(false); err != nil {
			return err
		}
	}

	// Done.
	return nil
}

// deleteItem removes a single item on its side, recycling if selected.
func deleteItem(pair core.Pair, side core.Side, source filesystem.AbstractPath, recycle bool, callback status.Callback) error {
	if recycle {
		_, err := source.Device.RecycleItemIfExists(source.Path)
		return err
	}
	switch pair.(type) {
	case *core.FolderPair:
		return source.Device.RemoveFolderIfExistsRecursively(source.Path,
			func(path string) {
				callback.UpdateStatus(fmt.Sprintf("Removing file %s", source.Device.DisplayPath(path)))
			},
			func(path string) {
				callback.UpdateStatus(fmt.Sprintf("Removing folder %s", source.Device.DisplayPath(path)))
			})
	case *core.SymlinkPair:
		return source.Device.RemoveSymlinkPlain(source.Path)
	default:
		return source.Device.RemoveFilePlain(source.Path)
	}
}

// fixUpDirections re-derives the synchronization direction for a node (and,
// for folders, its descendants) after a deletion: nodes now empty on exactly
// one side get a direction from the base's policy - in two-way mode the
// direction points away from the empty side so the next run mirrors the
// deletion, while in one-way mode the ex-left-only/ex-right-only policy slot
// applies.
func fixUpDirections(pair core.Pair, options DeleteOptions) {
	fixUpPair(pair, options)
	if folder, ok := pair.(*core.FolderPair); ok {
		folder.Walk(func(descendant core.Pair) {
			fixUpPair(descendant, options)
		})
	}
}

// fixUpPair re-derives category and direction for a single node.
func fixUpPair(pair core.Pair, options DeleteOptions) {
	leftPresent := pair.PresentOnSide(core.SideLeft)
	rightPresent := pair.PresentOnSide(core.SideRight)
	if leftPresent == rightPresent {
		return
	}

	if leftPresent {
		pair.SetCategory(core.CategoryLeftOnly, "")
		if options.TwoWay {
			pair.SetDirection(core.DirectionLeft)
		} else {
			pair.SetDirection(options.Policy.ExLeftOnly)
		}
	} else {
		pair.SetCategory(core.CategoryRightOnly, "")
		if options.TwoWay {
			pair.SetDirection(core.DirectionRight)
		} else {
			pair.SetDirection(options.Policy.ExRightOnly)
		}
	}
}
