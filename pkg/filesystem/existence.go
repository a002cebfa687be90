package filesystem

import (
	"sync"
	"time"
)

const (
	// DefaultExistenceCheckTimeout is the per-device timeout applied to
	// folder existence checks when the device doesn't declare its own.
	DefaultExistenceCheckTimeout = 20 * time.Second
)

// ExistenceResult describes the outcome of a single folder existence probe.
type ExistenceResult struct {
	// Path is the probed path.
	Path AbstractPath
	// Exists indicates whether the folder exists. It is only meaningful if
	// Err is nil.
	Exists bool
	// Err is any probe failure, including ErrOperationTimeout.
	Err error
}

// CheckFoldersExist probes a set of base folders for existence. Probes for
// paths on the same device run sequentially within one task; tasks for
// distinct devices run concurrently. Each device's task is subject to a
// timeout (the device's declared timeout, or DefaultExistenceCheckTimeout);
// on expiry the affected probes are recorded as failed with
// ErrOperationTimeout while the underlying task is left detached rather than
// killed, avoiding cascading hangs on unresponsive devices. The results
// preserve the input order.
func CheckFoldersExist(paths []AbstractPath) []ExistenceResult {
	results := make([]ExistenceResult, len(paths))

	// Group probe indices by device.
	type deviceGroup struct {
		device  Device
		indices []int
	}
	var groups []*deviceGroup
	for index, path := range paths {
		var group *deviceGroup
		for _, candidate := range groups {
			if Equivalent(candidate.device, path.Device) {
				group = candidate
				break
			}
		}
		if group == nil {
			group = &deviceGroup{device: path.Device}
			groups = append(groups, group)
		}
		group.indices = append(group.indices, index)
	}

	// Default every result to a timeout failure; collectors overwrite what
	// completes in time.
	for index, path := range paths {
		results[index] = ExistenceResult{Path: path, Err: ErrOperationTimeout}
	}

	// Run one detachable task per device, each collected under its own
	// timeout. A timed-out task is left running detached; only its results
	// are abandoned.
	type probeOutcome struct {
		index  int
		exists bool
		err    error
	}
	var collectors sync.WaitGroup
	var resultsLock sync.Mutex
	for _, group := range groups {
		timeout := group.device.Timeout()
		if timeout == 0 {
			timeout = DefaultExistenceCheckTimeout
		}
		completion := make(chan []probeOutcome, 1)
		go func(group *deviceGroup) {
			outcomes := make([]probeOutcome, 0, len(group.indices))
			for _, index := range group.indices {
				itemType, err := paths[index].Device.GetItemType(paths[index].Path)
				if err != nil {
					// A failing fast probe is inconclusive; fall back to the
					// conclusive ancestor search.
					var exists bool
					itemType, exists, err = paths[index].Device.ItemStillExists(paths[index].Path)
					if err != nil {
						outcomes = append(outcomes, probeOutcome{index: index, err: err})
						continue
					}
					outcomes = append(outcomes, probeOutcome{index: index, exists: exists && itemType == ItemTypeFolder})
					continue
				}
				outcomes = append(outcomes, probeOutcome{index: index, exists: itemType == ItemTypeFolder})
			}
			completion <- outcomes
		}(group)

		collectors.Add(1)
		go func(timeout time.Duration) {
			defer collectors.Done()
			deadline := time.NewTimer(timeout)
			defer deadline.Stop()
			select {
			case outcomes := <-completion:
				resultsLock.Lock()
				for _, outcome := range outcomes {
					results[outcome.index] = ExistenceResult{
						Path:   paths[outcome.index],
						Exists: outcome.exists,
						Err:    outcome.err,
					}
				}
				resultsLock.Unlock()
			case <-deadline.C:
			}
		}(timeout)
	}

	// Wait for the collectors.
	collectors.Wait()

	// Done.
	return results
}
