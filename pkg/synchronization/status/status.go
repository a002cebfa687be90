// Package status defines the progress and phase reporting contract shared by
// scanning, direction resolution, and bulk operations. The engine invokes a
// single Callback from its worker thread; cancellation is delivered by
// returning ErrCancelled from RequestUIUpdate.
package status

import (
	"errors"

	"github.com/dustin/go-humanize"
)

// ErrCancelled indicates that the operation was cancelled through the
// progress callback.
var ErrCancelled = errors.New("operation cancelled")

// Phase identifies a processing phase for progress accounting.
type Phase uint8

const (
	// PhaseNone indicates that no phase is active.
	PhaseNone Phase = iota
	// PhaseScanning indicates directory scanning.
	PhaseScanning
	// PhaseComparing indicates category assignment and content comparison.
	PhaseComparing
	// PhaseSynchronizing indicates execution of copy and delete operations.
	PhaseSynchronizing
)

// String provides a human-readable representation of a phase.
func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseScanning:
		return "scanning"
	case PhaseComparing:
		return "comparing"
	case PhaseSynchronizing:
		return "synchronizing"
	default:
		return "unknown"
	}
}

// ErrorResponse indicates how to proceed after a reported error.
type ErrorResponse uint8

const (
	// ResponseRetry indicates that the failed operation should be attempted
	// again.
	ResponseRetry ErrorResponse = iota
	// ResponseIgnore indicates that the failure should be skipped.
	ResponseIgnore
	// ResponseAbort indicates that the current batch should be abandoned.
	ResponseAbort
)

// Callback receives progress, status, and error events from the engine. All
// methods are invoked from the engine's worker thread.
type Callback interface {
	// InitNewPhase announces a new processing phase along with its expected
	// totals. Totals of -1 indicate that the total is unknown.
	InitNewPhase(itemTotal, byteTotal int64, phase Phase)
	// ReportProgress records completed work relative to the current phase's
	// totals.
	ReportProgress(itemsDelta, bytesDelta int64)
	// UpdateStatus replaces the current status line.
	UpdateStatus(message string)
	// LogInfo appends an informational message to the operation log.
	LogInfo(message string)
	// RequestUIUpdate gives the host a chance to process events and signal
	// cancellation. It returns ErrCancelled if the operation should stop.
	RequestUIUpdate(force bool) error
	// ReportWarning reports a warning. The warnActive flag is the persistent
	// "don't show again" toggle for the warning's class: if it points to
	// false, the warning is suppressed.
	ReportWarning(message string, warnActive *bool)
	// ReportError reports an item-level error and returns the decision on
	// how to proceed.
	ReportError(message string) ErrorResponse
}

// TryReportingError runs an operation, routing failures through the callback
// until the operation succeeds or the callback elects to ignore or abort.
// Cancellation errors are never reported and propagate immediately. On abort,
// the original error is returned.
func TryReportingError(callback Callback, operation func() error) error {
	for {
		err := operation()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrCancelled) {
			return err
		}
		switch callback.ReportError(err.Error()) {
		case ResponseRetry:
			continue
		case ResponseIgnore:
			return nil
		default:
			return err
		}
	}
}

// FormatBytes renders a byte count for status messages.
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// NopCallback is a Callback implementation that ignores all events and never
// cancels. It is useful for hosts that don't need progress reporting and as
// an embeddable base for partial implementations.
type NopCallback struct{}

// InitNewPhase implements Callback.InitNewPhase.
func (NopCallback) InitNewPhase(itemTotal, byteTotal int64, phase Phase) {}

// ReportProgress implements Callback.ReportProgress.
func (NopCallback) ReportProgress(itemsDelta, bytesDelta int64) {}

// UpdateStatus implements Callback.UpdateStatus.
func (NopCallback) UpdateStatus(message string) {}

// LogInfo implements Callback.LogInfo.
func (NopCallback) LogInfo(message string) {}

// RequestUIUpdate implements Callback.RequestUIUpdate.
func (NopCallback) RequestUIUpdate(force bool) error { return nil }

// ReportWarning implements Callback.ReportWarning.
func (NopCallback) ReportWarning(message string, warnActive *bool) {}

// ReportError implements Callback.ReportError.
func (NopCallback) ReportError(message string) ErrorResponse { return ResponseIgnore }
