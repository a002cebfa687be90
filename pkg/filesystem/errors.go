package filesystem

import (
	"errors"
	"fmt"
)

var (
	// ErrMoveUnsupported indicates that a move operation spanned devices that
	// are not equivalent (or a filesystem that can't perform renames) and
	// that the caller should fall back to a copy-and-delete decomposition.
	ErrMoveUnsupported = errors.New("move operation not supported between these locations")
	// ErrOperationNotSupported indicates that a device does not implement the
	// requested optional capability.
	ErrOperationNotSupported = errors.New("operation not supported by device")
	// ErrOperationTimeout indicates that an existence check did not complete
	// within its allotted time.
	ErrOperationTimeout = errors.New("operation timed out")
)

// FileError represents the failure of a storage operation. It carries a
// user-facing message describing the operation and a system-level detail
// string describing the underlying cause.
type FileError struct {
	// Message is the user-facing description of the failed operation.
	Message string
	// Detail is the system-level failure detail.
	Detail string
	// cause is the underlying error, if any.
	cause error
}

// NewFileError creates a new FileError with the specified message and cause.
func NewFileError(message string, cause error) *FileError {
	var detail string
	if cause != nil {
		detail = cause.Error()
	}
	return &FileError{Message: message, Detail: detail, cause: cause}
}

// Error implements error.Error.
func (e *FileError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Detail)
}

// Unwrap returns the underlying cause, if any.
func (e *FileError) Unwrap() error {
	return e.cause
}

// TargetExistingError is a specialization of FileError raised when
// create-new semantics are violated by an existing target item.
type TargetExistingError struct {
	FileError
}

// NewTargetExistingError creates a new TargetExistingError.
func NewTargetExistingError(message string, cause error) *TargetExistingError {
	var detail string
	if cause != nil {
		detail = cause.Error()
	}
	return &TargetExistingError{FileError{Message: message, Detail: detail, cause: cause}}
}

// FileLockedError is a specialization of FileError raised when a source item
// cannot be read due to an exclusive lock held by another process.
type FileLockedError struct {
	FileError
}

// NewFileLockedError creates a new FileLockedError.
func NewFileLockedError(message string, cause error) *FileLockedError {
	var detail string
	if cause != nil {
		detail = cause.Error()
	}
	return &FileLockedError{FileError{Message: message, Detail: detail, cause: cause}}
}

// IsTargetExisting returns true if the error or any error in its chain is a
// TargetExistingError.
func IsTargetExisting(err error) bool {
	var target *TargetExistingError
	return errors.As(err, &target)
}

// IsFileLocked returns true if the error or any error in its chain is a
// FileLockedError.
func IsFileLocked(err error) bool {
	var target *FileLockedError
	return errors.As(err, &target)
}
