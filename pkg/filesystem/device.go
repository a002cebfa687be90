package filesystem

import (
	"io"
	"time"
)

// ItemType identifies the type of a filesystem item.
type ItemType uint8

const (
	// ItemTypeFile indicates a regular file.
	ItemTypeFile ItemType = iota
	// ItemTypeFolder indicates a folder.
	ItemTypeFolder
	// ItemTypeSymlink indicates a symbolic link.
	ItemTypeSymlink
)

// String provides a human-readable representation of an item type.
func (t ItemType) String() string {
	switch t {
	case ItemTypeFile:
		return "file"
	case ItemTypeFolder:
		return "folder"
	case ItemTypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Metadata encodes information about a filesystem item as observed by a
// device.
type Metadata struct {
	// Name is the base name of the item.
	Name string
	// Type is the item type.
	Type ItemType
	// Size is the size of the item in bytes. It is only meaningful for files.
	Size uint64
	// ModificationTime is the modification time of the item.
	ModificationTime time.Time
	// FilePrint is a device-persistent numeric identifier for the item (e.g.
	// an inode number). A value of 0 indicates that the device doesn't
	// support file prints (or that the print is unknown).
	FilePrint uint64
	// SymlinkTarget is the target string of the item if it is a symbolic
	// link.
	SymlinkTarget string
}

// InputStream is a readable stream opened from a device.
type InputStream interface {
	io.ReadCloser
	// BlockSize returns the preferred read block size for the stream.
	BlockSize() uint64
}

// OutputStream is a writable stream opened on a device. Closing the stream
// finalizes the written content; any deferred modification time is applied
// after closure (applying it before closure yields incorrect results on
// certain network shares).
type OutputStream interface {
	io.WriteCloser
}

// IOCallback is invoked after each block transferred by a copy operation with
// the number of bytes just transferred. Returning an error aborts the copy.
type IOCallback func(bytesDelta uint64) error

// FileCopyResult describes the outcome of a successful file copy. Non-fatal
// anomalies ride along in the result rather than being raised as errors.
type FileCopyResult struct {
	// BytesCopied is the number of content bytes transferred.
	BytesCopied uint64
	// SourcePrint is the file print of the source as captured during the
	// copy, or 0 if unavailable.
	SourcePrint uint64
	// TargetPrint is the file print of the freshly written target, or 0 if
	// unavailable.
	TargetPrint uint64
	// ModTimeError records a failure to set the target's modification time.
	// The copied content is complete and kept despite this error.
	ModTimeError error
}

// ErrorDecision indicates how a traversal should proceed after an item-level
// or folder-level failure.
type ErrorDecision uint8

const (
	// ErrorDecisionRetry indicates that the failed operation should be
	// attempted again.
	ErrorDecisionRetry ErrorDecision = iota
	// ErrorDecisionIgnore indicates that the failed item should be skipped.
	ErrorDecisionIgnore
	// ErrorDecisionAbort indicates that the traversal should be abandoned.
	ErrorDecisionAbort
)

// TraversalCallbacks receives the items discovered while traversing a folder.
// Any handler may be nil, in which case the corresponding items are skipped.
type TraversalCallbacks struct {
	// OnFile is invoked for each file.
	OnFile func(path string, metadata *Metadata)
	// OnSymlink is invoked for each symbolic link.
	OnSymlink func(path string, metadata *Metadata)
	// OnFolder is invoked for each subfolder. Its return value provides the
	// callbacks to use for the subfolder's contents; returning nil prunes the
	// subfolder.
	OnFolder func(path string, metadata *Metadata) *TraversalCallbacks
	// OnItemError is invoked when reading a single item fails. If nil, item
	// failures are ignored.
	OnItemError func(path string, err error) ErrorDecision
	// OnFolderError is invoked when enumerating a folder fails. If nil,
	// folder failures are ignored.
	OnFolderError func(path string, err error) ErrorDecision
}

// TraversalTask pairs a folder path with the callbacks that should receive
// its contents.
type TraversalTask struct {
	// Path is the device-relative path of the folder to traverse.
	Path string
	// Callbacks receives the folder's contents.
	Callbacks *TraversalCallbacks
}

// Device is an abstract filesystem backend. Paths handed to a device are
// device-relative, forward-slash normalized, and contain no leading or
// trailing separators (the empty string addresses the device root).
//
// Devices must be safe for concurrent use. Operations requiring two paths on
// potentially different devices live as package-level functions that check
// device equivalence first and decompose or fail as appropriate.
type Device interface {
	// Kind returns a short identifier for the device's backend type.
	Kind() string
	// Equivalent returns true if the other device addresses the same
	// underlying storage, meaning that same-device operations (e.g. rename)
	// can span paths from both.
	Equivalent(other Device) bool
	// DisplayPath renders a device-relative path for status and log
	// messages.
	DisplayPath(path string) string

	// GetItemType determines the type of the item at the path. It is fast
	// but does not distinguish a missing item from an inaccessible one.
	GetItemType(path string) (ItemType, error)
	// ItemStillExists determines conclusively whether an item exists by
	// performing a case-sensitive name search down the path's ancestor
	// chain. It is used when GetItemType fails and the caller needs to
	// decide between retrying and accepting the item as gone.
	ItemStillExists(path string) (ItemType, bool, error)
	// ReadMetadata reads the metadata of the item at the path without
	// following a terminal symbolic link.
	ReadMetadata(path string) (*Metadata, error)

	// CreateFolderPlain creates a folder, failing if an item already exists
	// at the path.
	CreateFolderPlain(path string) error
	// CreateFolderIfMissingRecursively creates a folder and any missing
	// ancestors. It returns true if the folder already existed and tolerates
	// racing creators.
	CreateFolderIfMissingRecursively(path string) (bool, error)

	// RemoveFilePlain removes a file.
	RemoveFilePlain(path string) error
	// RemoveSymlinkPlain removes a symbolic link.
	RemoveSymlinkPlain(path string) error
	// RemoveFolderPlain removes an empty folder.
	RemoveFolderPlain(path string) error
	// RemoveFolderIfExistsRecursively removes a folder and its contents if
	// the folder exists. The traversal is deferred-recursive: each folder's
	// children are listed first, files are deleted, then symbolic links,
	// then subfolders are recursed into, and finally the folder itself is
	// removed, bounding stack depth. The callbacks, if non-nil, are invoked
	// with each item's path immediately before its deletion.
	RemoveFolderIfExistsRecursively(path string, onBeforeFile, onBeforeFolder func(path string)) error

	// MoveAndRename atomically moves an item within the device. With
	// replaceExisting false, an existing target causes a TargetExistingError
	// unless the source and target refer to the same underlying item by file
	// print, in which case the rename is accepted (idempotent renames must
	// not fail).
	MoveAndRename(from, to string, replaceExisting bool) error

	// OpenInput opens a readable stream for a file.
	OpenInput(path string) (InputStream, error)
	// OpenOutput opens a writable stream for a new file. A non-zero sizeHint
	// allows the device to preallocate. A non-zero modTime is applied after
	// the stream is closed.
	OpenOutput(path string, sizeHint uint64, modTime time.Time) (OutputStream, error)
	// CopyNewFile copies a file to a target path on the same device. The
	// target must not exist. The destination is preallocated when the size
	// is known, content is written and the stream closed before the
	// modification time is set, and source and target file prints are
	// captured in the result. Failure to set the modification time is
	// recorded in the result rather than raised.
	CopyNewFile(source, target string, ioCallback IOCallback) (*FileCopyResult, error)

	// ReadSymlink reads the target string of a symbolic link.
	ReadSymlink(path string) (string, error)
	// CreateSymlink creates a symbolic link with the specified target
	// string.
	CreateSymlink(path, target string) error

	// CopyItemPermissions copies ownership and mode from source to target on
	// the same device. Mode copying is skipped for symbolic links.
	CopyItemPermissions(source, target string, itemType ItemType) error

	// GetFreeDiskSpace returns the free space in bytes on the volume
	// containing the path.
	GetFreeDiskSpace(path string) (uint64, error)

	// SupportsRecycleBin reports whether items at the path can be recycled
	// rather than permanently deleted.
	SupportsRecycleBin(path string) (bool, error)
	// RecycleItemIfExists moves the item at the path to the device's recycle
	// facility if the item exists, returning true if an item was recycled.
	RecycleItemIfExists(path string) (bool, error)

	// Traverse processes a workload of folder traversal tasks, delivering
	// item events to each task's callbacks. Up to parallelOps folders are
	// enumerated concurrently.
	Traverse(workload []TraversalTask, parallelOps int) error

	// Timeout returns the device's preferred timeout for existence checks. A
	// zero value selects the default.
	Timeout() time.Duration
}

// Equivalent is a nil-safe device equivalence check.
func Equivalent(first, second Device) bool {
	if first == nil || second == nil {
		return first == second
	}
	return first.Equivalent(second)
}
