package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// localCopyBufferSize specifies the size of the internal buffer used when
	// copying file content on local devices. This value is taken from Go's
	// io.Copy method, which defaults to allocating a 32k buffer.
	localCopyBufferSize = 32 * 1024

	// localRecycleName is the name of the per-root staging folder that
	// receives recycled items.
	localRecycleName = ".lockstep.trash"
)

// Local is a Device implementation backed by the native filesystem. Paths are
// resolved relative to a fixed root. Local devices are safe for concurrent
// usage.
type Local struct {
	// root is the absolute native path of the device root.
	root string
}

// NewLocal creates a local device rooted at the specified native path. The
// path is converted to an absolute representation.
func NewLocal(root string) (*Local, error) {
	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "unable to resolve device root")
	}
	return &Local{root: absolute}, nil
}

// Root returns the absolute native path of the device root.
func (l *Local) Root() string {
	return l.root
}

// Kind implements Device.Kind.
func (l *Local) Kind() string {
	return "local"
}

// Equivalent implements Device.Equivalent. Two local devices are equivalent
// if they share the same root, in which case rename operations can span paths
// from both.
func (l *Local) Equivalent(other Device) bool {
	if otherLocal, ok := other.(*Local); ok {
		return l.root == otherLocal.root
	}
	return false
}

// DisplayPath implements Device.DisplayPath.
func (l *Local) DisplayPath(path string) string {
	return l.resolve(path)
}

// Timeout implements Device.Timeout.
func (l *Local) Timeout() time.Duration {
	return 0
}

// resolve converts a device-relative path to a native path.
func (l *Local) resolve(path string) string {
	if path == "" {
		return l.root
	}
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// metadataFromFileInfo converts a FileInfo to device metadata. The symbolic
// link target, if relevant, is not populated.
func metadataFromFileInfo(info os.FileInfo) *Metadata {
	metadata := &Metadata{
		Name:             info.Name(),
		Size:             uint64(info.Size()),
		ModificationTime: info.ModTime(),
		FilePrint:        filePrint(info),
	}
	mode := info.Mode()
	if mode.IsDir() {
		metadata.Type = ItemTypeFolder
	} else if mode&os.ModeSymlink != 0 {
		metadata.Type = ItemTypeSymlink
	} else {
		metadata.Type = ItemTypeFile
	}
	return metadata
}

// GetItemType implements Device.GetItemType.
func (l *Local) GetItemType(path string) (ItemType, error) {
	info, err := os.Lstat(l.resolve(path))
	if err != nil {
		return 0, NewFileError("unable to determine item type", err)
	}
	return metadataFromFileInfo(info).Type, nil
}

// ItemStillExists implements Device.ItemStillExists. It walks the path's
// ancestor chain from the device root, matching each component with a
// case-sensitive directory listing, so that a missing item is reported
// conclusively even on case-insensitive filesystems.
func (l *Local) ItemStillExists(path string) (ItemType, bool, error) {
	components := SplitPath(path)
	current := l.root
	for _, component := range components {
		entries, err := os.ReadDir(current)
		if err != nil {
			return 0, false, NewFileError("unable to enumerate folder while verifying item existence", err)
		}
		found := false
		for _, entry := range entries {
			if entry.Name() == component {
				found = true
				break
			}
		}
		if !found {
			return 0, false, nil
		}
		current = filepath.Join(current, component)
	}
	info, err := os.Lstat(current)
	if err != nil {
		return 0, false, NewFileError("unable to read item metadata while verifying item existence", err)
	}
	return metadataFromFileInfo(info).Type, true, nil
}

// ReadMetadata implements Device.ReadMetadata.
func (l *Local) ReadMetadata(path string) (*Metadata, error) {
	target := l.resolve(path)
	info, err := os.Lstat(target)
	if err != nil {
		return nil, NewFileError("unable to read item metadata", err)
	}
	metadata := metadataFromFileInfo(info)
	if metadata.Type == ItemTypeSymlink {
		if linkTarget, err := os.Readlink(target); err == nil {
			metadata.SymlinkTarget = linkTarget
		}
	}
	return metadata, nil
}

// CreateFolderPlain implements Device.CreateFolderPlain.
func (l *Local) CreateFolderPlain(path string) error {
	if err := os.Mkdir(l.resolve(path), 0700); err != nil {
		if os.IsExist(err) {
			return NewTargetExistingError("cannot create folder: target already existing", err)
		}
		return NewFileError("unable to create folder", err)
	}
	return nil
}

// CreateFolderIfMissingRecursively implements
// Device.CreateFolderIfMissingRecursively.
func (l *Local) CreateFolderIfMissingRecursively(path string) (bool, error) {
	target := l.resolve(path)

	// Check for prior existence first so that the caller can distinguish the
	// already-existed case.
	if info, err := os.Lstat(target); err == nil {
		if info.IsDir() {
			return true, nil
		}
		return false, NewFileError("cannot create folder: a non-folder item occupies the path", nil)
	}

	// Create the folder chain. A racing creator may win any individual
	// creation, which MkdirAll tolerates.
	if err := os.MkdirAll(target, 0700); err != nil {
		return false, NewFileError("unable to create folder", err)
	}
	return false, nil
}

// RemoveFilePlain implements Device.RemoveFilePlain.
func (l *Local) RemoveFilePlain(path string) error {
	if err := os.Remove(l.resolve(path)); err != nil {
		return NewFileError("unable to remove file", err)
	}
	return nil
}

// RemoveSymlinkPlain implements Device.RemoveSymlinkPlain.
func (l *Local) RemoveSymlinkPlain(path string) error {
	if err := os.Remove(l.resolve(path)); err != nil {
		return NewFileError("unable to remove symlink", err)
	}
	return nil
}

// RemoveFolderPlain implements Device.RemoveFolderPlain.
func (l *Local) RemoveFolderPlain(path string) error {
	if err := os.Remove(l.resolve(path)); err != nil {
		return NewFileError("unable to remove folder", err)
	}
	return nil
}

// RemoveFolderIfExistsRecursively implements
// Device.RemoveFolderIfExistsRecursively.
func (l *Local) RemoveFolderIfExistsRecursively(path string, onBeforeFile, onBeforeFolder func(string)) error {
	// Check for existence.
	if _, err := os.Lstat(l.resolve(path)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return NewFileError("unable to check folder existence", err)
	}

	// Remove recursively.
	return l.removeFolderRecursively(path, onBeforeFile, onBeforeFolder)
}

// removeFolderRecursively removes a folder using deferred-recursion
// traversal: children are listed first, files are deleted, then symbolic
// links, then subfolders are recursed into, and finally the folder itself is
// removed.
func (l *Local) removeFolderRecursively(path string, onBeforeFile, onBeforeFolder func(string)) error {
	// List children.
	entries, err := os.ReadDir(l.resolve(path))
	if err != nil {
		return NewFileError("unable to enumerate folder for removal", err)
	}

	// Partition children by type.
	var files, symlinks, folders []string
	for _, entry := range entries {
		name := entry.Name()
		entryType := entry.Type()
		if entryType.IsDir() {
			folders = append(folders, name)
		} else if entryType&os.ModeSymlink != 0 {
			symlinks = append(symlinks, name)
		} else {
			files = append(files, name)
		}
	}

	// Delete files, then symbolic links.
	for _, name := range files {
		childPath := JoinPath(path, name)
		if onBeforeFile != nil {
			onBeforeFile(childPath)
		}
		if err := l.RemoveFilePlain(childPath); err != nil {
			return err
		}
	}
	for _, name := range symlinks {
		childPath := JoinPath(path, name)
		if onBeforeFile != nil {
			onBeforeFile(childPath)
		}
		if err := l.RemoveSymlinkPlain(childPath); err != nil {
			return err
		}
	}

	// Recurse into subfolders.
	for _, name := range folders {
		if err := l.removeFolderRecursively(JoinPath(path, name), onBeforeFile, onBeforeFolder); err != nil {
			return err
		}
	}

	// Remove the folder itself.
	if onBeforeFolder != nil {
		onBeforeFolder(path)
	}
	return l.RemoveFolderPlain(path)
}

// MoveAndRename implements Device.MoveAndRename.
func (l *Local) MoveAndRename(from, to string, replaceExisting bool) error {
	source := l.resolve(from)
	target := l.resolve(to)

	// With replacement disabled, probe the target. An existing target is
	// tolerated only if it refers to the same underlying item as the source
	// by file print, so that idempotent renames don't fail.
	if !replaceExisting {
		if targetInfo, err := os.Lstat(target); err == nil {
			sourceInfo, err := os.Lstat(source)
			if err != nil {
				return NewFileError("unable to read move source metadata", err)
			}
			sourcePrint := filePrint(sourceInfo)
			targetPrint := filePrint(targetInfo)
			if sourcePrint == 0 || sourcePrint != targetPrint {
				return NewTargetExistingError("cannot move item: target already existing", nil)
			}
		} else if !os.IsNotExist(err) {
			return NewFileError("unable to check move target existence", err)
		}
	}

	// Perform the rename.
	if err := os.Rename(source, target); err != nil {
		return NewFileError("unable to move item", err)
	}
	return nil
}

// localInputStream adapts an os.File to InputStream.
type localInputStream struct {
	*os.File
}

// BlockSize implements InputStream.BlockSize.
func (s *localInputStream) BlockSize() uint64 {
	return localCopyBufferSize
}

// OpenInput implements Device.OpenInput.
func (l *Local) OpenInput(path string) (InputStream, error) {
	file, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, NewFileError("unable to open file for reading", err)
	}
	return &localInputStream{file}, nil
}

// localOutputStream adapts an os.File to OutputStream, applying any deferred
// modification time after closure. Setting the time before closure yields
// incorrect results on certain network shares.
type localOutputStream struct {
	file    *os.File
	path    string
	modTime time.Time
}

// Write implements io.Writer.Write.
func (s *localOutputStream) Write(data []byte) (int, error) {
	return s.file.Write(data)
}

// Close implements io.Closer.Close.
func (s *localOutputStream) Close() error {
	if err := s.file.Close(); err != nil {
		return err
	}
	if !s.modTime.IsZero() {
		// Best-effort: a modification time failure doesn't invalidate the
		// written content.
		os.Chtimes(s.path, s.modTime, s.modTime)
	}
	return nil
}

// OpenOutput implements Device.OpenOutput.
func (l *Local) OpenOutput(path string, sizeHint uint64, modTime time.Time) (OutputStream, error) {
	target := l.resolve(path)
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, NewTargetExistingError("cannot create file: target already existing", err)
		}
		return nil, NewFileError("unable to create file", err)
	}
	if sizeHint > 0 {
		// Preallocation failure is tolerable; the write path will extend the
		// file as needed.
		file.Truncate(int64(sizeHint))
	}
	return &localOutputStream{file: file, path: target, modTime: modTime}, nil
}

// CopyNewFile implements Device.CopyNewFile.
func (l *Local) CopyNewFile(source, target string, ioCallback IOCallback) (*FileCopyResult, error) {
	sourceNative := l.resolve(source)
	targetNative := l.resolve(target)

	// Open the source and capture its metadata.
	sourceFile, err := os.Open(sourceNative)
	if err != nil {
		return nil, NewFileError("unable to open copy source", err)
	}
	defer sourceFile.Close()
	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return nil, NewFileError("unable to read copy source metadata", err)
	}

	// Create the target with create-new semantics.
	targetFile, err := os.OpenFile(targetNative, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, NewTargetExistingError("cannot copy file: target already existing", err)
		}
		return nil, NewFileError("unable to create copy target", err)
	}

	// removeTarget removes the partially written target after a failure.
	removeTarget := func() {
		targetFile.Close()
		os.Remove(targetNative)
	}

	// Preallocate the destination size.
	if size := sourceInfo.Size(); size > 0 {
		if err := targetFile.Truncate(size); err != nil {
			removeTarget()
			return nil, NewFileError("unable to preallocate copy target", err)
		}
	}

	// Transfer content, polling the callback after each block.
	buffer := make([]byte, localCopyBufferSize)
	var copied uint64
	for {
		read, readErr := sourceFile.Read(buffer)
		if read > 0 {
			if _, writeErr := targetFile.Write(buffer[:read]); writeErr != nil {
				removeTarget()
				return nil, NewFileError("unable to write copy target", writeErr)
			}
			copied += uint64(read)
			if ioCallback != nil {
				if cbErr := ioCallback(uint64(read)); cbErr != nil {
					removeTarget()
					return nil, cbErr
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			removeTarget()
			return nil, NewFileError("unable to read copy source", readErr)
		}
	}

	// Close the target before setting the modification time. Closing first
	// is required for correctness on certain shares.
	if err := targetFile.Close(); err != nil {
		os.Remove(targetNative)
		return nil, NewFileError("unable to close copy target", err)
	}

	// Assemble the result, capturing source and target file prints.
	result := &FileCopyResult{
		BytesCopied: copied,
		SourcePrint: filePrint(sourceInfo),
	}
	if targetInfo, err := os.Lstat(targetNative); err == nil {
		result.TargetPrint = filePrint(targetInfo)
	}

	// Replicate the source modification time. Failure is recorded in the
	// result rather than raised; the copied file is kept.
	modTime := sourceInfo.ModTime()
	if err := os.Chtimes(targetNative, modTime, modTime); err != nil {
		result.ModTimeError = NewFileError("unable to set copy target modification time", err)
	}

	// Done.
	return result, nil
}

// ReadSymlink implements Device.ReadSymlink.
func (l *Local) ReadSymlink(path string) (string, error) {
	target, err := os.Readlink(l.resolve(path))
	if err != nil {
		return "", NewFileError("unable to read symlink target", err)
	}
	return target, nil
}

// CreateSymlink implements Device.CreateSymlink.
func (l *Local) CreateSymlink(path, target string) error {
	if err := os.Symlink(target, l.resolve(path)); err != nil {
		if os.IsExist(err) {
			return NewTargetExistingError("cannot create symlink: target already existing", err)
		}
		return NewFileError("unable to create symlink", err)
	}
	return nil
}

// CopyItemPermissions implements Device.CopyItemPermissions. Ownership and
// mode are copied; mode copying is skipped for symbolic links.
func (l *Local) CopyItemPermissions(source, target string, itemType ItemType) error {
	sourceNative := l.resolve(source)
	targetNative := l.resolve(target)

	if err := copyOwnership(sourceNative, targetNative); err != nil {
		return NewFileError("unable to copy item ownership", err)
	}

	if itemType != ItemTypeSymlink {
		info, err := os.Lstat(sourceNative)
		if err != nil {
			return NewFileError("unable to read source permissions", err)
		}
		if err := os.Chmod(targetNative, info.Mode().Perm()); err != nil {
			return NewFileError("unable to copy item mode", err)
		}
	}

	return nil
}

// GetFreeDiskSpace implements Device.GetFreeDiskSpace.
func (l *Local) GetFreeDiskSpace(path string) (uint64, error) {
	return freeDiskSpace(l.resolve(path))
}

// SupportsRecycleBin implements Device.SupportsRecycleBin. Local devices
// always support recycling through the per-root staging folder.
func (l *Local) SupportsRecycleBin(path string) (bool, error) {
	return true, nil
}

// RecycleItemIfExists implements Device.RecycleItemIfExists. Items are moved
// into a staging folder under the device root, with a unique suffix to avoid
// collisions between recycled items sharing a name.
func (l *Local) RecycleItemIfExists(path string) (bool, error) {
	source := l.resolve(path)
	if _, err := os.Lstat(source); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewFileError("unable to check item existence for recycling", err)
	}

	// Ensure the staging folder exists.
	recycleRoot := filepath.Join(l.root, localRecycleName)
	if err := os.MkdirAll(recycleRoot, 0700); err != nil {
		return false, NewFileError("unable to create recycle staging folder", err)
	}

	// Move the item into staging under a unique name.
	staged := filepath.Join(recycleRoot, BaseName(path)+"."+uuid.NewString())
	if err := os.Rename(source, staged); err != nil {
		return false, NewFileError("unable to move item to recycle staging folder", err)
	}
	return true, nil
}

// Traverse implements Device.Traverse. Folder enumeration fans out across up
// to parallelOps concurrent operations; within each folder, children are
// delivered in case-sensitive name-sorted order.
func (l *Local) Traverse(workload []TraversalTask, parallelOps int) error {
	if parallelOps < 1 {
		parallelOps = 1
	}

	// Traversal state shared by all workers.
	state := &localTraversalState{
		semaphore: make(chan struct{}, parallelOps),
	}

	// Process the workload.
	for _, task := range workload {
		if task.Callbacks == nil {
			continue
		}
		state.group.Add(1)
		go func(task TraversalTask) {
			defer state.group.Done()
			state.semaphore <- struct{}{}
			defer func() { <-state.semaphore }()
			l.traverseFolder(task.Path, task.Callbacks, state)
		}(task)
	}
	state.group.Wait()

	// Surface any abort error.
	if err := state.err.Load(); err != nil {
		return err.(error)
	}
	return nil
}

// localTraversalState tracks shared traversal bookkeeping.
type localTraversalState struct {
	group     sync.WaitGroup
	semaphore chan struct{}
	aborted   atomic.Bool
	err       atomic.Value
}

// abort records an abort error and stops further traversal.
func (s *localTraversalState) abort(err error) {
	if s.aborted.CompareAndSwap(false, true) {
		s.err.Store(err)
	}
}

// traverseFolder enumerates a single folder and dispatches its contents,
// recursing into unpruned subfolders.
func (l *Local) traverseFolder(path string, callbacks *TraversalCallbacks, state *localTraversalState) {
	if state.aborted.Load() {
		return
	}

	// Enumerate the folder, honoring retry decisions.
	var entries []os.DirEntry
	for {
		var err error
		entries, err = os.ReadDir(l.resolve(path))
		if err == nil {
			break
		}
		decision := ErrorDecisionIgnore
		if callbacks.OnFolderError != nil {
			decision = callbacks.OnFolderError(path, NewFileError("unable to enumerate folder", err))
		}
		if decision == ErrorDecisionRetry {
			continue
		} else if decision == ErrorDecisionAbort {
			state.abort(NewFileError("folder traversal aborted", err))
			return
		}
		return
	}

	// Deliver children in case-sensitive name-sorted order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if state.aborted.Load() {
			return
		}
		childPath := JoinPath(path, entry.Name())

		// Read the child's metadata, honoring retry decisions.
		var metadata *Metadata
		for {
			info, err := entry.Info()
			if err == nil {
				metadata = metadataFromFileInfo(info)
				break
			}
			decision := ErrorDecisionIgnore
			if callbacks.OnItemError != nil {
				decision = callbacks.OnItemError(childPath, NewFileError("unable to read item metadata", err))
			}
			if decision == ErrorDecisionRetry {
				continue
			} else if decision == ErrorDecisionAbort {
				state.abort(NewFileError("folder traversal aborted", err))
				return
			}
			break
		}
		if metadata == nil {
			continue
		}

		// Dispatch by type.
		switch metadata.Type {
		case ItemTypeFolder:
			if callbacks.OnFolder == nil {
				continue
			}
			subCallbacks := callbacks.OnFolder(childPath, metadata)
			if subCallbacks == nil {
				continue
			}
			// Fan out if a traversal slot is free, otherwise recurse
			// inline.
			select {
			case state.semaphore <- struct{}{}:
				state.group.Add(1)
				go func() {
					defer state.group.Done()
					defer func() { <-state.semaphore }()
					l.traverseFolder(childPath, subCallbacks, state)
				}()
			default:
				l.traverseFolder(childPath, subCallbacks, state)
			}
		case ItemTypeSymlink:
			if target, err := os.Readlink(l.resolve(childPath)); err == nil {
				metadata.SymlinkTarget = target
			}
			if callbacks.OnSymlink != nil {
				callbacks.OnSymlink(childPath, metadata)
			}
		default:
			if callbacks.OnFile != nil {
				callbacks.OnFile(childPath, metadata)
			}
		}
	}
}
