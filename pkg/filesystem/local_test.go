package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"
)

// newTestLocal creates a local device rooted at a fresh temporary folder.
func newTestLocal(t *testing.T) *Local {
	t.Helper()
	device, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unable to create local device: %v", err)
	}
	return device
}

// writeTestFile writes a file beneath the device root.
func writeTestFile(t *testing.T, device *Local, path, content string) {
	t.Helper()
	native := filepath.Join(device.Root(), filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(native), 0700); err != nil {
		t.Fatalf("unable to create parent folders: %v", err)
	}
	if err := os.WriteFile(native, []byte(content), 0600); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
}

// TestLocalEquivalence tests device equivalence.
func TestLocalEquivalence(t *testing.T) {
	first := newTestLocal(t)
	second := newTestLocal(t)
	if !first.Equivalent(first) {
		t.Error("device not equivalent to itself")
	}
	if first.Equivalent(second) {
		t.Error("devices with different roots reported equivalent")
	}
}

// TestLocalGetItemType tests item type determination.
func TestLocalGetItemType(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "file.txt", "content")
	if err := device.CreateFolderPlain("folder"); err != nil {
		t.Fatalf("unable to create folder: %v", err)
	}

	if itemType, err := device.GetItemType("file.txt"); err != nil || itemType != ItemTypeFile {
		t.Errorf("GetItemType(file.txt) = (%v, %v)", itemType, err)
	}
	if itemType, err := device.GetItemType("folder"); err != nil || itemType != ItemTypeFolder {
		t.Errorf("GetItemType(folder) = (%v, %v)", itemType, err)
	}
	if _, err := device.GetItemType("missing"); err == nil {
		t.Error("GetItemType succeeded for missing item")
	}
}

// TestLocalItemStillExists tests the conclusive existence check.
func TestLocalItemStillExists(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "sub/file.txt", "content")

	if itemType, exists, err := device.ItemStillExists("sub/file.txt"); err != nil || !exists || itemType != ItemTypeFile {
		t.Errorf("ItemStillExists(sub/file.txt) = (%v, %t, %v)", itemType, exists, err)
	}
	if _, exists, err := device.ItemStillExists("sub/other.txt"); err != nil || exists {
		t.Errorf("ItemStillExists(sub/other.txt) = (_, %t, %v)", exists, err)
	}
	if _, exists, err := device.ItemStillExists("nowhere/file.txt"); err != nil || exists {
		t.Errorf("ItemStillExists(nowhere/file.txt) = (_, %t, %v)", exists, err)
	}
}

// TestLocalCreateFolder tests plain and recursive folder creation.
func TestLocalCreateFolder(t *testing.T) {
	device := newTestLocal(t)

	if err := device.CreateFolderPlain("folder"); err != nil {
		t.Fatalf("unable to create folder: %v", err)
	}
	if err := device.CreateFolderPlain("folder"); !IsTargetExisting(err) {
		t.Errorf("recreating folder yielded %v, expected TargetExistingError", err)
	}

	existed, err := device.CreateFolderIfMissingRecursively("a/b/c")
	if err != nil || existed {
		t.Fatalf("recursive creation = (%t, %v)", existed, err)
	}
	existed, err = device.CreateFolderIfMissingRecursively("a/b/c")
	if err != nil || !existed {
		t.Errorf("repeated recursive creation = (%t, %v), expected (true, nil)", existed, err)
	}
}

// TestLocalRemoveFolderRecursively tests deferred-recursion removal and its
// callback ordering: files before folders, children before parents.
func TestLocalRemoveFolderRecursively(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "top/a.txt", "a")
	writeTestFile(t, device, "top/sub/b.txt", "b")

	var fileOrder, folderOrder []string
	err := device.RemoveFolderIfExistsRecursively("top",
		func(path string) { fileOrder = append(fileOrder, path) },
		func(path string) { folderOrder = append(folderOrder, path) })
	if err != nil {
		t.Fatalf("unable to remove folder: %v", err)
	}

	if len(fileOrder) != 2 || fileOrder[0] != "top/a.txt" || fileOrder[1] != "top/sub/b.txt" {
		t.Errorf("unexpected file removal order: %v", fileOrder)
	}
	if len(folderOrder) != 2 || folderOrder[0] != "top/sub" || folderOrder[1] != "top" {
		t.Errorf("unexpected folder removal order: %v", folderOrder)
	}
	if _, exists, _ := device.ItemStillExists("top"); exists {
		t.Error("folder still exists after removal")
	}

	// Removal of a missing folder is a no-op.
	if err := device.RemoveFolderIfExistsRecursively("top", nil, nil); err != nil {
		t.Errorf("removal of missing folder failed: %v", err)
	}
}

// TestLocalMoveAndRename tests in-device moves.
func TestLocalMoveAndRename(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "source.txt", "content")
	writeTestFile(t, device, "occupied.txt", "other")

	// Move to a fresh path.
	if err := device.MoveAndRename("source.txt", "moved.txt", false); err != nil {
		t.Fatalf("unable to move file: %v", err)
	}
	if _, exists, _ := device.ItemStillExists("source.txt"); exists {
		t.Error("source still exists after move")
	}

	// Move onto an existing target without replacement.
	if err := device.MoveAndRename("moved.txt", "occupied.txt", false); !IsTargetExisting(err) {
		t.Errorf("move onto existing target yielded %v, expected TargetExistingError", err)
	}

	// Move onto an existing target with replacement.
	if err := device.MoveAndRename("moved.txt", "occupied.txt", true); err != nil {
		t.Errorf("replacing move failed: %v", err)
	}
}

// TestLocalMoveSameItemAccepted tests that an idempotent rename onto a hard
// link of the source is accepted even without replacement.
func TestLocalMoveSameItemAccepted(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "a.txt", "content")
	if err := os.Link(filepath.Join(device.Root(), "a.txt"), filepath.Join(device.Root(), "b.txt")); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}

	if err := device.MoveAndRename("a.txt", "b.txt", false); err != nil {
		t.Errorf("same-item rename failed: %v", err)
	}
}

// TestLocalCopyNewFile tests the native file copy.
func TestLocalCopyNewFile(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "source.txt", "some content")
	modTime := time.Unix(1600000000, 0)
	if err := os.Chtimes(filepath.Join(device.Root(), "source.txt"), modTime, modTime); err != nil {
		t.Fatalf("unable to set source time: %v", err)
	}

	// Track byte deltas.
	var copied uint64
	result, err := device.CopyNewFile("source.txt", "target.txt", func(delta uint64) error {
		copied += delta
		return nil
	})
	if err != nil {
		t.Fatalf("unable to copy file: %v", err)
	}
	if result.ModTimeError != nil {
		t.Errorf("unexpected modification time error: %v", result.ModTimeError)
	}
	if copied != uint64(len("some content")) || result.BytesCopied != copied {
		t.Errorf("unexpected byte accounting: callback %d, result %d", copied, result.BytesCopied)
	}
	if result.SourcePrint == 0 || result.TargetPrint == 0 {
		t.Errorf("file prints not captured: source %d, target %d", result.SourcePrint, result.TargetPrint)
	}

	// Verify content and replicated time.
	content, err := os.ReadFile(filepath.Join(device.Root(), "target.txt"))
	if err != nil || string(content) != "some content" {
		t.Errorf("unexpected target content: %q (%v)", content, err)
	}
	metadata, err := device.ReadMetadata("target.txt")
	if err != nil || !metadata.ModificationTime.Equal(modTime) {
		t.Errorf("modification time not replicated: %v (%v)", metadata.ModificationTime, err)
	}

	// The target must not exist.
	if _, err := device.CopyNewFile("source.txt", "target.txt", nil); !IsTargetExisting(err) {
		t.Errorf("copy onto existing target yielded %v, expected TargetExistingError", err)
	}
}

// TestLocalCopyNewFileAborted tests that an aborted copy removes the
// partially written target.
func TestLocalCopyNewFileAborted(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "source.txt", "content")

	abort := NewFileError("aborted", nil)
	_, err := device.CopyNewFile("source.txt", "target.txt", func(delta uint64) error {
		return abort
	})
	if err != abort {
		t.Fatalf("aborted copy yielded %v", err)
	}
	if _, exists, _ := device.ItemStillExists("target.txt"); exists {
		t.Error("partial target left behind after aborted copy")
	}
}

// TestLocalSymlinks tests symbolic link operations.
func TestLocalSymlinks(t *testing.T) {
	device := newTestLocal(t)
	if err := device.CreateSymlink("link", "target/path"); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if target, err := device.ReadSymlink("link"); err != nil || target != "target/path" {
		t.Errorf("ReadSymlink = (%q, %v)", target, err)
	}
	metadata, err := device.ReadMetadata("link")
	if err != nil || metadata.Type != ItemTypeSymlink || metadata.SymlinkTarget != "target/path" {
		t.Errorf("unexpected symlink metadata: %+v (%v)", metadata, err)
	}
	if err := device.RemoveSymlinkPlain("link"); err != nil {
		t.Errorf("unable to remove symlink: %v", err)
	}
}

// TestLocalRecycle tests recycling through the staging folder.
func TestLocalRecycle(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "doomed.txt", "content")

	if supported, err := device.SupportsRecycleBin(""); err != nil || !supported {
		t.Fatalf("SupportsRecycleBin = (%t, %v)", supported, err)
	}
	if recycled, err := device.RecycleItemIfExists("doomed.txt"); err != nil || !recycled {
		t.Fatalf("RecycleItemIfExists = (%t, %v)", recycled, err)
	}
	if _, exists, _ := device.ItemStillExists("doomed.txt"); exists {
		t.Error("item still exists after recycling")
	}
	if recycled, err := device.RecycleItemIfExists("doomed.txt"); err != nil || recycled {
		t.Errorf("recycling missing item = (%t, %v)", recycled, err)
	}

	// The staged copy must survive under the staging folder.
	entries, err := os.ReadDir(filepath.Join(device.Root(), localRecycleName))
	if err != nil || len(entries) != 1 {
		t.Errorf("unexpected staging contents: %v (%v)", entries, err)
	}
}

// TestLocalTraverse tests recursive traversal: sorted delivery, subfolder
// recursion, and pruning.
func TestLocalTraverse(t *testing.T) {
	device := newTestLocal(t)
	writeTestFile(t, device, "b.txt", "b")
	writeTestFile(t, device, "a.txt", "a")
	writeTestFile(t, device, "sub/nested.txt", "n")
	writeTestFile(t, device, "skip/ignored.txt", "i")

	var lock sync.Mutex
	var files []string
	callbacks := &TraversalCallbacks{}
	callbacks.OnFile = func(path string, metadata *Metadata) {
		lock.Lock()
		defer lock.Unlock()
		files = append(files, path)
	}
	callbacks.OnFolder = func(path string, metadata *Metadata) *TraversalCallbacks {
		if metadata.Name == "skip" {
			return nil
		}
		return callbacks
	}

	if err := device.Traverse([]TraversalTask{{Path: "", Callbacks: callbacks}}, 2); err != nil {
		t.Fatalf("traversal failed: %v", err)
	}

	sort.Strings(files)
	expected := []string{"a.txt", "b.txt", "sub/nested.txt"}
	if len(files) != len(expected) {
		t.Fatalf("unexpected file set: %v", files)
	}
	for i, path := range expected {
		if files[i] != path {
			t.Errorf("unexpected file at index %d: %q", i, files[i])
		}
	}
}

// TestLocalFreeDiskSpace tests the free space query.
func TestLocalFreeDiskSpace(t *testing.T) {
	device := newTestLocal(t)
	free, err := device.GetFreeDiskSpace("")
	if err == ErrOperationNotSupported {
		t.Skip("free disk space query unsupported on this platform")
	}
	if err != nil {
		t.Fatalf("unable to query free disk space: %v", err)
	}
	if free == 0 {
		t.Error("free disk space reported as zero")
	}
}
