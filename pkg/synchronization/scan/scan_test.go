package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core/filter"
)

// testDevice creates a local device over a fresh temporary folder.
func testDevice(t *testing.T) *filesystem.Local {
	t.Helper()
	device, err := filesystem.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unable to create device: %v", err)
	}
	return device
}

// writeFile writes a file beneath a device root.
func writeFile(t *testing.T, device *filesystem.Local, path, content string) {
	t.Helper()
	native := filepath.Join(device.Root(), filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(native), 0700); err != nil {
		t.Fatalf("unable to create parents: %v", err)
	}
	if err := os.WriteFile(native, []byte(content), 0600); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
}

// findFile locates a file pair by display name among a folder's children.
func findFile(folder *core.FolderPair, name string) *core.FilePair {
	for _, file := range folder.Files() {
		if file.Name() == name {
			return file
		}
	}
	return nil
}

// findFolder locates a subfolder pair by display name.
func findFolder(folder *core.FolderPair, name string) *core.FolderPair {
	for _, child := range folder.Folders() {
		if child.Name() == name {
			return child
		}
	}
	return nil
}

// TestScanBasePair tests scanning and merging of two sides.
func TestScanBasePair(t *testing.T) {
	left := testDevice(t)
	right := testDevice(t)
	writeFile(t, left, "both.txt", "content")
	writeFile(t, left, "left.txt", "l")
	writeFile(t, left, "sub/inner.txt", "i")
	writeFile(t, right, "both.txt", "content")
	writeFile(t, right, "right.txt", "r")
	writeFile(t, right, "sub/other.txt", "o")

	base, err := ScanBasePair(
		filesystem.AbstractPath{Device: left},
		filesystem.AbstractPath{Device: right},
		&Config{ParallelOps: 2}, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	root := base.RootPair()

	// Two-sided file.
	both := findFile(root, "both.txt")
	if both == nil || !both.PresentOnSide(core.SideLeft) || !both.PresentOnSide(core.SideRight) {
		t.Fatal("two-sided file not merged")
	}
	if both.Attributes(core.SideLeft).Size != uint64(len("content")) {
		t.Errorf("unexpected size: %d", both.Attributes(core.SideLeft).Size)
	}
	if both.Attributes(core.SideLeft).FilePrint == 0 {
		t.Error("file print not captured on this platform")
	}

	// One-sided files.
	if leftOnly := findFile(root, "left.txt"); leftOnly == nil || leftOnly.PresentOnSide(core.SideRight) {
		t.Error("left-only file not recorded correctly")
	}
	if rightOnly := findFile(root, "right.txt"); rightOnly == nil || rightOnly.PresentOnSide(core.SideLeft) {
		t.Error("right-only file not recorded correctly")
	}

	// Merged subfolder with per-side contents.
	sub := findFolder(root, "sub")
	if sub == nil || !sub.PresentOnSide(core.SideLeft) || !sub.PresentOnSide(core.SideRight) {
		t.Fatal("subfolder not merged")
	}
	if inner := findFile(sub, "inner.txt"); inner == nil || inner.PresentOnSide(core.SideRight) {
		t.Error("nested left-only file not recorded correctly")
	}
	if other := findFile(sub, "other.txt"); other == nil || other.PresentOnSide(core.SideLeft) {
		t.Error("nested right-only file not recorded correctly")
	}

	// Relative paths must reflect the nesting.
	if inner := findFile(sub, "inner.txt"); inner != nil && inner.RelPath() != "sub/inner.txt" {
		t.Errorf("unexpected relative path: %q", inner.RelPath())
	}
}

// TestScanBasePairFiltered tests filter-driven pruning during scanning.
func TestScanBasePairFiltered(t *testing.T) {
	left := testDevice(t)
	right := testDevice(t)
	writeFile(t, left, "keep.txt", "k")
	writeFile(t, left, "skip.log", "s")
	writeFile(t, left, "logs/deep.txt", "d")
	writeFile(t, right, "keep.txt", "k")

	hardFilter, err := filter.NewHardFilter(nil, []string{"*.log", "logs"})
	if err != nil {
		t.Fatalf("unable to create filter: %v", err)
	}
	base, err := ScanBasePair(
		filesystem.AbstractPath{Device: left},
		filesystem.AbstractPath{Device: right},
		&Config{Filter: hardFilter}, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	root := base.RootPair()

	if findFile(root, "keep.txt") == nil {
		t.Error("kept file missing")
	}
	if findFile(root, "skip.log") != nil {
		t.Error("excluded file recorded")
	}
	if findFolder(root, "logs") != nil {
		t.Error("conclusively excluded folder recorded")
	}
}

// TestScanBasePairClassifies tests that a scanned tree flows through the
// category engine.
func TestScanBasePairClassifies(t *testing.T) {
	left := testDevice(t)
	right := testDevice(t)
	writeFile(t, left, "same.txt", "content")
	writeFile(t, right, "same.txt", "content")
	fixed := time.Unix(1600000000, 0)
	if err := os.Chtimes(filepath.Join(left.Root(), "same.txt"), fixed, fixed); err != nil {
		t.Fatalf("unable to set times: %v", err)
	}
	if err := os.Chtimes(filepath.Join(right.Root(), "same.txt"), fixed, fixed); err != nil {
		t.Fatalf("unable to set times: %v", err)
	}

	base, err := ScanBasePair(
		filesystem.AbstractPath{Device: left},
		filesystem.AbstractPath{Device: right},
		nil, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	core.Classify(base, &core.CompareConfig{Variant: core.VariantTimeSize, FileTimeTolerance: 2})
	file := findFile(base.RootPair(), "same.txt")
	if file == nil || file.Category() != core.CategoryEqual {
		t.Errorf("scanned identical files not classified as equal")
	}
}
