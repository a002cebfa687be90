package core

import (
	"testing"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/core/filter"
)

// TestCheckPathDependency tests ancestor detection between base folders.
func TestCheckPathDependency(t *testing.T) {
	device, err := filesystem.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unable to create device: %v", err)
	}
	other, err := filesystem.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unable to create device: %v", err)
	}

	outer := filesystem.AbstractPath{Device: device, Path: "data"}
	inner := filesystem.AbstractPath{Device: device, Path: "data/backup"}
	elsewhere := filesystem.AbstractPath{Device: device, Path: "unrelated"}
	otherDevice := filesystem.AbstractPath{Device: other, Path: "data/backup"}

	// Nesting on the same device is a dependency, in both argument orders.
	if dependency := CheckPathDependency(outer, inner, nil, nil); dependency == nil {
		t.Error("nested folders not reported")
	} else if dependency.RelPath != "backup" {
		t.Errorf("unexpected relative path: %q", dependency.RelPath)
	}
	if dependency := CheckPathDependency(inner, outer, nil, nil); dependency == nil {
		t.Error("nested folders not reported with swapped arguments")
	}

	// Identical roots always conflict.
	if CheckPathDependency(outer, outer, nil, nil) == nil {
		t.Error("identical roots not reported")
	}

	// Disjoint paths and distinct devices are fine.
	if CheckPathDependency(outer, elsewhere, nil, nil) != nil {
		t.Error("disjoint folders reported as dependent")
	}
	if CheckPathDependency(outer, otherDevice, nil, nil) != nil {
		t.Error("folders on non-equivalent devices reported as dependent")
	}
}

// TestCheckPathDependencyFiltered tests that a filter conclusively excluding
// the descendant suppresses the dependency.
func TestCheckPathDependencyFiltered(t *testing.T) {
	device, err := filesystem.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unable to create device: %v", err)
	}
	outer := filesystem.AbstractPath{Device: device, Path: "data"}
	inner := filesystem.AbstractPath{Device: device, Path: "data/backup"}

	// A filter excluding the backup subtree breaks the dependency.
	excluding, err := filter.NewHardFilter(nil, []string{"backup"})
	if err != nil {
		t.Fatalf("unable to create filter: %v", err)
	}
	if CheckPathDependency(outer, inner, excluding, excluding) != nil {
		t.Error("dependency reported despite conclusive exclusion")
	}

	// A filter that merely fails to include the folder - but could admit
	// descendants - keeps the dependency.
	leafIncludes, err := filter.NewHardFilter([]string{"*.txt"}, nil)
	if err != nil {
		t.Fatalf("unable to create filter: %v", err)
	}
	if CheckPathDependency(outer, inner, leafIncludes, leafIncludes) == nil {
		t.Error("dependency suppressed despite possible descendant matches")
	}
}
