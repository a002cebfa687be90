package filesystem

import (
	"testing"
)

// TestCheckFoldersExist tests the grouped existence probes.
func TestCheckFoldersExist(t *testing.T) {
	device := newTestLocal(t)
	if err := device.CreateFolderPlain("present"); err != nil {
		t.Fatalf("unable to create folder: %v", err)
	}
	writeTestFile(t, device, "file.txt", "content")

	results := CheckFoldersExist([]AbstractPath{
		{Device: device, Path: "present"},
		{Device: device, Path: "missing"},
		{Device: device, Path: "file.txt"},
	})

	if len(results) != 3 {
		t.Fatalf("unexpected result count: %d", len(results))
	}
	if results[0].Err != nil || !results[0].Exists {
		t.Errorf("present folder = (%t, %v)", results[0].Exists, results[0].Err)
	}
	if results[1].Err != nil || results[1].Exists {
		t.Errorf("missing folder = (%t, %v)", results[1].Exists, results[1].Err)
	}
	// A file is not a folder.
	if results[2].Err != nil || results[2].Exists {
		t.Errorf("file probed as folder = (%t, %v)", results[2].Exists, results[2].Err)
	}
}
