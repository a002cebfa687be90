package core

import (
	"testing"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
)

// TestClassifyFilesTimeSize tests file classification under the time-size
// variant, including tie-breaks at the tolerance boundary.
func TestClassifyFilesTimeSize(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		description string
		left        *FileAttributes
		right       *FileAttributes
		expected    Category
	}{
		{"left only", tFile("a", 10, 100), nil, CategoryLeftOnly},
		{"right only", nil, tFile("a", 10, 100), CategoryRightOnly},
		{"equal", tFile("a", 10, 100), tFile("a", 10, 100), CategoryEqual},
		{"equal at tolerance boundary", tFile("a", 10, 100), tFile("a", 10, 102), CategoryEqual},
		{"right newer beyond boundary", tFile("a", 10, 100), tFile("a", 10, 103), CategoryRightNewer},
		{"left newer", tFile("a", 10, 200), tFile("a", 10, 100), CategoryLeftNewer},
		{"same time different size", tFile("a", 10, 100), tFile("a", 20, 100), CategoryConflict},
		{"different time different size", tFile("a", 10, 100), tFile("a", 20, 500), CategoryDifferentContent},
	}

	// Process test cases.
	for _, test := range tests {
		base := testBase()
		file := base.RootPair().AddFile(test.left, test.right)
		Classify(base, tCompare(2))
		if file.Category() != test.expected {
			t.Errorf("%s: category = %v, expected %v", test.description, file.Category(), test.expected)
		}
		if test.expected == CategoryConflict && file.CategoryReason() == "" {
			t.Errorf("%s: conflict category carries no reason", test.description)
		}
	}
}

// TestClassifyFilesContent tests file classification under the content
// variant.
func TestClassifyFilesContent(t *testing.T) {
	for _, contentEqual := range []bool{true, false} {
		base := testBase()
		file := base.RootPair().AddFile(tFile("a", 10, 100), tFile("a", 10, 999))
		compared := false
		config := &CompareConfig{
			Variant: VariantContent,
			ContentCompare: func(left, right filesystem.AbstractPath) (bool, error) {
				compared = true
				return contentEqual, nil
			},
		}
		Classify(base, config)
		if !compared {
			t.Error("content comparer not consulted for equal-size files")
		}
		expected := CategoryEqual
		if !contentEqual {
			expected = CategoryDifferentContent
		}
		if file.Category() != expected {
			t.Errorf("contentEqual=%t: category = %v, expected %v", contentEqual, file.Category(), expected)
		}
	}

	// Files of different sizes must not consult the comparer.
	base := testBase()
	file := base.RootPair().AddFile(tFile("a", 10, 100), tFile("a", 20, 100))
	config := &CompareConfig{
		Variant: VariantContent,
		ContentCompare: func(left, right filesystem.AbstractPath) (bool, error) {
			t.Error("content comparer consulted for files of different sizes")
			return false, nil
		},
	}
	Classify(base, config)
	if file.Category() != CategoryDifferentContent {
		t.Errorf("category = %v, expected %v", file.Category(), CategoryDifferentContent)
	}
}

// TestClassifyFilesSize tests file classification under the size variant.
func TestClassifyFilesSize(t *testing.T) {
	base := testBase()
	same := base.RootPair().AddFile(tFile("same", 10, 100), tFile("same", 10, 999))
	different := base.RootPair().AddFile(tFile("diff", 10, 100), tFile("diff", 11, 100))
	Classify(base, &CompareConfig{Variant: VariantSize})
	if same.Category() != CategoryEqual {
		t.Errorf("equal-size category = %v", same.Category())
	}
	if different.Category() != CategoryDifferentContent {
		t.Errorf("different-size category = %v", different.Category())
	}
}

// TestClassifySymlinks tests symbolic link classification.
func TestClassifySymlinks(t *testing.T) {
	// Time-size variant: modification times decide.
	base := testBase()
	equal := base.RootPair().AddSymlink(tLink("eq", 100, "x"), tLink("eq", 101, "y"))
	newer := base.RootPair().AddSymlink(tLink("nw", 500, "x"), tLink("nw", 100, "x"))
	only := base.RootPair().AddSymlink(nil, tLink("only", 100, "x"))
	Classify(base, tCompare(2))
	if equal.Category() != CategoryEqual {
		t.Errorf("time-matched symlink category = %v", equal.Category())
	}
	if newer.Category() != CategoryLeftNewer {
		t.Errorf("left-newer symlink category = %v", newer.Category())
	}
	if only.Category() != CategoryRightOnly {
		t.Errorf("one-sided symlink category = %v", only.Category())
	}

	// Content variant: target strings decide.
	base = testBase()
	sameTarget := base.RootPair().AddSymlink(tLink("s", 100, "x"), tLink("s", 999, "x"))
	diffTarget := base.RootPair().AddSymlink(tLink("d", 100, "x"), tLink("d", 100, "y"))
	Classify(base, &CompareConfig{Variant: VariantContent})
	if sameTarget.Category() != CategoryEqual {
		t.Errorf("same-target symlink category = %v", sameTarget.Category())
	}
	if diffTarget.Category() != CategoryDifferentContent {
		t.Errorf("different-target symlink category = %v", diffTarget.Category())
	}
}

// TestClassifyFolders tests folder classification.
func TestClassifyFolders(t *testing.T) {
	base := testBase()
	equal := base.RootPair().AddFolder(tFolder("eq"), tFolder("eq"))
	followed := base.RootPair().AddFolder(
		&FolderAttributes{Name: "fl", IsFollowedSymlink: true}, tFolder("fl"))
	only := base.RootPair().AddFolder(tFolder("only"), nil)
	Classify(base, tCompare(2))
	if equal.Category() != CategoryEqual {
		t.Errorf("equal folder category = %v", equal.Category())
	}
	if followed.Category() != CategoryDifferentMetadata {
		t.Errorf("followed-symlink folder category = %v", followed.Category())
	}
	if only.Category() != CategoryLeftOnly {
		t.Errorf("one-sided folder category = %v", only.Category())
	}
}

// TestNamesEqual tests normalization-insensitive name equality.
func TestNamesEqual(t *testing.T) {
	// Define test cases. "café" appears once in NFC ("café") and once
	// in NFD ("café") form.
	var tests = []struct {
		first    string
		second   string
		expected bool
	}{
		{"a", "a", true},
		{"a", "A", false},
		{"café", "café", true},
		{"café", "cafe", false},
	}

	// Process test cases.
	for _, test := range tests {
		if result := NamesEqual(test.first, test.second); result != test.expected {
			t.Errorf("NamesEqual(%q, %q) = %t, expected %t", test.first, test.second, result, test.expected)
		}
	}
}
