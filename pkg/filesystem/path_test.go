package filesystem

import (
	"testing"
)

// TestJoinPath tests JoinPath.
func TestJoinPath(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		base     string
		leaf     string
		expected string
	}{
		{"", "a", "a"},
		{"a", "b", "a/b"},
		{"a/b", "c", "a/b/c"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := JoinPath(test.base, test.leaf); result != test.expected {
			t.Errorf("JoinPath(%q, %q) = %q, expected %q", test.base, test.leaf, result, test.expected)
		}
	}
}

// TestJoinPathEmptyLeafPanics tests that JoinPath panics on an empty leaf.
func TestJoinPathEmptyLeafPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("JoinPath did not panic on empty leaf")
		}
	}()
	JoinPath("a", "")
}

// TestDirPath tests DirPath.
func TestDirPath(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		path     string
		expected string
	}{
		{"a", ""},
		{"a/b", "a"},
		{"a/b/c", "a/b"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := DirPath(test.path); result != test.expected {
			t.Errorf("DirPath(%q) = %q, expected %q", test.path, result, test.expected)
		}
	}
}

// TestBaseName tests BaseName.
func TestBaseName(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		path     string
		expected string
	}{
		{"", ""},
		{"a", "a"},
		{"a/b", "b"},
		{"a/b/c", "c"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := BaseName(test.path); result != test.expected {
			t.Errorf("BaseName(%q) = %q, expected %q", test.path, result, test.expected)
		}
	}
}

// TestSplitPath tests SplitPath.
func TestSplitPath(t *testing.T) {
	if components := SplitPath(""); components != nil {
		t.Error("root path did not decompose to nil")
	}
	components := SplitPath("a/b/c")
	if len(components) != 3 || components[0] != "a" || components[1] != "b" || components[2] != "c" {
		t.Errorf("unexpected decomposition: %v", components)
	}
}

// TestPathAncestorOf tests PathAncestorOf.
func TestPathAncestorOf(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		ancestor string
		path     string
		expected bool
	}{
		{"", "a", true},
		{"", "", true},
		{"a", "a", true},
		{"a", "a/b", true},
		{"a", "ab", false},
		{"a/b", "a", false},
		{"a/b", "a/b/c/d", true},
	}

	// Process test cases.
	for _, test := range tests {
		if result := PathAncestorOf(test.ancestor, test.path); result != test.expected {
			t.Errorf("PathAncestorOf(%q, %q) = %t, expected %t", test.ancestor, test.path, result, test.expected)
		}
	}
}

// TestPathLess tests PathLess.
func TestPathLess(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		first    string
		second   string
		expected bool
	}{
		{"", "", false},
		{"", "a", true},
		{"a", "", false},
		{"a", "a", false},
		{"a", "b", true},
		{"b", "a", false},
		{"a", "a/b", true},
		{"a/b", "a", false},
		{"a/b", "a/c", true},
		{"a/c", "b/a", true},
		{"ab", "a/b", false},
	}

	// Process test cases.
	for _, test := range tests {
		if result := PathLess(test.first, test.second); result != test.expected {
			t.Errorf("PathLess(%q, %q) = %t, expected %t", test.first, test.second, result, test.expected)
		}
	}
}
