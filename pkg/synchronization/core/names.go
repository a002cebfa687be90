package core

import (
	"golang.org/x/text/unicode/norm"
)

// NamesEqual performs an equality comparison between two item names. Names
// are matched case-sensitively, but composition-insensitively: names that
// differ only in Unicode normalization form (e.g. NFD names produced by
// macOS filesystems versus their NFC equivalents) compare equal.
// Normalization is applied only for comparison; stored names are never
// rewritten.
func NamesEqual(first, second string) bool {
	if first == second {
		return true
	}
	return norm.NFC.String(first) == norm.NFC.String(second)
}
