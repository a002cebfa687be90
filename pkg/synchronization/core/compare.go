package core

import (
	"github.com/lockstep-sync/lockstep/pkg/filesystem"
)

// ComparisonVariant identifies the strategy used to decide whether two files
// are equal.
type ComparisonVariant uint8

const (
	// VariantTimeSize compares files by modification time and size.
	VariantTimeSize ComparisonVariant = iota
	// VariantContent compares files by content.
	VariantContent
	// VariantSize compares files by size only.
	VariantSize
)

// String provides a human-readable representation of a comparison variant.
func (v ComparisonVariant) String() string {
	switch v {
	case VariantTimeSize:
		return "time and size"
	case VariantContent:
		return "content"
	case VariantSize:
		return "size"
	default:
		return "unknown"
	}
}

const (
	// FATTimeTolerance is the tolerance, in seconds, accounting for the
	// 2-second modification time precision of FAT filesystems. It is applied
	// universally when comparing scanned times against last-sync records,
	// whose times may have been captured on (or estimated for) such a
	// filesystem.
	FATTimeTolerance = 2
)

// ContentCompareFunc compares the content of two files, returning true if
// they are byte-equal. It is injected into the category engine for the
// content comparison variant so that the engine itself stays free of I/O
// policy.
type ContentCompareFunc func(left, right filesystem.AbstractPath) (bool, error)

// CompareConfig carries the session's comparison settings.
type CompareConfig struct {
	// Variant is the comparison variant.
	Variant ComparisonVariant
	// FileTimeTolerance is the tolerance, in seconds, applied to
	// modification time comparisons between the two sides.
	FileTimeTolerance int64
	// IgnoreTimeShiftMinutes lists whole-minute time shifts (e.g. timezone
	// or DST offsets of filesystems that store local times) whose multiples
	// are ignored during time comparison.
	IgnoreTimeShiftMinutes []int64
	// ContentCompare compares file content for the content variant. If nil,
	// files of equal size under the content variant are classified as
	// conflicts, since their equality can't be determined.
	ContentCompare ContentCompareFunc
}

// TimesMatch determines whether two modification times agree within the
// specified tolerance, additionally accepting differences that are a whole
// multiple of any of the listed minute shifts (within the same tolerance of
// the multiple).
func TimesMatch(first, second, tolerance int64, shiftMinutes []int64) bool {
	// Compute the magnitude of the difference.
	delta := first - second
	if delta < 0 {
		delta = -delta
	}

	// Check the plain tolerance.
	if delta <= tolerance {
		return true
	}

	// Check each whitelisted shift: the difference is acceptable if the
	// residual after subtracting the nearest multiple of the shift is within
	// tolerance.
	for _, minutes := range shiftMinutes {
		if minutes <= 0 {
			continue
		}
		shift := minutes * 60
		residual := delta % shift
		if residual <= tolerance || shift-residual <= tolerance {
			return true
		}
	}

	// No match.
	return false
}

// timesMatchSides determines whether the two sides' modification times agree
// under the session tolerance and shift allowance.
func (c *CompareConfig) timesMatchSides(left, right int64) bool {
	return TimesMatch(left, right, c.FileTimeTolerance, c.IgnoreTimeShiftMinutes)
}

// timesMatchDB determines whether a scanned modification time agrees with a
// last-sync record's time. The FAT tolerance is applied here regardless of
// the session tolerance, since last-sync times are either scan metadata or
// estimates captured at copy time, both fine at 2-second precision.
func (c *CompareConfig) timesMatchDB(scanned, recorded int64) bool {
	tolerance := c.FileTimeTolerance
	if tolerance < FATTimeTolerance {
		tolerance = FATTimeTolerance
	}
	return TimesMatch(scanned, recorded, tolerance, c.IgnoreTimeShiftMinutes)
}
