package core

import (
	"testing"
)

// TestTimesMatch tests time comparison, including behavior exactly at the
// tolerance boundary and the whole-minute shift allowance.
func TestTimesMatch(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		first     int64
		second    int64
		tolerance int64
		shifts    []int64
		expected  bool
	}{
		// Plain tolerance.
		{100, 100, 0, nil, true},
		{100, 102, 2, nil, true},
		{100, 103, 2, nil, false},
		{103, 100, 2, nil, false},
		{100, 98, 2, nil, true},
		// Exactly at the boundary and one second beyond.
		{0, 2, 2, nil, true},
		{0, 3, 2, nil, false},
		// One-hour shift (e.g. DST on filesystems storing local time).
		{0, 3600, 2, []int64{60}, true},
		{0, 3602, 2, []int64{60}, true},
		{0, 3603, 2, []int64{60}, false},
		{0, 3598, 2, []int64{60}, true},
		// Multiples of the shift.
		{0, 7200, 2, []int64{60}, true},
		{0, 7205, 2, []int64{60}, false},
		// Without the shift whitelisted, the difference is rejected.
		{0, 3600, 2, nil, false},
		// Multiple shift entries.
		{0, 1800, 2, []int64{60, 30}, true},
		// Non-positive shifts are ignored.
		{0, 3600, 2, []int64{0, -60}, false},
	}

	// Process test cases.
	for i, test := range tests {
		result := TimesMatch(test.first, test.second, test.tolerance, test.shifts)
		if result != test.expected {
			t.Errorf("test %d: TimesMatch(%d, %d, %d, %v) = %t, expected %t",
				i, test.first, test.second, test.tolerance, test.shifts, result, test.expected)
		}
	}
}

// TestStillInSync tests the asymmetric cross-variant acceptance matrix for
// last-sync records.
func TestStillInSync(t *testing.T) {
	// Define test cases.
	var tests = []struct {
		current  ComparisonVariant
		recorded ComparisonVariant
		leftTime int64
		rightTime int64
		expected bool
	}{
		// A content-verified record satisfies the time-size variant.
		{VariantTimeSize, VariantContent, 0, 10000, true},
		// A time-size record satisfies the time-size variant if its own
		// times agree.
		{VariantTimeSize, VariantTimeSize, 100, 100, true},
		{VariantTimeSize, VariantTimeSize, 100, 101, true},
		{VariantTimeSize, VariantTimeSize, 100, 200, false},
		// The content variant accepts only content-verified records.
		{VariantContent, VariantContent, 0, 0, true},
		{VariantContent, VariantTimeSize, 100, 100, false},
		{VariantContent, VariantSize, 100, 100, false},
		// The size variant accepts anything.
		{VariantSize, VariantTimeSize, 0, 10000, true},
		{VariantSize, VariantContent, 0, 0, true},
	}

	// Process test cases.
	for i, test := range tests {
		config := &CompareConfig{Variant: test.current, FileTimeTolerance: 2}
		record := &InSyncFile{
			Left:    DescrFile{ModTime: test.leftTime},
			Right:   DescrFile{ModTime: test.rightTime},
			Variant: test.recorded,
		}
		if result := config.stillInSync(record); result != test.expected {
			t.Errorf("test %d: stillInSync = %t, expected %t", i, result, test.expected)
		}
	}
}
