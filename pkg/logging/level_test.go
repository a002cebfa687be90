package logging

import (
	"testing"
)

// TestLevelRoundTrip tests that every level's name parses back to itself.
func TestLevelRoundTrip(t *testing.T) {
	for _, level := range []Level{LevelDisabled, LevelError, LevelWarn, LevelInfo, LevelDebug} {
		parsed, err := ParseLevel(level.String())
		if err != nil || parsed != level {
			t.Errorf("level %v round-tripped to (%v, %v)", level, parsed, err)
		}
	}
}

// TestParseLevelInvalid tests rejection of unknown names.
func TestParseLevelInvalid(t *testing.T) {
	for _, name := range []string{"", "verbose", "WARN"} {
		if _, err := ParseLevel(name); err == nil {
			t.Errorf("level name %q unexpectedly accepted", name)
		}
	}
}

// TestNilLoggerSafe tests that a nil logger discards output without
// panicking and produces nil subloggers.
func TestNilLoggerSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("discarded %d", 1)
	logger.Warnf("discarded")
	logger.Error(nil)
	if logger.Sublogger("child") != nil {
		t.Error("nil logger produced a non-nil sublogger")
	}
}

// TestSubloggerPrefixChain tests prefix accumulation.
func TestSubloggerPrefixChain(t *testing.T) {
	child := NewLogger(LevelInfo).Sublogger("sync").Sublogger("scan")
	if child.prefix != "sync.scan" {
		t.Errorf("unexpected prefix: %q", child.prefix)
	}
}
