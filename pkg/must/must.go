// Package must provides best-effort helpers for cleanup operations whose
// failures should be logged but not propagated, typically in defer statements.
package must

import (
	"io"
	"os"

	"github.com/lockstep-sync/lockstep/pkg/logging"
)

// Close closes the closer and logs any failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("Unable to close: %s", err.Error())
	}
}

// OSRemove removes the target path and logs any failure.
func OSRemove(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil {
		logger.Warnf("Unable to remove '%s': %s", path, err.Error())
	}
}

// OSRemoveAll removes the target path recursively and logs any failure.
func OSRemoveAll(path string, logger *logging.Logger) {
	if err := os.RemoveAll(path); err != nil {
		logger.Warnf("Unable to remove '%s': %s", path, err.Error())
	}
}
