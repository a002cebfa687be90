package lockstep

import (
	"os"
)

// DebugEnabled indicates whether or not debugging is enabled for Lockstep. It
// is set automatically based on the LOCKSTEP_DEBUG environment variable.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("LOCKSTEP_DEBUG") == "1"
}
