package lockstep

import (
	"fmt"
)

const (
	// VersionMajor represents the current major version of Lockstep.
	VersionMajor = 0
	// VersionMinor represents the current minor version of Lockstep.
	VersionMinor = 3
	// VersionPatch represents the current patch version of Lockstep.
	VersionPatch = 0
)

// Version provides a stringified version of the current Lockstep version.
var Version string

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
