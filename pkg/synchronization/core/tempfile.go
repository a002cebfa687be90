package core

import (
	"strings"
)

// TempFileSuffix is the reserved suffix marking copy-in-progress artifacts.
// It is a cross-component contract: transactional copies write their
// intermediate files under this suffix, the scanner reports such items like
// any other, and the direction resolver schedules any one-sided item bearing
// the suffix for deletion regardless of policy.
const TempFileSuffix = ".lss_tmp"

// IsTempFileName indicates whether an item name carries the reserved
// temporary suffix.
func IsTempFileName(name string) bool {
	return strings.HasSuffix(name, TempFileSuffix)
}
