package core

import (
	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/synchronization/status"
)

// testBase creates an empty pair tree with device-less roots, sufficient for
// engine tests that never touch storage.
func testBase() *BaseFolderPair {
	return NewBaseFolderPair(filesystem.AbstractPath{}, filesystem.AbstractPath{})
}

// tFile creates file attributes with the most commonly needed fields.
func tFile(name string, size uint64, modTime int64) *FileAttributes {
	return &FileAttributes{Name: name, Size: size, ModTime: modTime}
}

// tFilePrint creates file attributes carrying a file print.
func tFilePrint(name string, size uint64, modTime int64, print uint64) *FileAttributes {
	return &FileAttributes{Name: name, Size: size, ModTime: modTime, FilePrint: print}
}

// tLink creates symbolic link attributes.
func tLink(name string, modTime int64, target string) *SymlinkAttributes {
	return &SymlinkAttributes{Name: name, ModTime: modTime, Target: target}
}

// tFolder creates folder attributes.
func tFolder(name string) *FolderAttributes {
	return &FolderAttributes{Name: name}
}

// tCompare creates a time-size comparison configuration with the specified
// tolerance.
func tCompare(tolerance int64) *CompareConfig {
	return &CompareConfig{Variant: VariantTimeSize, FileTimeTolerance: tolerance}
}

// tInSyncFile creates a last-sync file record with identical descriptions on
// both sides.
func tInSyncFile(size uint64, modTime int64, variant ComparisonVariant) *InSyncFile {
	return &InSyncFile{
		Left:    DescrFile{ModTime: modTime},
		Right:   DescrFile{ModTime: modTime},
		Size:    size,
		Variant: variant,
	}
}

// recordingCallback captures informational log messages and counts warnings.
type recordingCallback struct {
	status.NopCallback
	// infos are the captured LogInfo messages.
	infos []string
	// warnings are the captured warning messages.
	warnings []string
}

// LogInfo implements status.Callback.LogInfo.
func (c *recordingCallback) LogInfo(message string) {
	c.infos = append(c.infos, message)
}

// ReportWarning implements status.Callback.ReportWarning.
func (c *recordingCallback) ReportWarning(message string, warnActive *bool) {
	if warnActive != nil && !*warnActive {
		return
	}
	c.warnings = append(c.warnings, message)
}

// snapshotDecisions captures every pair's direction and conflict annotation
// in traversal order.
type decision struct {
	direction SyncDirection
	conflict  string
}

func snapshotDecisions(base *BaseFolderPair) []decision {
	var decisions []decision
	base.Walk(func(pair Pair) {
		decisions = append(decisions, decision{pair.Direction(), pair.Conflict()})
	})
	return decisions
}
