package filesystem

import (
	"fmt"
	"io"

	"github.com/lockstep-sync/lockstep/pkg/logging"
	"github.com/lockstep-sync/lockstep/pkg/must"
)

// Move moves an item between two abstract paths. If the paths reside on
// equivalent devices, the move is performed as an atomic in-device rename.
// Otherwise ErrMoveUnsupported is returned and callers are expected to fall
// back to a copy-and-delete decomposition.
func Move(from, to AbstractPath, replaceExisting bool) error {
	if !Equivalent(from.Device, to.Device) {
		return ErrMoveUnsupported
	}
	return from.Device.MoveAndRename(from.Path, to.Path, replaceExisting)
}

// CopySymlink copies a symbolic link between two abstract paths. The
// operation decomposes into a target read and a link creation, so it works
// across non-equivalent devices as long as both support symbolic links.
func CopySymlink(from, to AbstractPath) error {
	target, err := from.Device.ReadSymlink(from.Path)
	if err != nil {
		return fmt.Errorf("unable to read symlink target: %w", err)
	}
	if err := to.Device.CreateSymlink(to.Path, target); err != nil {
		return fmt.Errorf("unable to create symlink: %w", err)
	}
	return nil
}

// CopyNewFolder creates a folder at the target path and, when the paths
// reside on equivalent devices, copies the source folder's permissions onto
// it.
func CopyNewFolder(from, to AbstractPath) error {
	if err := to.Device.CreateFolderPlain(to.Path); err != nil {
		return err
	}
	if Equivalent(from.Device, to.Device) {
		if err := from.Device.CopyItemPermissions(from.Path, to.Path, ItemTypeFolder); err != nil {
			return fmt.Errorf("unable to copy folder permissions: %w", err)
		}
	}
	return nil
}

// CopyNewFile copies a file between two abstract paths. The target must not
// exist. When the paths reside on equivalent devices, the device's native
// copy is used; otherwise the copy decomposes into a generic stream transfer.
// The ioCallback, if non-nil, receives per-block byte deltas and may abort
// the copy by returning an error, in which case any partially written target
// is removed.
func CopyNewFile(from, to AbstractPath, ioCallback IOCallback, logger *logging.Logger) (*FileCopyResult, error) {
	// Use the native path if the devices are equivalent.
	if Equivalent(from.Device, to.Device) {
		return from.Device.CopyNewFile(from.Path, to.Path, ioCallback)
	}

	// Query source metadata for the preallocation hint and the modification
	// time to replicate.
	sourceMetadata, err := from.Device.ReadMetadata(from.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to read source metadata: %w", err)
	}

	// Open the source for reading and ensure its closure.
	input, err := from.Device.OpenInput(from.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open source: %w", err)
	}
	defer must.Close(input, logger)

	// Open the target for writing. The device applies the deferred
	// modification time after the stream is closed.
	output, err := to.Device.OpenOutput(to.Path, sourceMetadata.Size, sourceMetadata.ModificationTime)
	if err != nil {
		return nil, fmt.Errorf("unable to open target: %w", err)
	}

	// removeTarget removes the partially written target after a failure.
	removeTarget := func() {
		if err := to.Device.RemoveFilePlain(to.Path); err != nil {
			logger.Warnf("Unable to remove incomplete target '%s': %s", to, err.Error())
		}
	}

	// Transfer content block by block, polling the callback after each
	// block.
	buffer := make([]byte, input.BlockSize())
	var copied uint64
	for {
		read, readErr := input.Read(buffer)
		if read > 0 {
			if _, writeErr := output.Write(buffer[:read]); writeErr != nil {
				must.Close(output, logger)
				removeTarget()
				return nil, fmt.Errorf("unable to write target: %w", writeErr)
			}
			copied += uint64(read)
			if ioCallback != nil {
				if cbErr := ioCallback(uint64(read)); cbErr != nil {
					must.Close(output, logger)
					removeTarget()
					return nil, cbErr
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			must.Close(output, logger)
			removeTarget()
			return nil, fmt.Errorf("unable to read source: %w", readErr)
		}
	}

	// Close the target before the device applies the modification time.
	if err := output.Close(); err != nil {
		removeTarget()
		return nil, fmt.Errorf("unable to close target: %w", err)
	}

	// Capture the target's file print. Failure here is non-fatal since the
	// content is already complete.
	result := &FileCopyResult{
		BytesCopied: copied,
		SourcePrint: sourceMetadata.FilePrint,
	}
	if targetMetadata, err := to.Device.ReadMetadata(to.Path); err == nil {
		result.TargetPrint = targetMetadata.FilePrint
	}

	// Done.
	return result, nil
}
