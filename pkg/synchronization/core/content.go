package core

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
	"github.com/lockstep-sync/lockstep/pkg/logging"
	"github.com/lockstep-sync/lockstep/pkg/must"
)

// StreamContentCompare returns a content comparer that reads both files
// through their devices' input streams and compares them block by block. The
// optional ioCallback receives per-block byte deltas (counting both streams)
// and may abort the comparison by returning an error.
func StreamContentCompare(ioCallback filesystem.IOCallback, logger *logging.Logger) ContentCompareFunc {
	return func(left, right filesystem.AbstractPath) (bool, error) {
		leftStream, err := left.Device.OpenInput(left.Path)
		if err != nil {
			return false, fmt.Errorf("unable to open left file: %w", err)
		}
		defer must.Close(leftStream, logger)
		rightStream, err := right.Device.OpenInput(right.Path)
		if err != nil {
			return false, fmt.Errorf("unable to open right file: %w", err)
		}
		defer must.Close(rightStream, logger)

		// Compare block by block. The block size is the smaller of the two
		// streams' block sizes; ReadFull smooths over devices that return
		// short reads.
		blockSize := leftStream.BlockSize()
		if rightBlockSize := rightStream.BlockSize(); rightBlockSize < blockSize {
			blockSize = rightBlockSize
		}
		leftBuffer := make([]byte, blockSize)
		rightBuffer := make([]byte, blockSize)
		for {
			leftRead, leftErr := io.ReadFull(leftStream, leftBuffer)
			rightRead, rightErr := io.ReadFull(rightStream, rightBuffer)
			if leftRead != rightRead {
				return false, nil
			}
			if !bytes.Equal(leftBuffer[:leftRead], rightBuffer[:rightRead]) {
				return false, nil
			}
			if ioCallback != nil && leftRead > 0 {
				if err := ioCallback(uint64(2 * leftRead)); err != nil {
					return false, err
				}
			}

			leftDone := leftErr == io.EOF || leftErr == io.ErrUnexpectedEOF
			rightDone := rightErr == io.EOF || rightErr == io.ErrUnexpectedEOF
			if leftDone && rightDone {
				return true, nil
			} else if leftDone != rightDone {
				return false, nil
			}
			if leftErr != nil {
				return false, fmt.Errorf("unable to read left file: %w", leftErr)
			}
			if rightErr != nil {
				return false, fmt.Errorf("unable to read right file: %w", rightErr)
			}
		}
	}
}
