// Package blockfile reads the node's blkNNNNN.dat container files and cuts
// them into framed block records.
package blockfile

import (
	"errors"
	"fmt"
)

var (
	// ErrFraming marks a bad marker or length prefix. The scanner recovers
	// from it by searching for the next marker.
	ErrFraming = errors.New("framing error")
	// ErrIO marks a container file that could not be read.
	ErrIO = errors.New("block file io error")
)

// FileError reports an unreadable container file. Other files are not affected.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is reports every FileError as ErrIO.
func (e *FileError) Is(target error) bool {
	return target == ErrIO
}
