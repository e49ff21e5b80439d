package sequencer

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for SMF files that cannot be normalized
// to multi-track form.
var ErrUnsupportedFormat = errors.New("SMF format cannot be converted to multi-track")

// ErrUnsupportedTimeFormat is returned for SMPTE-timed files.
var ErrUnsupportedTimeFormat = errors.New("SMPTE time format is not supported")

// ErrDeltaOverflow is returned when the gap between two events is larger
// than a variable-length delta can hold.
var ErrDeltaOverflow = errors.New("delta time exceeds SMF limit")

// DecodeError wraps any failure to load a file. No workspace is produced.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode SMF: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// IndexError reports a track index outside the workspace.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("track index %d out of range (%d tracks)", e.Index, e.Len)
}
