package tally

import (
	"errors"
	"fmt"
)

// ErrNoExtensions is returned when Aggregate is called without any accepted suffix.
var ErrNoExtensions = errors.New("no file extensions to count")

// PathError reports an invalid or unreadable root. It aborts the run.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid root %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// DecodeError reports a file whose bytes are not valid UTF-8 text.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure on a single file or directory.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// errInvalidUTF8 is wrapped by DecodeError when content fails validation.
var errInvalidUTF8 = errors.New("invalid UTF-8 byte sequence")

// Warning is a recovered per-file failure. The file it names was not counted.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return w.Err.Error()
}
