package epub

import (
	"errors"
	"fmt"
)

var (
	// ErrArchiveOpen indicates the archive could not be opened at all
	// (missing file, permission denied, not a zip archive).
	ErrArchiveOpen = errors.New("epub: cannot open archive")

	// ErrFileNotFound indicates the requested entry does not exist in the archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")

	// ErrRead indicates an unexpected I/O failure while reading an archive entry.
	ErrRead = errors.New("epub: failed to read archive entry")
)

// OpenError is returned when an archive cannot be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("epub: open archive: %v", e.Err)
	}
	return fmt.Sprintf("epub: open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is reports whether target is ErrArchiveOpen.
func (e *OpenError) Is(target error) bool { return target == ErrArchiveOpen }
