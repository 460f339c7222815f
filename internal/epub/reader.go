package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

// maxEntrySize caps the decompressed size of a single archive entry.
const maxEntrySize int64 = 256 * 1024 * 1024

// Archive provides access to the entries of an EPUB zip archive.
// An Archive is not safe for concurrent use.
type Archive struct {
	zipReader *zip.Reader
	closer    io.Closer // non-nil only when opened from a path
	files     map[string]*zip.File
	lower     map[string]*zip.File
	closeOnce sync.Once
	closeErr  error
}

// OpenArchive opens the zip archive at path.
// The caller must call Close when done.
func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return newArchive(&zr.Reader, zr), nil
}

// NewArchive creates an Archive from r. The caller owns r; Close only
// releases internal state.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &OpenError{Err: err}
	}
	return newArchive(zr, nil), nil
}

func newArchive(zr *zip.Reader, closer io.Closer) *Archive {
	a := &Archive{
		zipReader: zr,
		closer:    closer,
		files:     make(map[string]*zip.File, len(zr.File)),
		lower:     make(map[string]*zip.File, len(zr.File)),
	}

	// Build file map with normalized paths
	for _, f := range zr.File {
		name := normalizePath(f.Name)
		if _, dup := a.files[name]; !dup {
			a.files[name] = f
		}
		if _, dup := a.lower[strings.ToLower(name)]; !dup {
			a.lower[strings.ToLower(name)] = f
		}
	}
	return a
}

// Close releases the underlying file handle. It is safe to call more than once.
func (a *Archive) Close() error {
	a.closeOnce.Do(func() {
		if a.closer != nil {
			a.closeErr = a.closer.Close()
		}
	})
	return a.closeErr
}

// Files returns the entry names in archive order.
func (a *Archive) Files() []string {
	names := make([]string, 0, len(a.zipReader.File))
	for _, f := range a.zipReader.File {
		names = append(names, f.Name)
	}
	return names
}

// ReadFile reads the whole entry at name. A missing entry yields an error
// matching ErrFileNotFound; any other error is an I/O failure.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f := a.lookup(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return readEntry(f, maxEntrySize)
}

// lookup finds an entry by exact path, then case-insensitively, then with
// percent-escapes decoded.
func (a *Archive) lookup(name string) *zip.File {
	name = normalizePath(name)
	if f, ok := a.files[name]; ok {
		return f
	}
	if f, ok := a.lower[strings.ToLower(name)]; ok {
		return f
	}
	if decoded, err := url.PathUnescape(name); err == nil && decoded != name {
		return a.lookup(decoded)
	}
	return nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%w: %s: %d bytes exceeds limit of %d", ErrRead, f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrRead, f.Name, err)
	}
	defer rc.Close()

	// The declared size may be forged, so read one byte past the limit.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s: decompressed size exceeds limit of %d", ErrRead, f.Name, limit)
	}
	return data, nil
}

// isNotFound reports whether err means the entry is absent.
func isNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}

// normalizePath normalizes entry paths (removes ./ and leading / prefixes)
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
