package fsys

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// zipMagic is the local-file-header signature every ZIP archive starts with.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// FileSystem is the narrow filesystem capability all core code goes
// through. Tests substitute an in-memory variant.
type FileSystem interface {
	// Exists reports whether a file or directory exists at path
	Exists(path string) (bool, error)

	// Open opens the named file for reading
	Open(path string) (io.ReadCloser, error)

	// Create creates or truncates the named file for writing,
	// creating intermediate directories as needed
	Create(path string) (io.WriteCloser, error)

	// RemoveFile removes the named file
	RemoveFile(path string) error

	// MoveFile moves a file, creating intermediate directories for the
	// destination as needed
	MoveFile(from, to string) error

	// ReadDir reads the named directory and returns its entries
	ReadDir(path string) ([]os.FileInfo, error)

	// Stat returns file info for the named file
	Stat(path string) (os.FileInfo, error)

	// MkdirAll creates a directory path along with any necessary parents
	MkdirAll(path string) error

	// IsZipArchive reports whether the file at path is a ZIP archive,
	// determined by its magic bytes rather than its extension
	IsZipArchive(path string) (bool, error)
}

// aferoFS implements FileSystem on top of an afero backend
type aferoFS struct {
	fs afero.Fs
}

// New returns a FileSystem backed by the real OS filesystem
func New() FileSystem {
	return &aferoFS{fs: afero.NewOsFs()}
}

// NewMemory returns an in-memory FileSystem for tests
func NewMemory() FileSystem {
	return &aferoFS{fs: afero.NewMemMapFs()}
}

// NewFromAfero wraps an arbitrary afero backend
func NewFromAfero(fs afero.Fs) FileSystem {
	return &aferoFS{fs: fs}
}

func (a *aferoFS) Exists(path string) (bool, error) {
	return afero.Exists(a.fs, path)
}

func (a *aferoFS) Open(path string) (io.ReadCloser, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func (a *aferoFS) Create(path string) (io.WriteCloser, error) {
	if err := a.MkdirAll(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := a.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func (a *aferoFS) RemoveFile(path string) error {
	if err := a.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (a *aferoFS) MoveFile(from, to string) error {
	if err := a.MkdirAll(filepath.Dir(to)); err != nil {
		return err
	}

	if err := a.fs.Rename(from, to); err == nil {
		return nil
	}

	// Rename failed (e.g. across filesystems), fall back to copy + delete
	src, err := a.fs.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer src.Close()

	dst, err := a.fs.Create(to)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", to, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		a.fs.Remove(to)
		return fmt.Errorf("failed to copy %s to %s: %w", from, to, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", to, err)
	}

	if err := a.fs.Remove(from); err != nil {
		return fmt.Errorf("failed to remove %s after move: %w", from, err)
	}
	return nil
}

func (a *aferoFS) ReadDir(path string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	return entries, nil
}

func (a *aferoFS) Stat(path string) (os.FileInfo, error) {
	return a.fs.Stat(path)
}

func (a *aferoFS) MkdirAll(path string) error {
	if err := a.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func (a *aferoFS) IsZipArchive(path string) (bool, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	magic := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, magic)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// Shorter than the magic, cannot be a ZIP
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return n == len(zipMagic) && bytes.Equal(magic, zipMagic), nil
}

// WriteFile is a convenience helper for writing a whole file through
// the capability (used by tests and thumbnail generation)
func WriteFile(fs FileSystem, path string, data []byte) error {
	w, err := fs.Create(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return w.Close()
}

// ReadFile is a convenience helper for reading a whole file through
// the capability
func ReadFile(fs FileSystem, path string) ([]byte, error) {
	r, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
