// Package archive enumerates the logical entries of an input file.
// A ZIP archive yields one entry per member; any other file yields a
// single entry named after its basename. Entry content is hashed in a
// streaming fashion so entries are never held in memory whole.
package archive

import (
	"archive/zip"
	"crypto/sha1"
	"fmt"
	"io"
	"path/filepath"

	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

const hashBufferSize = 8 * 1024

// Entry describes one logical file inside an input
type Entry struct {
	Name string // logical name: ZIP member name or file basename
	Size int64
	SHA1 string // hex SHA-1 of the uncompressed content
}

// Reader opens input files and yields their entries
type Reader struct {
	fs fsys.FileSystem
}

// New creates a Reader over the given filesystem capability
func New(fs fsys.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// Entries inspects the file at path and returns its entries in order.
// The decision between single file and ZIP archive is made from the
// file's magic bytes, not its extension.
func (r *Reader) Entries(path string) ([]Entry, error) {
	isZip, err := r.fs.IsZipArchive(path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", path, err)
	}

	if isZip {
		return r.zipEntries(path)
	}
	return r.singleEntry(path)
}

// OpenEntry opens the named entry of the input at path for reading.
// For a non-ZIP input, name must equal the file's basename.
func (r *Reader) OpenEntry(path, name string) (io.ReadCloser, error) {
	isZip, err := r.fs.IsZipArchive(path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", path, err)
	}

	if !isZip {
		if name != filepath.Base(path) {
			return nil, fmt.Errorf("entry %q: %w", name, util.ErrNotFound)
		}
		return r.fs.Open(path)
	}

	zr, closer, err := r.openZip(path)
	if err != nil {
		return nil, err
	}

	for _, member := range zr.File {
		if member.Name != name {
			continue
		}
		mr, err := member.Open()
		if err != nil {
			closer.Close()
			return nil, fmt.Errorf("failed to open entry %q in %s: %w", name, path, err)
		}
		return &entryReadCloser{ReadCloser: mr, underlying: closer}, nil
	}

	closer.Close()
	return nil, fmt.Errorf("entry %q in %s: %w", name, path, util.ErrNotFound)
}

func (r *Reader) singleEntry(path string) ([]Entry, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sha1sum, size, err := hashStream(f)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return []Entry{{
		Name: filepath.Base(path),
		Size: size,
		SHA1: sha1sum,
	}}, nil
}

func (r *Reader) zipEntries(path string) ([]Entry, error) {
	zr, closer, err := r.openZip(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var entries []Entry
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}

		mr, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open entry %q in %s: %w", member.Name, path, err)
		}

		sha1sum, size, err := hashStream(mr)
		mr.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to hash entry %q in %s: %w", member.Name, path, err)
		}

		entries = append(entries, Entry{
			Name: member.Name,
			Size: size,
			SHA1: sha1sum,
		})
	}

	return entries, nil
}

// openZip opens path as a ZIP archive. The returned closer must be
// closed when done with the *zip.Reader.
func (r *Reader) openZip(path string) (*zip.Reader, io.Closer, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return nil, nil, err
	}

	ra, ok := f.(io.ReaderAt)
	if !ok {
		f.Close()
		return nil, nil, fmt.Errorf("%s: random access not supported: %w", path, util.ErrUnsupportedFormat)
	}

	zr, err := zip.NewReader(ra, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to read ZIP %s: %w", path, err)
	}
	return zr, f, nil
}

// hashStream reads r to the end in fixed-size chunks, returning the
// hex SHA-1 and the number of bytes read.
func hashStream(r io.Reader) (string, int64, error) {
	h := sha1.New()
	buf := make([]byte, hashBufferSize)
	size, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), size, nil
}

// entryReadCloser closes both the ZIP member reader and the archive
// file it came from
type entryReadCloser struct {
	io.ReadCloser
	underlying io.Closer
}

func (e *entryReadCloser) Close() error {
	err := e.ReadCloser.Close()
	if err2 := e.underlying.Close(); err == nil {
		err = err2
	}
	return err
}
