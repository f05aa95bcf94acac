// Package contentstore manages the compressed blob store under the
// collection root. Blobs are named by an opaque archive file name and
// grouped into one directory per file type. The catalog, not the file
// name, carries the content address: deduplication happens at the
// (sha1, file_type) level in the catalog.
package contentstore

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

const copyBufferSize = 8 * 1024

// DefaultCompressionLevel is the zstd level used when none is configured
const DefaultCompressionLevel = 3

// Store is the content-addressed blob store rooted at a collection directory
type Store struct {
	root  string
	fs    fsys.FileSystem
	level zstd.EncoderLevel
}

// New creates a Store. level is a zstd compression level (1-22);
// values outside that range fall back to the default.
func New(root string, fs fsys.FileSystem, level int) *Store {
	if level <= 0 || level > 22 {
		level = DefaultCompressionLevel
	}
	return &Store{
		root:  root,
		fs:    fs,
		level: zstd.EncoderLevelFromZstd(level),
	}
}

// Root returns the collection root directory
func (s *Store) Root() string {
	return s.root
}

// BlobPath returns the deterministic local path of a blob
func (s *Store) BlobPath(ft filetype.FileType, archiveName string) string {
	return filepath.Join(s.root, ft.Dir(), archiveName+".zst")
}

// CloudKey returns the deterministic object-store key of a blob
func CloudKey(ft filetype.FileType, archiveName string) string {
	return path.Join(ft.Dir(), archiveName)
}

// WriteResult describes a completed blob write
type WriteResult struct {
	ArchiveName string // freshly minted opaque blob identifier
	SHA1        string // hex SHA-1 of the uncompressed content
	Size        int64  // uncompressed size in bytes
}

// Write streams r through SHA-1 and a zstd encoder into a new blob
// file. On any failure the partial file is removed and the returned
// archive name is invalid.
func (s *Store) Write(ctx context.Context, ft filetype.FileType, r io.Reader) (WriteResult, error) {
	archiveName := uuid.NewString()
	blobPath := s.BlobPath(ft, archiveName)

	f, err := s.fs.Create(blobPath)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to create blob: %w", err)
	}

	enc, err := zstd.NewWriter(f,
		zstd.WithEncoderLevel(s.level),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		f.Close()
		s.fs.RemoveFile(blobPath)
		return WriteResult{}, fmt.Errorf("failed to create encoder: %w", err)
	}

	h := sha1.New()
	size, err := copyWithContext(ctx, enc, io.TeeReader(r, h))
	if err == nil {
		err = enc.Close()
	} else {
		enc.Close()
	}
	if err2 := f.Close(); err == nil {
		err = err2
	}

	if err != nil {
		s.fs.RemoveFile(blobPath)
		return WriteResult{}, fmt.Errorf("failed to write blob: %w", err)
	}

	return WriteResult{
		ArchiveName: archiveName,
		SHA1:        fmt.Sprintf("%x", h.Sum(nil)),
		Size:        size,
	}, nil
}

// Exists reports whether the blob is present locally
func (s *Store) Exists(ft filetype.FileType, archiveName string) (bool, error) {
	return s.fs.Exists(s.BlobPath(ft, archiveName))
}

// Remove deletes the blob file
func (s *Store) Remove(ft filetype.FileType, archiveName string) error {
	return s.fs.RemoveFile(s.BlobPath(ft, archiveName))
}

// OpenRaw returns the compressed blob bytes and their size on disk,
// as uploaded to the object store
func (s *Store) OpenRaw(ft filetype.FileType, archiveName string) (io.ReadCloser, int64, error) {
	blobPath := s.BlobPath(ft, archiveName)

	info, err := s.fs.Stat(blobPath)
	if err != nil {
		return nil, 0, fmt.Errorf("blob %s: %w", blobPath, util.ErrNotFound)
	}
	f, err := s.fs.Open(blobPath)
	if err != nil {
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// ImportRaw writes already-compressed blob bytes (a downloaded cloud
// object) to the blob's deterministic path. The partial file is
// removed on failure.
func (s *Store) ImportRaw(ctx context.Context, ft filetype.FileType, archiveName string, r io.Reader) error {
	blobPath := s.BlobPath(ft, archiveName)

	f, err := s.fs.Create(blobPath)
	if err != nil {
		return fmt.Errorf("failed to create blob: %w", err)
	}

	_, err = copyWithContext(ctx, f, r)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		s.fs.RemoveFile(blobPath)
		return fmt.Errorf("failed to import blob %s: %w", archiveName, err)
	}
	return nil
}

// Open returns a reader over the decompressed content of a blob
func (s *Store) Open(ft filetype.FileType, archiveName string) (io.ReadCloser, error) {
	blobPath := s.BlobPath(ft, archiveName)

	exists, err := s.fs.Exists(blobPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("blob %s: %w", blobPath, util.ErrNotFound)
	}

	f, err := s.fs.Open(blobPath)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open decoder for %s: %w", blobPath, err)
	}

	return &decompressReadCloser{dec: dec, file: f}, nil
}

// Export decompresses a blob into destPath, checking for cancellation
// between chunks. The partial output is removed on failure.
func (s *Store) Export(ctx context.Context, ft filetype.FileType, archiveName, destPath string) error {
	src, err := s.Open(ft, archiveName)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := s.fs.Create(destPath)
	if err != nil {
		return err
	}

	_, err = copyWithContext(ctx, dst, src)
	if err2 := dst.Close(); err == nil {
		err = err2
	}
	if err != nil {
		s.fs.RemoveFile(destPath)
		return fmt.Errorf("failed to export blob %s: %w", archiveName, err)
	}
	return nil
}

// VerifySHA1 decompresses a blob and compares its content hash with
// the expected hex SHA-1
func (s *Store) VerifySHA1(ctx context.Context, ft filetype.FileType, archiveName, expected string) error {
	src, err := s.Open(ft, archiveName)
	if err != nil {
		return err
	}
	defer src.Close()

	h := sha1.New()
	if _, err := copyWithContext(ctx, h, src); err != nil {
		return err
	}

	got := fmt.Sprintf("%x", h.Sum(nil))
	if got != expected {
		return fmt.Errorf("blob %s: checksum mismatch: got %s, want %s: %w",
			archiveName, got, expected, util.ErrCorrupt)
	}
	return nil
}

// copyWithContext copies src to dst in fixed-size chunks, returning
// early when ctx is cancelled
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, util.ErrCancelled
		default:
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				return written, nil
			}
			return written, er
		}
	}
}

type decompressReadCloser struct {
	dec  *zstd.Decoder
	file io.Closer
}

func (d *decompressReadCloser) Read(p []byte) (int, error) {
	return d.dec.Read(p)
}

func (d *decompressReadCloser) Close() error {
	d.dec.Close()
	return d.file.Close()
}
