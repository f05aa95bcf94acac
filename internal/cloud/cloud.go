// Package cloud talks to the S3-compatible object store holding the
// remote copies of stored content.
package cloud

import (
	"context"
	"io"

	"github.com/zorrokid/emulation-file-manager/internal/report"
)

// Config locates the remote bucket
type Config struct {
	Endpoint string
	Bucket   string
	Region   string
	UseSSL   bool
}

// ObjectStore is the remote side of cloud sync. Keys are the
// content-store cloud keys (<type-dir>/<archive-name>).
type ObjectStore interface {
	// Upload stores the content under key. Large content goes up in
	// parts; progress, when non-nil, receives per-part events.
	Upload(ctx context.Context, key string, r io.Reader, size int64, progress chan<- report.Progress) error

	// Download opens the content stored under key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes the object stored under key. Removing a missing
	// key is not an error.
	Remove(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}
