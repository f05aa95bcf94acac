package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/zorrokid/emulation-file-manager/internal/report"
)

// partSize is the multipart chunk size. 5 MiB is the S3 minimum for
// all parts except the last.
const partSize = 5 * 1024 * 1024

// multipartAPI is the slice of the S3 multipart protocol the uploader
// needs. *minio.Core satisfies it through coreAdapter.
type multipartAPI interface {
	newUpload(ctx context.Context, key string) (string, error)
	uploadPart(ctx context.Context, key, uploadID string, partNumber int, data io.Reader, size int64) (minio.CompletePart, error)
	complete(ctx context.Context, key, uploadID string, parts []minio.CompletePart) error
	abort(ctx context.Context, key, uploadID string) error
}

// uploadMultipart streams r to the remote in partSize chunks. Any part
// failure aborts the whole upload so no orphaned parts accumulate on
// the remote.
func uploadMultipart(ctx context.Context, api multipartAPI, key string, r io.Reader, size int64, progress chan<- report.Progress) error {
	uploadID, err := api.newUpload(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to start multipart upload for %s: %w", key, err)
	}

	report.Publish(progress, report.Progress{Kind: report.ProgressStarted, Name: key, Total: size})

	var parts []minio.CompletePart
	var uploaded int64
	buf := make([]byte, partSize)

	for partNumber := 1; uploaded < size; partNumber++ {
		if err := ctx.Err(); err != nil {
			return abortUpload(api, key, uploadID, progress, err)
		}

		chunk := size - uploaded
		if chunk > partSize {
			chunk = partSize
		}
		n, err := io.ReadFull(r, buf[:chunk])
		if err != nil {
			return abortUpload(api, key, uploadID, progress,
				fmt.Errorf("failed to read part %d of %s: %w", partNumber, key, err))
		}

		part, err := api.uploadPart(ctx, key, uploadID, partNumber, bytes.NewReader(buf[:n]), chunk)
		if err != nil {
			report.Publish(progress, report.Progress{
				Kind: report.ProgressPartFailed, Name: key, Current: uploaded, Total: size, Err: err,
			})
			return abortUpload(api, key, uploadID, progress,
				fmt.Errorf("failed to upload part %d of %s: %w", partNumber, key, err))
		}

		parts = append(parts, part)
		uploaded += chunk
		report.Publish(progress, report.Progress{
			Kind: report.ProgressPartUploaded, Name: key, Current: uploaded, Total: size,
		})
	}

	if err := api.complete(ctx, key, uploadID, parts); err != nil {
		return abortUpload(api, key, uploadID, progress,
			fmt.Errorf("failed to complete multipart upload for %s: %w", key, err))
	}

	report.Publish(progress, report.Progress{
		Kind: report.ProgressCompleted, Name: key, Current: size, Total: size,
	})
	return nil
}

// abortUpload tells the remote to discard the partial upload so no
// orphaned parts remain. The original cause is always the returned
// error.
func abortUpload(api multipartAPI, key, uploadID string, progress chan<- report.Progress, cause error) error {
	report.Publish(progress, report.Progress{Kind: report.ProgressFailed, Name: key, Err: cause})
	// context may already be cancelled; abort with a fresh one
	if err := api.abort(context.Background(), key, uploadID); err != nil {
		return fmt.Errorf("%w (abort also failed: %v)", cause, err)
	}
	return cause
}
