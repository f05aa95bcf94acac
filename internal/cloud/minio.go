package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/zorrokid/emulation-file-manager/internal/report"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// MinioStore is the ObjectStore backed by an S3-compatible service
type MinioStore struct {
	client *minio.Client
	core   *minio.Core
	bucket string
}

// Connect creates the client and verifies the bucket exists, creating
// it on first use
func Connect(ctx context.Context, cfg Config, creds *Credentials) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("cloud endpoint and bucket are required: %w", util.ErrInvalidConfig)
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKeyID, creds.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	client, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	core, err := minio.NewCore(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 core client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinioStore{client: client, core: core, bucket: cfg.Bucket}, nil
}

// Upload stores the content under key. Content larger than one part
// goes up as an explicit multipart upload that is aborted whole on any
// part failure.
func (s *MinioStore) Upload(ctx context.Context, key string, r io.Reader, size int64, progress chan<- report.Progress) error {
	if size > partSize {
		return uploadMultipart(ctx, &coreAdapter{core: s.core, bucket: s.bucket}, key, r, size, progress)
	}

	report.Publish(progress, report.Progress{Kind: report.ProgressStarted, Name: key, Total: size})
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{})
	if err != nil {
		report.Publish(progress, report.Progress{Kind: report.ProgressFailed, Name: key, Err: err})
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	report.Publish(progress, report.Progress{
		Kind: report.ProgressCompleted, Name: key, Current: size, Total: size,
	})
	return nil
}

// Download opens the object stored under key
func (s *MinioStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	// GetObject is lazy; surface a missing key now
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("object %s: %w", key, util.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return obj, nil
}

// Remove deletes the object stored under key
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an object is stored under key
func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
	}
	return false
}

// coreAdapter exposes minio.Core through the multipartAPI interface
type coreAdapter struct {
	core   *minio.Core
	bucket string
}

func (a *coreAdapter) newUpload(ctx context.Context, key string) (string, error) {
	return a.core.NewMultipartUpload(ctx, a.bucket, key, minio.PutObjectOptions{})
}

func (a *coreAdapter) uploadPart(ctx context.Context, key, uploadID string, partNumber int, data io.Reader, size int64) (minio.CompletePart, error) {
	part, err := a.core.PutObjectPart(ctx, a.bucket, key, uploadID, partNumber, data, size, minio.PutObjectPartOptions{})
	if err != nil {
		return minio.CompletePart{}, err
	}
	return minio.CompletePart{PartNumber: part.PartNumber, ETag: part.ETag}, nil
}

func (a *coreAdapter) complete(ctx context.Context, key, uploadID string, parts []minio.CompletePart) error {
	_, err := a.core.CompleteMultipartUpload(ctx, a.bucket, key, uploadID, parts, minio.PutObjectOptions{})
	return err
}

func (a *coreAdapter) abort(ctx context.Context, key, uploadID string) error {
	return a.core.AbortMultipartUpload(ctx, a.bucket, key, uploadID)
}
