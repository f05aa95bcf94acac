// Package cloudsync runs the asynchronous upload loop that mirrors
// local blobs into the object store, driven by the append-only sync
// log in the catalog.
package cloudsync

import (
	"context"
	"fmt"
	"time"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/cloud"
	"github.com/zorrokid/emulation-file-manager/internal/contentstore"
	"github.com/zorrokid/emulation-file-manager/internal/report"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

const (
	// prepareBatchSize bounds one scan for file infos without history
	prepareBatchSize = 100
	// uploadBatchSize bounds one upload pass
	uploadBatchSize = 10
)

// Engine promotes unsynced file infos into the sync log and uploads
// their blobs. Upload errors never stop the engine; they are recorded
// as UploadFailed rows and retried on a later pass.
type Engine struct {
	catalog *catalog.Store
	content *contentstore.Store
	remote  cloud.ObjectStore
	events  *report.EventLogger
}

// NewEngine creates an engine over the given catalog, local content
// store and remote object store. events may be nil.
func NewEngine(cat *catalog.Store, content *contentstore.Store, remote cloud.ObjectStore, events *report.EventLogger) *Engine {
	return &Engine{catalog: cat, content: content, remote: remote, events: events}
}

// Summary reports what one engine pass did
type Summary struct {
	Prepared int
	Uploaded int
	Failed   int
}

// PrepareFilesForSync inserts a Pending sync-log row, with the
// deterministic cloud key, for every file info that has no history
// yet. Returns the number of rows queued.
func (e *Engine) PrepareFilesForSync() (int, error) {
	prepared := 0
	for {
		infos, err := e.catalog.FileInfosWithoutSyncLog(prepareBatchSize)
		if err != nil {
			return prepared, fmt.Errorf("failed to scan for unsynced files: %w", err)
		}
		if len(infos) == 0 {
			return prepared, nil
		}
		for _, fi := range infos {
			key := contentstore.CloudKey(fi.FileType, fi.ArchiveFileName)
			if _, err := e.catalog.InsertSyncLog(fi.ID, catalog.SyncPending, "", key); err != nil {
				return prepared, fmt.Errorf("failed to queue file info %d: %w", fi.ID, err)
			}
			prepared++
		}
		if len(infos) < prepareBatchSize {
			return prepared, nil
		}
	}
}

// RunOnce performs one engine pass: queue new file infos, then upload
// one batch of pending or previously failed entries. progress may be
// nil.
func (e *Engine) RunOnce(ctx context.Context, progress chan<- report.Progress) (Summary, error) {
	var sum Summary

	prepared, err := e.PrepareFilesForSync()
	sum.Prepared = prepared
	if err != nil {
		return sum, err
	}

	entries, err := e.catalog.SyncLogsForUpload(uploadBatchSize)
	if err != nil {
		return sum, fmt.Errorf("failed to select uploadable entries: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sum, util.ErrCancelled
		}
		if e.uploadOne(ctx, entry, progress) {
			sum.Uploaded++
		} else {
			sum.Failed++
		}
	}
	return sum, nil
}

// uploadOne moves one sync-log entry through InProgress to
// UploadCompleted or UploadFailed. Reports success.
func (e *Engine) uploadOne(ctx context.Context, entry catalog.FileSyncLog, progress chan<- report.Progress) bool {
	if _, err := e.catalog.InsertSyncLog(entry.FileInfoID, catalog.SyncInProgress, "", entry.CloudKey); err != nil {
		util.ErrorLog("sync: failed to mark %s in progress: %v", entry.CloudKey, err)
		return false
	}

	start := time.Now()
	size, err := e.upload(ctx, entry, progress)

	status := catalog.SyncUploadCompleted
	message := ""
	if err != nil {
		status = catalog.SyncUploadFailed
		message = err.Error()
	}
	if _, logErr := e.catalog.InsertSyncLog(entry.FileInfoID, status, message, entry.CloudKey); logErr != nil {
		util.ErrorLog("sync: failed to record %s for %s: %v", status, entry.CloudKey, logErr)
		return false
	}
	e.events.LogSyncUpload(sha1For(e.catalog, entry.FileInfoID), entry.CloudKey, size, time.Since(start), err)

	return err == nil
}

func (e *Engine) upload(ctx context.Context, entry catalog.FileSyncLog, progress chan<- report.Progress) (int64, error) {
	fi, err := e.catalog.GetFileInfo(entry.FileInfoID)
	if err != nil {
		return 0, err
	}

	blob, size, err := e.content.OpenRaw(fi.FileType, fi.ArchiveFileName)
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	if err := e.remote.Upload(ctx, entry.CloudKey, blob, size, progress); err != nil {
		return size, err
	}
	return size, nil
}

// Run loops RunOnce every interval until ctx is cancelled. Pass-level
// errors are logged and the loop continues.
func (e *Engine) Run(ctx context.Context, interval time.Duration, progress chan<- report.Progress) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.RunOnce(ctx, progress); err != nil && err != util.ErrCancelled {
			util.ErrorLog("sync: pass failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return util.ErrCancelled
		case <-ticker.C:
		}
	}
}

func sha1For(cat *catalog.Store, fileInfoID int64) string {
	fi, err := cat.GetFileInfo(fileInfoID)
	if err != nil {
		return ""
	}
	return fi.SHA1
}
