package cloudsync

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/cloud"
	"github.com/zorrokid/emulation-file-manager/internal/contentstore"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
)

type testEnv struct {
	catalog *catalog.Store
	content *contentstore.Store
	remote  *cloud.MemoryStore
	engine  *Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	content := contentstore.New("/store", fsys.NewMemory(), contentstore.DefaultCompressionLevel)
	remote := cloud.NewMemoryStore()
	return &testEnv{
		catalog: cat,
		content: content,
		remote:  remote,
		engine:  NewEngine(cat, content, remote, nil),
	}
}

// storeFile writes content into the blob store and registers it in a
// file set, returning the file info
func (env *testEnv) storeFile(t *testing.T, setName, memberName string, content []byte) catalog.FileSetFile {
	t.Helper()
	res, err := env.content.Write(context.Background(), filetype.Rom, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("failed to write blob: %v", err)
	}
	inserted, err := env.catalog.InsertFileSetFull(catalog.InsertFileSetParams{
		Name:     setName,
		FileName: setName + ".zip",
		FileType: filetype.Rom,
		Files: []catalog.NewFileSetFile{
			{Name: memberName, SHA1: res.SHA1, Size: res.Size, ArchiveName: res.ArchiveName},
		},
	})
	if err != nil {
		t.Fatalf("failed to insert file set: %v", err)
	}
	files, err := env.catalog.GetFileSetFiles(inserted.FileSetID)
	if err != nil || len(files) != 1 {
		t.Fatalf("failed to load file set files: %v", err)
	}
	return files[0]
}

func TestEngineUploadsPendingFiles(t *testing.T) {
	env := newTestEnv(t)
	file := env.storeFile(t, "zelda", "zelda.rom", []byte("rom content"))

	sum, err := env.engine.RunOnce(context.Background(), nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if sum.Prepared != 1 || sum.Uploaded != 1 || sum.Failed != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	key := contentstore.CloudKey(filetype.Rom, file.ArchiveFileName)
	exists, _ := env.remote.Exists(context.Background(), key)
	if !exists {
		t.Errorf("expected remote object at %s", key)
	}

	latest, err := env.catalog.GetLatestSyncLog(file.ID)
	if err != nil || latest == nil {
		t.Fatalf("failed to read sync log: %v", err)
	}
	if latest.Status != catalog.SyncUploadCompleted {
		t.Errorf("expected upload_completed, got %s", latest.Status)
	}
	if latest.CloudKey != key {
		t.Errorf("expected cloud key %q, got %q", key, latest.CloudKey)
	}
}

func TestEngineHistoryIsMonotonic(t *testing.T) {
	env := newTestEnv(t)
	file := env.storeFile(t, "zelda", "zelda.rom", []byte("rom content"))

	if _, err := env.engine.RunOnce(context.Background(), nil); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	logs, err := env.catalog.GetSyncLogs(file.ID)
	if err != nil {
		t.Fatalf("GetSyncLogs failed: %v", err)
	}
	want := []catalog.SyncStatus{
		catalog.SyncPending, catalog.SyncInProgress, catalog.SyncUploadCompleted,
	}
	if len(logs) != len(want) {
		t.Fatalf("expected %d log rows, got %d", len(want), len(logs))
	}
	for i, status := range want {
		if logs[i].Status != status {
			t.Errorf("row %d: expected %s, got %s", i, status, logs[i].Status)
		}
	}
}

func TestEngineFailureDoesNotAbortPass(t *testing.T) {
	env := newTestEnv(t)
	first := env.storeFile(t, "first", "a.rom", []byte("content a"))
	second := env.storeFile(t, "second", "b.rom", []byte("content b"))

	env.remote.FailUploads = true
	sum, err := env.engine.RunOnce(context.Background(), nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if sum.Failed != 2 || sum.Uploaded != 0 {
		t.Errorf("expected both uploads to fail, got %+v", sum)
	}

	for _, file := range []catalog.FileSetFile{first, second} {
		latest, _ := env.catalog.GetLatestSyncLog(file.ID)
		if latest == nil || latest.Status != catalog.SyncUploadFailed {
			t.Errorf("expected upload_failed for %s, got %+v", file.FileName, latest)
		}
		if latest != nil && latest.Message == "" {
			t.Errorf("expected failure message for %s", file.FileName)
		}
	}

	// Next pass retries the failed entries from scratch
	env.remote.FailUploads = false
	sum, err = env.engine.RunOnce(context.Background(), nil)
	if err != nil {
		t.Fatalf("retry RunOnce failed: %v", err)
	}
	if sum.Uploaded != 2 || sum.Failed != 0 {
		t.Errorf("expected both retries to succeed, got %+v", sum)
	}
	if len(env.remote.Keys()) != 2 {
		t.Errorf("expected 2 remote objects, got %v", env.remote.Keys())
	}
}

func TestEngineSkipsCompletedFiles(t *testing.T) {
	env := newTestEnv(t)
	env.storeFile(t, "zelda", "zelda.rom", []byte("rom content"))

	if _, err := env.engine.RunOnce(context.Background(), nil); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	// Second pass finds nothing to do
	sum, err := env.engine.RunOnce(context.Background(), nil)
	if err != nil {
		t.Fatalf("second RunOnce failed: %v", err)
	}
	if sum.Prepared != 0 || sum.Uploaded != 0 || sum.Failed != 0 {
		t.Errorf("expected an idle pass, got %+v", sum)
	}
}

func TestEngineMissingBlobRecordsFailure(t *testing.T) {
	env := newTestEnv(t)
	file := env.storeFile(t, "zelda", "zelda.rom", []byte("rom content"))

	// Simulate a blob lost before upload
	if err := env.content.Remove(filetype.Rom, file.ArchiveFileName); err != nil {
		t.Fatalf("failed to remove blob: %v", err)
	}

	sum, err := env.engine.RunOnce(context.Background(), nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if sum.Failed != 1 {
		t.Errorf("expected one failure, got %+v", sum)
	}

	latest, _ := env.catalog.GetLatestSyncLog(file.ID)
	if latest == nil || latest.Status != catalog.SyncUploadFailed {
		t.Errorf("expected upload_failed, got %+v", latest)
	}
}
