package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
)

func TestGenerateSummaryReport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	defer store.Close()

	systemID, _ := store.InsertSystem("MSX")
	res, err := store.InsertFileSetFull(catalog.InsertFileSetParams{
		Name:     "game",
		FileName: "game.zip",
		FileType: filetype.Rom,
		Files: []catalog.NewFileSetFile{
			{Name: "g.rom", SHA1: "85e53271e14006f0265921d02d4d736cdc580b0b", Size: 2048, ArchiveName: "u1"},
		},
		SystemIDs: []int64{systemID},
	})
	if err != nil {
		t.Fatalf("InsertFileSetFull failed: %v", err)
	}
	files, _ := store.GetFileSetFiles(res.FileSetID)
	store.InsertSyncLog(files[0].ID, catalog.SyncPending, "", "rom/u1")

	report, err := GenerateSummaryReport(store, dbPath, "/data/store")
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}

	if report.Stats.Systems != 1 || report.Stats.FileSets != 1 || report.Stats.FileInfos != 1 {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}
	if report.Stats.TotalBytes != 2048 {
		t.Errorf("expected 2048 total bytes, got %d", report.Stats.TotalBytes)
	}
	if report.Stats.SyncStatusCounts[catalog.SyncPending] != 1 {
		t.Errorf("expected one pending sync entry, got %+v", report.Stats.SyncStatusCounts)
	}

	var sb strings.Builder
	if err := report.WriteText(&sb); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"file sets", "2.0 KiB", "pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}
