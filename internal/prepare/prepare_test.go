package prepare

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/zorrokid/emulation-file-manager/internal/archive"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// SHA-1 of the single byte 0xFF
const sha1FF = "85e53271e14006f0265921d02d4d736cdc580b0b"

func newTestContext(t *testing.T) *Context {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	fs := fsys.NewMemory()
	return &Context{
		FileType: filetype.Rom,
		FS:       fs,
		Reader:   archive.New(fs),
		Catalog:  cat,
	}
}

func writeZip(t *testing.T, fs fsys.FileSystem, path string, members map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip member: %v", err)
		}
		w.Write(content)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	if err := fsys.WriteFile(fs, path, buf.Bytes()); err != nil {
		t.Fatalf("failed to write zip: %v", err)
	}
}

func TestPrepareSingleFile(t *testing.T) {
	c := newTestContext(t)
	if err := fsys.WriteFile(c.FS, "/input/one_byte_255.bin", []byte{0xFF}); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	c.InputPath = "/input/one_byte_255.bin"

	res, err := Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FileSetName != "one_byte_255" || res.FileSetFileName != "one_byte_255.bin" {
		t.Errorf("unexpected naming: %+v", res)
	}
	if res.IsZipArchive {
		t.Error("single file must not be classified as zip")
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	e := res.Entries[0]
	if e.SHA1 != sha1FF || e.Size != 1 || e.Classification != New {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestPrepareZipArchive(t *testing.T) {
	c := newTestContext(t)
	writeZip(t, c.FS, "/input/game.zip", map[string][]byte{
		"disk1.img": {0xFF},
		"disk2.img": []byte("second disk"),
	})
	c.InputPath = "/input/game.zip"

	res, err := Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !res.IsZipArchive {
		t.Error("expected zip classification")
	}
	if res.FileSetName != "game" {
		t.Errorf("expected set name %q, got %q", "game", res.FileSetName)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	for _, e := range res.Entries {
		if e.Classification != New {
			t.Errorf("expected all entries new, got %+v", e)
		}
	}
}

func TestPrepareClassifiesExistingContent(t *testing.T) {
	c := newTestContext(t)

	// A file info for 0xFF content already exists under uuid-1
	_, err := c.Catalog.InsertFileSetFull(catalog.InsertFileSetParams{
		Name:     "earlier",
		FileName: "earlier.bin",
		FileType: filetype.Rom,
		Files: []catalog.NewFileSetFile{
			{Name: "earlier.bin", SHA1: sha1FF, Size: 1, ArchiveName: "uuid-1"},
		},
	})
	if err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	writeZip(t, c.FS, "/input/game.zip", map[string][]byte{
		"known.bin": {0xFF},
		"fresh.bin": []byte("new content"),
	})
	c.InputPath = "/input/game.zip"

	res, err := Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	byName := make(map[string]Entry)
	for _, e := range res.Entries {
		byName[e.Name] = e
	}
	known := byName["known.bin"]
	if known.Classification != Existing || known.ArchiveName != "uuid-1" {
		t.Errorf("expected known.bin existing under uuid-1, got %+v", known)
	}
	if byName["fresh.bin"].Classification != New {
		t.Errorf("expected fresh.bin new, got %+v", byName["fresh.bin"])
	}
}

func TestPrepareExistingIsPerFileType(t *testing.T) {
	c := newTestContext(t)

	// Same hash stored as a screenshot must not match a rom prepare
	_, err := c.Catalog.InsertFileSetFull(catalog.InsertFileSetParams{
		Name:     "shot",
		FileName: "shot.png",
		FileType: filetype.Screenshot,
		Files: []catalog.NewFileSetFile{
			{Name: "shot.png", SHA1: sha1FF, Size: 1, ArchiveName: "uuid-s"},
		},
	})
	if err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	if err := fsys.WriteFile(c.FS, "/input/rom.bin", []byte{0xFF}); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	c.InputPath = "/input/rom.bin"

	res, err := Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Entries[0].Classification != New {
		t.Errorf("hash match across file types must classify as new, got %+v", res.Entries[0])
	}
}

func TestPrepareMissingInput(t *testing.T) {
	c := newTestContext(t)
	c.InputPath = "/input/missing.bin"

	_, err := Run(context.Background(), c)
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
