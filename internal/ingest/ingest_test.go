package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/zorrokid/emulation-file-manager/internal/archive"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/contentstore"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/prepare"
)

type testEnv struct {
	fs      fsys.FileSystem
	catalog *catalog.Store
	content *contentstore.Store
	reader  *archive.Reader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	fs := fsys.NewMemory()
	return &testEnv{
		fs:      fs,
		catalog: cat,
		content: contentstore.New("/store", fs, contentstore.DefaultCompressionLevel),
		reader:  archive.New(fs),
	}
}

func (env *testEnv) writeInput(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := fsys.WriteFile(env.fs, path, content); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
}

func (env *testEnv) writeZip(t *testing.T, path string, members map[string][]byte) {
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
	env.writeInput(t, path, buf.Bytes())
}

// run prepares and ingests the input in one go
func (env *testEnv) run(t *testing.T, inputPath string, ft filetype.FileType, mutate func(*Context)) (*catalog.InsertFileSetResult, error) {
	t.Helper()
	prepared, err := prepare.Run(context.Background(), &prepare.Context{
		InputPath: inputPath,
		FileType:  ft,
		FS:        env.fs,
		Reader:    env.reader,
		Catalog:   env.catalog,
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	c := &Context{
		InputPath: inputPath,
		FileType:  ft,
		Source:    "test import",
		Prepared:  prepared,
		Reader:    env.reader,
		Content:   env.content,
		Catalog:   env.catalog,
	}
	if mutate != nil {
		mutate(c)
	}
	return Run(context.Background(), c)
}

// blobCount counts the blob files stored for a file type
func (env *testEnv) blobCount(t *testing.T, ft filetype.FileType) int {
	t.Helper()
	entries, err := env.fs.ReadDir(filepath.Join("/store", ft.Dir()))
	if err != nil {
		return 0
	}
	return len(entries)
}

func TestIngestSingleFile(t *testing.T) {
	env := newTestEnv(t)
	env.writeInput(t, "/input/game.bin", []byte{0xFF})

	res, err := env.run(t, "/input/game.bin", filetype.Rom, nil)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	files, err := env.catalog.GetFileSetFiles(res.FileSetID)
	if err != nil || len(files) != 1 {
		t.Fatalf("expected 1 stored file, got %v (%v)", files, err)
	}
	f := files[0]
	if f.SHA1 != "85e53271e14006f0265921d02d4d736cdc580b0b" || f.FileSize != 1 {
		t.Errorf("unexpected file info: %+v", f)
	}

	// blob present and round-trips to the original content
	if err := env.content.VerifySHA1(context.Background(), filetype.Rom, f.ArchiveFileName, f.SHA1); err != nil {
		t.Errorf("stored blob does not verify: %v", err)
	}
}

func TestIngestZipMembers(t *testing.T) {
	env := newTestEnv(t)
	env.writeZip(t, "/input/game.zip", map[string][]byte{
		"disk1.img": []byte("first disk"),
		"disk2.img": []byte("second disk"),
	})

	res, err := env.run(t, "/input/game.zip", filetype.DiskImage, nil)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	files, _ := env.catalog.GetFileSetFiles(res.FileSetID)
	if len(files) != 2 {
		t.Fatalf("expected 2 stored files, got %d", len(files))
	}
	if env.blobCount(t, filetype.DiskImage) != 2 {
		t.Errorf("expected 2 blobs, got %d", env.blobCount(t, filetype.DiskImage))
	}
}

func TestIngestZipWithIdenticalMembers(t *testing.T) {
	env := newTestEnv(t)
	env.writeZip(t, "/input/game.zip", map[string][]byte{
		"disk1.img": []byte("same bytes"),
		"disk2.img": []byte("same bytes"),
	})

	res, err := env.run(t, "/input/game.zip", filetype.DiskImage, nil)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	// both member names survive, backed by one shared file info and blob
	files, err := env.catalog.GetFileSetFiles(res.FileSetID)
	if err != nil {
		t.Fatalf("GetFileSetFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 members, got %d", len(files))
	}
	if files[0].FileName != "disk1.img" || files[1].FileName != "disk2.img" {
		t.Errorf("unexpected member names: %+v", files)
	}
	if files[0].ID != files[1].ID || files[0].ArchiveFileName != files[1].ArchiveFileName {
		t.Errorf("expected members to share one file info, got %+v", files)
	}
	if env.blobCount(t, filetype.DiskImage) != 1 {
		t.Errorf("expected a single blob, got %d", env.blobCount(t, filetype.DiskImage))
	}
}

func TestIngestDeduplicatesAcrossSets(t *testing.T) {
	env := newTestEnv(t)
	env.writeInput(t, "/input/first.bin", []byte("shared content"))
	env.writeZip(t, "/input/second.zip", map[string][]byte{
		"first.bin": []byte("shared content"),
	})

	if _, err := env.run(t, "/input/first.bin", filetype.Rom, nil); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	second, err := env.run(t, "/input/second.zip", filetype.Rom, nil)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	// one file info, one blob, two sets
	var infoCount int
	sets, _ := env.catalog.GetFileSets()
	if len(sets) != 2 {
		t.Errorf("expected 2 file sets, got %d", len(sets))
	}
	files, _ := env.catalog.GetFileSetFiles(second.FileSetID)
	infoCount = len(files)
	if infoCount != 1 {
		t.Fatalf("expected 1 file in second set, got %d", infoCount)
	}
	if env.blobCount(t, filetype.Rom) != 1 {
		t.Errorf("expected a single shared blob, got %d", env.blobCount(t, filetype.Rom))
	}
}

func TestIngestSelectionSubset(t *testing.T) {
	env := newTestEnv(t)
	env.writeZip(t, "/input/game.zip", map[string][]byte{
		"keep.img": []byte("wanted"),
		"drop.img": []byte("unwanted"),
	})

	res, err := env.run(t, "/input/game.zip", filetype.DiskImage, func(c *Context) {
		c.Selected = []string{"keep.img"}
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	files, _ := env.catalog.GetFileSetFiles(res.FileSetID)
	if len(files) != 1 || files[0].FileName != "keep.img" {
		t.Errorf("expected only keep.img, got %+v", files)
	}
	if env.blobCount(t, filetype.DiskImage) != 1 {
		t.Errorf("deselected entry must not be stored, got %d blobs", env.blobCount(t, filetype.DiskImage))
	}
}

func TestIngestCompensatesFailedCatalogUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.writeInput(t, "/input/game.bin", []byte("content"))

	prepared, err := prepare.Run(context.Background(), &prepare.Context{
		InputPath: "/input/game.bin",
		FileType:  filetype.Rom,
		FS:        env.fs,
		Reader:    env.reader,
		Catalog:   env.catalog,
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	// Closing the catalog makes the database step fail after the blob
	// write succeeded
	env.catalog.Close()

	_, err = Run(context.Background(), &Context{
		InputPath: "/input/game.bin",
		FileType:  filetype.Rom,
		Prepared:  prepared,
		Reader:    env.reader,
		Content:   env.content,
		Catalog:   env.catalog,
	})
	if err == nil {
		t.Fatal("expected ingest to fail")
	}

	if env.blobCount(t, filetype.Rom) != 0 {
		t.Errorf("expected compensation to remove written blobs, got %d", env.blobCount(t, filetype.Rom))
	}
}

func TestIngestWithReleaseAndItems(t *testing.T) {
	env := newTestEnv(t)
	env.writeInput(t, "/input/game.bin", []byte("content"))
	systemID, _ := env.catalog.InsertSystem("C64")

	res, err := env.run(t, "/input/game.bin", filetype.Rom, func(c *Context) {
		c.SystemIDs = []int64{systemID}
		c.Release = &catalog.ReleaseRequest{
			ReleaseName:       "Game (EU)",
			SoftwareTitleName: "Game",
		}
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if res.ReleaseID == 0 {
		t.Fatal("expected a release to be created")
	}

	itemID, err := env.catalog.InsertItem(res.ReleaseID, catalog.ItemCartridge, "")
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	// second set linked to the item of the first ingest's release
	env.writeInput(t, "/input/manual.bin", []byte("manual scan"))
	_, err = env.run(t, "/input/manual.bin", filetype.Manual, func(c *Context) {
		c.ItemIDs = []int64{itemID}
	})
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
}

func TestIngestLinksDatFile(t *testing.T) {
	env := newTestEnv(t)
	env.writeInput(t, "/input/game.bin", []byte("content"))

	datID, err := env.catalog.InsertDatFile(&catalog.DatFile{Name: "NES"})
	if err != nil {
		t.Fatalf("InsertDatFile failed: %v", err)
	}

	res, err := env.run(t, "/input/game.bin", filetype.Rom, func(c *Context) {
		c.DatFileID = datID
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	linked, err := env.catalog.IsFileSetLinkedToDat(datID, res.FileSetID)
	if err != nil || !linked {
		t.Errorf("expected file set linked to dat, got linked=%v err=%v", linked, err)
	}
}
