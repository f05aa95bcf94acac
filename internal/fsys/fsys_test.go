package fsys

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestExistsAndRemove(t *testing.T) {
	fs := NewMemory()

	exists, err := fs.Exists("/data/file.bin")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected file to not exist")
	}

	if err := WriteFile(fs, "/data/file.bin", []byte{0xFF}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exists, err = fs.Exists("/data/file.bin")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}

	if err := fs.RemoveFile("/data/file.bin"); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}

	exists, _ = fs.Exists("/data/file.bin")
	if exists {
		t.Error("expected file to be removed")
	}
}

func TestMoveFileCreatesIntermediateDirs(t *testing.T) {
	fs := NewMemory()

	if err := WriteFile(fs, "/src/a.bin", []byte("content")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := fs.MoveFile("/src/a.bin", "/dest/nested/dir/a.bin"); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}

	data, err := ReadFile(fs, "/dest/nested/dir/a.bin")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("expected content %q, got %q", "content", data)
	}

	exists, _ := fs.Exists("/src/a.bin")
	if exists {
		t.Error("expected source to be removed after move")
	}
}

func TestIsZipArchive(t *testing.T) {
	fs := NewMemory()

	// Build a real ZIP in memory
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("member.bin")
	if err != nil {
		t.Fatalf("zip create failed: %v", err)
	}
	w.Write([]byte{0xFF})
	zw.Close()

	if err := WriteFile(fs, "/in/archive.zip", buf.Bytes()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// Not a zip, despite the extension
	if err := WriteFile(fs, "/in/fake.zip", []byte("plain text")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// Shorter than the magic
	if err := WriteFile(fs, "/in/tiny.bin", []byte{0x50}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"/in/archive.zip", true},
		{"/in/fake.zip", false},
		{"/in/tiny.bin", false},
	}

	for _, tt := range tests {
		got, err := fs.IsZipArchive(tt.path)
		if err != nil {
			t.Fatalf("IsZipArchive(%s) failed: %v", tt.path, err)
		}
		if got != tt.expected {
			t.Errorf("IsZipArchive(%s) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestRecorderRecordsCalls(t *testing.T) {
	rec := NewRecorder(NewMemory())

	WriteFile(rec, "/a/b.bin", []byte("x"))
	rec.Exists("/a/b.bin")
	rec.RemoveFile("/a/b.bin")

	calls := rec.Calls()
	if len(calls) == 0 {
		t.Fatal("expected recorded calls")
	}

	var haveExists, haveRemove bool
	for _, c := range calls {
		if strings.HasPrefix(c, "exists ") {
			haveExists = true
		}
		if strings.HasPrefix(c, "remove ") {
			haveRemove = true
		}
	}
	if !haveExists || !haveRemove {
		t.Errorf("expected exists and remove calls, got: %v", calls)
	}
}
