package fsys

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Recorder wraps a FileSystem and records every call made through it.
// Tests use it to assert which filesystem operations a pipeline performed.
type Recorder struct {
	inner FileSystem

	mu    sync.Mutex
	calls []string
}

// NewRecorder wraps fs with call recording
func NewRecorder(fs FileSystem) *Recorder {
	return &Recorder{inner: fs}
}

// Calls returns a copy of the recorded call log
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) record(format string, args ...interface{}) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *Recorder) Exists(path string) (bool, error) {
	r.record("exists %s", path)
	return r.inner.Exists(path)
}

func (r *Recorder) Open(path string) (io.ReadCloser, error) {
	r.record("open %s", path)
	return r.inner.Open(path)
}

func (r *Recorder) Create(path string) (io.WriteCloser, error) {
	r.record("create %s", path)
	return r.inner.Create(path)
}

func (r *Recorder) RemoveFile(path string) error {
	r.record("remove %s", path)
	return r.inner.RemoveFile(path)
}

func (r *Recorder) MoveFile(from, to string) error {
	r.record("move %s -> %s", from, to)
	return r.inner.MoveFile(from, to)
}

func (r *Recorder) ReadDir(path string) ([]os.FileInfo, error) {
	r.record("readdir %s", path)
	return r.inner.ReadDir(path)
}

func (r *Recorder) Stat(path string) (os.FileInfo, error) {
	r.record("stat %s", path)
	return r.inner.Stat(path)
}

func (r *Recorder) MkdirAll(path string) error {
	r.record("mkdirall %s", path)
	return r.inner.MkdirAll(path)
}

func (r *Recorder) IsZipArchive(path string) (bool, error) {
	r.record("iszip %s", path)
	return r.inner.IsZipArchive(path)
}
