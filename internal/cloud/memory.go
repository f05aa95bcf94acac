package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/zorrokid/emulation-file-manager/internal/report"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// MemoryStore is an in-memory ObjectStore used by tests and dry runs
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailUploads makes every Upload fail when set
	FailUploads bool
}

// NewMemoryStore creates an empty in-memory object store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, key string, r io.Reader, size int64, progress chan<- report.Progress) error {
	report.Publish(progress, report.Progress{Kind: report.ProgressStarted, Name: key, Total: size})

	if s.FailUploads {
		err := fmt.Errorf("upload of %s refused", key)
		report.Publish(progress, report.Progress{Kind: report.ProgressFailed, Name: key, Err: err})
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		report.Publish(progress, report.Progress{Kind: report.ProgressFailed, Name: key, Err: err})
		return err
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	report.Publish(progress, report.Progress{
		Kind: report.ProgressCompleted, Name: key, Current: int64(len(data)), Total: size,
	})
	return nil
}

func (s *MemoryStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.objects[key]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, util.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.objects[key]
	s.mu.Unlock()
	return ok, nil
}

// Keys returns the stored keys, for test assertions
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
