package cloud

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/zorrokid/emulation-file-manager/internal/report"
)

// fakeMultipart records the multipart protocol calls
type fakeMultipart struct {
	parts       []int64 // sizes in upload order
	failPart    int     // 1-based part number to fail, 0 for none
	completed   bool
	aborted     bool
	abortedID   string
	startedID   string
	partPayload []byte
}

func (f *fakeMultipart) newUpload(ctx context.Context, key string) (string, error) {
	f.startedID = "upload-1"
	return f.startedID, nil
}

func (f *fakeMultipart) uploadPart(ctx context.Context, key, uploadID string, partNumber int, data io.Reader, size int64) (minio.CompletePart, error) {
	if partNumber == f.failPart {
		return minio.CompletePart{}, errors.New("part refused")
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return minio.CompletePart{}, err
	}
	f.partPayload = append(f.partPayload, payload...)
	f.parts = append(f.parts, size)
	return minio.CompletePart{PartNumber: partNumber, ETag: "etag"}, nil
}

func (f *fakeMultipart) complete(ctx context.Context, key, uploadID string, parts []minio.CompletePart) error {
	f.completed = true
	return nil
}

func (f *fakeMultipart) abort(ctx context.Context, key, uploadID string) error {
	f.aborted = true
	f.abortedID = uploadID
	return nil
}

func TestMultipartUploadSplitsParts(t *testing.T) {
	size := int64(partSize + partSize/2)
	content := bytes.Repeat([]byte{0xAB}, int(size))
	fake := &fakeMultipart{}

	progress := make(chan report.Progress, 16)
	err := uploadMultipart(context.Background(), fake, "rom/u1", bytes.NewReader(content), size, progress)
	if err != nil {
		t.Fatalf("uploadMultipart failed: %v", err)
	}

	if len(fake.parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(fake.parts))
	}
	if fake.parts[0] != partSize || fake.parts[1] != partSize/2 {
		t.Errorf("unexpected part sizes: %v", fake.parts)
	}
	if !fake.completed {
		t.Error("expected upload to be completed")
	}
	if fake.aborted {
		t.Error("successful upload must not abort")
	}
	if !bytes.Equal(fake.partPayload, content) {
		t.Error("uploaded payload differs from input")
	}

	close(progress)
	var kinds []report.ProgressKind
	for p := range progress {
		kinds = append(kinds, p.Kind)
	}
	want := []report.ProgressKind{
		report.ProgressStarted, report.ProgressPartUploaded,
		report.ProgressPartUploaded, report.ProgressCompleted,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d progress events, got %v", len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("progress event %d: expected %v, got %v", i, want[i], kinds[i])
		}
	}
}

func TestMultipartUploadAbortsOnPartFailure(t *testing.T) {
	size := int64(3 * partSize)
	content := bytes.Repeat([]byte{0xCD}, int(size))
	fake := &fakeMultipart{failPart: 2}

	progress := make(chan report.Progress, 16)
	err := uploadMultipart(context.Background(), fake, "rom/u1", bytes.NewReader(content), size, progress)
	if err == nil {
		t.Fatal("expected an error from the failing part")
	}

	if !fake.aborted {
		t.Error("expected the whole upload to be aborted")
	}
	if fake.abortedID != fake.startedID {
		t.Errorf("aborted wrong upload id: %q", fake.abortedID)
	}
	if fake.completed {
		t.Error("failed upload must not be completed")
	}

	close(progress)
	sawPartFailed, sawFailed := false, false
	for p := range progress {
		switch p.Kind {
		case report.ProgressPartFailed:
			sawPartFailed = true
		case report.ProgressFailed:
			sawFailed = true
		}
	}
	if !sawPartFailed || !sawFailed {
		t.Errorf("expected part-failed and failed events, got partFailed=%v failed=%v",
			sawPartFailed, sawFailed)
	}
}

func TestMultipartUploadCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	size := int64(2 * partSize)
	fake := &fakeMultipart{}
	err := uploadMultipart(ctx, fake, "rom/u1",
		bytes.NewReader(make([]byte, size)), size, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !fake.aborted {
		t.Error("cancelled upload must be aborted on the remote")
	}
}
