package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open event log: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("failed to decode event line: %v", err)
		}
		events = append(events, e)
	}
	return events
}

func TestEventLoggerWritesJSONL(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	logger.LogIngest("zelda", "zelda.rom", "abc123", 131072, false)
	logger.LogIngest("zelda2", "zelda.rom", "abc123", 131072, true)
	logger.LogSyncUpload("abc123", "rom/uuid-1", 131072, 0, errors.New("timeout"))

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readEvents(t, logger.Path())
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	if events[0].Event != EventIngest || events[0].Action != "stored" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Event != EventSkip || events[1].Action != "reused" {
		t.Errorf("expected reused content to log a skip, got %+v", events[1])
	}
	if events[2].Level != LevelWarning || events[2].Error != "timeout" {
		t.Errorf("expected failed upload as warning, got %+v", events[2])
	}
	for i, e := range events {
		if e.Timestamp.IsZero() {
			t.Errorf("event %d has no timestamp", i)
		}
	}
}

func TestEventLoggerMinLevel(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelWarning)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	logger.LogIngest("set", "a.rom", "abc", 1, false)
	logger.LogError(EventIngest, "set", errors.New("boom"))
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 1 {
		t.Fatalf("expected only the error event, got %d events", len(events))
	}
	if events[0].Level != LevelError {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestNullLoggerIsSafe(t *testing.T) {
	logger := NullLogger()
	if err := logger.LogDelete("set", "a.rom", "file_deletion_success"); err != nil {
		t.Errorf("nil logger Log returned error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil logger Close returned error: %v", err)
	}
	if logger.Path() != "" {
		t.Errorf("nil logger Path should be empty")
	}
}

func TestPublishDiscardsOnNilChannel(t *testing.T) {
	// Must not panic or block
	Publish(nil, Progress{Kind: ProgressStep, Name: "a.rom", Current: 1, Total: 2})

	ch := make(chan Progress, 1)
	Publish(ch, Progress{Kind: ProgressCompleted, Name: "a.rom"})
	select {
	case p := <-ch:
		if p.Kind != ProgressCompleted || p.Name != "a.rom" {
			t.Errorf("unexpected progress event: %+v", p)
		}
	default:
		t.Fatal("expected a progress event on the channel")
	}
}
