package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventPrepare     EventType = "prepare"
	EventIngest      EventType = "ingest"
	EventMaterialize EventType = "materialize"
	EventDelete      EventType = "delete"
	EventSyncUpload  EventType = "sync_upload"
	EventSyncDelete  EventType = "sync_delete"
	EventDatImport   EventType = "dat_import"
	EventSkip        EventType = "skip"
	EventError       EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in a pipeline or sync run
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	FileSet   string            `json:"file_set,omitempty"`
	Member    string            `json:"member,omitempty"`
	SHA1      string            `json:"sha1,omitempty"`
	CloudKey  string            `json:"cloud_key,omitempty"`
	Action    string            `json:"action,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Bytes     int64             `json:"bytes,omitempty"`
	Duration  int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogIngest logs the storage of one file set member
func (l *EventLogger) LogIngest(fileSet, member, sha1 string, bytes int64, reused bool) error {
	event := EventIngest
	action := "stored"
	if reused {
		event = EventSkip
		action = "reused"
	}
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   event,
		FileSet: fileSet,
		Member:  member,
		SHA1:    sha1,
		Bytes:   bytes,
		Action:  action,
	})
}

// LogMaterialize logs the export of one file set member
func (l *EventLogger) LogMaterialize(fileSet, member, destPath string, bytes int64, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level:    level,
		Event:    EventMaterialize,
		FileSet:  fileSet,
		Member:   member,
		Action:   destPath,
		Bytes:    bytes,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
	})
}

// LogDelete logs one deletion outcome
func (l *EventLogger) LogDelete(fileSet, member, outcome string) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventDelete,
		FileSet: fileSet,
		Member:  member,
		Action:  outcome,
	})
}

// LogSyncUpload logs one upload attempt
func (l *EventLogger) LogSyncUpload(sha1, cloudKey string, bytes int64, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelWarning
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level:    level,
		Event:    EventSyncUpload,
		SHA1:     sha1,
		CloudKey: cloudKey,
		Bytes:    bytes,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
	})
}

// LogSyncDelete logs marking a cloud copy for deletion
func (l *EventLogger) LogSyncDelete(sha1, cloudKey string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventSyncDelete,
		SHA1:     sha1,
		CloudKey: cloudKey,
	})
}

// LogDatImport logs a DAT match proposal or link
func (l *EventLogger) LogDatImport(game, action, reason string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventDatImport,
		Member: game,
		Action: action,
		Reason: reason,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, subject string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   event,
		FileSet: subject,
		Error:   err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
