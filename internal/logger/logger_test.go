package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newFileLogger(t *testing.T, level Level) (*Logger, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "log.jsonl")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating log file: %v", err)
	}
	t.Cleanup(func() { file.Close() })

	return New(level, file), path
}

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening log file: %v", err)
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("parsing log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}

	return entries
}

func TestLoggerWritesStructuredJSON(t *testing.T) {
	log, path := newFileLogger(t, LevelDebug)

	log.Info("Fetched assignments", Fields{
		"course": "CS 70",
		"count":  12,
	})

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.Level != "INFO" {
		t.Errorf("Level = %q", entry.Level)
	}
	if entry.Message != "Fetched assignments" {
		t.Errorf("Message = %q", entry.Message)
	}
	if entry.Timestamp == "" {
		t.Error("Timestamp missing")
	}
	if entry.Fields["course"] != "CS 70" {
		t.Errorf("Fields[course] = %v", entry.Fields["course"])
	}
}

func TestLoggerIncludesError(t *testing.T) {
	log, path := newFileLogger(t, LevelDebug)

	log.Error("Sync failed", nil, errors.New("invalid credentials"))

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Error != "invalid credentials" {
		t.Errorf("Error = %q", entries[0].Error)
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	log, path := newFileLogger(t, LevelWarn)

	log.Debug("debug message", nil)
	log.Info("info message", nil)
	log.Warn("warn message", nil)
	log.Error("error message", nil, nil)

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("levels = %q, %q", entries[0].Level, entries[1].Level)
	}
}

func TestSetDefault(t *testing.T) {
	original := defaultLogger
	defer SetDefault(original)

	log, path := newFileLogger(t, LevelDebug)
	SetDefault(log)

	Debug("via default logger", nil)

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Message != "via default logger" {
		t.Errorf("Message = %q", entries[0].Message)
	}
}

func TestCounters(t *testing.T) {
	counters := NewCounters()

	counters.Incr("sync.created")
	counters.Incr("sync.created")
	counters.Add("sync.skipped", 3)

	if got := counters.Get("sync.created"); got != 2 {
		t.Errorf("Get(sync.created) = %d, want 2", got)
	}
	if got := counters.Get("sync.skipped"); got != 3 {
		t.Errorf("Get(sync.skipped) = %d, want 3", got)
	}
	if got := counters.Get("sync.updated"); got != 0 {
		t.Errorf("Get(sync.updated) = %d, want 0", got)
	}

	snapshot := counters.Snapshot()
	counters.Incr("sync.created")
	if snapshot["sync.created"] != 2 {
		t.Errorf("snapshot[sync.created] = %d, want 2", snapshot["sync.created"])
	}
}

func TestDefaultCounterHelpers(t *testing.T) {
	IncrCounter("run.created")
	IncrCounter("run.created")
	AddCounter("run.skipped", 2)

	if got := GetCounter("run.created"); got != 2 {
		t.Errorf("GetCounter(run.created) = %d, want 2", got)
	}
	if got := GetCounter("run.skipped"); got != 2 {
		t.Errorf("GetCounter(run.skipped) = %d, want 2", got)
	}
	if got := GetCounter("run.updated"); got != 0 {
		t.Errorf("GetCounter(run.updated) = %d, want 0", got)
	}
}

func TestCountersConcurrent(t *testing.T) {
	counters := NewCounters()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counters.Incr("sync.created")
		}()
	}
	wg.Wait()

	if got := counters.Get("sync.created"); got != 50 {
		t.Errorf("Get(sync.created) = %d, want 50", got)
	}
}
