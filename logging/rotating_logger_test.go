package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRotatingLoggerWritesWeeklyFile(t *testing.T) {
	tempDir := t.TempDir()

	rl := NewRotatingLogger(tempDir, 1, 0)
	rl.now = fixedClock(time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC))
	defer func() { _ = rl.Close() }()

	testMessage := "Test log message\n"
	if _, err := rl.Write([]byte(testMessage)); err != nil {
		t.Fatalf("Failed to write to log: %v", err)
	}

	expectedFileName := filepath.Join(tempDir, "isoconv-2025-W41.log")
	content, err := os.ReadFile(expectedFileName)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if string(content) != testMessage {
		t.Errorf("Expected log file content %q, got %q", testMessage, string(content))
	}
}

func TestGetWeekKey(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC), "2025-W41"},
		{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
	}

	for _, tt := range tests {
		if got := getWeekKey(tt.date); got != tt.expected {
			t.Errorf("getWeekKey(%s) = %s, want %s", tt.date.Format(time.DateOnly), got, tt.expected)
		}
	}
}

func TestRotatingLoggerRotatesOnWeekChange(t *testing.T) {
	tempDir := t.TempDir()

	current := time.Date(2025, 10, 5, 23, 59, 0, 0, time.UTC) // Sunday, week 40
	rl := NewRotatingLogger(tempDir, 1, 0)
	rl.now = func() time.Time { return current }
	defer func() { _ = rl.Close() }()

	if _, err := rl.Write([]byte("week 40\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	current = current.Add(2 * time.Minute) // Monday, week 41
	if _, err := rl.Write([]byte("week 41\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	for week, expected := range map[string]string{"2025-W40": "week 40\n", "2025-W41": "week 41\n"} {
		content, err := os.ReadFile(filepath.Join(tempDir, "isoconv-"+week+".log"))
		if err != nil {
			t.Fatalf("Expected log file for %s: %v", week, err)
		}
		if string(content) != expected {
			t.Errorf("Week %s: expected %q, got %q", week, expected, string(content))
		}
	}
}

func TestRotatingLoggerWithSizeLimit(t *testing.T) {
	tempDir := t.TempDir()

	rl := NewRotatingLogger(tempDir, 1, 20)
	rl.now = fixedClock(time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC))
	defer func() { _ = rl.Close() }()

	line := []byte("0123456789\n") // 11 bytes, two lines exceed 20
	for i := 0; i < 3; i++ {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	expected := []string{
		"isoconv-2025-W41.log",
		"isoconv-2025-W41_01.log",
		"isoconv-2025-W41_02.log",
	}
	for _, name := range expected {
		info, err := os.Stat(filepath.Join(tempDir, name))
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", name, err)
		}
		if info.Size() != int64(len(line)) {
			t.Errorf("Expected %s to hold one line, got %d bytes", name, info.Size())
		}
	}
}

func TestRotatingLoggerReusesExistingFileBelowLimit(t *testing.T) {
	tempDir := t.TempDir()

	existing := filepath.Join(tempDir, "isoconv-2025-W41.log")
	if err := os.WriteFile(existing, []byte("previous run\n"), 0640); err != nil {
		t.Fatalf("Failed to seed log file: %v", err)
	}

	rl := NewRotatingLogger(tempDir, 1, 1024)
	rl.now = fixedClock(time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC))
	defer func() { _ = rl.Close() }()

	if _, err := rl.Write([]byte("this run\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	content, _ := os.ReadFile(existing)
	if string(content) != "previous run\nthis run\n" {
		t.Errorf("Expected append to existing file, got %q", string(content))
	}
	if rl.currentSize.Load() != int64(len(content)) {
		t.Errorf("Expected size %d, got %d", len(content), rl.currentSize.Load())
	}
}

func TestRotatingLoggerExistingFileAtSizeLimit(t *testing.T) {
	tempDir := t.TempDir()

	full := filepath.Join(tempDir, "isoconv-2025-W41.log")
	if err := os.WriteFile(full, []byte(strings.Repeat("x", 32)), 0640); err != nil {
		t.Fatalf("Failed to seed log file: %v", err)
	}

	rl := NewRotatingLogger(tempDir, 1, 32)
	rl.now = fixedClock(time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC))
	defer func() { _ = rl.Close() }()

	if _, err := rl.Write([]byte("next\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tempDir, "isoconv-2025-W41_01.log"))
	if err != nil {
		t.Fatalf("Expected numbered file: %v", err)
	}
	if string(content) != "next\n" {
		t.Errorf("Expected numbered file content, got %q", string(content))
	}
}

func TestCleanupOldLogs(t *testing.T) {
	tempDir := t.TempDir()

	now := time.Now()
	rl := NewRotatingLogger(tempDir, 1, 0)

	oldFile := filepath.Join(tempDir, "isoconv-2025-W30.log")
	newFile := filepath.Join(tempDir, "isoconv-"+getWeekKey(now)+".log")
	foreignFile := filepath.Join(tempDir, "other-2025-W30.log")

	for _, name := range []string{oldFile, newFile, foreignFile} {
		if err := os.WriteFile(name, []byte("content"), 0640); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	threeWeeksAgo := now.AddDate(0, 0, -21)
	for _, name := range []string{oldFile, foreignFile} {
		if err := os.Chtimes(name, threeWeeksAgo, threeWeeksAgo); err != nil {
			t.Fatalf("Failed to set modification time: %v", err)
		}
	}

	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("Failed to cleanup old logs: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted file, got %d", deleted)
	}

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Errorf("Old log file %s was not deleted", oldFile)
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("New log file %s was incorrectly deleted", newFile)
	}
	if _, err := os.Stat(foreignFile); err != nil {
		t.Errorf("Unrelated file %s was incorrectly deleted", foreignFile)
	}
}

func TestRotatingLoggerErrorCases(t *testing.T) {
	rl := NewRotatingLogger(filepath.Join(t.TempDir(), "missing", "dir"), 1, 0)

	if _, err := rl.Write([]byte("lost")); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
	if _, err := rl.cleanupOldLogs(); err == nil {
		t.Error("Expected error cleaning a missing directory")
	}
	if err := rl.Close(); err != nil {
		t.Errorf("Close without an open file should succeed, got %v", err)
	}
}

func TestRotatingLoggerConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()

	rl := NewRotatingLogger(tempDir, 1, 0)
	rl.now = fixedClock(time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC))
	defer func() { _ = rl.Close() }()

	const writers, linesEach = 8, 50
	line := []byte("concurrent line\n")

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < linesEach; j++ {
				if _, err := rl.Write(line); err != nil {
					t.Errorf("Concurrent write failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	content, err := os.ReadFile(filepath.Join(tempDir, "isoconv-2025-W41.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if got := strings.Count(string(content), "concurrent line\n"); got != writers*linesEach {
		t.Errorf("Expected %d lines, got %d", writers*linesEach, got)
	}
}

func TestRotatingLoggerCloseStopsCleanup(t *testing.T) {
	rl := NewRotatingLogger(t.TempDir(), 1, 0)
	rl.startCleanup()
	rl.startCleanup() // second call is a no-op

	done := make(chan error, 1)
	go func() { done <- rl.Close() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after stopping cleanup goroutine")
	}
}

func TestReportCleanupWritesPrefixedConsoleLines(t *testing.T) {
	buf := captureConsole(t)

	reportCleanup(0, nil)
	reportCleanup(3, nil)
	reportCleanup(0, errors.New("permission denied"))

	expected := "INFO: Cleaned up old log files deleted=3\n" +
		`ERROR: Failed to cleanup old logs error="permission denied"` + "\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}
