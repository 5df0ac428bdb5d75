package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupNoSinksIsNop(t *testing.T) {
	zl, err := Setup(Options{})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	// Must not panic
	New("test", zl).Info("dropped")
}

func TestSetupInvalidLevel(t *testing.T) {
	if _, err := Setup(Options{Level: "chatty"}); err == nil {
		t.Error("Expected error for invalid level, but got none")
	}
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "docsum.log")

	zl, err := Setup(Options{File: path, Level: "info", MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	log := New("session", zl)
	log.Debug("below level")
	log.Info("summary stored", F("file", "notes.pdf"), Count(3))
	log.Error("request failed", Error(errors.New("boom")))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %q", len(lines), data)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["message"] != "summary stored" {
		t.Errorf("Expected message 'summary stored', got %v", entry["message"])
	}
	if entry["component"] != "session" {
		t.Errorf("Expected component 'session', got %v", entry["component"])
	}
	if entry["file"] != "notes.pdf" {
		t.Errorf("Expected file field 'notes.pdf', got %v", entry["file"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected level INFO, got %v", entry["level"])
	}
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer

	zl, err := Setup(Options{Console: &buf})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	New("cli", zl).WithComponent("docservice").Debug("posting file")
	_ = zl.Sync()

	out := buf.String()
	if !strings.Contains(out, "posting file") {
		t.Errorf("Expected console output to contain message, got %q", out)
	}
	if !strings.Contains(out, "docservice") {
		t.Errorf("Expected console output to contain component, got %q", out)
	}
}

func TestNilBaseLogger(t *testing.T) {
	log := New("nil-base", nil)
	if log.Component() != "nil-base" {
		t.Errorf("Expected component nil-base, got %s", log.Component())
	}
	log.With(F("k", "v")).Warn("discarded")
	Nop().Error("discarded")
}
