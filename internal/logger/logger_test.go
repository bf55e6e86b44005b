package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSetup_ReturnsJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, "info")

	if l == nil {
		t.Fatal("expected non-nil logger")
	}

	l.Info("test message", slog.String("key", "value"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON log output, got error: %v\nraw output: %s", err, buf.String())
	}

	if entry["msg"] != "test message" {
		t.Errorf("msg = %q, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %q, want %q", entry["key"], "value")
	}
}

func TestSetup_DebugLevel_EmitsDebugLogs(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, "debug")

	l.Debug("debug message")

	if buf.Len() == 0 {
		t.Error("expected debug log to be emitted at debug level")
	}
}

func TestSetup_InfoLevel_SuppressesDebugLogs(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, "info")

	l.Debug("debug message")

	if buf.Len() != 0 {
		t.Errorf("expected debug log to be suppressed, got: %s", buf.String())
	}
}

func TestParseLevel_UnknownFallsBackToInfo(t *testing.T) {
	if lvl := parseLevel("verbose"); lvl != slog.LevelInfo {
		t.Errorf("parseLevel(verbose) = %v, want %v", lvl, slog.LevelInfo)
	}
}

func TestParseLevel_CaseInsensitive(t *testing.T) {
	if lvl := parseLevel("WARN"); lvl != slog.LevelWarn {
		t.Errorf("parseLevel(WARN) = %v, want %v", lvl, slog.LevelWarn)
	}
}
