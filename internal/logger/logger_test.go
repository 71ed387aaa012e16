package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetLevel(t *testing.T) {
	if got := GetLevel("warn"); got != "WARN" {
		t.Errorf("GetLevel(warn) = %s", got)
	}
	if got := GetLevel("trace"); got != "INFO" {
		t.Errorf("GetLevel(trace) = %s", got)
	}
}

func TestSetupWritesJSONWithCustomTimestamp(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	log := Setup(Config{Level: "warn", Output: &buf})

	log.Info("dropped")
	log.Warn("kept", "version_name", "v1")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("Expected exactly one log line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" || entry["version_name"] != "v1" {
		t.Errorf("Unexpected entry: %v", entry)
	}
	ts, _ := entry["time"].(string)
	if len(ts) != len("2006-01-02 15:04:05") {
		t.Errorf("Unexpected timestamp format: %q", ts)
	}
}
