package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup_ReturnsJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

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

func TestSetup_IncludesTimeAndLevelFields(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

	l.Warn("warning test")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if _, ok := entry["time"]; !ok {
		t.Error("expected 'time' field in JSON log output")
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %q, want %q", entry["level"], "WARN")
	}
}

func TestSetup_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

	l.Info("sign in",
		slog.String("user_id", "u-123"),
		slog.String("password", "hunter2"),
		slog.String("refresh_token", "eyJhbGciOi..."),
	)

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked into log: %s", out)
	}
	if strings.Contains(out, "eyJhbGciOi") {
		t.Errorf("token leaked into log: %s", out)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if entry["user_id"] != "u-123" {
		t.Errorf("user_id = %v, want u-123", entry["user_id"])
	}
	if entry["password"] != "[REDACTED]" {
		t.Errorf("password = %v, want [REDACTED]", entry["password"])
	}
}

func TestSetLevel_FiltersBelowLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(slog.LevelInfo) })

	var buf bytes.Buffer
	l := Setup(&buf)

	SetLevel(slog.LevelWarn)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info log should be filtered at warn level, got %s", buf.String())
	}

	SetLevel(slog.LevelDebug)
	l.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug log should be emitted at debug level, got %s", buf.String())
	}
}

func TestSetupDefault_SetsGlobalLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupDefault(&buf)

	slog.Info("global test")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "global test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "global test")
	}
}
