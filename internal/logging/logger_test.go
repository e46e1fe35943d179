package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFoldsComponentIntoPrefix(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	WithComponent(logger, "scheduler").Info("job started",
		String("job_id", "abc123"),
		Int("pairs", 3),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO scheduler: job started") {
		t.Fatalf("component prefix missing: %q", line)
	}
	if !strings.Contains(line, "job_id=abc123") || !strings.Contains(line, "pairs=3") {
		t.Fatalf("attributes missing: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as a key-value pair: %q", line)
	}
}

func TestConsoleHandlerQuotesAwkwardValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Warn("pair failed", Error(errors.New("exit status 1")))

	if !strings.Contains(buf.String(), `error="exit status 1"`) {
		t.Fatalf("value with spaces should be quoted: %q", buf.String())
	}
}

func TestJSONHandlerKeyNames(t *testing.T) {
	var buf bytes.Buffer
	handler := newJSONHandler(&buf, new(slog.LevelVar))
	slog.New(handler).Info("hello", String("k", "v"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", "k"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q in %s", key, buf.String())
		}
	}
	if decoded["level"] != "info" {
		t.Fatalf("level should be lowercased, got %v", decoded["level"])
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug")
	}
	if parseLevel("WARN") != slog.LevelWarn {
		t.Fatal("warn should be case-insensitive")
	}
	if parseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unknown levels fall back to info")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
