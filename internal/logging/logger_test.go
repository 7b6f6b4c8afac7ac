package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"  WARN ": slog.LevelWarn,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clipcap.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("worker started", slog.Int("pid", 42))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"worker started"`) {
		t.Fatalf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"pid":42`) {
		t.Fatalf("log file missing attribute: %s", data)
	}
}

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("worker started", slog.String("binary", "/opt/core"), slog.Int("pid", 7))
	line := buf.String()
	if !strings.Contains(line, "INF worker started") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "binary=/opt/core") || !strings.Contains(line, "pid=7") {
		t.Fatalf("attributes missing: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("color codes written to non-terminal: %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("quiet")
	logger.Warn("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info line leaked past warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar))).WithGroup("worker")
	logger.Info("spawned", slog.Int("pid", 9))
	if !strings.Contains(buf.String(), "worker.pid=9") {
		t.Fatalf("group prefix missing: %q", buf.String())
	}
}
