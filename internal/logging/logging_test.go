package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDailyWriterWriteAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewDailyWriterWithPrefix(dir, "", 0)
	if err != nil {
		t.Fatalf("NewDailyWriterWithPrefix: %v", err)
	}
	defer writer.Close()

	if writer.retentionDays != defaultRetention {
		t.Fatalf("expected default retention, got %d", writer.retentionDays)
	}
	if _, err := writer.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	date := time.Now().Format(fileDateLayout)
	path := filepath.Join(dir, defaultPrefix+"-"+date+".log")
	if writer.Path() != path {
		t.Fatalf("expected path %q, got %q", path, writer.Path())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log content missing")
	}
}

func TestDailyWriterRotatesOnDateChange(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewDailyWriterWithPrefix(dir, "test", 30)
	if err != nil {
		t.Fatalf("NewDailyWriterWithPrefix: %v", err)
	}
	defer writer.Close()

	next := time.Now().AddDate(0, 0, 1)
	writer.now = func() time.Time { return next }
	if _, err := writer.Write([]byte("tomorrow")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := filepath.Join(dir, "test-"+next.Format(fileDateLayout)+".log")
	if writer.Path() != want {
		t.Fatalf("expected rotation to %q, got %q", want, writer.Path())
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "tomorrow" {
		t.Fatalf("expected rotated file content, got %q (%v)", data, err)
	}
}

func TestDailyWriterPrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	prefix := "test"

	oldPath := filepath.Join(dir, prefix+"-"+time.Now().AddDate(0, 0, -3).Format(fileDateLayout)+".log")
	recentPath := filepath.Join(dir, prefix+"-"+time.Now().Format(fileDateLayout)+".log")
	otherPath := filepath.Join(dir, "other-20000101.log")
	for _, p := range []string{oldPath, recentPath, otherPath} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	writer, err := NewDailyWriterWithPrefix(dir, prefix, 1)
	if err != nil {
		t.Fatalf("NewDailyWriterWithPrefix: %v", err)
	}
	defer writer.Close()

	if _, err := os.Stat(oldPath); err == nil {
		t.Fatalf("expected old log to be removed")
	}
	if _, err := os.Stat(recentPath); err != nil {
		t.Fatalf("expected recent log to remain: %v", err)
	}
	if _, err := os.Stat(otherPath); err != nil {
		t.Fatalf("expected unrelated log to remain: %v", err)
	}
}

func TestDailyWriterCloseNil(t *testing.T) {
	w := &DailyWriter{}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewLoggerWritesToStdoutAndFile(t *testing.T) {
	t.Setenv(envLogLevel, "")
	t.Setenv(envLogFormat, "")
	dir := t.TempDir()
	var stdout bytes.Buffer

	logger, writer, err := NewLogger(Options{Dir: dir, Stdout: &stdout})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer writer.Close()

	logger.Debug("hidden")
	logger.Info("entry stored", "owner", "owner-1")

	out := stdout.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug to be filtered at info level, got %q", out)
	}
	if !strings.Contains(out, "service=finlog") || !strings.Contains(out, "owner=owner-1") {
		t.Fatalf("unexpected stdout %q", out)
	}
	data, err := os.ReadFile(writer.Path())
	if err != nil || !strings.Contains(string(data), "entry stored") {
		t.Fatalf("expected file output, got %q (%v)", data, err)
	}
}

func TestNewLoggerEnvOverrides(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogFormat, "JSON")
	var stdout bytes.Buffer

	logger, writer, err := NewLogger(Options{Stdout: &stdout, Level: slog.LevelError})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if writer != nil {
		t.Fatalf("expected no file writer without a dir")
	}
	logger.Debug("visible")

	var record map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &record); err != nil {
		t.Fatalf("expected json output, got %q: %v", stdout.String(), err)
	}
	if record["msg"] != "visible" || record["level"] != "DEBUG" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{value: "", want: slog.LevelInfo},
		{value: "debug", want: slog.LevelDebug},
		{value: "WARNING", want: slog.LevelWarn},
		{value: "error", want: slog.LevelError},
		{value: "2", want: slog.Level(2)},
		{value: "loud", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Setenv(envLogLevel, tt.value)
		if got := resolveLevel(slog.LevelInfo); got != tt.want {
			t.Fatalf("resolveLevel(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
