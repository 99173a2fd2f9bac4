package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func drain(ch <-chan LogEntry) []LogEntry {
	var out []LogEntry
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestNewManager_RequiresFilePath(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Error("expected error for empty FilePath")
	}
}

func TestManager_WritesFileAndChannel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "boost-installer.log")

	mgr, err := NewManager(Config{FilePath: logPath, Level: "debug"})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer func() { _ = mgr.Close() }()

	mgr.For("patch").Info("patched", "app", "ComfyUI")
	_ = mgr.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"patched"`) {
		t.Errorf("log file missing entry: %s", data)
	}

	entries := drain(mgr.Entries())
	if len(entries) != 1 {
		t.Fatalf("expected 1 channel entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Scope != "patch" || got.Level != "INFO" || got.Message != "patched" {
		t.Errorf("unexpected entry %+v", got)
	}
	if got.Fields["app"] != "ComfyUI" {
		t.Errorf("Fields[app] = %v, want ComfyUI", got.Fields["app"])
	}
}

func TestManager_LevelFilters(t *testing.T) {
	mgr, err := NewManager(Config{FilePath: filepath.Join(t.TempDir(), "x.log"), Level: "warn"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = mgr.Close() }()

	log := mgr.For("scan")
	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	entries := drain(mgr.Entries())
	if len(entries) != 1 || entries[0].Message != "shown" {
		t.Errorf("expected only the warning, got %+v", entries)
	}
}

func TestManager_ForCachesByScope(t *testing.T) {
	mgr := NewTestLogManager(10)
	defer mgr.Close()

	if mgr.For("scan") != mgr.For("scan") {
		t.Error("For() should return the cached logger for the same scope")
	}
	if mgr.For("scan") == mgr.For("patch") {
		t.Error("For() should return distinct loggers per scope")
	}
}

func TestScopedLogger_With(t *testing.T) {
	mgr := NewTestLogManager(10)
	defer mgr.Close()

	mgr.For("patch").With("app", "Fooocus").Error("failed", "error", "boom")

	entries := drain(mgr.Entries())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Fields["app"] != "Fooocus" || entries[0].Fields["error"] != "boom" {
		t.Errorf("fields not carried: %+v", entries[0].Fields)
	}
	if entries[0].Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", entries[0].Level)
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info("ignored")
	if l.With("k", "v") != l {
		t.Error("With on a nop logger should return itself")
	}
}

func TestChannelSink_DropsOldestWhenFull(t *testing.T) {
	sink := NewChannelSink(2)
	for _, msg := range []string{"one", "two", "three"} {
		if _, err := sink.Write([]byte(`{"level":"info","msg":"` + msg + `"}`)); err != nil {
			t.Fatal(err)
		}
	}
	_ = sink.Close()

	entries := drain(sink.Entries())
	if len(entries) != 2 || entries[0].Message != "two" || entries[1].Message != "three" {
		t.Errorf("expected [two three], got %+v", entries)
	}
}

func TestChannelSink_IgnoresGarbage(t *testing.T) {
	sink := NewChannelSink(1)
	defer sink.Close()

	n, err := sink.Write([]byte("not json"))
	if err != nil || n != len("not json") {
		t.Errorf("Write() = %d, %v", n, err)
	}
	if len(drain(sink.Entries())) != 0 {
		t.Error("garbage should not produce entries")
	}
}

func TestChannelSink_WriteAfterClose(t *testing.T) {
	sink := NewChannelSink(1)
	_ = sink.Close()
	_ = sink.Close()

	if _, err := sink.Write([]byte(`{"msg":"late"}`)); err == nil {
		t.Error("expected error writing to closed sink")
	}
}

func TestLogEntry_String(t *testing.T) {
	e := LogEntry{
		Timestamp: time.Date(2025, 8, 1, 14, 3, 9, 0, time.Local),
		Level:     "WARN",
		Scope:     "scan",
		Message:   "root missing",
		Fields:    map[string]any{"root": "/x", "attempt": 1},
	}
	want := "14:03:09 WARN [scan] root missing attempt=1 root=/x"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"fatal":   "INFO",
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
