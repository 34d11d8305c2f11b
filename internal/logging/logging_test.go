package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// captureLogOutput temporarily redirects the package logger to a buffer.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	old := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f()

	defaultLogger = old
	return buf.String()
}

func TestInfo_EmitsMessageAndFields(t *testing.T) {
	t.Parallel()

	out := captureLogOutput(func() {
		Info("volume_opened", "path", "/tmp/a.jb")
	})

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if parsed["msg"] != "volume_opened" {
		t.Fatalf("msg = %v, want volume_opened", parsed["msg"])
	}
	if parsed["path"] != "/tmp/a.jb" {
		t.Fatalf("path = %v, want /tmp/a.jb", parsed["path"])
	}
}

func TestVolumeError_IncludesErrorString(t *testing.T) {
	t.Parallel()

	out := captureLogOutput(func() {
		VolumeError("/tmp/a.jb", "grow", errors.New("disk full"))
	})

	if !strings.Contains(out, "disk full") {
		t.Fatalf("expected output to contain the wrapped error text, got %s", out)
	}
	if !strings.Contains(out, `"operation":"grow"`) {
		t.Fatalf("expected operation field, got %s", out)
	}
}

func TestRegistryEvent_IncludesHandle(t *testing.T) {
	t.Parallel()

	out := captureLogOutput(func() {
		RegistryEvent("open", "0198abc-handle")
	})

	if !strings.Contains(out, "0198abc-handle") {
		t.Fatalf("expected output to contain handle, got %s", out)
	}
}

func TestDebug_SuppressedAtWarnLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	old := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	Debug("should be suppressed")

	defaultLogger = old

	if buf.Len() != 0 {
		t.Fatalf("expected no output at Warn level for a Debug call, got %q", buf.String())
	}
}
