package compute

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected a non-nil default logger")
	}
	if l.Enabled(nil, slog.LevelError) {
		t.Error("expected default logger to be disabled")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Error("expected log output after SetLogger")
	}

	// nil restores the silent default.
	SetLogger(nil)
	buf.Reset()
	Logger().Info("quiet")
	if buf.Len() != 0 {
		t.Error("expected no output after SetLogger(nil)")
	}
}
