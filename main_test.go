package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tinyrange/multiwin/internal/config"
)

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.Log{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := newLogger(config.Log{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
