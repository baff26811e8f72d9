package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	original := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(original)
	fn()
	return buf.String()
}

func TestLevelFiltering(t *testing.T) {
	original := GetLevel()
	defer SetLevel(original)

	SetLevel(LevelWarn)
	out := capture(t, func() {
		Debug("debug line")
		Info("info line")
		Warn("warn line")
		Error("error line")
	})

	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("Expected debug/info to be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "[WARN] warn line") {
		t.Errorf("Expected warn line, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error line") {
		t.Errorf("Expected error line, got %q", out)
	}
}

func TestDebugEnabled(t *testing.T) {
	original := GetLevel()
	defer SetLevel(original)

	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("Expected debug to be enabled")
	}
	out := capture(t, func() { Debug("visible %d", 42) })
	if !strings.Contains(out, "[DEBUG] visible 42") {
		t.Errorf("Expected formatted debug line, got %q", out)
	}

	SetLevel(LevelInfo)
	if IsDebugEnabled() {
		t.Error("Expected debug to be disabled at info level")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("String(%d): expected %q, got %q", tt.level, tt.expected, got)
		}
	}
}
