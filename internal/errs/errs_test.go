package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", Validationf("bad slug %q", "X!"), http.StatusBadRequest},
		{"not found", NotFound("project", "demo"), http.StatusNotFound},
		{"conflict", Conflictf("slug %q already exists", "demo"), http.StatusConflict},
		{"tool error", &ExternalToolError{Tool: "ffmpeg", ExitCode: 1}, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("loading: %w", NotFound("video", "a.mp4")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("video", "a.mp4")) {
		t.Error("Expected IsNotFound to be true for NotFoundError")
	}
	if !IsNotFound(fmt.Errorf("wrap: %w", NotFound("video", "a.mp4"))) {
		t.Error("Expected IsNotFound to be true for wrapped NotFoundError")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("Expected IsNotFound to be false for unrelated error")
	}
}

func TestErrorMessages(t *testing.T) {
	nf := NotFound("project", "demo")
	if nf.Error() != "project 'demo' not found" {
		t.Errorf("Unexpected message: %s", nf.Error())
	}

	tool := &ExternalToolError{Tool: "ffprobe", ExitCode: 2, Stderr: "no such file"}
	if tool.Error() != "ffprobe exited with code 2: no such file" {
		t.Errorf("Unexpected message: %s", tool.Error())
	}

	toolNoStderr := &ExternalToolError{Tool: "ffmpeg", ExitCode: 1}
	if toolNoStderr.Error() != "ffmpeg exited with code 1" {
		t.Errorf("Unexpected message: %s", toolNoStderr.Error())
	}
}
