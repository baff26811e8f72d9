package command

import (
	"bufio"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestScanLinesOrCR(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"newlines", "one\ntwo\nthree", []string{"one", "two", "three"}},
		{"carriage returns", "frame=1\rframe=2\rframe=3", []string{"frame=1", "frame=2", "frame=3"}},
		{"mixed", "start\nframe=1\rframe=2\ndone", []string{"start", "frame=1", "frame=2", "done"}},
		{"no terminator", "lonely", []string{"lonely"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(scanLinesOrCR)

			var lines []string
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if !reflect.DeepEqual(lines, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, lines)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(nil); got != 0 {
		t.Errorf("Expected 0 for nil error, got %d", got)
	}
	if got := exitCode(errors.New("not an exit error")); got != -1 {
		t.Errorf("Expected -1 for non-exit error, got %d", got)
	}
}

func TestExecRunnerRun(t *testing.T) {
	runner := NewExecRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("Expected stdout 'hello', got %q", result.Stdout)
	}
}

func TestExecRunnerRunNonZeroExit(t *testing.T) {
	runner := NewExecRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	if err != nil {
		t.Fatalf("Expected nil error for non-zero exit, got %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Stderr, "oops") {
		t.Errorf("Expected stderr to contain 'oops', got %q", result.Stderr)
	}
}

func TestExecRunnerRunMissingTool(t *testing.T) {
	runner := NewExecRunner()

	result, err := runner.Run(context.Background(), "definitely-not-a-real-tool-xyz")
	if err == nil {
		t.Fatal("Expected error for missing executable")
	}
	if result.ExitCode != -1 {
		t.Errorf("Expected exit code -1, got %d", result.ExitCode)
	}
}

func TestExecRunnerRunStream(t *testing.T) {
	runner := NewExecRunner()

	var lines []string
	result, err := runner.RunStream(context.Background(), func(line string) {
		lines = append(lines, line)
	}, "sh", "-c", `printf 'first\nsecond\n' >&2`)
	if err != nil {
		t.Fatalf("RunStream failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
	if !reflect.DeepEqual(lines, []string{"first", "second"}) {
		t.Errorf("Expected streamed lines [first second], got %v", lines)
	}
}

func TestExecRunnerRunStreamCRSeparated(t *testing.T) {
	runner := NewExecRunner()

	var lines []string
	_, err := runner.RunStream(context.Background(), func(line string) {
		lines = append(lines, line)
	}, "sh", "-c", `printf 'time=00:00:01.00\rtime=00:00:02.00\r' >&2`)
	if err != nil {
		t.Fatalf("RunStream failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 progress lines, got %d: %v", len(lines), lines)
	}
	if lines[1] != "time=00:00:02.00" {
		t.Errorf("Expected second line 'time=00:00:02.00', got %q", lines[1])
	}
}

func TestExecRunnerContextCancellation(t *testing.T) {
	runner := NewExecRunner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, _ := runner.Run(ctx, "sh", "-c", "sleep 10")
	if result.ExitCode == 0 {
		t.Error("Expected non-zero exit for canceled context")
	}
}

// Interface compliance.
var _ Runner = (*ExecRunner)(nil)
