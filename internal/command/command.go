package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"dailies-server/internal/logging"
)

// Result holds the outcome of an external tool invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external tools with argument vectors. Arguments are never
// passed through a shell, so filenames with metacharacters are safe.
type Runner interface {
	// Run executes the tool and waits for it to finish. A non-zero exit
	// status is reported through Result.ExitCode with a nil error; err is
	// non-nil only when the process could not be started at all.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// RunStream behaves like Run but delivers stderr lines to onLine as the
	// process produces them. ffmpeg writes its progress log to stderr, so
	// this is the hook for progress scraping.
	RunStream(ctx context.Context, onLine func(line string), name string, args ...string) (Result, error)
}

// ExecRunner runs tools via os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		ExitCode: exitCode(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil && result.ExitCode < 0 {
		return result, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return result, nil
}

// RunStream implements Runner.
func (e *ExecRunner) RunStream(ctx context.Context, onLine func(line string), name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("failed to create stderr pipe for %s: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	var stderr bytes.Buffer
	scanner := bufio.NewScanner(stderrPipe)
	// ffmpeg emits carriage-return separated status updates on one line
	scanner.Split(scanLinesOrCR)
	for scanner.Scan() {
		line := scanner.Text()
		stderr.WriteString(line)
		stderr.WriteByte('\n')
		if onLine != nil {
			onLine(line)
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		logging.Debug("stderr scan for %s ended early: %v", name, scanErr)
	}

	waitErr := cmd.Wait()
	result := Result{
		ExitCode: exitCode(waitErr),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if waitErr != nil && result.ExitCode < 0 {
		return result, fmt.Errorf("failed to run %s: %w", name, waitErr)
	}
	return result, nil
}

// scanLinesOrCR is a bufio.SplitFunc that treats both \n and \r as line
// terminators. ffmpeg overwrites its progress line with bare carriage
// returns, which the default line splitter would buffer until process exit.
func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// exitCode extracts the process exit status from a Run/Wait error.
// Returns 0 for nil, the exit status for *exec.ExitError, and -1 when the
// process never ran.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
