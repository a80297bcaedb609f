package executor

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// ProcessRunner defines an interface for running external processes.
// This abstraction allows for dependency injection and easier testing.
type ProcessRunner interface {
	// Run executes path with args and stdin, returning stdout and stderr.
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// RealProcessRunner implements ProcessRunner using actual os/exec commands.
type RealProcessRunner struct{}

// Run executes a real external process.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	// #nosec G204 -- host path comes from the operator's configuration
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// NewRealProcessRunner creates a new real process runner.
func NewRealProcessRunner() *RealProcessRunner {
	return &RealProcessRunner{}
}
