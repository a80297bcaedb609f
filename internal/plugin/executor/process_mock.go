package executor

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// MockProcessRunner is a mock implementation of ProcessRunner for testing.
type MockProcessRunner struct {
	// RunFunc allows tests to provide custom behavior
	RunFunc func(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)

	// ShouldTimeout if true, will block until context is cancelled
	ShouldTimeout bool

	// CallCount tracks how many times Run was called
	CallCount int

	// LastPath stores the last path passed to Run
	LastPath string

	// LastArgs stores the last args passed to Run
	LastArgs []string
}

// Run executes the mock behavior.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.CallCount++
	m.LastPath = path
	m.LastArgs = args

	if m.ShouldTimeout {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args, stdin)
	}
	return nil, nil, nil
}

// NewTimeoutMockProcessRunner creates a mock that simulates a hung host.
func NewTimeoutMockProcessRunner() *MockProcessRunner {
	return &MockProcessRunner{ShouldTimeout: true}
}

// NewErrorMockProcessRunner creates a mock that fails with errMsg on stderr.
func NewErrorMockProcessRunner(errMsg string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(context.Context, string, []string, io.Reader) ([]byte, []byte, error) {
			return nil, []byte(errMsg), errors.New("exit status 1")
		},
	}
}

// NewHostMockProcessRunner creates a mock that behaves like a json-stdio
// host binary backed by h.
func NewHostMockProcessRunner(h plugin.Host) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(ctx context.Context, _ string, _ []string, stdin io.Reader) ([]byte, []byte, error) {
			var req plugin.Message
			if err := json.NewDecoder(stdin).Decode(&req); err != nil {
				return nil, []byte(err.Error()), err
			}
			resp, ok := plugin.Dispatch(ctx, h, req)
			if !ok {
				return nil, nil, nil
			}
			out, err := json.Marshal(resp)
			return out, nil, err
		},
	}
}
