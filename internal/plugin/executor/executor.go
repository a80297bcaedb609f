// Package executor connects to a host binary regardless of its underlying
// protocol (go-plugin RPC or JSON-stdio) and exposes it as a plugin.Host.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/tokenkit/internal/plugin/protocol"
	"github.com/jmylchreest/tokenkit/internal/security"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// Config describes how to launch a host.
type Config struct {
	// Path is the host binary.
	Path string

	// Args are passed on every invocation, before any protocol flags.
	Args []string

	// Verbose forwards go-plugin's own logging to stderr.
	Verbose bool

	// Runner executes json-stdio hosts. Defaults to RealProcessRunner.
	Runner ProcessRunner

	// NewID generates request ids. Defaults to uuid.NewString.
	NewID func() string
}

// HostExecutor owns the connection to one host binary.
type HostExecutor struct {
	cfg          Config
	protocolType plugin.HostProtocol
	info         plugin.HostInfo
	client       *goplugin.Client
	host         plugin.Host
}

// New creates a HostExecutor by detecting the host's protocol.
func New(ctx context.Context, cfg Config) (*HostExecutor, error) {
	path, err := security.ResolveHostPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	cfg.Path = path

	result, err := protocol.DetectProtocol(ctx, cfg.Path, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to detect host protocol: %w", err)
	}
	return NewWithResult(cfg, result), nil
}

// NewWithResult creates a HostExecutor from an earlier detection.
func NewWithResult(cfg Config, result *protocol.DetectorResult) *HostExecutor {
	if cfg.Runner == nil {
		cfg.Runner = NewRealProcessRunner()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &HostExecutor{cfg: cfg, protocolType: result.Type, info: result.Info}
}

// Protocol returns the detected protocol.
func (e *HostExecutor) Protocol() plugin.HostProtocol { return e.protocolType }

// Info returns the host's --plugin-info metadata.
func (e *HostExecutor) Info() plugin.HostInfo { return e.info }

// Host connects on first use and returns the host. go-plugin hosts keep
// running until Close; json-stdio hosts are executed once per request.
func (e *HostExecutor) Host() (plugin.Host, error) {
	if e.host != nil {
		return e.host, nil
	}
	switch e.protocolType {
	case plugin.HostProtocolGoPlugin:
		h, err := e.dispense()
		if err != nil {
			return nil, err
		}
		e.host = h
	case plugin.HostProtocolJSON:
		e.host = &plugin.MessageClient{Info: e.info, Send: e.sendJSON, NewID: e.cfg.NewID}
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
	return e.host, nil
}

// Close cleans up any resources held by the executor.
func (e *HostExecutor) Close() {
	if e.client != nil {
		e.client.Kill()
		e.client = nil
	}
	e.host = nil
}

// --- Go-Plugin RPC ---

func (e *HostExecutor) dispense() (*plugin.HostRPCClient, error) {
	// Configure logger based on verbose flag.
	var logger hclog.Logger
	if e.cfg.Verbose {
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "host",
			Output: os.Stderr,
			Level:  hclog.Debug,
		})
	} else {
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "host",
			Output: io.Discard,
			Level:  hclog.Off,
		})
	}

	// #nosec G204 -- host path comes from the operator's configuration
	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.PluginName: &plugin.HostRPC{},
		},
		Cmd:              exec.Command(e.cfg.Path, e.cfg.Args...),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.PluginName)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to dispense host: %w", err)
	}

	client, ok := raw.(*plugin.HostRPCClient)
	if !ok {
		e.Close()
		return nil, fmt.Errorf("host dispensed unexpected type %T", raw)
	}
	return client, nil
}

// --- JSON-stdio ---

// sendJSON runs the host once with req on stdin and decodes its reply.
// Typography requests may legitimately produce no output.
func (e *HostExecutor) sendJSON(ctx context.Context, req plugin.Message) (plugin.Message, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return plugin.Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	stdout, stderr, err := e.cfg.Runner.Run(ctx, e.cfg.Path, e.cfg.Args, bytes.NewReader(payload))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return plugin.Message{}, ctxErr
		}
		return plugin.Message{}, fmt.Errorf("host execution failed: %w\nStderr: %s", err, strings.TrimSpace(string(stderr)))
	}

	if len(bytes.TrimSpace(stdout)) == 0 {
		if req.Type.IsTypography() {
			return plugin.Message{}, nil
		}
		return plugin.Message{}, errors.New("host produced no response")
	}

	var resp plugin.Message
	if err := json.Unmarshal(stdout, &resp); err != nil {
		return plugin.Message{}, fmt.Errorf("failed to parse host output: %w\nOutput: %s", err, stdout)
	}
	return resp, nil
}
