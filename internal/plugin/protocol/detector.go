package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// DetectTimeout bounds the --plugin-info query.
const DetectTimeout = 5 * time.Second

// DetectorResult contains information about a detected host protocol.
type DetectorResult struct {
	// Type indicates which protocol the host uses.
	Type plugin.HostProtocol

	// Info contains metadata from --plugin-info.
	Info plugin.HostInfo
}

// DetectProtocol queries a host binary with --plugin-info, appended to args,
// and checks that its protocol version is compatible.
func DetectProtocol(ctx context.Context, hostPath string, args ...string) (*DetectorResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	// #nosec G204 -- host path comes from the operator's configuration
	cmd := exec.CommandContext(ctx, hostPath, append(args, "--plugin-info")...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query host: %w", err)
	}
	return ParseHostInfo(output)
}

// ParseHostInfo decodes --plugin-info output.
func ParseHostInfo(output []byte) (*DetectorResult, error) {
	var info plugin.HostInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse host info: %w", err)
	}

	result := &DetectorResult{Info: info}

	// Determine protocol type from plugin_protocol field.
	switch plugin.HostProtocol(info.HostProtocol) {
	case plugin.HostProtocolGoPlugin:
		result.Type = plugin.HostProtocolGoPlugin
	case plugin.HostProtocolJSON, "":
		// Empty defaults to json-stdio.
		result.Type = plugin.HostProtocolJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.HostProtocol)
	}

	if ok, err := IsCompatible(info.ProtocolVersion); !ok {
		return nil, fmt.Errorf("host %s: %w", info.Name, err)
	}
	return result, nil
}
