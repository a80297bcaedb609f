// Package plugin defines the contract between tokenkit and a host that owns
// a document's native variable store. Host implementations import this
// package instead of internal packages.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current host API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "1.0.0"

	// MinCompatibleVersion is the oldest protocol version this tokenkit version can work with.
	MinCompatibleVersion = "1.0.0"
)

// Handshake is the handshake configuration for go-plugin hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1, // Major version from ProtocolVersion
	MagicCookieKey:   "TOKENKIT_HOST",
	MagicCookieValue: "tokenkit_variables",
}

// PluginName is the key a host registers its HostRPC under.
const PluginName = "host"

// HostProtocol defines how tokenkit talks to a host binary.
type HostProtocol string

const (
	// HostProtocolGoPlugin indicates the host uses HashiCorp go-plugin RPC.
	HostProtocolGoPlugin HostProtocol = "go-plugin"

	// HostProtocolJSON indicates the host answers one Message per invocation over stdin/stdout.
	HostProtocolJSON HostProtocol = "json-stdio"
)
