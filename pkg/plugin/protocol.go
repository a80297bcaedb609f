package plugin

// HostInfo contains metadata about a host, printed by host binaries for
// --plugin-info.
type HostInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	HostProtocol    string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}
