// tokenkit-memhost is an in-memory variable host for tokenkit sync.
//
// With no arguments it serves the go-plugin protocol. With --json it serves
// one json-stdio message, reading the project from --snapshot (or
// TOKENKIT_MEMHOST_SNAPSHOT) and writing it back afterwards, so a project
// survives across invocations.
//
// Usage:
//
//	tokenkit sync --host ./tokenkit-memhost
//	echo '{"type":"sync-get-collections","requestId":"1"}' | tokenkit-memhost --json --snapshot project.yaml
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
	"github.com/jmylchreest/tokenkit/pkg/plugin/memhost"
)

const snapshotEnv = "TOKENKIT_MEMHOST_SNAPSHOT"

func main() {
	var (
		info     bool
		jsonMode bool
		snapshot = os.Getenv(snapshotEnv)
	)
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--plugin-info":
			info = true
		case "--json":
			jsonMode = true
		case "--snapshot":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --snapshot requires a path")
				os.Exit(2)
			}
			i++
			snapshot = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown argument %q\n", args[i])
			os.Exit(2)
		}
	}

	if info {
		protocol := plugin.HostProtocolGoPlugin
		if jsonMode {
			protocol = plugin.HostProtocolJSON
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(memhost.New(protocol).GetMetadata()); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding host info: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !jsonMode {
		plugin.Serve(memhost.New(plugin.HostProtocolGoPlugin))
		return
	}

	if err := serveJSON(snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveJSON(snapshot string) error {
	host := memhost.New(plugin.HostProtocolJSON)
	if snapshot != "" {
		snap, err := memhost.LoadFile(snapshot)
		if err != nil {
			return err
		}
		host = memhost.FromSnapshot(plugin.HostProtocolJSON, snap)
	}

	if err := plugin.ServeJSON(context.Background(), host, os.Stdin, os.Stdout); err != nil {
		return err
	}

	if snapshot == "" {
		return nil
	}
	return memhost.SaveFile(snapshot, host.Snapshot())
}
