// tokenkit derives a design-token system from brand colours and scale
// settings, exports it, and syncs it with a host's variable store.
package main

import (
	"github.com/jmylchreest/tokenkit/internal/cli"
)

func main() {
	cli.Execute()
}
