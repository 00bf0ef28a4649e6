// vellum-shell wires the vellum history synchronizer into interactive
// shells: it emits the integration script and serves the capture, navigation
// and search callbacks that script binds.
package main

import (
	"os"

	"github.com/vellum-tools/vellum-shell/internal/cmd"
)

func main() {
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
