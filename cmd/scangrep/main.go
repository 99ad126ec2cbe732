// Command scangrep is a grep-compatible, parallel, interactive
// regular-expression search tool.
package main

import (
	"os"

	"github.com/scangrep/scangrep/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
