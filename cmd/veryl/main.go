// Command veryl is the CLI entry point: a thin main that delegates all
// flag parsing and subcommand dispatch to internal/cli's cobra root
// command.
package main

import (
	"fmt"
	"os"

	"github.com/veryl-lang/veryl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
