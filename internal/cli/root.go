// Package cli wires the cobra command tree for the veryl binary:
// "new" and "dump" (cmd_new.rs / cmd_dump.rs), plus "build" which
// drives dependency resolution and lockfile maintenance. One file per
// subcommand, a package-level rootCmd, init() registering children and
// flags.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "veryl",
	Short: "Veryl hardware description language toolchain",
	Long: `veryl analyzes and resolves dependencies for Veryl HDL projects:
symbol resolution, constant evaluation, prototype conformance checking,
modport expansion, and semver-based dependency lockfile management.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logrus.InfoLevel
		if verbose {
			level = logrus.DebugLevel
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
