package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/veryl-lang/veryl/internal/metadata"
	"github.com/veryl-lang/veryl/internal/vcs"
)

var newCmd = &cobra.Command{
	Use:   "new <path>",
	Short: "Scaffold a new Veryl project",
	Args:  cobra.ExactArgs(1),
	RunE:  runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

// runNew is the Go analogue of CmdNew::exec (cmd_new.rs): create the
// project directory, a default Veryl.toml, a src/ directory, a
// .gitignore, and an initialized git repository (a failed init is
// logged as a warning and skipped).
func runNew(cmd *cobra.Command, args []string) error {
	path := args[0]

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("path %q exists", path)
	}

	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("path %q is not valid", path)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}

	tomlText := metadata.CreateDefaultTOML(name)
	if err := os.WriteFile(filepath.Join(path, "Veryl.toml"), []byte(tomlText), 0o644); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(path, "src"), 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(path, ".gitignore"), []byte(metadata.DefaultGitignore), 0o644); err != nil {
		return err
	}
	if err := vcs.Init(path); err != nil {
		logrus.Warnf("skipping git init: %v", err)
	}

	logrus.Infof("created %q project", name)
	return nil
}
