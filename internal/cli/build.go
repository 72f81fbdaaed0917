package cli

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/veryl-lang/veryl/internal/lockfile"
	"github.com/veryl-lang/veryl/internal/metadata"
	"github.com/veryl-lang/veryl/internal/resolver"
)

var forceUpdate bool

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Resolve dependencies and update the lockfile",
	Long: `build resolves a project's Veryl.toml dependency graph and
writes or updates Veryl.lock. Target-language code generation is out of
scope — this command only maintains dependency resolution state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&forceUpdate, "update", false, "re-resolve pinned dependencies against their latest matching release")
}

func runBuild(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	manifestPath := filepath.Join(dir, "Veryl.toml")
	m, err := metadata.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifestPath, err)
	}

	lockPath := filepath.Join(dir, "Veryl.lock")
	lock, err := lockfile.Load(lockPath)
	if err != nil {
		logrus.Debugf("no existing lockfile at %s, starting fresh: %v", lockPath, err)
		lock = lockfile.New()
	}

	modified, err := lock.Update(m, forceUpdate, func(m *metadata.Metadata, force bool) ([]lockfile.Lock, error) {
		return resolver.New(lock, force).Resolve(m)
	})
	if err != nil {
		return fmt.Errorf("resolving dependencies: %w", err)
	}

	if err := lock.Save(lockPath); err != nil {
		return fmt.Errorf("writing %s: %w", lockPath, err)
	}

	total := 0
	for _, locks := range lock.LockTable {
		total += len(locks)
	}
	logrus.Infof("resolved %d dependencies (modified=%t)", total, modified)
	return nil
}
