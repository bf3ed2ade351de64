package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/toppgo/toppgo/pkg/topp"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. The main
// package calls this with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the toppgo CLI and returns an error if any command fails.
//
// The root command wires up the subcommands (query, categories, plot,
// serve), configures logging based on the --verbose flag, and prints the
// service terms-of-use notice once per process. The logger is attached to
// the context and accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "toppgo",
		Short:        "toppgo runs gene list enrichment via the ToppGene Suite",
		Long: `toppgo filters differential-expression marker tables into per-cluster
gene lists, queries the ToppGene Suite for functional enrichment, and writes
the merged annotation tables and charts.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			logger.Info(topp.TermsOfUse())
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("toppgo %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default toppgo.toml if present)")

	root.AddCommand(newQueryCmd(&configPath))
	root.AddCommand(newCategoriesCmd())
	root.AddCommand(newPlotCmd())
	root.AddCommand(newServeCmd(&configPath))

	return root.ExecuteContext(ctx)
}
