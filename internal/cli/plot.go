package cli

import (
	"github.com/spf13/cobra"

	"github.com/toppgo/toppgo/pkg/export"
	"github.com/toppgo/toppgo/pkg/pipeline"
	"github.com/toppgo/toppgo/pkg/render"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render charts from previously exported results",
		Long: `Render charts from a previously exported result table.

Each subcommand reads a file written by 'query' (xlsx, csv, or tsv) and
renders it without re-querying the service. Charts are grouped per
annotation category, and per cluster when the table carries a Cluster
column.`,
	}

	var (
		outputDir string
		prefix    string
		maxTerms  int
	)
	cmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for chart files")
	cmd.PersistentFlags().StringVar(&prefix, "prefix", "", "optional filename prefix")
	cmd.PersistentFlags().IntVar(&maxTerms, "max-terms", render.DefaultMaxTerms, "terms per chart")

	saveOpts := func() render.SaveOptions {
		return render.SaveOptions{Dir: outputDir, Prefix: prefix, MaxTerms: maxTerms}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dot [results file]",
		Short: "Dot plot of the top terms per cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, args[0], func(r *pipeline.Result) ([]string, error) {
				return render.SaveDotPlots(r, saveOpts())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "balloon [results file]",
		Short: "Balloon plot comparing term significance across clusters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, args[0], func(r *pipeline.Result) ([]string, error) {
				return render.SaveBalloonPlots(r, saveOpts())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "network [results file]",
		Short: "Gene-term network laid out with Graphviz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, args[0], func(r *pipeline.Result) ([]string, error) {
				return render.SaveNetworkPlots(cmd.Context(), r, saveOpts())
			})
		},
	})

	return cmd
}

func runPlot(cmd *cobra.Command, input string, save func(*pipeline.Result) ([]string, error)) error {
	logger := loggerFromContext(cmd.Context())

	result, err := export.Load(input)
	if err != nil {
		return err
	}
	logger.Debugf("loaded %d annotations from %s", len(result.Annotations), input)

	paths, err := save(result)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d chart(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
