package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/toppgo/toppgo/pkg/export"
	"github.com/toppgo/toppgo/pkg/markers"
	"github.com/toppgo/toppgo/pkg/pipeline"
	"github.com/toppgo/toppgo/pkg/render"
	"github.com/toppgo/toppgo/pkg/topp"
)

// queryFlags collects every flag of the query command so config-file values
// can be merged in before the run.
type queryFlags struct {
	// input
	colCluster, colGene, colEffect, colPValue string

	// filter
	pValueCutoff float64
	effectCutoff float64
	direction    string
	maxGenes     int
	minGenes     int

	// enrichment
	categoriesStr string
	correction    string
	enrichPValue  float64
	maxResults    int

	// output
	outputDir string
	prefix    string
	format    string
	split     bool
	plotsStr  string

	// misc
	interactive bool
	baseURL     string
	timeout     time.Duration
}

func newQueryCmd(configPath *string) *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "query [markers.csv]",
		Short: "Run enrichment for a marker table and export the results",
		Long: `Run enrichment for a differential-expression marker table.

The table is filtered into per-cluster gene lists (by significance, effect
size, and direction), each list is translated to Entrez identifiers and
submitted to the ToppGene Suite, and the per-cluster annotation tables are
merged and exported. Optional charts are written next to the table.

The delimiter is inferred from the file extension (.csv or .tsv). Column
names default to Seurat conventions (cluster, gene, avg_log2FC, p_val_adj)
and can be overridden per column.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			f.applyConfig(cmd, cfg)
			return runQuery(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.colCluster, "col-cluster", "", "cluster column name (default cluster)")
	cmd.Flags().StringVar(&f.colGene, "col-gene", "", "gene column name (default gene)")
	cmd.Flags().StringVar(&f.colEffect, "col-effect", "", "effect size column name (default avg_log2FC)")
	cmd.Flags().StringVar(&f.colPValue, "col-pvalue", "", "p-value column name (default p_val_adj)")

	cmd.Flags().Float64Var(&f.pValueCutoff, "pvalue", markers.DefaultPValueCutoff, "marker p-value cutoff (exclusive)")
	cmd.Flags().Float64Var(&f.effectCutoff, "effect", markers.DefaultEffectCutoff, "marker effect-size cutoff")
	cmd.Flags().StringVar(&f.direction, "direction", string(markers.DirectionUp), "marker direction: up, down, or all")
	cmd.Flags().IntVar(&f.maxGenes, "max-genes", markers.DefaultMaxGenes, "genes per cluster after ranking")
	cmd.Flags().IntVar(&f.minGenes, "min-genes", markers.DefaultMinGenes, "minimum genes required to query a cluster")

	cmd.Flags().StringVarP(&f.categoriesStr, "categories", "c", "", "annotation categories, comma-separated (default all)")
	cmd.Flags().StringVar(&f.correction, "correction", string(topp.CorrectionFDR), "multiple-testing correction: none, FDR, or Bonferroni")
	cmd.Flags().Float64Var(&f.enrichPValue, "enrich-pvalue", topp.DefaultPValueCutoff, "service-side p-value cutoff")
	cmd.Flags().IntVar(&f.maxResults, "max-results", topp.DefaultMaxResults, "terms per category")

	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", ".", "directory for exported files")
	cmd.Flags().StringVar(&f.prefix, "prefix", "toppgo_results", "filename prefix for exported files")
	cmd.Flags().StringVarP(&f.format, "format", "f", export.FormatXLSX, "export format: xlsx, csv, or tsv")
	cmd.Flags().BoolVar(&f.split, "split", false, "write one file per cluster")
	cmd.Flags().StringVar(&f.plotsStr, "plots", "", "charts to render: dot, balloon, network (comma-separated)")

	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "pick annotation categories interactively")
	cmd.Flags().StringVar(&f.baseURL, "base-url", topp.DefaultBaseURL, "ToppGene API base URL")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-request timeout (default 5m)")

	return cmd
}

// applyConfig fills flag values from the config file for flags the user did
// not set explicitly. Flags beat config, config beats built-in defaults.
func (f *queryFlags) applyConfig(cmd *cobra.Command, cfg *Config) {
	set := func(flag string, apply func()) {
		if !cmd.Flags().Changed(flag) {
			apply()
		}
	}

	if cfg.Columns.Cluster != "" {
		set("col-cluster", func() { f.colCluster = cfg.Columns.Cluster })
	}
	if cfg.Columns.Gene != "" {
		set("col-gene", func() { f.colGene = cfg.Columns.Gene })
	}
	if cfg.Columns.Effect != "" {
		set("col-effect", func() { f.colEffect = cfg.Columns.Effect })
	}
	if cfg.Columns.PValue != "" {
		set("col-pvalue", func() { f.colPValue = cfg.Columns.PValue })
	}

	if cfg.Filter.PValueCutoff != 0 {
		set("pvalue", func() { f.pValueCutoff = cfg.Filter.PValueCutoff })
	}
	if cfg.Filter.EffectCutoff != 0 {
		set("effect", func() { f.effectCutoff = cfg.Filter.EffectCutoff })
	}
	if cfg.Filter.Direction != "" {
		set("direction", func() { f.direction = cfg.Filter.Direction })
	}
	if cfg.Filter.MaxGenes != 0 {
		set("max-genes", func() { f.maxGenes = cfg.Filter.MaxGenes })
	}
	if cfg.Filter.MinGenes != 0 {
		set("min-genes", func() { f.minGenes = cfg.Filter.MinGenes })
	}

	if len(cfg.Enrich.Categories) > 0 {
		set("categories", func() { f.categoriesStr = strings.Join(cfg.Enrich.Categories, ",") })
	}
	if cfg.Enrich.Correction != "" {
		set("correction", func() { f.correction = cfg.Enrich.Correction })
	}
	if cfg.Enrich.PValueCutoff != 0 {
		set("enrich-pvalue", func() { f.enrichPValue = cfg.Enrich.PValueCutoff })
	}
	if cfg.Enrich.MaxResults != 0 {
		set("max-results", func() { f.maxResults = cfg.Enrich.MaxResults })
	}

	if cfg.Output.Dir != "" {
		set("output-dir", func() { f.outputDir = cfg.Output.Dir })
	}
	if cfg.Output.Prefix != "" {
		set("prefix", func() { f.prefix = cfg.Output.Prefix })
	}
	if cfg.Output.Format != "" {
		set("format", func() { f.format = cfg.Output.Format })
	}
	if cfg.Output.SplitClusters {
		set("split", func() { f.split = true })
	}
}

func runQuery(ctx context.Context, input string, f queryFlags) error {
	logger := loggerFromContext(ctx)

	// Fail on bad enumerations before touching the file or the network.
	if err := export.ValidateFormat(f.format); err != nil {
		return err
	}
	categories, err := parseCategories(f.categoriesStr)
	if err != nil {
		return err
	}
	comma, err := tableComma(input)
	if err != nil {
		return err
	}

	if f.interactive {
		categories, err = pickCategories(categories)
		if err != nil {
			return err
		}
	}

	cols := markers.Columns{Cluster: f.colCluster, Gene: f.colGene, Effect: f.colEffect, PValue: f.colPValue}
	var table *markers.Table
	if comma == ',' {
		table, err = markers.ReadCSV(input, cols)
	} else {
		table, err = markers.ReadTSV(input, cols)
	}
	if err != nil {
		return err
	}
	logger.Debugf("loaded %d marker rows across %d cluster(s) from %s",
		table.Len(), len(table.Clusters()), input)

	clientOpts := []topp.Option{
		topp.WithBaseURL(f.baseURL),
		topp.WithLogf(logger.Debugf),
	}
	if f.timeout > 0 {
		clientOpts = append(clientOpts, topp.WithTimeout(f.timeout))
	}
	client := topp.NewClient(clientOpts...)

	opts := pipeline.Options{
		PValueCutoff:       f.pValueCutoff,
		EffectCutoff:       &f.effectCutoff,
		Direction:          markers.Direction(f.direction),
		MaxGenes:           f.maxGenes,
		MinGenes:           f.minGenes,
		Categories:         categories,
		Correction:         topp.Correction(f.correction),
		EnrichPValueCutoff: f.enrichPValue,
		MaxResults:         f.maxResults,
		Logger:             logger,
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Querying ToppGene...")
	spinner.Start()

	result, err := pipeline.NewRunner(client).Run(ctx, table, opts)
	if err != nil {
		spinner.StopWithError("Enrichment failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Received %d annotations for %d cluster(s)",
		result.Stats.AnnotationCount, len(result.Clusters)))

	if result.Empty() {
		printWarning("no enrichment results; nothing to export")
		return nil
	}

	paths, err := export.Save(result, export.SaveOptions{
		Prefix:        f.prefix,
		Dir:           f.outputDir,
		Format:        f.format,
		SplitClusters: f.split,
	})
	if err != nil {
		return err
	}

	printSuccess("Exported %d annotations", result.Stats.AnnotationCount)
	printKeyValue("run id", result.RunID)
	for _, p := range paths {
		printFile(p)
	}
	for cluster, symbols := range result.Unresolved {
		printDetail("cluster %s: unresolved symbols: %s", cluster, strings.Join(symbols, ", "))
	}

	return renderPlots(ctx, result, f)
}

// renderPlots writes the charts requested via --plots.
func renderPlots(ctx context.Context, result *pipeline.Result, f queryFlags) error {
	if strings.TrimSpace(f.plotsStr) == "" {
		return nil
	}

	saveOpts := render.SaveOptions{Dir: f.outputDir, Prefix: f.prefix}
	for _, kind := range strings.Split(f.plotsStr, ",") {
		var (
			paths []string
			err   error
		)
		switch strings.TrimSpace(kind) {
		case "dot":
			paths, err = render.SaveDotPlots(result, saveOpts)
		case "balloon":
			paths, err = render.SaveBalloonPlots(result, saveOpts)
		case "network":
			paths, err = render.SaveNetworkPlots(ctx, result, saveOpts)
		case "":
			continue
		default:
			printWarning("unknown plot type %q (expected dot, balloon, or network)", kind)
			continue
		}
		if err != nil {
			return err
		}
		for _, p := range paths {
			printFile(p)
		}
	}
	return nil
}
