package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/export"
	"github.com/toppgo/toppgo/pkg/pipeline"
	"github.com/toppgo/toppgo/pkg/topp"
)

// SaveOptions configures batch chart output.
type SaveOptions struct {
	Dir      string // target directory (default current working directory)
	Prefix   string // optional filename prefix
	MaxTerms int    // per-chart term cap (default 20)
}

func (o SaveOptions) withDefaults() (SaveOptions, error) {
	if o.Dir == "" {
		o.Dir = "."
	}
	if info, err := os.Stat(o.Dir); err != nil {
		return o, errors.Wrap(errors.ErrCodeIO, err, "output directory %s", o.Dir)
	} else if !info.IsDir() {
		return o, errors.New(errors.ErrCodeIO, "output path %s is not a directory", o.Dir)
	}
	if o.MaxTerms <= 0 {
		o.MaxTerms = DefaultMaxTerms
	}
	return o, nil
}

// path assembles {prefix_}{parts joined by _}.svg inside the directory.
func (o SaveOptions) path(parts ...string) string {
	if o.Prefix != "" {
		parts = append([]string{o.Prefix}, parts...)
	}
	for i, p := range parts {
		parts[i] = export.SanitizeName(p)
	}
	return filepath.Join(o.Dir, strings.Join(parts, "_")+".svg")
}

// SaveDotPlots writes one dot plot per (category, cluster) pair present in
// the result, named {category}_{cluster}_dotplot.svg, and returns the
// written paths. Untagged results drop the cluster segment.
func SaveDotPlots(result *pipeline.Result, opts SaveOptions) ([]string, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, cat := range result.CategoriesPresent() {
		for cluster, anns := range clusterSlices(result, cat) {
			chart := DotPlot(anns, DotOptions{
				MaxTerms: opts.MaxTerms,
				Title:    chartTitle(cat, cluster),
			})
			path := opts.path(nameParts(string(cat), cluster, "dotplot")...)
			if err := writeChart(path, chart); err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// SaveBalloonPlots writes one balloon plot per category, comparing clusters
// side by side, named {category}_balloonplot.svg. It requires a tagged
// (multi-cluster) result.
func SaveBalloonPlots(result *pipeline.Result, opts SaveOptions) ([]string, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if !result.Tagged() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "balloon plots need results from more than one cluster")
	}

	var paths []string
	for _, cat := range result.CategoriesPresent() {
		chart := BalloonPlot(result.ForCategory(cat), result.Clusters, DotOptions{
			MaxTerms: opts.MaxTerms,
			Title:    string(cat),
		})
		path := opts.path(string(cat), "balloonplot")
		if err := writeChart(path, chart); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveNetworkPlots writes one gene-term network per (category, cluster)
// pair, named {category}_{cluster}_network.svg.
func SaveNetworkPlots(ctx context.Context, result *pipeline.Result, opts SaveOptions) ([]string, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, cat := range result.CategoriesPresent() {
		for cluster, anns := range clusterSlices(result, cat) {
			chart, err := NetworkPlot(ctx, anns, NetworkOptions{MaxTerms: opts.MaxTerms})
			if err != nil {
				return nil, err
			}
			path := opts.path(nameParts(string(cat), cluster, "network")...)
			if err := writeChart(path, chart); err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// clusterSlices yields (cluster, rows) pairs for one category. Untagged
// results yield a single pair with an empty cluster name.
func clusterSlices(result *pipeline.Result, cat topp.Category) func(func(string, []topp.Annotation) bool) {
	return func(yield func(string, []topp.Annotation) bool) {
		if !result.Tagged() {
			yield("", result.ForCategory(cat))
			return
		}
		for _, cluster := range result.Clusters {
			var anns []topp.Annotation
			for _, a := range result.ForCluster(cluster) {
				if a.Category == cat {
					anns = append(anns, a)
				}
			}
			if len(anns) == 0 {
				continue
			}
			if !yield(cluster, anns) {
				return
			}
		}
	}
}

func nameParts(category, cluster, kind string) []string {
	if cluster == "" {
		return []string{category, kind}
	}
	return []string{category, cluster, kind}
}

func chartTitle(cat topp.Category, cluster string) string {
	if cluster == "" {
		return string(cat)
	}
	return fmt.Sprintf("%s (cluster %s)", cat, cluster)
}

func writeChart(path string, svg []byte) error {
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
