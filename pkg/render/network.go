package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/topp"
)

// NetworkOptions configures the gene-term network plot.
type NetworkOptions struct {
	// MaxTerms caps the number of terms in the graph (default 20).
	MaxTerms int
}

// NetworkDOT builds a bipartite gene-term graph in Graphviz DOT format.
// Terms are drawn as rounded boxes colored by significance, genes as plain
// ellipses, with an edge from each term to every query gene it annotates.
func NetworkDOT(anns []topp.Annotation, opts NetworkOptions) string {
	if opts.MaxTerms <= 0 {
		opts.MaxTerms = DefaultMaxTerms
	}
	anns = topTerms(anns, opts.MaxTerms)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [color=\"#bbbbbb\"];\n")
	buf.WriteString("\n")

	_, maxS := scoreRange(anns)
	genes := make(map[string]bool)
	for _, a := range anns {
		fill := colorFor(normalize(score(a.PValue), 0, maxS))
		fmt.Fprintf(&buf, "  %q [shape=box, style=\"rounded,filled\", fillcolor=%q, fontcolor=white, label=%q];\n",
			"term:"+a.TermID, fill, truncate(a.TermName, 36))
		for _, g := range a.Genes {
			genes[g.Symbol] = true
		}
	}

	buf.WriteString("\n")
	for _, symbol := range sortedKeys(genes) {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, style=filled, fillcolor=white, label=%q];\n",
			"gene:"+symbol, symbol)
	}

	buf.WriteString("\n")
	for _, a := range anns {
		for _, g := range a.Genes {
			fmt.Fprintf(&buf, "  %q -- %q;\n", "term:"+a.TermID, "gene:"+g.Symbol)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// NetworkPlot lays out the gene-term graph with Graphviz and returns SVG.
func NetworkPlot(ctx context.Context, anns []topp.Annotation, opts NetworkOptions) ([]byte, error) {
	return RenderDOT(ctx, NetworkDOT(anns, opts))
}

// RenderDOT renders a DOT graph to SVG using Graphviz.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graph")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG header so the viewBox starts at
// the origin and the pixel size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
