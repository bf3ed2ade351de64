// Package render draws enrichment results as SVG charts.
//
// Three chart types are provided: a dot plot of the top terms for one
// cluster, a balloon plot comparing term significance across clusters, and a
// node-link network of genes and the terms they annotate. The dot and
// balloon plots are written directly as SVG; the network is laid out by
// Graphviz from generated DOT.
package render

import (
	"fmt"
	"math"
	"strings"
)

// Chart geometry shared by the SVG plots.
const (
	plotWidth   = 560.0 // drawing area, excluding label gutter
	labelGutter = 320.0 // left gutter for term names
	rowHeight   = 26.0
	marginTop   = 56.0
	marginRight = 40.0
	marginBot   = 48.0

	fontFamily = "Helvetica, Arial, sans-serif"
)

// maxScore caps -log10(p) so that p = 0 rows stay plottable.
const maxScore = 300.0

// score converts a p-value to -log10(p), clamped to [0, maxScore].
func score(p float64) float64 {
	if p <= 0 {
		return maxScore
	}
	s := -math.Log10(p)
	if s < 0 {
		return 0
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

// colorFor maps t in [0,1] onto a blue-to-red gradient, low significance
// cold and high significance hot.
func colorFor(t float64) string {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b float64) int { return int(a + (b-a)*t) }
	// steel blue to firebrick
	return fmt.Sprintf("#%02x%02x%02x", lerp(70, 178), lerp(130, 34), lerp(180, 34))
}

// normalize rescales v from [lo,hi] to [0,1]; a degenerate range maps to 1.
func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	return (v - lo) / (hi - lo)
}

var svgEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string { return svgEscaper.Replace(s) }

// truncate shortens a term name for use as an axis label.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
