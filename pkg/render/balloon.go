package render

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/toppgo/toppgo/pkg/topp"
)

const balloonColWidth = 64.0

// BalloonPlot renders a term-by-cluster grid: one row per term, one column
// per cluster, with a balloon at each intersection. Balloon size encodes the
// gene overlap count for that cluster and color encodes -log10(p). Terms are
// chosen by their best p-value across all clusters; clusters keep the given
// order.
func BalloonPlot(anns []topp.Annotation, clusters []string, opts DotOptions) []byte {
	opts = opts.withDefaults()

	terms := selectTerms(anns, opts.MaxTerms)
	cells := make(map[string]map[string]topp.Annotation, len(terms)) // term -> cluster -> row
	for _, a := range anns {
		if _, ok := cells[a.TermID]; !ok {
			cells[a.TermID] = make(map[string]topp.Annotation)
		}
		cells[a.TermID][a.Cluster] = a
	}

	width := labelGutter + float64(len(clusters))*balloonColWidth + marginRight
	height := marginTop + float64(len(terms))*rowHeight + marginBot

	var buf bytes.Buffer
	openSVG(&buf, width, height)
	if opts.Title != "" {
		title(&buf, width, opts.Title)
	}
	if len(terms) == 0 {
		emptyNote(&buf, width, height)
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	_, maxS := scoreRange(anns)
	minO, maxO := overlapRange(anns)

	for j, cluster := range clusters {
		x := labelGutter + (float64(j)+0.5)*balloonColWidth
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="11" text-anchor="middle">%s</text>`+"\n",
			x, marginTop-10, fontFamily, escape(cluster))
	}

	for i, term := range terms {
		y := marginTop + (float64(i)+0.5)*rowHeight
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="11" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
			labelGutter-8, y, fontFamily, escape(truncate(term.name, 52)))

		for j, cluster := range clusters {
			a, ok := cells[term.id][cluster]
			if !ok {
				continue
			}
			t := normalize(score(a.PValue), 0, maxS)
			radius := 3 + normalize(float64(a.GenesInTermInQuery), minO, maxO)*8
			x := labelGutter + (float64(j)+0.5)*balloonColWidth
			fmt.Fprintf(&buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.85"><title>%s / %s (p=%.3g, %d genes)</title></circle>`+"\n",
				x, y, radius, colorFor(t), escape(cluster), escape(a.TermName), a.PValue, a.GenesInTermInQuery)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// overlapRange returns the min and max gene overlap count across all cells.
func overlapRange(anns []topp.Annotation) (lo, hi float64) {
	lo, hi = math.Inf(1), 0
	for _, a := range anns {
		o := float64(a.GenesInTermInQuery)
		lo = math.Min(lo, o)
		hi = math.Max(hi, o)
	}
	return lo, hi
}

type termRef struct {
	id, name string
	best     float64 // best p-value across clusters
}

// selectTerms returns up to max distinct terms ordered by their best
// p-value.
func selectTerms(anns []topp.Annotation, max int) []termRef {
	best := make(map[string]*termRef)
	var order []string
	for _, a := range anns {
		t, ok := best[a.TermID]
		if !ok {
			best[a.TermID] = &termRef{id: a.TermID, name: a.TermName, best: a.PValue}
			order = append(order, a.TermID)
			continue
		}
		if a.PValue < t.best {
			t.best = a.PValue
		}
	}

	terms := make([]termRef, 0, len(order))
	for _, id := range order {
		terms = append(terms, *best[id])
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].best != terms[j].best {
			return terms[i].best < terms[j].best
		}
		return terms[i].id < terms[j].id
	})
	if len(terms) > max {
		terms = terms[:max]
	}
	return terms
}
