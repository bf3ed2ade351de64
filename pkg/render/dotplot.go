package render

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/toppgo/toppgo/pkg/topp"
)

// DefaultMaxTerms bounds how many terms a single chart shows.
const DefaultMaxTerms = 20

// DotOptions configures dot and balloon plots.
type DotOptions struct {
	// MaxTerms caps the number of terms drawn, most significant first
	// (default 20).
	MaxTerms int

	// Title is drawn above the chart. Empty means no title.
	Title string
}

func (o DotOptions) withDefaults() DotOptions {
	if o.MaxTerms <= 0 {
		o.MaxTerms = DefaultMaxTerms
	}
	return o
}

// DotPlot renders one cluster's annotations as a dot plot: one row per term,
// x position by -log10(p), dot radius by gene ratio, dot color by
// significance. Rows arrive in any order and are re-sorted by p-value.
func DotPlot(anns []topp.Annotation, opts DotOptions) []byte {
	opts = opts.withDefaults()
	anns = topTerms(anns, opts.MaxTerms)

	width := labelGutter + plotWidth + marginRight
	height := marginTop + float64(len(anns))*rowHeight + marginBot

	var buf bytes.Buffer
	openSVG(&buf, width, height)
	if opts.Title != "" {
		title(&buf, width, opts.Title)
	}

	if len(anns) == 0 {
		emptyNote(&buf, width, height)
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	minS, maxS := scoreRange(anns)
	minR, maxR := ratioRange(anns)

	xFor := func(a topp.Annotation) float64 {
		return labelGutter + normalize(score(a.PValue), 0, maxS)*plotWidth
	}

	// Axis and gridlines.
	axisY := marginTop + float64(len(anns))*rowHeight
	fmt.Fprintf(&buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="1"/>`+"\n",
		labelGutter, axisY, labelGutter+plotWidth, axisY)
	fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="12" text-anchor="middle">-log10(p-value)</text>`+"\n",
		labelGutter+plotWidth/2, axisY+32, fontFamily)
	for _, tick := range axisTicks(maxS) {
		x := labelGutter + normalize(tick, 0, maxS)*plotWidth
		fmt.Fprintf(&buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ccc" stroke-width="0.5"/>`+"\n",
			x, marginTop, x, axisY)
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="10" text-anchor="middle">%.3g</text>`+"\n",
			x, axisY+14, fontFamily, tick)
	}

	for i, a := range anns {
		y := marginTop + (float64(i)+0.5)*rowHeight
		radius := 3 + normalize(a.GeneRatio(), minR, maxR)*7
		fill := colorFor(normalize(score(a.PValue), minS, maxS))

		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="11" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
			labelGutter-8, y, fontFamily, escape(truncate(a.TermName, 52)))
		fmt.Fprintf(&buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.85"><title>%s (p=%.3g, ratio=%.3f)</title></circle>`+"\n",
			xFor(a), y, radius, fill, escape(a.TermName), a.PValue, a.GeneRatio())
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// topTerms returns up to max annotations sorted by ascending p-value.
func topTerms(anns []topp.Annotation, max int) []topp.Annotation {
	sorted := make([]topp.Annotation, len(anns))
	copy(sorted, anns)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PValue != sorted[j].PValue {
			return sorted[i].PValue < sorted[j].PValue
		}
		return sorted[i].TermID < sorted[j].TermID
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

func scoreRange(anns []topp.Annotation) (lo, hi float64) {
	lo, hi = math.Inf(1), 0
	for _, a := range anns {
		s := score(a.PValue)
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	return lo, hi
}

func ratioRange(anns []topp.Annotation) (lo, hi float64) {
	lo, hi = math.Inf(1), 0
	for _, a := range anns {
		r := a.GeneRatio()
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	return lo, hi
}

// axisTicks picks a handful of round-ish tick values for a 0..max axis.
func axisTicks(max float64) []float64 {
	if max <= 0 {
		return nil
	}
	step := max / 4
	ticks := make([]float64, 0, 5)
	for v := 0.0; v <= max+step/2; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

func openSVG(buf *bytes.Buffer, width, height float64) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")
}

func title(buf *bytes.Buffer, width float64, text string) {
	fmt.Fprintf(buf, `  <text x="%.1f" y="28" font-family="%s" font-size="15" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
		width/2, fontFamily, escape(text))
}

func emptyNote(buf *bytes.Buffer, width, height float64) {
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="13" fill="#777" text-anchor="middle">no annotations</text>`+"\n",
		width/2, height/2, fontFamily)
}
