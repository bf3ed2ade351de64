package markers

import (
	"math"
	"slices"
	"strings"

	"github.com/toppgo/toppgo/pkg/errors"
)

// Direction selects which side of the effect-size distribution qualifies a
// marker gene.
type Direction string

// Enumerated direction policies.
const (
	// DirectionUp keeps genes with effect > cutoff, strongest first.
	DirectionUp Direction = "up"
	// DirectionDown keeps genes with effect < -cutoff, most negative first.
	DirectionDown Direction = "down"
	// DirectionAll keeps genes with |effect| > cutoff, ranked by |effect|.
	DirectionAll Direction = "all"
)

// ParseDirection converts a user-supplied string to a Direction,
// case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case DirectionUp:
		return DirectionUp, nil
	case DirectionDown:
		return DirectionDown, nil
	case DirectionAll:
		return DirectionAll, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "invalid direction %q (must be one of: up, down, all)", s)
}

// Filter defaults, matching the conventional thresholds for marker
// selection from adjusted DE output.
const (
	DefaultPValueCutoff = 0.05
	DefaultEffectCutoff = 1.0
	DefaultMaxGenes     = 250
	DefaultMinGenes     = 2
)

// FilterOptions configures marker selection. Zero values fall back to the
// package defaults; Direction must be set (use [ParseDirection]).
//
// EffectCutoff is a pointer so that an explicit zero survives defaulting:
// &0.0 keeps every significant gene regardless of effect size, while nil
// means [DefaultEffectCutoff].
type FilterOptions struct {
	PValueCutoff float64   // keep rows with p-value strictly below this
	EffectCutoff *float64  // effect-size magnitude threshold (nil for the default)
	Direction    Direction // up, down, or all
	MaxGenes     int       // truncate each ranked list to this many genes
	MinGenes     int       // lists shorter than this are marked undersized
}

func (o FilterOptions) withDefaults() FilterOptions {
	if o.PValueCutoff == 0 {
		o.PValueCutoff = DefaultPValueCutoff
	}
	if o.EffectCutoff == nil {
		cutoff := DefaultEffectCutoff
		o.EffectCutoff = &cutoff
	}
	if o.Direction == "" {
		o.Direction = DirectionUp
	}
	if o.MaxGenes == 0 {
		o.MaxGenes = DefaultMaxGenes
	}
	if o.MinGenes == 0 {
		o.MinGenes = DefaultMinGenes
	}
	return o
}

// GeneSets holds the per-cluster ranked gene lists produced by [Filter],
// in the table's cluster order. Clusters whose list came in under MinGenes
// are retained but flagged undersized; downstream stages skip them and
// report them once, rather than failing.
type GeneSets struct {
	order      []string
	sets       map[string][]string
	undersized map[string]bool
}

// Clusters returns every cluster in table order, including undersized ones.
func (s *GeneSets) Clusters() []string { return s.order }

// Genes returns the ranked gene list for a cluster (nil if unknown).
func (s *GeneSets) Genes(cluster string) []string { return s.sets[cluster] }

// Undersized reports whether a cluster's filtered list fell below MinGenes.
func (s *GeneSets) Undersized(cluster string) bool { return s.undersized[cluster] }

// UndersizedClusters returns the undersized clusters in table order.
func (s *GeneSets) UndersizedClusters() []string {
	var out []string
	for _, c := range s.order {
		if s.undersized[c] {
			out = append(out, c)
		}
	}
	return out
}

// Filter applies significance and effect-direction thresholds to the table
// and produces a ranked, size-bounded gene list per cluster.
//
// Duplicated genes pass through unchanged; no deduplication is performed.
// Ranking ties preserve input row order.
func Filter(table *Table, opts FilterOptions) (*GeneSets, error) {
	opts = opts.withDefaults()
	if _, err := ParseDirection(string(opts.Direction)); err != nil {
		return nil, err
	}

	sets := &GeneSets{
		order:      slices.Clone(table.Clusters()),
		sets:       make(map[string][]string, len(table.Clusters())),
		undersized: make(map[string]bool),
	}

	for _, cluster := range sets.order {
		var qualifying []Record
		for _, r := range table.Rows() {
			if r.Cluster != cluster || r.PValue >= opts.PValueCutoff {
				continue
			}
			if keep(r.Effect, opts.Direction, *opts.EffectCutoff) {
				qualifying = append(qualifying, r)
			}
		}

		rank(qualifying, opts.Direction)
		if len(qualifying) > opts.MaxGenes {
			qualifying = qualifying[:opts.MaxGenes]
		}

		genes := make([]string, len(qualifying))
		for i, r := range qualifying {
			genes[i] = r.Gene
		}
		sets.sets[cluster] = genes
		if len(genes) < opts.MinGenes {
			sets.undersized[cluster] = true
		}
	}

	return sets, nil
}

func keep(effect float64, dir Direction, cutoff float64) bool {
	switch dir {
	case DirectionUp:
		return effect > cutoff
	case DirectionDown:
		return effect < -cutoff
	default: // DirectionAll
		return math.Abs(effect) > cutoff
	}
}

// rank orders qualifying rows by the direction's strength measure, keeping
// input order for ties.
func rank(rows []Record, dir Direction) {
	slices.SortStableFunc(rows, func(a, b Record) int {
		var x, y float64
		switch dir {
		case DirectionUp:
			x, y = b.Effect, a.Effect // descending
		case DirectionDown:
			x, y = a.Effect, b.Effect // ascending, most negative first
		default:
			x, y = math.Abs(b.Effect), math.Abs(a.Effect) // descending magnitude
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
}
