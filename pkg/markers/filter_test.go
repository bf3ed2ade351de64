package markers

import (
	"slices"
	"testing"

	"github.com/toppgo/toppgo/pkg/errors"
)

// rows builds a single-cluster table with the given (gene, effect) pairs,
// all comfortably below the p-value cutoff.
func rows(pairs ...any) *Table {
	var recs []Record
	for i := 0; i < len(pairs); i += 2 {
		recs = append(recs, Record{
			Cluster: "c1",
			Gene:    pairs[i].(string),
			Effect:  pairs[i+1].(float64),
			PValue:  1e-10,
		})
	}
	return NewTable(recs)
}

func f64(v float64) *float64 { return &v }

func genesOf(t *testing.T, table *Table, opts FilterOptions) []string {
	t.Helper()
	sets, err := Filter(table, opts)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	return sets.Genes("c1")
}

func TestFilter_Directions(t *testing.T) {
	table := rows("g1", 2.0, "g2", -3.0, "g3", 0.2)
	base := FilterOptions{EffectCutoff: f64(0.5), MinGenes: 1}

	tests := []struct {
		direction Direction
		want      []string
	}{
		{DirectionAll, []string{"g2", "g1"}}, // ranked by |effect| desc
		{DirectionUp, []string{"g1"}},
		{DirectionDown, []string{"g2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			opts := base
			opts.Direction = tt.direction
			got := genesOf(t, table, opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%s) = %v, want %v", tt.direction, got, tt.want)
			}
		})
	}
}

func TestFilter_ExplicitZeroEffectCutoff(t *testing.T) {
	// An explicit zero cutoff is not the same as an unset one: it keeps
	// every significant gene regardless of effect size instead of falling
	// back to the default threshold.
	table := rows("strong", 2.0, "weak", 0.5)

	got := genesOf(t, table, FilterOptions{EffectCutoff: f64(0), Direction: DirectionUp, MinGenes: 1})
	if !slices.Equal(got, []string{"strong", "weak"}) {
		t.Errorf("Filter(cutoff=0) = %v, want [strong weak]", got)
	}

	// Unset still means the default.
	got = genesOf(t, table, FilterOptions{Direction: DirectionUp, MinGenes: 1})
	if !slices.Equal(got, []string{"strong"}) {
		t.Errorf("Filter(cutoff unset) = %v, want [strong]", got)
	}
}

func TestFilter_PValueCutoff(t *testing.T) {
	table := NewTable([]Record{
		{Cluster: "c1", Gene: "sig", Effect: 2, PValue: 0.01},
		{Cluster: "c1", Gene: "borderline", Effect: 2, PValue: 0.05}, // not strictly below
		{Cluster: "c1", Gene: "ns", Effect: 2, PValue: 0.6},
	})

	got := genesOf(t, table, FilterOptions{PValueCutoff: 0.05, EffectCutoff: f64(1), Direction: DirectionUp, MinGenes: 1})
	if !slices.Equal(got, []string{"sig"}) {
		t.Errorf("Filter() = %v, want [sig]", got)
	}
}

func TestFilter_Ranking(t *testing.T) {
	table := rows("mid", 2.0, "top", 5.0, "low", 1.5)
	got := genesOf(t, table, FilterOptions{EffectCutoff: f64(1), Direction: DirectionUp, MinGenes: 1})
	if !slices.Equal(got, []string{"top", "mid", "low"}) {
		t.Errorf("Filter() = %v, want ranked descending", got)
	}
}

func TestFilter_DownRanking(t *testing.T) {
	table := rows("a", -1.5, "b", -4.0, "c", -2.5)
	got := genesOf(t, table, FilterOptions{EffectCutoff: f64(1), Direction: DirectionDown, MinGenes: 1})
	if !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Errorf("Filter() = %v, want most negative first", got)
	}
}

func TestFilter_MaxGenes(t *testing.T) {
	table := rows("g1", 5.0, "g2", 4.0, "g3", 3.0, "g4", 2.0)
	got := genesOf(t, table, FilterOptions{EffectCutoff: f64(1), Direction: DirectionUp, MaxGenes: 2, MinGenes: 1})
	if !slices.Equal(got, []string{"g1", "g2"}) {
		t.Errorf("Filter() = %v, want top 2", got)
	}

	// Fewer qualifying rows than the bound keeps them all.
	got = genesOf(t, table, FilterOptions{EffectCutoff: f64(1), Direction: DirectionUp, MaxGenes: 100, MinGenes: 1})
	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
}

func TestFilter_DuplicatesPassThrough(t *testing.T) {
	table := rows("dup", 3.0, "dup", 2.0)
	got := genesOf(t, table, FilterOptions{EffectCutoff: f64(1), Direction: DirectionUp, MinGenes: 1})
	if !slices.Equal(got, []string{"dup", "dup"}) {
		t.Errorf("Filter() = %v, want duplicates retained", got)
	}
}

func TestFilter_UndersizedClusters(t *testing.T) {
	table := NewTable([]Record{
		{Cluster: "A", Gene: "a1", Effect: 3, PValue: 1e-5},
		{Cluster: "A", Gene: "a2", Effect: 2, PValue: 1e-5},
		{Cluster: "B", Gene: "b1", Effect: 3, PValue: 1e-5},
	})

	sets, err := Filter(table, FilterOptions{EffectCutoff: f64(1), Direction: DirectionUp, MinGenes: 2})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	if sets.Undersized("A") {
		t.Error("cluster A flagged undersized, want ok")
	}
	if !sets.Undersized("B") {
		t.Error("cluster B not flagged undersized")
	}
	if got := sets.UndersizedClusters(); !slices.Equal(got, []string{"B"}) {
		t.Errorf("UndersizedClusters() = %v, want [B]", got)
	}
	// Undersized clusters stay visible; skipping is the orchestrator's call.
	if got := sets.Clusters(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Clusters() = %v, want [A B]", got)
	}
}

func TestFilter_ClusterOrderPreserved(t *testing.T) {
	table := NewTable([]Record{
		{Cluster: "z", Gene: "g1", Effect: 3, PValue: 1e-5},
		{Cluster: "a", Gene: "g2", Effect: 3, PValue: 1e-5},
		{Cluster: "z", Gene: "g3", Effect: 2, PValue: 1e-5},
	})

	sets, err := Filter(table, FilterOptions{Direction: DirectionUp, MinGenes: 1})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if got := sets.Clusters(); !slices.Equal(got, []string{"z", "a"}) {
		t.Errorf("Clusters() = %v, want first-appearance order [z a]", got)
	}
}

func TestFilter_InvalidDirection(t *testing.T) {
	_, err := Filter(rows("g1", 2.0), FilterOptions{Direction: "sideways"})
	if !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Fatalf("error code = %v, want INVALID_DIRECTION", errors.GetCode(err))
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"up", DirectionUp, false},
		{"DOWN", DirectionDown, false},
		{"All", DirectionAll, false},
		{"both", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
