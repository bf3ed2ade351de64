package export

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/pipeline"
	"github.com/toppgo/toppgo/pkg/topp"
)

func sampleResult(tagged bool) *pipeline.Result {
	anns := []topp.Annotation{
		{
			Category: topp.CategoryGOMolecularFunction, TermID: "GO:0003700", TermName: "DNA-binding transcription factor activity",
			PValue: 0.00025, QValueFDRBH: 0.004, QValueFDRBY: 0.009, QValueBonferroni: 0.03,
			TotalGenes: 20000, GenesInTerm: 1200, GenesInQuery: 40, GenesInTermInQuery: 12,
			Source: "GO", URL: "https://amigo.geneontology.org/amigo/term/GO:0003700",
			Genes: []topp.TermGene{{ID: 6667, Symbol: "SP1"}, {ID: 6772, Symbol: "STAT1"}},
		},
		{
			Category: topp.CategoryPathway, TermID: "M5890", TermName: "Hallmark TNFA signaling",
			PValue: 0.001, QValueFDRBH: 0.01, QValueFDRBY: 0.02, QValueBonferroni: 0.08,
			TotalGenes: 20000, GenesInTerm: 200, GenesInQuery: 40, GenesInTermInQuery: 8,
			Source: "MSigDB", URL: "",
		},
	}
	clusters := []string{"0"}
	if tagged {
		anns[0].Cluster = "0"
		anns[1].Cluster = "7"
		clusters = []string{"0", "7"}
	}
	return &pipeline.Result{RunID: "test-run", Annotations: anns, Clusters: clusters}
}

// loadedForm is what annotations look like after a file round trip: gene
// symbols survive but Entrez identifiers do not.
func loadedForm(anns []topp.Annotation) []topp.Annotation {
	out := make([]topp.Annotation, len(anns))
	for i, a := range anns {
		if a.Genes != nil {
			genes := make([]topp.TermGene, len(a.Genes))
			for j, g := range a.Genes {
				genes[j] = topp.TermGene{Symbol: g.Symbol}
			}
			a.Genes = genes
		}
		out[i] = a
	}
	return out
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, format := range []string{FormatCSV, FormatTSV, FormatXLSX} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			want := sampleResult(true)

			paths, err := Save(want, SaveOptions{Prefix: "run", Dir: dir, Format: format})
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if len(paths) != 1 || filepath.Base(paths[0]) != "run."+format {
				t.Fatalf("paths = %v, want [run.%s]", paths, format)
			}

			got, err := Load(paths[0])
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(got.Annotations, loadedForm(want.Annotations)) {
				t.Errorf("Annotations round-trip mismatch:\n got %+v\nwant %+v", got.Annotations, loadedForm(want.Annotations))
			}
			if !slices.Equal(got.Clusters, want.Clusters) {
				t.Errorf("Clusters = %v, want %v", got.Clusters, want.Clusters)
			}
			if !got.Tagged() {
				t.Error("loaded result lost its cluster tags")
			}
		})
	}
}

func TestSave_SplitClusters(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult(true)

	paths, err := Save(result, SaveOptions{Prefix: "run", Dir: dir, Format: FormatTSV, SplitClusters: true})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	if !slices.Equal(names, []string{"run_0.tsv", "run_7.tsv"}) {
		t.Fatalf("file names = %v", names)
	}

	// Split files carry no Cluster column; the name identifies the cluster.
	got, err := Load(paths[1])
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Tagged() {
		t.Error("split file should not carry a Cluster column")
	}
	if len(got.Annotations) != 1 || got.Annotations[0].TermID != "M5890" {
		t.Errorf("cluster 7 rows = %+v", got.Annotations)
	}
}

func TestSave_SingleClusterOmitsClusterColumn(t *testing.T) {
	dir := t.TempDir()

	paths, err := Save(sampleResult(false), SaveOptions{Prefix: "run", Dir: dir, Format: FormatCSV})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(paths[0])
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Tagged() {
		t.Error("untagged result should export without a Cluster column")
	}
	if len(got.Annotations) != 2 {
		t.Errorf("len(Annotations) = %d, want 2", len(got.Annotations))
	}
}

func TestSave_InvalidFormatWritesNothing(t *testing.T) {
	dir := t.TempDir()

	_, err := Save(sampleResult(true), SaveOptions{Prefix: "run", Dir: dir, Format: "parquet"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("error code = %v, want INVALID_FORMAT", errors.GetCode(err))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory not empty after failed save: %v", entries)
	}
}

func TestSave_MissingDirectory(t *testing.T) {
	_, err := Save(sampleResult(true), SaveOptions{Prefix: "run", Dir: "/no/such/dir", Format: FormatCSV})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("error code = %v, want IO_ERROR", errors.GetCode(err))
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	opts := SaveOptions{Prefix: "run", Dir: dir, Format: FormatCSV}

	if _, err := Save(sampleResult(true), opts); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	single := sampleResult(false)
	single.Annotations = single.Annotations[:1]
	if _, err := Save(single, opts); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := Load(filepath.Join(dir, "run.csv"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Annotations) != 1 {
		t.Errorf("len(Annotations) = %d, want 1 (file not overwritten)", len(got.Annotations))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"7", "7"},
		{"CD4 T cells", "CD4_T_cells"},
		{"a/b:c", "a_b_c"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_UnknownExtension(t *testing.T) {
	_, err := Load("results.parquet")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("error code = %v, want INVALID_FORMAT", errors.GetCode(err))
	}
}
