package markers

import (
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/toppgo/toppgo/pkg/errors"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

const sampleCSV = `p_val,avg_log2FC,pct.1,pct.2,p_val_adj,cluster,gene
1e-20,2.5,0.9,0.1,1e-16,0,CD3D
1e-18,1.8,0.8,0.2,1e-14,0,CD3E
1e-12,-2.1,0.1,0.7,1e-8,1,LYZ
1e-10,3.2,0.95,0.05,1e-6,1,NKG7
`

func TestRead(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCSV), ',', Columns{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if table.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", table.Len())
	}
	if got := table.Clusters(); !slices.Equal(got, []string{"0", "1"}) {
		t.Errorf("Clusters() = %v, want [0 1]", got)
	}

	first := table.Rows()[0]
	if first.Gene != "CD3D" || first.Cluster != "0" || first.Effect != 2.5 || first.PValue != 1e-16 {
		t.Errorf("first row = %+v", first)
	}
}

func TestRead_CustomColumns(t *testing.T) {
	in := "group\tsymbol\tlfc\tfdr\nT cells\tCD8A\t1.5\t0.001\n"
	table, err := Read(strings.NewReader(in), '\t', Columns{
		Cluster: "group",
		Gene:    "symbol",
		Effect:  "lfc",
		PValue:  "fdr",
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	r := table.Rows()[0]
	if r.Cluster != "T cells" || r.Gene != "CD8A" || r.Effect != 1.5 || r.PValue != 0.001 {
		t.Errorf("row = %+v", r)
	}
}

func TestRead_MissingColumn(t *testing.T) {
	tests := []struct {
		name string
		cols Columns
	}{
		{"missing cluster", Columns{Cluster: "leiden"}},
		{"missing gene", Columns{Gene: "names"}},
		{"missing effect", Columns{Effect: "logfoldchanges"}},
		{"missing pvalue", Columns{PValue: "pvals_adj"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(sampleCSV), ',', tt.cols)
			if !errors.Is(err, errors.ErrCodeInvalidColumn) {
				t.Errorf("error code = %v, want INVALID_COLUMN", errors.GetCode(err))
			}
		})
	}
}

func TestRead_BadNumeric(t *testing.T) {
	in := "cluster,gene,avg_log2FC,p_val_adj\n0,CD3D,notanumber,0.01\n"
	_, err := Read(strings.NewReader(in), ',', Columns{})
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Fatalf("error code = %v, want PARSE_ERROR", errors.GetCode(err))
	}
}

func TestReadCSVAndTSV(t *testing.T) {
	dir := t.TempDir()

	csvPath := dir + "/markers.csv"
	if err := writeFile(csvPath, sampleCSV); err != nil {
		t.Fatal(err)
	}
	table, err := ReadCSV(csvPath, Columns{})
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("csv Len() = %d, want 4", table.Len())
	}

	tsvPath := dir + "/markers.tsv"
	if err := writeFile(tsvPath, strings.ReplaceAll(sampleCSV, ",", "\t")); err != nil {
		t.Fatal(err)
	}
	table, err = ReadTSV(tsvPath, Columns{})
	if err != nil {
		t.Fatalf("ReadTSV failed: %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("tsv Len() = %d, want 4", table.Len())
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(t.TempDir()+"/absent.csv", Columns{})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("error code = %v, want IO_ERROR", errors.GetCode(err))
	}
}
