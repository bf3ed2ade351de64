package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/pipeline"
	"github.com/toppgo/toppgo/pkg/topp"
)

// Load reads a previously exported result back from disk. The format is
// inferred from the file extension. Files with a Cluster column produce a
// tagged result; split exports load as single untagged tables.
func Load(path string) (*pipeline.Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.TrimPrefix(filepath.Ext(path), "."); ext {
	case FormatCSV:
		rows, err = readDelimited(path, ',')
	case FormatTSV:
		rows, err = readDelimited(path, '\t')
	case FormatXLSX:
		rows, err = readXLSX(path)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot infer format from %q (expected .xlsx, .csv, or .tsv)", path)
	}
	if err != nil {
		return nil, err
	}
	return resultFrom(rows, path)
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read %s", path)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read sheet %s from %s", sheetName, path)
	}
	return rows, nil
}

// resultFrom rebuilds a Result from a header row plus data rows.
func resultFrom(rows [][]string, path string) (*pipeline.Result, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "%s has no header row", path)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}
	for _, required := range baseHeader {
		if required == "Genes" {
			// Optional: files written before gene lists were exported.
			continue
		}
		if _, ok := idx[required]; !ok {
			return nil, errors.New(errors.ErrCodeParse, "%s has no column named %q", path, required)
		}
	}
	clusterIdx, tagged := idx["Cluster"]
	_, hasGenes := idx["Genes"]

	cell := func(row []string, name string) string {
		i := idx[name]
		if i >= len(row) {
			// Spreadsheet readers drop trailing empty cells.
			return ""
		}
		return row[i]
	}

	result := &pipeline.Result{Unresolved: make(map[string][]string)}
	seen := make(map[string]bool)
	for n, row := range rows[1:] {
		line := n + 2
		a := topp.Annotation{
			Category: topp.Category(cell(row, "Category")),
			TermID:   cell(row, "ID"),
			TermName: cell(row, "Name"),
			Source:   cell(row, "Source"),
			URL:      cell(row, "URL"),
		}
		if tagged {
			a.Cluster = row[clusterIdx]
		}
		if hasGenes {
			a.Genes = splitGeneSymbols(cell(row, "Genes"))
		}

		var err error
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"PValue", &a.PValue},
			{"QValueFDRBH", &a.QValueFDRBH},
			{"QValueFDRBY", &a.QValueFDRBY},
			{"QValueBonferroni", &a.QValueBonferroni},
		} {
			if *f.dst, err = strconv.ParseFloat(cell(row, f.name), 64); err != nil {
				return nil, errors.New(errors.ErrCodeParse, "%s line %d: bad %s value %q", path, line, f.name, cell(row, f.name))
			}
		}
		for _, f := range []struct {
			name string
			dst  *int
		}{
			{"TotalGenes", &a.TotalGenes},
			{"GenesInTerm", &a.GenesInTerm},
			{"GenesInQuery", &a.GenesInQuery},
			{"GenesInTermInQuery", &a.GenesInTermInQuery},
		} {
			if *f.dst, err = strconv.Atoi(cell(row, f.name)); err != nil {
				return nil, errors.New(errors.ErrCodeParse, "%s line %d: bad %s value %q", path, line, f.name, cell(row, f.name))
			}
		}

		result.Annotations = append(result.Annotations, a)
		if tagged && !seen[a.Cluster] {
			seen[a.Cluster] = true
			result.Clusters = append(result.Clusters, a.Cluster)
		}
	}
	result.Stats.AnnotationCount = len(result.Annotations)
	return result, nil
}

// splitGeneSymbols reverses joinGeneSymbols. Only symbols survive the round
// trip; Entrez identifiers are not serialized.
func splitGeneSymbols(s string) []topp.TermGene {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	genes := make([]topp.TermGene, len(parts))
	for i, p := range parts {
		genes[i] = topp.TermGene{Symbol: strings.TrimSpace(p)}
	}
	return genes
}
