// Package export serializes pipeline results to tabular files.
//
// Three formats are supported: xlsx (spreadsheet), csv, and tsv. A result
// can be written as one combined table with a Cluster column, or split into
// one file per cluster. Files at the target path are overwritten without
// confirmation. [Load] reads an exported file back into a result, which is
// how the plot subcommands re-render without re-querying the service.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/pipeline"
	"github.com/toppgo/toppgo/pkg/topp"
)

// Supported output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
)

// ValidateFormat checks that format is one of xlsx, csv, or tsv.
func ValidateFormat(format string) error {
	switch format {
	case FormatXLSX, FormatCSV, FormatTSV:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: xlsx, csv, tsv)", format)
}

// sheetName is the single sheet written to xlsx exports.
const sheetName = "ToppResults"

// baseHeader lists the annotation columns in export order. A Cluster column
// is prepended when the result carries cluster tags and is not being split.
// The Genes column carries the overlap symbols so the network plot can be
// re-rendered from the file; Entrez identifiers are not round-tripped.
var baseHeader = []string{
	"Category", "ID", "Name",
	"PValue", "QValueFDRBH", "QValueFDRBY", "QValueBonferroni",
	"TotalGenes", "GenesInTerm", "GenesInQuery", "GenesInTermInQuery",
	"Source", "URL", "Genes",
}

// SaveOptions configures one export.
type SaveOptions struct {
	Prefix        string // filename prefix (default "toppgo_results")
	Dir           string // target directory (default current working directory)
	Format        string // xlsx, csv, or tsv
	SplitClusters bool   // one file per cluster instead of one combined file
}

// Save writes the result to disk and returns the written paths.
//
// The format is validated before any file is touched. With SplitClusters
// the files are named {prefix}_{cluster}.{ext} and omit the Cluster column
// (the name carries it); otherwise a single {prefix}.{ext} keeps the
// Cluster column as data.
func Save(result *pipeline.Result, opts SaveOptions) ([]string, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	if opts.Prefix == "" {
		opts.Prefix = "toppgo_results"
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if info, err := os.Stat(opts.Dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "output directory %s", opts.Dir)
	} else if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeIO, "output path %s is not a directory", opts.Dir)
	}

	if !opts.SplitClusters || !result.Tagged() {
		path := filepath.Join(opts.Dir, opts.Prefix+"."+opts.Format)
		if err := writeTable(path, opts.Format, tableFor(result.Annotations, result.Tagged())); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, cluster := range result.Clusters {
		name := fmt.Sprintf("%s_%s.%s", opts.Prefix, SanitizeName(cluster), opts.Format)
		path := filepath.Join(opts.Dir, name)
		if err := writeTable(path, opts.Format, tableFor(result.ForCluster(cluster), false)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SanitizeName makes a cluster name safe for use in a filename.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}

// tableFor renders annotations as a header row plus data rows.
func tableFor(anns []topp.Annotation, withCluster bool) [][]string {
	header := baseHeader
	if withCluster {
		header = append([]string{"Cluster"}, baseHeader...)
	}

	rows := [][]string{header}
	for _, a := range anns {
		row := []string{
			string(a.Category), a.TermID, a.TermName,
			formatFloat(a.PValue), formatFloat(a.QValueFDRBH),
			formatFloat(a.QValueFDRBY), formatFloat(a.QValueBonferroni),
			strconv.Itoa(a.TotalGenes), strconv.Itoa(a.GenesInTerm),
			strconv.Itoa(a.GenesInQuery), strconv.Itoa(a.GenesInTermInQuery),
			a.Source, a.URL, joinGeneSymbols(a.Genes),
		}
		if withCluster {
			row = append([]string{a.Cluster}, row...)
		}
		rows = append(rows, row)
	}
	return rows
}

// formatFloat uses the shortest representation that round-trips exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// joinGeneSymbols flattens the overlap gene list into one cell.
func joinGeneSymbols(genes []topp.TermGene) string {
	symbols := make([]string, len(genes))
	for i, g := range genes {
		symbols[i] = g.Symbol
	}
	return strings.Join(symbols, ",")
}

func writeTable(path, format string, rows [][]string) error {
	switch format {
	case FormatCSV:
		return writeDelimited(path, ',', rows)
	case FormatTSV:
		return writeDelimited(path, '\t', rows)
	default:
		return writeXLSX(path, rows)
	}
}

func writeDelimited(path string, comma rune, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = comma
	if err := w.WriteAll(rows); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rename sheet")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "cell coordinates")
		}
		// Numbers are written as typed cells so spreadsheet tools sort and
		// filter them correctly.
		typed := make([]any, len(row))
		for j, v := range row {
			typed[j] = typedCell(v)
		}
		if err := f.SetSheetRow(sheetName, cell, &typed); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write row %d", i+1)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save %s", path)
	}
	return nil
}

// typedCell converts a cell back to a number when it parses as one, so the
// xlsx carries real numeric cells rather than strings.
func typedCell(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
