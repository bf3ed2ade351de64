// Package markers models differential-expression marker tables and the
// gene-selection filter that turns them into per-cluster gene lists.
//
// A marker table is the typical output of a single-cell clustering workflow:
// one row per (cluster, gene) pair with an effect size (log fold-change) and
// a significance value. Column names vary between tools, so loading is
// driven by a caller-supplied [Columns] mapping that is validated once
// against the header, not re-looked-up per row.
package markers

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/toppgo/toppgo/pkg/errors"
)

// Record is one marker-table row.
type Record struct {
	Cluster string  // cluster / group identifier
	Gene    string  // gene symbol
	Effect  float64 // signed effect size (e.g. avg log2 fold-change)
	PValue  float64 // significance in [0,1] (typically adjusted)
}

// Table is an ordered collection of marker records. It remembers the order
// in which clusters first appear, which downstream stages use as the
// canonical cluster order.
type Table struct {
	rows     []Record
	clusters []string
}

// NewTable builds a Table from rows, preserving row order and recording
// cluster first-appearance order.
func NewTable(rows []Record) *Table {
	t := &Table{rows: rows}
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.Cluster] {
			seen[r.Cluster] = true
			t.clusters = append(t.clusters, r.Cluster)
		}
	}
	return t
}

// Rows returns the underlying records. The slice is shared; callers must not
// modify it.
func (t *Table) Rows() []Record { return t.rows }

// Clusters returns the distinct cluster identifiers in first-appearance
// order.
func (t *Table) Clusters() []string { return t.clusters }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns names the marker-table columns to read. The defaults match Seurat
// marker output; callers using other tools override the names.
type Columns struct {
	Cluster string // default "cluster"
	Gene    string // default "gene"
	Effect  string // default "avg_log2FC"
	PValue  string // default "p_val_adj"
}

// withDefaults fills empty column names with the Seurat conventions.
func (c Columns) withDefaults() Columns {
	if c.Cluster == "" {
		c.Cluster = "cluster"
	}
	if c.Gene == "" {
		c.Gene = "gene"
	}
	if c.Effect == "" {
		c.Effect = "avg_log2FC"
	}
	if c.PValue == "" {
		c.PValue = "p_val_adj"
	}
	return c
}

// ReadCSV loads a comma-separated marker table from path.
func ReadCSV(path string, cols Columns) (*Table, error) {
	return readFile(path, ',', cols)
}

// ReadTSV loads a tab-separated marker table from path.
func ReadTSV(path string, cols Columns) (*Table, error) {
	return readFile(path, '\t', cols)
}

func readFile(path string, comma rune, cols Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open marker table %s", path)
	}
	defer f.Close()
	return Read(f, comma, cols)
}

// Read parses a delimited marker table from r. The first row must be a
// header containing every configured column name; a missing column is an
// INVALID_COLUMN configuration error, unparsable numeric cells are
// PARSE_ERROR.
func Read(r io.Reader, comma rune, cols Columns) (*Table, error) {
	cols = cols.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read marker table header")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	col := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidColumn, "marker table has no column named %q (header: %v)", name, header)
		}
		return i, nil
	}

	clusterIdx, err := col(cols.Cluster)
	if err != nil {
		return nil, err
	}
	geneIdx, err := col(cols.Gene)
	if err != nil {
		return nil, err
	}
	effectIdx, err := col(cols.Effect)
	if err != nil {
		return nil, err
	}
	pvalIdx, err := col(cols.PValue)
	if err != nil {
		return nil, err
	}

	var rows []Record
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "marker table line %d", line)
		}

		effect, err := strconv.ParseFloat(rec[effectIdx], 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeParse, "marker table line %d: bad %s value %q", line, cols.Effect, rec[effectIdx])
		}
		pval, err := strconv.ParseFloat(rec[pvalIdx], 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeParse, "marker table line %d: bad %s value %q", line, cols.PValue, rec[pvalIdx])
		}

		rows = append(rows, Record{
			Cluster: rec[clusterIdx],
			Gene:    rec[geneIdx],
			Effect:  effect,
			PValue:  pval,
		})
	}

	return NewTable(rows), nil
}
