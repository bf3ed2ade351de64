// Package pipeline provides the core query pipeline for toppgo.
//
// This package implements the complete filter → lookup → enrich → merge
// pipeline shared by the CLI and the HTTP API. By centralizing this logic,
// both entry points behave identically.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Filter: select and rank marker genes per cluster (pkg/markers)
//  2. Query: translate symbols and run enrichment per cluster (pkg/topp)
//  3. Merge: tag, sort, and combine per-cluster annotation tables
//
// Clusters are independent, so the query stage fans out across a bounded
// worker pool; the merge stage sorts by cluster then p-value, making the
// output deterministic regardless of completion order.
//
// # Usage
//
//	runner := pipeline.NewRunner(topp.NewClient())
//	opts := pipeline.Options{
//	    Direction:  markers.DirectionUp,
//	    Categories: []topp.Category{topp.CategoryPathway},
//	}
//	result, err := runner.Run(ctx, table, opts)
package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/toppgo/toppgo/pkg/markers"
	"github.com/toppgo/toppgo/pkg/topp"
)

// DefaultWorkers bounds the per-cluster query fan-out. Cluster queries are
// independent, but the remote service is shared; four concurrent requests
// is a polite ceiling.
const DefaultWorkers = 4

// Options contains all configuration for a pipeline run. Zero values fall
// back to documented defaults during [Options.ValidateAndSetDefaults].
// EffectCutoff follows [markers.FilterOptions]: nil takes the default, an
// explicit &0.0 disables the effect threshold entirely.
type Options struct {
	// Marker filter settings (see pkg/markers).
	PValueCutoff float64           // marker significance cutoff (default 0.05)
	EffectCutoff *float64          // marker effect-size cutoff (nil for default 1)
	Direction    markers.Direction // default up
	MaxGenes     int               // per-cluster gene list bound (default 250)
	MinGenes     int               // minimum list size to query (default 2)

	// Enrichment settings (see pkg/topp). An empty Categories slice expands
	// to the full vocabulary. TermMinGenes/TermMaxGenes bound the size of
	// annotation terms considered by the service, not the submitted list.
	Categories         []topp.Category
	Correction         topp.Correction // default FDR
	EnrichPValueCutoff float64         // service-side cutoff (default 0.05)
	TermMinGenes       int             // default 1
	TermMaxGenes       int             // default 1500
	MaxResults         int             // per-category result bound (default 50)

	// Workers bounds the concurrent per-cluster queries (default 4).
	Workers int

	// Logger receives progress and warnings. Defaults to log.Default().
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks every enumerated field and fills defaults.
// It fails fast with a configuration error before any network call; all
// validation errors carry INVALID_* codes from pkg/errors.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.PValueCutoff == 0 {
		o.PValueCutoff = markers.DefaultPValueCutoff
	}
	if o.EffectCutoff == nil {
		cutoff := markers.DefaultEffectCutoff
		o.EffectCutoff = &cutoff
	}
	if o.Direction == "" {
		o.Direction = markers.DirectionUp
	}
	if _, err := markers.ParseDirection(string(o.Direction)); err != nil {
		return err
	}
	if o.MaxGenes == 0 {
		o.MaxGenes = markers.DefaultMaxGenes
	}
	if o.MinGenes == 0 {
		o.MinGenes = markers.DefaultMinGenes
	}

	if len(o.Categories) == 0 {
		o.Categories = topp.Categories()
	}
	if err := topp.ValidateCategories(o.Categories); err != nil {
		return err
	}
	if o.Correction == "" {
		o.Correction = topp.CorrectionFDR
	}
	if err := topp.ValidateCorrection(o.Correction); err != nil {
		return err
	}
	if o.EnrichPValueCutoff == 0 {
		o.EnrichPValueCutoff = topp.DefaultPValueCutoff
	}
	if o.TermMinGenes == 0 {
		o.TermMinGenes = topp.DefaultMinGenes
	}
	if o.TermMaxGenes == 0 {
		o.TermMaxGenes = topp.DefaultMaxGenes
	}
	if o.MaxResults == 0 {
		o.MaxResults = topp.DefaultMaxResults
	}

	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}

	o.validated = true
	return nil
}

// filterOptions projects the pipeline options onto the marker filter.
func (o *Options) filterOptions() markers.FilterOptions {
	return markers.FilterOptions{
		PValueCutoff: o.PValueCutoff,
		EffectCutoff: o.EffectCutoff,
		Direction:    o.Direction,
		MaxGenes:     o.MaxGenes,
		MinGenes:     o.MinGenes,
	}
}

// enrichRequest builds the shared enrichment request for one identifier
// list.
func (o *Options) enrichRequest(ids []int64) topp.EnrichRequest {
	return topp.EnrichRequest{
		GeneIDs:      ids,
		Categories:   o.Categories,
		Correction:   o.Correction,
		PValueCutoff: o.EnrichPValueCutoff,
		MinGenes:     o.TermMinGenes,
		MaxGenes:     o.TermMaxGenes,
		MaxResults:   o.MaxResults,
	}
}
