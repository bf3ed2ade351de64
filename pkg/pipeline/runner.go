package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/toppgo/toppgo/pkg/markers"
	"github.com/toppgo/toppgo/pkg/topp"
)

// EnrichClient is the slice of the ToppGene client the pipeline needs.
// *topp.Client satisfies it; tests substitute fakes.
type EnrichClient interface {
	Lookup(ctx context.Context, symbols []string) ([]topp.Gene, error)
	Enrich(ctx context.Context, req topp.EnrichRequest) ([]topp.Annotation, error)
}

// Runner executes the filter → lookup → enrich → merge pipeline.
type Runner struct {
	client EnrichClient
}

// NewRunner creates a Runner backed by the given client.
func NewRunner(client EnrichClient) *Runner {
	return &Runner{client: client}
}

// clusterOutcome is the per-cluster product of the query stage.
type clusterOutcome struct {
	annotations []topp.Annotation
	unresolved  []string
}

// Run executes the pipeline over a marker table.
//
// Clusters whose filtered gene list falls below the minimum, and clusters
// for which the service returns zero annotations, are collected and
// reported in one consolidated warning; they never abort the run. A
// transport failure does abort the run: it means the service is
// unreachable, not that a particular gene set had no hits.
func (r *Runner) Run(ctx context.Context, table *markers.Table, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	sets, err := markers.Filter(table, opts.filterOptions())
	if err != nil {
		return nil, err
	}

	multi := len(table.Clusters()) > 1
	missing := make(map[string]bool)
	outcomes := make(map[string]*clusterOutcome)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	queried := 0
	for _, cluster := range sets.Clusters() {
		if sets.Undersized(cluster) {
			logger.Debugf("cluster %s: %d gene(s) after filtering, below minimum %d",
				cluster, len(sets.Genes(cluster)), opts.MinGenes)
			missing[cluster] = true
			continue
		}
		queried++

		g.Go(func() error {
			out, err := r.queryCluster(gctx, cluster, sets.Genes(cluster), &opts)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if len(out.annotations) == 0 {
				missing[cluster] = true
			} else {
				outcomes[cluster] = out
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      uuid.NewString(),
		Unresolved: make(map[string][]string),
		Stats: Stats{
			ClusterCount:    len(table.Clusters()),
			QueriedClusters: queried,
		},
	}

	// Deterministic merge: clusters in table order, rows by ascending
	// p-value within each cluster, term ID as tiebreak.
	for _, cluster := range sets.Clusters() {
		out, ok := outcomes[cluster]
		if !ok {
			continue
		}
		anns := out.annotations
		sort.SliceStable(anns, func(i, j int) bool {
			if anns[i].PValue != anns[j].PValue {
				return anns[i].PValue < anns[j].PValue
			}
			return anns[i].TermID < anns[j].TermID
		})
		for i := range anns {
			if multi {
				anns[i].Cluster = cluster
			}
		}
		result.Annotations = append(result.Annotations, anns...)
		result.Clusters = append(result.Clusters, cluster)
		if len(out.unresolved) > 0 {
			result.Unresolved[cluster] = out.unresolved
			logger.Debugf("cluster %s: %d symbol(s) not resolved: %s",
				cluster, len(out.unresolved), strings.Join(out.unresolved, ", "))
		}
	}

	for _, cluster := range sets.Clusters() {
		if missing[cluster] {
			result.Missing = append(result.Missing, cluster)
		}
	}
	if len(result.Missing) > 0 {
		logger.Warnf("no enrichment results for %d cluster(s): %s",
			len(result.Missing), strings.Join(result.Missing, ", "))
	}

	result.Stats.AnnotationCount = len(result.Annotations)
	result.Stats.Elapsed = time.Since(start)
	return result, nil
}

// queryCluster runs lookup and enrichment for one cluster's gene list.
func (r *Runner) queryCluster(ctx context.Context, cluster string, genes []string, opts *Options) (*clusterOutcome, error) {
	resolved, err := r.client.Lookup(ctx, genes)
	if err != nil {
		return nil, err
	}

	out := &clusterOutcome{unresolved: topp.Unresolved(genes, resolved)}
	if len(resolved) == 0 {
		// Every symbol fell through the lookup; nothing to enrich.
		return out, nil
	}

	anns, err := r.client.Enrich(ctx, opts.enrichRequest(topp.EntrezIDs(resolved)))
	if err != nil {
		return nil, err
	}
	out.annotations = anns
	return out, nil
}
