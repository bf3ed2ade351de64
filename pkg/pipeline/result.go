package pipeline

import (
	"slices"
	"time"

	"github.com/toppgo/toppgo/pkg/topp"
)

// Result is the combined annotation table produced by one pipeline run.
// It is created fresh per run and never mutated afterwards; callers may
// reorder or filter their copy freely.
type Result struct {
	// RunID uniquely identifies this run in logs and exports.
	RunID string

	// Annotations is the merged table, sorted by cluster (input order) then
	// ascending p-value. Each row carries its Cluster tag when more than
	// one cluster was queried.
	Annotations []topp.Annotation

	// Clusters lists the clusters that contributed rows, in input order.
	Clusters []string

	// Missing lists clusters that produced no annotations, either because
	// their filtered gene list fell below the minimum or because the
	// service returned zero hits. Non-fatal; reported once per run.
	Missing []string

	// Unresolved maps a cluster to the submitted symbols the lookup
	// endpoint could not translate.
	Unresolved map[string][]string

	// Stats carries timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ClusterCount    int           // distinct clusters in the input table
	QueriedClusters int           // clusters that reached the service
	AnnotationCount int           // rows in the merged table
	Elapsed         time.Duration // wall time for the whole run
}

// Tagged reports whether rows carry cluster tags. Single-cluster runs leave
// the tag empty, and exporters omit the Cluster column accordingly.
func (r *Result) Tagged() bool {
	return len(r.Annotations) > 0 && r.Annotations[0].Cluster != ""
}

// ForCluster returns the rows tagged with the given cluster. For untagged
// (single-cluster) results it returns all rows regardless of name.
func (r *Result) ForCluster(cluster string) []topp.Annotation {
	if !r.Tagged() {
		return slices.Clone(r.Annotations)
	}
	var out []topp.Annotation
	for _, a := range r.Annotations {
		if a.Cluster == cluster {
			out = append(out, a)
		}
	}
	return out
}

// ForCategory returns the rows belonging to one annotation category.
func (r *Result) ForCategory(cat topp.Category) []topp.Annotation {
	var out []topp.Annotation
	for _, a := range r.Annotations {
		if a.Category == cat {
			out = append(out, a)
		}
	}
	return out
}

// CategoriesPresent returns the categories that actually produced rows, in
// vocabulary order.
func (r *Result) CategoriesPresent() []topp.Category {
	present := make(map[topp.Category]bool)
	for _, a := range r.Annotations {
		present[a.Category] = true
	}
	var out []topp.Category
	for _, c := range topp.Categories() {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}

// Empty reports whether the run produced no annotations at all.
func (r *Result) Empty() bool { return len(r.Annotations) == 0 }
