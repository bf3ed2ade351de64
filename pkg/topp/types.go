package topp

// Gene is one entry of a lookup response: a submitted symbol resolved to its
// Entrez identifier and official symbol.
type Gene struct {
	Submitted      string `json:"Submitted"`
	Entrez         int64  `json:"Entrez"`
	OfficialSymbol string `json:"OfficialSymbol"`
}

// EntrezIDs extracts the Entrez identifiers from a lookup result, in
// service-determined order.
func EntrezIDs(genes []Gene) []int64 {
	ids := make([]int64, len(genes))
	for i, g := range genes {
		ids[i] = g.Entrez
	}
	return ids
}

// Unresolved returns the submitted symbols that are absent from the lookup
// response, preserving submission order. The service drops unknown symbols
// silently; this makes the loss visible to callers.
func Unresolved(submitted []string, resolved []Gene) []string {
	seen := make(map[string]bool, len(resolved))
	for _, g := range resolved {
		seen[g.Submitted] = true
	}
	var missing []string
	for _, s := range submitted {
		if !seen[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

// TermGene is a gene contributing to an enrichment hit.
type TermGene struct {
	ID     int64  `json:"Id"`
	Symbol string `json:"Symbol"`
}

// Annotation is one enrichment hit: a term matched against the submitted
// gene set within one category, with the statistics computed by the service.
type Annotation struct {
	// Cluster tags the originating group when multiple clusters were merged
	// into one table. Empty for single-cluster runs.
	Cluster string

	Category Category
	TermID   string
	TermName string

	// PValue is the raw p-value; the QValue fields carry the three
	// correction families computed by the service.
	PValue           float64
	QValueFDRBH      float64
	QValueFDRBY      float64
	QValueBonferroni float64

	// Gene counts: term universe size, genes in the term, genes in the
	// submitted query, and the overlap between the two.
	TotalGenes         int
	GenesInTerm        int
	GenesInQuery       int
	GenesInTermInQuery int

	Source string
	URL    string

	// Genes lists the overlap members, used by the network renderer.
	Genes []TermGene
}

// GeneRatio returns the fraction of the submitted query found in this term.
// Returns 0 when the query size is unknown.
func (a Annotation) GeneRatio() float64 {
	if a.GenesInQuery == 0 {
		return 0
	}
	return float64(a.GenesInTermInQuery) / float64(a.GenesInQuery)
}

// lookupRequest is the wire form of a symbol translation request.
type lookupRequest struct {
	Symbols []string `json:"Symbols"`
}

// lookupResponse is the wire form of a symbol translation response.
type lookupResponse struct {
	Genes []Gene `json:"Genes"`
}

// categorySpec carries the per-category threshold parameters of an
// enrichment request. Identifiers are shared across all specs in a request.
type categorySpec struct {
	Type       Category   `json:"Type"`
	PValue     float64    `json:"PValue"`
	MinGenes   int        `json:"MinGenes"`
	MaxGenes   int        `json:"MaxGenes"`
	MaxResults int        `json:"MaxResults"`
	Correction Correction `json:"Correction"`
}

// enrichRequest is the wire form of an enrichment request.
type enrichRequest struct {
	Genes      []int64        `json:"Genes"`
	Categories []categorySpec `json:"Categories"`
}

// annotationRecord is the wire form of one enrichment hit.
type annotationRecord struct {
	Category           string     `json:"Category"`
	ID                 string     `json:"ID"`
	Name               string     `json:"Name"`
	PValue             float64    `json:"PValue"`
	QValueFDRBH        float64    `json:"QValueFDRBH"`
	QValueFDRBY        float64    `json:"QValueFDRBY"`
	QValueBonferroni   float64    `json:"QValueBonferroni"`
	TotalGenes         int        `json:"TotalGenes"`
	GenesInTerm        int        `json:"GenesInTerm"`
	GenesInQuery       int        `json:"GenesInQuery"`
	GenesInTermInQuery int        `json:"GenesInTermInQuery"`
	Source             string     `json:"Source"`
	URL                string     `json:"URL"`
	Genes              []TermGene `json:"Genes"`
}

// enrichResponse is the wire form of an enrichment response.
type enrichResponse struct {
	Annotations []annotationRecord `json:"Annotations"`
}
