// Package topp provides a client for the ToppGene Suite API.
//
// # Overview
//
// The ToppGene Suite (https://toppgene.cchmc.org) performs gene list
// enrichment against a set of annotation databases ("categories"): Gene
// Ontology branches, phenotypes, pathways, literature, and more. All
// statistics (p-values, multiple-testing correction) are computed by the
// remote service; this package only builds requests and reshapes responses.
//
// Two endpoints are wrapped:
//
//   - POST /API/lookup: translates gene symbols to Entrez identifiers.
//     Symbols the service cannot resolve are simply absent from the
//     response; [Unresolved] reports which ones were lost.
//   - POST /API/enrich: submits Entrez identifiers with per-category
//     threshold parameters and returns annotation records.
//
// # Usage
//
//	client := topp.NewClient()
//	genes, err := client.Lookup(ctx, []string{"TP53", "BRCA1"})
//	if err != nil {
//	    return err
//	}
//	anns, err := client.Enrich(ctx, topp.EnrichRequest{
//	    GeneIDs:    topp.EntrezIDs(genes),
//	    Categories: []topp.Category{topp.CategoryPathway},
//	    Correction: topp.CorrectionFDR,
//	})
//
// # Error Handling
//
// Transport failures and non-2xx responses surface as NETWORK_ERROR (or
// TIMEOUT) codes from [pkg/errors]; 5xx responses are retried with backoff
// before failing. An undecodable response body is PARSE_ERROR and fails the
// whole batch. Individual annotation records missing required fields are
// dropped and counted unless the client was built with [WithStrictParse].
//
// [pkg/errors]: github.com/toppgo/toppgo/pkg/errors
package topp
