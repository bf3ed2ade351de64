package topp

import (
	"slices"

	"github.com/toppgo/toppgo/pkg/errors"
)

// Category identifies one ToppGene annotation database.
type Category string

// The fixed category vocabulary accepted by the enrichment endpoint.
const (
	CategoryGOMolecularFunction Category = "GeneOntologyMolecularFunction"
	CategoryGOBiologicalProcess Category = "GeneOntologyBiologicalProcess"
	CategoryGOCellularComponent Category = "GeneOntologyCellularComponent"
	CategoryHumanPheno          Category = "HumanPheno"
	CategoryMousePheno          Category = "MousePheno"
	CategoryDomain              Category = "Domain"
	CategoryPathway             Category = "Pathway"
	CategoryPubmed              Category = "Pubmed"
	CategoryInteraction         Category = "Interaction"
	CategoryCytoband            Category = "Cytoband"
	CategoryTFBS                Category = "TFBS"
	CategoryGeneFamily          Category = "GeneFamily"
	CategoryCoexpression        Category = "Coexpression"
	CategoryCoexpressionAtlas   Category = "CoexpressionAtlas"
	CategoryToppCell            Category = "ToppCell"
	CategoryComputational       Category = "Computational"
	CategoryMicroRNA            Category = "MicroRNA"
	CategoryDrug                Category = "Drug"
	CategoryDisease             Category = "Disease"
)

// allCategories lists every category in the service's canonical order.
var allCategories = []Category{
	CategoryGOMolecularFunction,
	CategoryGOBiologicalProcess,
	CategoryGOCellularComponent,
	CategoryHumanPheno,
	CategoryMousePheno,
	CategoryDomain,
	CategoryPathway,
	CategoryPubmed,
	CategoryInteraction,
	CategoryCytoband,
	CategoryTFBS,
	CategoryGeneFamily,
	CategoryCoexpression,
	CategoryCoexpressionAtlas,
	CategoryToppCell,
	CategoryComputational,
	CategoryMicroRNA,
	CategoryDrug,
	CategoryDisease,
}

// Categories returns the full category vocabulary in canonical order.
// The returned slice is a copy; callers may modify it freely.
func Categories() []Category {
	return slices.Clone(allCategories)
}

// CategoryNames returns the vocabulary as plain strings, for display and
// completion.
func CategoryNames() []string {
	names := make([]string, len(allCategories))
	for i, c := range allCategories {
		names[i] = string(c)
	}
	return names
}

// ValidCategory reports whether c is part of the fixed vocabulary.
func ValidCategory(c Category) bool {
	return slices.Contains(allCategories, c)
}

// ValidateCategories checks every entry against the fixed vocabulary.
// An empty slice is valid; callers that want "all categories" should expand
// it with [Categories] before building a request.
func ValidateCategories(cats []Category) error {
	for _, c := range cats {
		if !ValidCategory(c) {
			return errors.New(errors.ErrCodeInvalidCategory, "unknown category %q (run 'toppgo categories' for the full list)", c)
		}
	}
	return nil
}

// Correction is a multiple-testing adjustment method applied by the remote
// service to raw p-values.
type Correction string

// Correction methods accepted by the enrichment endpoint.
const (
	CorrectionNone       Correction = "none"
	CorrectionFDR        Correction = "FDR"
	CorrectionBonferroni Correction = "Bonferroni"
)

// ValidateCorrection checks c against the enumerated correction methods.
func ValidateCorrection(c Correction) error {
	switch c {
	case CorrectionNone, CorrectionFDR, CorrectionBonferroni:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidCorrection, "invalid correction %q (must be one of: none, FDR, Bonferroni)", c)
}
