package topp

import (
	"slices"
	"testing"

	"github.com/toppgo/toppgo/pkg/errors"
)

func TestCategories_FixedVocabulary(t *testing.T) {
	cats := Categories()
	if len(cats) != 19 {
		t.Fatalf("len(Categories()) = %d, want 19", len(cats))
	}

	// Order must be stable across calls.
	if !slices.Equal(cats, Categories()) {
		t.Error("Categories() order changed between calls")
	}

	// Mutating the returned slice must not affect later calls.
	cats[0] = Category("Mutated")
	if Categories()[0] != CategoryGOMolecularFunction {
		t.Error("Categories() returned shared backing storage")
	}
}

func TestCategoryNames(t *testing.T) {
	names := CategoryNames()
	if len(names) != 19 {
		t.Fatalf("len(CategoryNames()) = %d, want 19", len(names))
	}
	want := []string{
		"GeneOntologyMolecularFunction", "GeneOntologyBiologicalProcess",
		"GeneOntologyCellularComponent", "HumanPheno", "MousePheno", "Domain",
		"Pathway", "Pubmed", "Interaction", "Cytoband", "TFBS", "GeneFamily",
		"Coexpression", "CoexpressionAtlas", "ToppCell", "Computational",
		"MicroRNA", "Drug", "Disease",
	}
	if !slices.Equal(names, want) {
		t.Errorf("CategoryNames() = %v, want %v", names, want)
	}
}

func TestValidateCategories(t *testing.T) {
	tests := []struct {
		name    string
		cats    []Category
		wantErr bool
	}{
		{"empty", nil, false},
		{"single valid", []Category{CategoryPathway}, false},
		{"all valid", Categories(), false},
		{"unknown", []Category{CategoryPathway, "Proteomics"}, true},
		{"case sensitive", []Category{"pathway"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategories(tt.cats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCategories() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidCategory) {
				t.Errorf("error code = %v, want INVALID_CATEGORY", errors.GetCode(err))
			}
		})
	}
}

func TestValidateCorrection(t *testing.T) {
	for _, c := range []Correction{CorrectionNone, CorrectionFDR, CorrectionBonferroni} {
		if err := ValidateCorrection(c); err != nil {
			t.Errorf("ValidateCorrection(%q) = %v, want nil", c, err)
		}
	}

	err := ValidateCorrection("fdr")
	if !errors.Is(err, errors.ErrCodeInvalidCorrection) {
		t.Errorf("ValidateCorrection(\"fdr\") code = %v, want INVALID_CORRECTION", errors.GetCode(err))
	}
}
