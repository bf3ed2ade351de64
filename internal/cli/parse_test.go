package cli

import (
	"slices"
	"testing"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/topp"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []topp.Category
		wantErr bool
	}{
		{"empty means all", "", nil, false},
		{"single", "Pathway", []topp.Category{topp.CategoryPathway}, false},
		{"multiple with spaces", "Pathway, GeneOntologyMolecularFunction",
			[]topp.Category{topp.CategoryPathway, topp.CategoryGOMolecularFunction}, false},
		{"trailing comma", "Pathway,", []topp.Category{topp.CategoryPathway}, false},
		{"unknown", "Pathway,Nope", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCategories(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidCategory) {
					t.Fatalf("error code = %v, want INVALID_CATEGORY", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCategories(%q) failed: %v", tt.in, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseCategories(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTableComma(t *testing.T) {
	tests := []struct {
		path    string
		want    rune
		wantErr bool
	}{
		{"markers.csv", ',', false},
		{"markers.CSV", ',', false},
		{"markers.tsv", '\t', false},
		{"markers.txt", '\t', false},
		{"markers.xlsx", 0, true},
		{"markers", 0, true},
	}

	for _, tt := range tests {
		got, err := tableComma(tt.path)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("tableComma(%q): error code = %v, want INVALID_INPUT", tt.path, errors.GetCode(err))
			}
			continue
		}
		if err != nil {
			t.Errorf("tableComma(%q) failed: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("tableComma(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
