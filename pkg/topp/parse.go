package topp

import (
	"github.com/toppgo/toppgo/pkg/errors"
)

// flattenAnnotations converts wire records into the flat [Annotation] form.
//
// A record missing a required field (category, term ID, or term name) is
// dropped and counted; in strict mode the first such record fails the whole
// batch instead. The remaining records keep their response order.
func flattenAnnotations(records []annotationRecord, strict bool) ([]Annotation, int, error) {
	anns := make([]Annotation, 0, len(records))
	dropped := 0

	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			if strict {
				return nil, 0, errors.Wrap(errors.ErrCodeParse, err, "annotation record %d", i)
			}
			dropped++
			continue
		}
		anns = append(anns, flatten(rec))
	}
	return anns, dropped, nil
}

// validateRecord checks the fields the rest of the system depends on.
// Numeric fields are left alone: a zero p-value or count is meaningful.
func validateRecord(rec annotationRecord) error {
	switch {
	case rec.Category == "":
		return errors.New(errors.ErrCodeParse, "missing category")
	case !ValidCategory(Category(rec.Category)):
		return errors.New(errors.ErrCodeParse, "unknown category %q", rec.Category)
	case rec.ID == "":
		return errors.New(errors.ErrCodeParse, "missing term ID")
	case rec.Name == "":
		return errors.New(errors.ErrCodeParse, "missing term name")
	}
	return nil
}

func flatten(rec annotationRecord) Annotation {
	return Annotation{
		Category:           Category(rec.Category),
		TermID:             rec.ID,
		TermName:           rec.Name,
		PValue:             rec.PValue,
		QValueFDRBH:        rec.QValueFDRBH,
		QValueFDRBY:        rec.QValueFDRBY,
		QValueBonferroni:   rec.QValueBonferroni,
		TotalGenes:         rec.TotalGenes,
		GenesInTerm:        rec.GenesInTerm,
		GenesInQuery:       rec.GenesInQuery,
		GenesInTermInQuery: rec.GenesInTermInQuery,
		Source:             rec.Source,
		URL:                rec.URL,
		Genes:              rec.Genes,
	}
}
