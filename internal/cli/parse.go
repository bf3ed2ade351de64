package cli

import (
	"path/filepath"
	"strings"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/topp"
)

// parseCategories turns a comma-separated flag value into validated
// categories. Empty input means the full vocabulary and returns nil.
func parseCategories(s string) ([]topp.Category, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var cats []topp.Category
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cats = append(cats, topp.Category(part))
	}
	if err := topp.ValidateCategories(cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// tableComma infers the field delimiter from the marker file extension.
func tableComma(path string) (rune, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ',', nil
	case ".tsv", ".txt", ".tab":
		return '\t', nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "cannot infer delimiter from %q (expected .csv or .tsv)", path)
}
