package dataset

import (
	"strings"

	"csvdash/domain/dataset"

	"golang.org/x/text/cases"
)

// Search keeps rows whose value in column contains term, ignoring case.
// The term is matched literally. Missing values never match, and an empty
// term returns the input unchanged.
func Search(ds *dataset.Dataset, column, term string) (*dataset.Dataset, error) {
	idx, err := ds.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return ds, nil
	}

	fold := cases.Fold()
	needle := fold.String(term)
	return ds.Where(func(row dataset.Row) bool {
		v := row.Values[idx]
		if v.IsMissing() {
			return false
		}
		return strings.Contains(fold.String(v.String()), needle)
	}), nil
}
