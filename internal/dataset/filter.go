// Package dataset holds the row-selection steps of the exploration pipeline:
// the numeric range filter and the substring search. Each step returns a new
// view and leaves its input untouched.
package dataset

import (
	"fmt"
	"math"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"
)

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Bounds returns the observed [min, max] of a numeric column, ignoring
// missing values. ok is false when the column is not numeric or has no values.
func Bounds(ds *dataset.Dataset, column string) (Range, bool, error) {
	col, err := ds.Column(column)
	if err != nil {
		return Range{}, false, err
	}
	if col.Kind != dataset.KindNumeric {
		return Range{}, false, nil
	}

	values, _ := ds.Values(column)
	bounds := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	seen := false
	for _, v := range values {
		f, ok := v.Float()
		if !ok {
			continue
		}
		seen = true
		bounds.Min = math.Min(bounds.Min, f)
		bounds.Max = math.Max(bounds.Max, f)
	}
	if !seen {
		return Range{}, false, nil
	}
	return bounds, true, nil
}

// FilterByRange keeps rows whose value in column lies in [min, max], in
// their original order. Rows with a missing value are dropped. A text column
// is returned unchanged.
func FilterByRange(ds *dataset.Dataset, column string, min, max float64) (*dataset.Dataset, error) {
	idx, err := ds.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	if ds.Columns[idx].Kind != dataset.KindNumeric {
		return ds, nil
	}
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid range [%g, %g] for %q", min, max, column))
	}

	r := Range{Min: min, Max: max}
	return ds.Where(func(row dataset.Row) bool {
		f, ok := row.Values[idx].Float()
		return ok && r.Contains(f)
	}), nil
}
