package profiling

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"

	"github.com/montanaflynn/stats"
)

// Summary is the descriptive statistics of one column. Exactly one of
// Numeric and Categorical is set, depending on the column kind.
type Summary struct {
	Column      string              `json:"column"`
	Kind        dataset.ColumnKind  `json:"kind"`
	Count       int                 `json:"count"`
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
}

// NumericSummary holds moments and quartiles. Std is the sample standard
// deviation and is NaN for a single value.
type NumericSummary struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
	Shape  *Shape  `json:"shape,omitempty"`
}

// MarshalJSON writes an undefined Std as null.
func (n NumericSummary) MarshalJSON() ([]byte, error) {
	type plain NumericSummary
	out := struct {
		plain
		Std *float64 `json:"std"`
	}{plain: plain(n)}
	if !math.IsNaN(n.Std) {
		out.Std = &n.Std
	}
	return json.Marshal(out)
}

// CategoricalSummary holds the distinct count and the most frequent value.
type CategoricalSummary struct {
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// Stat is one labelled line of a summary, in describe order.
type Stat struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Summarize computes the statistics of column over the non-missing values
// of ds. A column with no values left fails with EMPTY_COLUMN.
func Summarize(ds *dataset.Dataset, column string) (*Summary, error) {
	col, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	values, _ := ds.Values(column)

	summary := &Summary{Column: col.Name, Kind: col.Kind}
	if col.Kind == dataset.KindNumeric {
		data := numericValues(values)
		if len(data) == 0 {
			return nil, errors.EmptyColumn(column)
		}
		summary.Count = len(data)
		summary.Numeric, err = describeNumeric(data)
		if err != nil {
			return nil, errors.Wrapf(err, "summarize %q", column)
		}
		return summary, nil
	}

	cat, count := describeCategorical(values)
	if count == 0 {
		return nil, errors.EmptyColumn(column)
	}
	summary.Count = count
	summary.Categorical = cat
	return summary, nil
}

// Lines renders the summary in describe order.
func (s *Summary) Lines() []Stat {
	lines := []Stat{{Name: "count", Value: strconv.Itoa(s.Count)}}
	switch {
	case s.Numeric != nil:
		n := s.Numeric
		for _, st := range []struct {
			name string
			v    float64
		}{
			{"mean", n.Mean}, {"std", n.Std}, {"min", n.Min},
			{"25%", n.Q25}, {"50%", n.Median}, {"75%", n.Q75}, {"max", n.Max},
		} {
			lines = append(lines, Stat{Name: st.name, Value: formatStat(st.v)})
		}
	case s.Categorical != nil:
		c := s.Categorical
		lines = append(lines,
			Stat{Name: "unique", Value: strconv.Itoa(c.Unique)},
			Stat{Name: "top", Value: c.Top},
			Stat{Name: "freq", Value: strconv.Itoa(c.Freq)},
		)
	}
	return lines
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func numericValues(values []dataset.Value) []float64 {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			data = append(data, f)
		}
	}
	return data
}

func describeNumeric(data []float64) (*NumericSummary, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}

	std := math.NaN()
	if len(data) > 1 {
		std, err = stats.StandardDeviationSample(data)
		if err != nil {
			return nil, err
		}
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	q25, q75 := Quantile(sorted, 0.25), Quantile(sorted, 0.75)
	return &NumericSummary{
		Mean:   mean,
		Std:    std,
		Min:    min,
		Q25:    q25,
		Median: median,
		Q75:    q75,
		Max:    max,
		Shape:  analyzeShape(sorted, q25, q75),
	}, nil
}

// Quantile interpolates linearly between the closest ranks of sorted data:
// position (n-1)*p, as dataframe describe() reports quartiles.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// describeCategorical counts distinct display values. The top value is the
// most frequent one; ties go to the value seen first.
func describeCategorical(values []dataset.Value) (*CategoricalSummary, int) {
	counts := make(map[string]int)
	var order []string
	count := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		count++
		s := v.String()
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	if count == 0 {
		return nil, 0
	}

	top := order[0]
	for _, s := range order[1:] {
		if counts[s] > counts[top] {
			top = s
		}
	}
	return &CategoricalSummary{Unique: len(order), Top: top, Freq: counts[top]}, count
}
