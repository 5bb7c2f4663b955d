// Package charts aggregates a dataset column into bar, pie and histogram
// specifications and rasterizes them.
package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Kind selects the aggregate view.
type Kind string

const (
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
)

// HistogramBins is the fixed bin count of histograms.
const HistogramBins = 30

// ParseKind accepts the short names and the dashboard's radio labels.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar", "bar chart":
		return KindBar, nil
	case "pie", "pie chart":
		return KindPie, nil
	case "histogram", "hist":
		return KindHistogram, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown chart kind %q", s))
}

// Bucket is one bar, slice or bin. Percent and Display are set for pie
// slices; Lower and Upper for histogram bins.
type Bucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent,omitempty"`
	Display string  `json:"display,omitempty"`
	Lower   float64 `json:"lower,omitempty"`
	Upper   float64 `json:"upper,omitempty"`
}

// ChartSpec is a renderer-independent chart.
type ChartSpec struct {
	Kind    Kind     `json:"kind"`
	Column  string   `json:"column"`
	Title   string   `json:"title"`
	Total   int      `json:"total"`
	Buckets []Bucket `json:"buckets"`
}

// Render aggregates column of ds into a chart of the given kind. Bar and pie
// buckets are ordered by count, highest first, ties by first appearance.
func Render(ds *dataset.Dataset, column string, kind Kind) (*ChartSpec, error) {
	col, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	values, _ := ds.Values(column)

	switch kind {
	case KindBar, KindPie:
		buckets, total := frequencies(values)
		if total == 0 {
			return nil, errors.EmptyColumn(column)
		}
		spec := &ChartSpec{Kind: kind, Column: column, Total: total, Buckets: buckets}
		if kind == KindPie {
			spec.Title = fmt.Sprintf("%s share", column)
			for i := range spec.Buckets {
				b := &spec.Buckets[i]
				b.Percent = math.Round(float64(b.Count)/float64(total)*1000) / 10
				b.Display = fmt.Sprintf("%s (%.1f%%)", b.Label, b.Percent)
			}
		} else {
			spec.Title = fmt.Sprintf("%s counts", column)
		}
		return spec, nil

	case KindHistogram:
		if col.Kind != dataset.KindNumeric {
			return nil, errors.TypeError(column, "histogram")
		}
		data := make([]float64, 0, len(values))
		for _, v := range values {
			if f, ok := v.Float(); ok {
				data = append(data, f)
			}
		}
		if len(data) == 0 {
			return nil, errors.EmptyColumn(column)
		}
		return &ChartSpec{
			Kind:    KindHistogram,
			Column:  column,
			Title:   fmt.Sprintf("%s distribution", column),
			Total:   len(data),
			Buckets: histogram(data, HistogramBins),
		}, nil
	}

	return nil, errors.InvalidInput(fmt.Sprintf("unknown chart kind %q", kind))
}

func frequencies(values []dataset.Value) ([]Bucket, int) {
	index := make(map[string]int)
	var buckets []Bucket
	total := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		total++
		label := groupKey(v)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[i].Count++
	}
	sort.SliceStable(buckets, func(a, b int) bool {
		return buckets[a].Count > buckets[b].Count
	})
	return buckets, total
}

// groupKey is the bucket of v. Numbers group by value, so "1" and "1.00"
// share a bucket.
func groupKey(v dataset.Value) string {
	if !v.IsNumber() {
		return v.String()
	}
	f, _ := v.Float()
	if f == 0 {
		f = 0 // folds -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// histogram splits [min, max] into equal bins; the last bin includes max.
// A constant sample spans [v-0.5, v+0.5].
func histogram(data []float64, bins int) []Bucket {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := make([]float64, bins+1)
	if math.IsInf(hi-lo, 0) {
		// Span on quarter scale so the width stays finite.
		floats.Span(edges, lo/4, hi/4)
		floats.Scale(4, edges)
		edges[0], edges[bins] = lo, hi
	} else {
		floats.Span(edges, lo, hi)
	}

	// stat.Histogram bins are half-open; nudge the top divider so max lands
	// in the last bin.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	buckets := make([]Bucket, bins)
	for i := range buckets {
		buckets[i] = Bucket{
			Label: fmt.Sprintf("%.4g", edges[i]/2+edges[i+1]/2),
			Count: int(counts[i]),
			Lower: edges[i],
			Upper: edges[i+1],
		}
	}
	return buckets
}
