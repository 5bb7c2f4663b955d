package profiling

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// minShapeCount is the smallest sample the shape markers are defined for.
const minShapeCount = 4

// Shape describes the distribution of a numeric column beyond the describe
// table. It is not part of Lines.
type Shape struct {
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"excess_kurtosis"`
	Outliers int     `json:"outliers"`
}

// analyzeShape returns nil when the sample is too small or constant, where
// the moments are undefined.
func analyzeShape(sorted []float64, q25, q75 float64) *Shape {
	if len(sorted) < minShapeCount || sorted[0] == sorted[len(sorted)-1] {
		return nil
	}
	skew := stat.Skew(sorted, nil)
	kurt := stat.ExKurtosis(sorted, nil)
	if math.IsNaN(skew) || math.IsNaN(kurt) {
		return nil
	}
	return &Shape{
		Skewness: skew,
		Kurtosis: kurt,
		Outliers: countOutliers(sorted, q25, q75),
	}
}

// countOutliers counts values outside the 1.5 IQR fences.
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	n := 0
	for _, x := range data {
		if x < lower || x > upper {
			n++
		}
	}
	return n
}
