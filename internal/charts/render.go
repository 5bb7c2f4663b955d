package charts

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	barWidth   = 24
	barSpacing = 8
	chartSize  = 640
)

// RenderPNG rasterizes spec. Pie specs become pie charts; bar and histogram
// specs become bar charts with one bar per bucket.
func RenderPNG(w io.Writer, spec *ChartSpec) error {
	if len(spec.Buckets) == 0 {
		return fmt.Errorf("chart %q has no buckets", spec.Title)
	}

	if spec.Kind == KindPie {
		values := make([]chart.Value, len(spec.Buckets))
		for i, b := range spec.Buckets {
			values[i] = chart.Value{Value: float64(b.Count), Label: b.Display}
		}
		pie := chart.PieChart{
			Title:  spec.Title,
			Width:  chartSize,
			Height: chartSize,
			Values: values,
		}
		return pie.Render(chart.PNG, w)
	}

	maxCount := 1
	bars := make([]chart.Value, len(spec.Buckets))
	for i, b := range spec.Buckets {
		bars[i] = chart.Value{Value: float64(b.Count), Label: b.Label}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	width := len(bars)*(barWidth+barSpacing) + 160
	if width < chartSize {
		width = chartSize
	}

	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     chartSize * 3 / 4,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}
