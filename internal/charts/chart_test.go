package charts

import (
	"bytes"
	"math"
	"testing"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table() *dataset.Dataset {
	cities := []string{"Oslo", "Bergen", "Oslo", "", "Tromsø", "Bergen", "Oslo"}
	ages := []float64{20, 35, 35, -1, 50, 41, 60}
	rows := make([]dataset.Row, len(cities))
	for i := range cities {
		city := dataset.Text(cities[i])
		if cities[i] == "" {
			city = dataset.Missing()
		}
		age := dataset.Number(ages[i], "")
		if ages[i] < 0 {
			age = dataset.Missing()
		}
		rows[i] = dataset.Row{Index: i, Values: []dataset.Value{city, age}}
	}
	return dataset.New("t.csv", []dataset.Column{
		{Name: "City", Kind: dataset.KindText},
		{Name: "Age", Kind: dataset.KindNumeric},
	}, rows)
}

func numbers(values ...dataset.Value) *dataset.Dataset {
	rows := make([]dataset.Row, len(values))
	for i, v := range values {
		rows[i] = dataset.Row{Index: i, Values: []dataset.Value{v}}
	}
	return dataset.New("v.csv", []dataset.Column{{Name: "v", Kind: dataset.KindNumeric}}, rows)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"bar": KindBar, "Pie Chart": KindPie, " Histogram ": KindHistogram} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("scatter")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestBarOrderedByFrequency(t *testing.T) {
	spec, err := Render(table(), "City", KindBar)
	require.NoError(t, err)

	assert.Equal(t, 6, spec.Total)
	require.Len(t, spec.Buckets, 3)
	assert.Equal(t, Bucket{Label: "Oslo", Count: 3}, spec.Buckets[0])
	assert.Equal(t, Bucket{Label: "Bergen", Count: 2}, spec.Buckets[1])
	assert.Equal(t, Bucket{Label: "Tromsø", Count: 1}, spec.Buckets[2])
}

func TestBarTiesKeepFirstAppearance(t *testing.T) {
	spec, err := Render(table(), "Age", KindBar)
	require.NoError(t, err)
	require.Len(t, spec.Buckets, 5)
	assert.Equal(t, "35", spec.Buckets[0].Label)
	assert.Equal(t, []string{"20", "50", "41", "60"}, []string{
		spec.Buckets[1].Label, spec.Buckets[2].Label, spec.Buckets[3].Label, spec.Buckets[4].Label,
	})
}

func TestPiePercentages(t *testing.T) {
	spec, err := Render(table(), "City", KindPie)
	require.NoError(t, err)

	sum := 0.0
	for _, b := range spec.Buckets {
		sum += b.Percent
	}
	assert.InDelta(t, 100.0, sum, 0.05*float64(len(spec.Buckets)))
	assert.Equal(t, 50.0, spec.Buckets[0].Percent)
	assert.Equal(t, 33.3, spec.Buckets[1].Percent)
	assert.Equal(t, "Bergen (33.3%)", spec.Buckets[1].Display)
}

func TestHistogram(t *testing.T) {
	spec, err := Render(table(), "Age", KindHistogram)
	require.NoError(t, err)

	require.Len(t, spec.Buckets, HistogramBins)
	assert.Equal(t, 6, spec.Total)
	assert.Equal(t, 20.0, spec.Buckets[0].Lower)
	assert.InDelta(t, 60.0, spec.Buckets[HistogramBins-1].Upper, 1e-9)

	total := 0
	for _, b := range spec.Buckets {
		total += b.Count
	}
	assert.Equal(t, 6, total)
	assert.Equal(t, 1, spec.Buckets[0].Count)
	assert.Equal(t, 1, spec.Buckets[HistogramBins-1].Count, "max falls in the last bin")
}

func TestHistogramConstantColumn(t *testing.T) {
	ds := dataset.New("c.csv", []dataset.Column{{Name: "v", Kind: dataset.KindNumeric}}, []dataset.Row{
		{Index: 0, Values: []dataset.Value{dataset.Number(4, "")}},
		{Index: 1, Values: []dataset.Value{dataset.Number(4, "")}},
	})
	spec, err := Render(ds, "v", KindHistogram)
	require.NoError(t, err)
	assert.Equal(t, 3.5, spec.Buckets[0].Lower)
	assert.InDelta(t, 4.5, spec.Buckets[HistogramBins-1].Upper, 1e-9)

	total := 0
	for _, b := range spec.Buckets {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestHistogramWideRange(t *testing.T) {
	ds := numbers(dataset.Number(-1e308, "-1e308"), dataset.Number(1e308, "1e308"), dataset.Number(0, "0"))

	spec, err := Render(ds, "v", KindHistogram)
	require.NoError(t, err)
	require.Len(t, spec.Buckets, HistogramBins)
	assert.Equal(t, -1e308, spec.Buckets[0].Lower)
	assert.Equal(t, 1e308, spec.Buckets[HistogramBins-1].Upper)

	total := 0
	for i, b := range spec.Buckets {
		assert.False(t, math.IsInf(b.Lower, 0) || math.IsNaN(b.Lower), i)
		assert.LessOrEqual(t, b.Lower, b.Upper, i)
		total += b.Count
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, spec.Buckets[0].Count)
	assert.Equal(t, 1, spec.Buckets[HistogramBins-1].Count)
}

func TestBarGroupsNumbersByValue(t *testing.T) {
	ds := numbers(
		dataset.Number(1, "1"),
		dataset.Number(1, "1.0"),
		dataset.Number(1, "1.00"),
		dataset.Number(2, "2"),
		dataset.Number(math.Copysign(0, -1), "-0"),
		dataset.Number(0, "0.0"),
	)

	spec, err := Render(ds, "v", KindBar)
	require.NoError(t, err)
	assert.Equal(t, []Bucket{
		{Label: "1", Count: 3},
		{Label: "0", Count: 2},
		{Label: "2", Count: 1},
	}, spec.Buckets)
}

func TestHistogramRejectsText(t *testing.T) {
	_, err := Render(table(), "City", KindHistogram)
	assert.Equal(t, errors.CodeTypeError, errors.GetCode(err))
}

func TestEmptyColumn(t *testing.T) {
	empty := table().Where(func(dataset.Row) bool { return false })
	for _, kind := range []Kind{KindBar, KindPie, KindHistogram} {
		_, err := Render(empty, "Age", kind)
		assert.Equal(t, errors.CodeEmptyColumn, errors.GetCode(err), kind)
	}
}

func TestRenderPNG(t *testing.T) {
	for _, kind := range []Kind{KindBar, KindPie, KindHistogram} {
		spec, err := Render(table(), "Age", kind)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, RenderPNG(&buf, spec), kind)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), kind)
	}

	assert.Error(t, RenderPNG(&bytes.Buffer{}, &ChartSpec{Kind: KindBar}))
}
