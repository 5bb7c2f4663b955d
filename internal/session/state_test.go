package session

import (
	"testing"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *dataset.Dataset {
	return dataset.New("s.csv",
		[]dataset.Column{
			{Name: "Name", Kind: dataset.KindText},
			{Name: "Score", Kind: dataset.KindNumeric},
		},
		[]dataset.Row{
			{Index: 0, Values: []dataset.Value{dataset.Text("Ann"), dataset.Number(10, "")}},
			{Index: 1, Values: []dataset.Value{dataset.Text("Bob"), dataset.Number(20, "")}},
			{Index: 2, Values: []dataset.Value{dataset.Text("Annie"), dataset.Number(30, "")}},
			{Index: 3, Values: []dataset.Value{dataset.Text("Cid"), dataset.Missing()}},
		})
}

func rowIndexes(ds *dataset.Dataset) []int {
	out := make([]int, ds.Len())
	for i, r := range ds.Rows {
		out[i] = r.Index
	}
	return out
}

func TestEmptyState(t *testing.T) {
	s := New()
	assert.False(t, s.Loaded())
	_, err := s.View()
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(s.Select("Name")))
}

func TestLoadSelectsFirstColumn(t *testing.T) {
	s := New()
	s.Load(sample())
	assert.True(t, s.Loaded())
	assert.Equal(t, "Name", s.Column())

	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, 4, view.Len())
}

func TestRangeThenSearch(t *testing.T) {
	s := New()
	s.Load(sample())
	require.NoError(t, s.Select("Score"))
	require.NoError(t, s.SetRange(15, 30))

	filtered, err := s.Filtered()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rowIndexes(filtered))

	s.SetSearch("3")
	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rowIndexes(view))

	filtered, err = s.Filtered()
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Len(), "search does not narrow the filtered view")
}

func TestSelectResetsRangeAndSearch(t *testing.T) {
	s := New()
	s.Load(sample())
	require.NoError(t, s.Select("Score"))
	require.NoError(t, s.SetRange(15, 30))
	s.SetSearch("2")

	require.NoError(t, s.Select("Name"))
	_, ok := s.Range()
	assert.False(t, ok)
	assert.Empty(t, s.SearchTerm())

	assert.Equal(t, errors.CodeUnknownColumn, errors.GetCode(s.Select("Nope")))
	assert.Equal(t, "Name", s.Column())
}

func TestSetRangeRejectsInverted(t *testing.T) {
	s := New()
	s.Load(sample())
	require.NoError(t, s.Select("Score"))

	err := s.SetRange(30, 10)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	_, ok := s.Range()
	assert.False(t, ok)
}

func TestViewAppendsGeneratedColumn(t *testing.T) {
	s := New()
	s.Load(sample())
	s.SetGenerated(map[int]string{0: "Hi Ann", 2: "Hi Annie"})
	s.SetSearch("ann")

	view, err := s.View()
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, rowIndexes(view))

	col, err := view.Column(GeneratedColumn)
	require.NoError(t, err)
	assert.Equal(t, dataset.KindText, col.Kind)
	values, err := view.Values(GeneratedColumn)
	require.NoError(t, err)
	assert.Equal(t, "Hi Ann", values[0].String())
	assert.Equal(t, "Hi Annie", values[1].String())

	src, err := s.Source()
	require.NoError(t, err)
	assert.False(t, src.HasColumn(GeneratedColumn))
}

func TestLoadClearsGenerated(t *testing.T) {
	s := New()
	s.Load(sample())
	s.SetGenerated(map[int]string{0: "x"})
	s.Load(sample())
	assert.Empty(t, s.Generated())
}
