package dataset

import (
	"testing"

	"csvdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Dataset {
	return New("people.csv",
		[]Column{{Name: "Name", Kind: KindText}, {Name: "Age", Kind: KindNumeric}},
		[]Row{
			{Index: 0, Values: []Value{Text("Ann"), Number(31, "31")}},
			{Index: 1, Values: []Value{Text("Bob"), Missing()}},
			{Index: 2, Values: []Value{Text("Cid"), Number(45.5, "45.50")}},
		})
}

func TestColumnLookup(t *testing.T) {
	ds := sample()
	assert.Equal(t, []string{"Name", "Age"}, ds.Names())
	assert.True(t, ds.HasColumn("Age"))

	_, err := ds.Column("Salary")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnknownColumn, errors.GetCode(err))
}

func TestRecordAndValues(t *testing.T) {
	ds := sample()
	rec := ds.Record(2)
	assert.Equal(t, "Cid", rec["Name"].String())
	assert.Equal(t, "45.50", rec["Age"].String())
	f, ok := rec["Age"].Float()
	assert.True(t, ok)
	assert.Equal(t, 45.5, f)

	vals, err := ds.Values("Age")
	require.NoError(t, err)
	assert.True(t, vals[1].IsMissing())
	assert.Nil(t, vals[1].Interface())
}

func TestWhereKeepsIdentity(t *testing.T) {
	ds := sample()
	view := ds.Where(func(r Row) bool { return r.Index != 1 })
	require.Equal(t, 2, view.Len())
	assert.Equal(t, ds.ID, view.ID)
	assert.Equal(t, 0, view.Rows[0].Index)
	assert.Equal(t, 2, view.Rows[1].Index)
	assert.Equal(t, 3, ds.Len(), "source must not change")
}

func TestWithColumnAppendsByIndex(t *testing.T) {
	ds := sample().Where(func(r Row) bool { return r.Index > 0 })
	out := ds.WithColumn(Column{Name: "Note", Kind: KindText}, map[int]Value{2: Text("hi")})

	assert.Equal(t, []string{"Name", "Age", "Note"}, out.Names())
	assert.True(t, out.Record(0)["Note"].IsMissing())
	assert.Equal(t, "hi", out.Record(1)["Note"].String())
	assert.Len(t, ds.Columns, 2)

	replaced := out.WithColumn(Column{Name: "Note", Kind: KindText}, map[int]Value{1: Text("again")})
	assert.Equal(t, []string{"Name", "Age", "Note"}, replaced.Names())
	assert.Equal(t, "again", replaced.Record(0)["Note"].String())
}

func TestNumberDefaultText(t *testing.T) {
	assert.Equal(t, "2.5", Number(2.5, "").String())
	assert.True(t, Number(3, "3.0").Equal(Number(3, "")))
	assert.False(t, Text("3").Equal(Number(3, "3")))
}
