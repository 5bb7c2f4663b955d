package dataset

import (
	"csvdash/domain/core"
	"csvdash/internal/errors"
)

// ColumnKind is the inferred type of a whole column.
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// Column describes one named column.
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Row is one record. Index is the row's position in the loaded file and
// stays the same in every derived view.
type Row struct {
	Index  int
	Values []Value
}

// Record is a row addressed by column name.
type Record map[string]Value

// Dataset is an immutable table. Filters return new datasets sharing the
// source's ID and columns; rows are never modified after load.
type Dataset struct {
	ID      core.DatasetID
	Name    string
	Columns []Column
	Rows    []Row
}

// New builds a dataset with a fresh ID.
func New(name string, columns []Column, rows []Row) *Dataset {
	return &Dataset{
		ID:      core.NewDatasetID(),
		Name:    name,
		Columns: columns,
		Rows:    rows,
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, error) {
	for i, c := range d.Columns {
		if c.Name == name {
			return i, nil
		}
	}
	return -1, errors.UnknownColumn(name)
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, error) {
	i, err := d.ColumnIndex(name)
	if err != nil {
		return Column{}, err
	}
	return d.Columns[i], nil
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, err := d.ColumnIndex(name)
	return err == nil
}

// Values returns the named column's cells in row order.
func (d *Dataset) Values(name string) ([]Value, error) {
	i, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(d.Rows))
	for r, row := range d.Rows {
		out[r] = row.Values[i]
	}
	return out, nil
}

// Record returns row r keyed by column name.
func (d *Dataset) Record(r int) Record {
	rec := make(Record, len(d.Columns))
	for i, c := range d.Columns {
		rec[c.Name] = d.Rows[r].Values[i]
	}
	return rec
}

// Where returns the view holding the rows keep accepts, in order.
func (d *Dataset) Where(keep func(Row) bool) *Dataset {
	rows := make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return d.withRows(rows)
}

// WithColumn returns a view with col appended. values is keyed by row Index;
// rows without an entry get a missing value. An existing column with the
// same name is replaced.
func (d *Dataset) WithColumn(col Column, values map[int]Value) *Dataset {
	columns := make([]Column, 0, len(d.Columns)+1)
	skip := -1
	for i, c := range d.Columns {
		if c.Name == col.Name {
			skip = i
			continue
		}
		columns = append(columns, c)
	}
	columns = append(columns, col)

	rows := make([]Row, len(d.Rows))
	for r, row := range d.Rows {
		vals := make([]Value, 0, len(columns))
		for i, v := range row.Values {
			if i != skip {
				vals = append(vals, v)
			}
		}
		vals = append(vals, values[row.Index])
		rows[r] = Row{Index: row.Index, Values: vals}
	}

	return &Dataset{ID: d.ID, Name: d.Name, Columns: columns, Rows: rows}
}

func (d *Dataset) withRows(rows []Row) *Dataset {
	return &Dataset{ID: d.ID, Name: d.Name, Columns: d.Columns, Rows: rows}
}
