package excel

import (
	"encoding/csv"
	"fmt"
	"io"

	"csvdash/domain/dataset"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// WriteCSV writes the header and every row in column order, without an
// index column. Missing values are written as empty fields.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, v := range row.Values {
			record[i] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.Index, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the view to a single-sheet workbook. Numeric cells are
// stored as numbers.
func WriteXLSX(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(ds.Columns))
	for i, name := range ds.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range ds.Rows {
		cells := make([]interface{}, len(row.Values))
		for i, v := range row.Values {
			cells[i] = v.Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", row.Index, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
