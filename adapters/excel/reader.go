package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader turns uploaded CSV and Excel files into datasets
type DataReader struct {
	config  ReaderConfig
	missing map[string]struct{}
}

// NewDataReader creates a reader with the given parsing rules
func NewDataReader(config ReaderConfig) *DataReader {
	if config.Comma == 0 {
		config.Comma = ','
	}
	return &DataReader{config: config, missing: config.missingSet()}
}

// IsWorkbook reports whether filename names an Excel workbook.
func IsWorkbook(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Read parses src as a workbook or CSV depending on the file extension
func (r *DataReader) Read(src io.Reader, filename string) (*dataset.Dataset, error) {
	if IsWorkbook(filename) {
		return r.ReadXLSX(src, filename)
	}
	return r.ReadCSV(src, filename)
}

// ReadCSV parses a CSV stream with a required header row
func (r *DataReader) ReadCSV(src io.Reader, name string) (*dataset.Dataset, error) {
	start := time.Now()
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.ParseError(fmt.Errorf("read upload: %w", err))
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = r.config.Comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError(err)
	}
	log.Printf("[DataReader] CSV %s read in %.2fms (%d rows)", name, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	data, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	return r.Build(name, data), nil
}

// ReadXLSX parses the configured (or first) sheet of a workbook
func (r *DataReader) ReadXLSX(src io.Reader, name string) (*dataset.Dataset, error) {
	start := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.ParseError(fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.ParseError(fmt.Errorf("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.ParseError(fmt.Errorf("read sheet %s: %w", sheet, err))
	}
	log.Printf("[DataReader] Sheet %s of %s read in %.2fms (%d rows)", sheet, name, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	data, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	return r.Build(name, data), nil
}

// processRows splits the header from the data rows and checks row widths
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	if len(rows) == 0 {
		return nil, errors.ParseError(fmt.Errorf("file must have a header row"))
	}

	headers := normalizeHeaders(rows[0])

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) > len(headers) {
			return nil, errors.ParseError(fmt.Errorf("row %d: expected %d fields, saw %d", i+1, len(headers), len(row)))
		}
		cells := make(RawRowData, len(headers))
		copy(cells, row)
		// Short rows are padded; the padding reads as missing.
		dataRows = append(dataRows, cells)
	}

	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

// normalizeHeaders trims names, fills blanks and de-duplicates repeats
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		}
		seen[name] = 0
		headers[i] = name
	}
	return headers
}

// Build infers column kinds and converts the raw grid into a dataset
func (r *DataReader) Build(name string, data *ExcelData) *dataset.Dataset {
	kinds := r.InferColumnKinds(data)
	columns := make([]dataset.Column, len(data.Headers))
	for i, h := range data.Headers {
		columns[i] = dataset.Column{Name: h, Kind: kinds[i]}
	}

	rows := make([]dataset.Row, len(data.Rows))
	for i, raw := range data.Rows {
		values := make([]dataset.Value, len(columns))
		for c, cell := range raw {
			switch {
			case r.isMissing(cell):
				values[c] = dataset.Missing()
			case kinds[c] == dataset.KindNumeric:
				f, _ := parseNumber(cell)
				values[c] = dataset.Number(f, cell)
			default:
				values[c] = dataset.Text(cell)
			}
		}
		rows[i] = dataset.Row{Index: i, Values: values}
	}

	log.Printf("[DataReader] %s processed (%d columns, %d rows)", name, len(columns), len(rows))
	return dataset.New(name, columns, rows)
}

// InferColumnKinds marks a column numeric when it has at least one value and
// every non-missing value parses as a finite number.
func (r *DataReader) InferColumnKinds(data *ExcelData) []dataset.ColumnKind {
	kinds := make([]dataset.ColumnKind, len(data.Headers))
	for c := range data.Headers {
		seen := 0
		numeric := true
		for _, row := range data.Rows {
			cell := row[c]
			if r.isMissing(cell) {
				continue
			}
			seen++
			if _, ok := parseNumber(cell); !ok {
				numeric = false
				break
			}
		}
		if numeric && seen > 0 {
			kinds[c] = dataset.KindNumeric
		} else {
			kinds[c] = dataset.KindText
		}
	}
	return kinds
}

func (r *DataReader) isMissing(cell string) bool {
	_, ok := r.missing[cell]
	return ok
}

func parseNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || strings.ContainsAny(t, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
