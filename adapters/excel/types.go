package excel

// RawRowData is one data row as read, before type inference
type RawRowData []string

// ExcelData is the raw grid of an uploaded CSV or workbook sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
