package excel

// ReaderConfig controls how uploaded tables are parsed
type ReaderConfig struct {
	// MissingTokens are cell texts read as missing values.
	MissingTokens []string `json:"missing_tokens"`
	// Sheet names the workbook sheet to read; empty means the first sheet.
	Sheet string `json:"sheet"`
	// Comma is the CSV field delimiter.
	Comma rune `json:"comma"`
}

// DefaultReaderConfig mirrors the usual dataframe defaults for missing markers
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MissingTokens: []string{
			"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
			"null", "NULL", "None", "<NA>", "#N/A", "#NA",
		},
		Comma: ',',
	}
}

func (c ReaderConfig) missingSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.MissingTokens))
	for _, tok := range c.MissingTokens {
		set[tok] = struct{}{}
	}
	return set
}
