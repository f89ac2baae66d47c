package excel

// RawRowData represents a row of raw sheet data as header -> cell text
type RawRowData map[string]string

// SheetData represents a complete raw source before typing
type SheetData struct {
	Headers []string     // Column headers, trimmed
	Rows    []RawRowData // Data rows
}
