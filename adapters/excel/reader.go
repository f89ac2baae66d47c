package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal"
)

// DataReader handles reading spreadsheet and delimited files
type DataReader struct {
	filePath string
	fileType string // "xlsx", "csv" or "tsv"
	config   ReaderConfig
	logger   *internal.Logger
}

// NewDataReader creates a reader, inferring the file type from the extension
func NewDataReader(filePath string, config ReaderConfig) *DataReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm", ".xls":
		fileType = "xlsx"
	case ".tsv", ".tab":
		fileType = "tsv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		config:   config,
		logger:   internal.DefaultLogger,
	}
}

// ReadData reads the file into raw header/row form
func (r *DataReader) ReadData() (*SheetData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readDelimitedRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] file read", "path", r.filePath, "type", r.fileType,
		"rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s needs a header row and at least one data row", core.ErrEmptySource, r.filePath)
	}
	return r.processRows(rows)
}

// readExcelRows reads the configured sheet, or the first one
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// readDelimitedRows reads CSV or TSV content
func (r *DataReader) readDelimitedRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if r.fileType == "tsv" {
		reader.Comma = '\t'
	}
	if r.config.Delimiter != 0 {
		reader.Comma = r.config.Delimiter
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", r.fileType, err)
	}
	return rows, nil
}

// processRows converts raw string rows into SheetData. Short rows are padded
// with empty cells; cells beyond the header are ignored. Columns with a blank
// header are skipped and a repeated header is an error.
func (r *DataReader) processRows(rows [][]string) (*SheetData, error) {
	var headers []string
	var positions []int
	seen := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		h := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if h == "" {
			continue
		}
		if prev, ok := seen[h]; ok {
			return nil, fmt.Errorf("%w: %s has %q in columns %d and %d", core.ErrDuplicateColumn, r.filePath, h, prev+1, i+1)
		}
		seen[h] = i
		headers = append(headers, h)
		positions = append(positions, i)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for k, h := range headers {
			if j := positions[k]; j < len(row) {
				rowData[h] = strings.TrimSpace(row[j])
			} else {
				rowData[h] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}
	return &SheetData{Headers: headers, Rows: dataRows}, nil
}

// InferColumnKinds classifies each column as numeric when every non-null cell
// parses as a number, text otherwise. Columns with no values are KindNull.
func InferColumnKinds(data *SheetData) map[string]panel.Kind {
	kinds := make(map[string]panel.Kind, len(data.Headers))
	for _, h := range data.Headers {
		kind := panel.KindNull
		for _, row := range data.Rows {
			switch panel.Parse(row[h]).Kind() {
			case panel.KindText:
				kind = panel.KindText
			case panel.KindNumber:
				if kind == panel.KindNull {
					kind = panel.KindNumber
				}
			}
			if kind == panel.KindText {
				break
			}
		}
		kinds[h] = kind
	}
	return kinds
}

// ToTable types the raw data column by column. A column with any text cell
// keeps every cell as text so codes like "004" are not coerced.
func ToTable(name string, data *SheetData) *panel.Table {
	kinds := InferColumnKinds(data)
	t := panel.NewTable(name, data.Headers...)
	for _, raw := range data.Rows {
		row := make(panel.Row, len(data.Headers))
		for _, h := range data.Headers {
			v := panel.Parse(raw[h])
			if kinds[h] == panel.KindText && !v.IsNull() {
				v = panel.Text(strings.TrimSpace(raw[h]))
			}
			row[h] = v
		}
		t.Append(row)
	}
	return t
}
