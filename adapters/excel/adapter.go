package excel

import (
	"context"

	"heartpanel/domain/panel"
	"heartpanel/internal/errors"
	"heartpanel/ports"
)

// SourceAdapter implements ports.SourceReader for CSV, TSV and XLSX files
type SourceAdapter struct{}

// NewSourceAdapter creates a file-backed source reader
func NewSourceAdapter() *SourceAdapter {
	return &SourceAdapter{}
}

var _ ports.SourceReader = (*SourceAdapter)(nil)

// ReadSource reads and types one source file
func (a *SourceAdapter) ReadSource(ctx context.Context, req ports.SourceRequest) (*panel.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := DefaultReaderConfig()
	cfg.Sheet = req.Sheet

	data, err := NewDataReader(req.Path, cfg).ReadData()
	if err != nil {
		return nil, errors.SourceInvalid(req.Name, err)
	}
	name := req.Name
	if name == "" {
		name = req.Path
	}
	return ToTable(name, data), nil
}
