package ports

import (
	"context"

	"heartpanel/domain/panel"
)

// SourceRequest identifies one raw source table
type SourceRequest struct {
	Name  string
	Path  string
	Sheet string // spreadsheet sheet; empty selects the first sheet
}

// SourceReader loads a raw source into a typed table.
// Implementations must fail when the file cannot be read or has no data rows.
type SourceReader interface {
	ReadSource(ctx context.Context, req SourceRequest) (*panel.Table, error)
}
