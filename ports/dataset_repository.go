package ports

import (
	"context"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
)

// PanelRepository persists the canonical panel produced by a pipeline run
// and loads it back for the query layer.
type PanelRepository interface {
	SavePanel(ctx context.Context, runID core.RunID, t *panel.Table) error
	// LoadPanel returns the most recently saved panel
	LoadPanel(ctx context.Context) (*panel.Table, error)
}
