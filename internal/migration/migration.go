package migration

import (
	"context"

	"heartpanel/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the panel schema. Statements are portable between
// postgres and sqlite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createPanelRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create panel_runs table")
	}

	if err := r.createPanelCellsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create panel_cells table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createPanelRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS panel_runs (
			run_id VARCHAR(64) PRIMARY KEY,
			columns_json TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			created_at BIGINT NOT NULL
		)
	`)
	return err
}

// panel_cells holds the panel in long form, one row per non-null cell.
func (r *MigrationRunner) createPanelCellsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS panel_cells (
			run_id VARCHAR(64) NOT NULL REFERENCES panel_runs(run_id) ON DELETE CASCADE,
			row_index INTEGER NOT NULL,
			entity TEXT NOT NULL,
			year INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			num_value DOUBLE PRECISION,
			text_value TEXT,
			PRIMARY KEY (run_id, row_index, column_name)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_panel_runs_created_at ON panel_runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_panel_cells_entity_year ON panel_cells(run_id, entity, year)",
		"CREATE INDEX IF NOT EXISTS idx_panel_cells_column ON panel_cells(run_id, column_name)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}
