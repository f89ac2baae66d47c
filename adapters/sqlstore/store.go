// Package sqlstore persists the canonical panel to a SQL database in long form
// and loads the latest run back.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal"
	"heartpanel/internal/errors"
	"heartpanel/internal/migration"
	"heartpanel/ports"
)

// Open connects, pings and migrates. driver is "postgres" or "sqlite3".
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.StorageError("failed to open database", err)
	}
	if driver == "sqlite3" {
		// one connection keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.StorageError("failed to ping database", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// PanelStore implements ports.PanelRepository on sqlx
type PanelStore struct {
	db     *sqlx.DB
	logger *internal.Logger
}

var _ ports.PanelRepository = (*PanelStore)(nil)

// NewPanelStore creates a store over a migrated database
func NewPanelStore(db *sqlx.DB) *PanelStore {
	return &PanelStore{db: db, logger: internal.DefaultLogger}
}

type runRecord struct {
	RunID       string `db:"run_id"`
	ColumnsJSON string `db:"columns_json"`
	RowCount    int    `db:"row_count"`
	CreatedAt   int64  `db:"created_at"`
}

type cellRecord struct {
	RowIndex   int             `db:"row_index"`
	ColumnName string          `db:"column_name"`
	NumValue   sql.NullFloat64 `db:"num_value"`
	TextValue  sql.NullString  `db:"text_value"`
}

// SavePanel writes every non-null cell of t under runID in one transaction
func (s *PanelStore) SavePanel(ctx context.Context, runID core.RunID, t *panel.Table) error {
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("failed to marshal columns: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO panel_runs (run_id, columns_json, row_count, created_at) VALUES (?, ?, ?, ?)`),
		runID.String(), string(cols), t.Len(), time.Now().UnixNano())
	if err != nil {
		return errors.StorageError("failed to insert run", err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO panel_cells
		(run_id, row_index, entity, year, column_name, num_value, text_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return errors.StorageError("failed to prepare cell insert", err)
	}
	defer stmt.Close()

	cells := 0
	for i, r := range t.Rows {
		entity := r.Get(panel.ColEntity).String()
		year, _ := r.Get(panel.ColYear).Float()
		for _, c := range t.Columns {
			v := r.Get(c)
			if v.IsNull() {
				continue
			}
			var num sql.NullFloat64
			var text sql.NullString
			if f, ok := v.Float(); ok {
				num = sql.NullFloat64{Float64: f, Valid: true}
			} else {
				text = sql.NullString{String: v.String(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, runID.String(), i, entity, int(year), c, num, text); err != nil {
				return errors.StorageError(fmt.Sprintf("failed to insert cell %s row %d", c, i), err)
			}
			cells++
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StorageError("failed to commit panel", err)
	}
	s.logger.Info("[SQLStore] panel saved", "run_id", runID, "rows", t.Len(), "cells", cells)
	return nil
}

// LoadPanel reconstructs the most recently saved run
func (s *PanelStore) LoadPanel(ctx context.Context) (*panel.Table, error) {
	var rec runRecord
	err := s.db.GetContext(ctx, &rec, `SELECT run_id, columns_json, row_count, created_at
		FROM panel_runs ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NoData("no panel has been saved", core.ErrNoData)
		}
		return nil, errors.StorageError("failed to query latest run", err)
	}
	return s.load(ctx, rec)
}

// LoadRun reconstructs a specific run
func (s *PanelStore) LoadRun(ctx context.Context, runID core.RunID) (*panel.Table, error) {
	var rec runRecord
	err := s.db.GetContext(ctx, &rec, s.db.Rebind(`SELECT run_id, columns_json, row_count, created_at
		FROM panel_runs WHERE run_id = ?`), runID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NoData(fmt.Sprintf("run %s not found", runID), core.ErrNoData)
		}
		return nil, errors.StorageError("failed to query run", err)
	}
	return s.load(ctx, rec)
}

func (s *PanelStore) load(ctx context.Context, rec runRecord) (*panel.Table, error) {
	var cols []string
	if err := json.Unmarshal([]byte(rec.ColumnsJSON), &cols); err != nil {
		return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
	}

	var cells []cellRecord
	err := s.db.SelectContext(ctx, &cells, s.db.Rebind(`SELECT row_index, column_name, num_value, text_value
		FROM panel_cells WHERE run_id = ? ORDER BY row_index`), rec.RunID)
	if err != nil {
		return nil, errors.StorageError("failed to query cells", err)
	}

	t := panel.NewTable("panel", cols...)
	t.Rows = make([]panel.Row, rec.RowCount)
	for i := range t.Rows {
		t.Rows[i] = make(panel.Row, len(cols))
	}
	for _, c := range cells {
		if c.RowIndex < 0 || c.RowIndex >= rec.RowCount {
			return nil, fmt.Errorf("cell %s has row index %d outside run of %d rows", c.ColumnName, c.RowIndex, rec.RowCount)
		}
		switch {
		case c.NumValue.Valid:
			t.Rows[c.RowIndex][c.ColumnName] = panel.Number(c.NumValue.Float64)
		case c.TextValue.Valid:
			t.Rows[c.RowIndex][c.ColumnName] = panel.Text(c.TextValue.String)
		}
	}

	s.logger.Info("[SQLStore] panel loaded", "run_id", rec.RunID, "rows", t.Len(), "cells", len(cells))
	return t, nil
}

// Runs lists saved run ids, newest first
func (s *PanelStore) Runs(ctx context.Context) ([]core.RunID, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT run_id FROM panel_runs ORDER BY created_at DESC`); err != nil {
		return nil, errors.StorageError("failed to list runs", err)
	}
	out := make([]core.RunID, len(ids))
	for i, id := range ids {
		out[i] = core.RunID(id)
	}
	return out, nil
}
