package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationRunner_Idempotent(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	r := NewRunner()
	ctx := context.Background()
	require.NoError(t, r.Run(ctx, db))
	require.NoError(t, r.Run(ctx, db))
	assert.Equal(t, "1.0.0", r.Version())

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"panel_cells", "panel_runs"}, tables)
}
