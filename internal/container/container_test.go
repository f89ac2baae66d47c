package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpanel/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Data.PanelPath = filepath.Join(dir, "panel.csv")
	cfg.Data.ReportPath = filepath.Join(dir, "report.md")
	return cfg
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestContainer_FileOnly(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(context.Background()))

	assert.Nil(t, c.DB)
	assert.Same(t, c.Files, c.Repository())
	assert.Len(t, c.Repositories(), 1)
	assert.Same(t, c.QueryStore(), c.QueryStore())
	assert.NotNil(t, c.Server())
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestContainer_WithSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = config.StoreConfig{Driver: "sqlite3", DSN: "file::memory:"}

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(context.Background()))
	defer c.Shutdown(context.Background())

	require.NotNil(t, c.SQL)
	assert.Same(t, c.SQL, c.Repository())
	assert.Len(t, c.Repositories(), 2)
}
