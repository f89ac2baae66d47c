package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpanel/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Cache.BaseTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.FilterTTL)
	assert.Greater(t, cfg.Cache.FilterSize, cfg.Cache.BaseSize)
	assert.Equal(t, 3, cfg.Impute.Span)
	assert.False(t, cfg.Store.SQLEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HEARTPANEL_CACHE_FILTER_TTL", "90s")
	t.Setenv("HEARTPANEL_DATA_PANEL_PATH", "/tmp/panel.csv")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Cache.FilterTTL)
	assert.Equal(t, "/tmp/panel.csv", cfg.Data.PanelPath)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartpanel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("impute:\n  workers: 2\nstore:\n  driver: sqlite3\n  dsn: file::memory:\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Impute.Workers)
	assert.True(t, cfg.Store.SQLEnabled())
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Store = StoreConfig{Driver: "mysql", DSN: "x"}
	err = bad.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	bad = *cfg
	bad.Impute.Workers = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Store = StoreConfig{Driver: "postgres"}
	assert.Error(t, bad.Validate())
}
