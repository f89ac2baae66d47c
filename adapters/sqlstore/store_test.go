package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal/errors"
)

func openMemory(t *testing.T) *PanelStore {
	t.Helper()
	db, err := Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPanelStore(db)
}

func samplePanel(value float64) *panel.Table {
	t := panel.NewTable("panel", panel.ColEntity, panel.ColYear, panel.ColCode, "valdeathsrateboth", panel.ColRegion)
	t.Append(panel.Row{
		panel.ColEntity:     panel.Text("Chile"),
		panel.ColYear:       panel.Number(2019),
		panel.ColCode:       panel.Text("CHL"),
		"valdeathsrateboth": panel.Number(value),
		panel.ColRegion:     panel.Text("Americas"),
	})
	t.Append(panel.Row{
		panel.ColEntity: panel.Text("Uruguay"),
		panel.ColYear:   panel.Number(2019),
		panel.ColCode:   panel.Text("URY"),
	})
	return t
}

func TestPanelStore_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	runID := core.NewRunID()
	require.NoError(t, s.SavePanel(ctx, runID, samplePanel(201.5)))

	got, err := s.LoadPanel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{panel.ColEntity, panel.ColYear, panel.ColCode, "valdeathsrateboth", panel.ColRegion}, got.Columns)
	require.Equal(t, 2, got.Len())

	v, ok := got.Rows[0].Get("valdeathsrateboth").Float()
	require.True(t, ok)
	assert.Equal(t, 201.5, v)
	assert.Equal(t, "Americas", got.Rows[0].Get(panel.ColRegion).String())
	assert.True(t, got.Rows[1].Get("valdeathsrateboth").IsNull())
	assert.True(t, got.Rows[1].Get(panel.ColRegion).IsNull())
	assert.Equal(t, "URY", got.Rows[1].Get(panel.ColCode).String())
}

func TestPanelStore_LatestRunWins(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	first, second := core.NewRunID(), core.NewRunID()
	require.NoError(t, s.SavePanel(ctx, first, samplePanel(1)))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.SavePanel(ctx, second, samplePanel(2)))

	latest, err := s.LoadPanel(ctx)
	require.NoError(t, err)
	v, _ := latest.Rows[0].Get("valdeathsrateboth").Float()
	assert.Equal(t, 2.0, v)

	old, err := s.LoadRun(ctx, first)
	require.NoError(t, err)
	v, _ = old.Rows[0].Get("valdeathsrateboth").Float()
	assert.Equal(t, 1.0, v)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.RunID{second, first}, runs)
}

func TestPanelStore_Empty(t *testing.T) {
	s := openMemory(t)

	_, err := s.LoadPanel(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsNoData(err))
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))

	_, err = s.LoadRun(context.Background(), core.NewRunID())
	assert.True(t, core.IsNoData(err))
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))
}

func TestPanelStore_DuplicateRunRejected(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	runID := core.NewRunID()

	require.NoError(t, s.SavePanel(ctx, runID, samplePanel(1)))
	err := s.SavePanel(ctx, runID, samplePanel(2))
	require.Error(t, err)

	got, err := s.LoadPanel(ctx)
	require.NoError(t, err)
	v, _ := got.Rows[0].Get("valdeathsrateboth").Float()
	assert.Equal(t, 1.0, v, "failed save leaves the committed run intact")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	assert.Equal(t, errors.CodeStorageError, errors.GetCode(err))
}
