package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
)

type memRepo struct {
	table *panel.Table
	loads int32
	err   error
}

func (m *memRepo) SavePanel(_ context.Context, _ core.RunID, t *panel.Table) error {
	m.table = t
	return nil
}

func (m *memRepo) LoadPanel(context.Context) (*panel.Table, error) {
	atomic.AddInt32(&m.loads, 1)
	if m.err != nil {
		return nil, m.err
	}
	return m.table, nil
}

type fixtureRow struct {
	entity, code, region, income string
	year                         float64
	age, cause                   string
	deathRate                    any
}

func fixture() *panel.Table {
	cols := []string{
		panel.ColEntity, panel.ColCode, panel.ColYear, panel.ColRegion, panel.ColIncome,
		panel.ColAge, panel.ColCause, "valdeathsrateboth", "valdeathsratefemale", "valdeathsratemale",
		"gdp_pc", "Population", "obesity%", "t_htn_ctrl", "t_high_bp", "pacemaker_1m", "t_htn_diag",
	}
	rows := []fixtureRow{
		{"Uruguay", "URY", "Americas", "High income", 2019, AgeStandardized, "Cardiovascular diseases", 250.0},
		{"Chile", "CHL", "Americas", "High income", 2019, AgeStandardized, "Cardiovascular diseases", 200.0},
		{"Peru", "PER", "Americas", "", 2019, AgeStandardized, "Cardiovascular diseases", nil},
		{"Bolivia", "BOL", "Americas", "Lower middle income", 2019.0, AgeStandardized, "Cardiovascular diseases", 300.0},
		{"France", "FRA", "Europe", "High income", 2019, AgeStandardized, "Cardiovascular diseases", 120.0},
		{"Uruguay", "URY", "Americas", "High income", 2018, AgeStandardized, "Cardiovascular diseases", 255.0},
		{"Japan", "JPN", "", "High income", 2019, AgeStandardized, "Stroke", 90.0},
	}
	t := panel.NewTable("panel", cols...)
	for i, f := range rows {
		r := panel.Row{
			panel.ColEntity: panel.Text(f.entity),
			panel.ColCode:   panel.Text(f.code),
			panel.ColYear:   panel.Number(f.year),
			panel.ColRegion: panel.Text(f.region),
			panel.ColIncome: panel.Text(f.income),
			panel.ColAge:    panel.Text(f.age),
			panel.ColCause:  panel.Text(f.cause),
			"gdp_pc":        panel.Number(10000 + float64(i)),
			"Population":    panel.Number(1e6),
			"obesity%":      panel.Number(20),
			"t_htn_ctrl":    panel.Number(30),
			"t_high_bp":     panel.Number(40),
			"pacemaker_1m":  panel.Number(50),
			"t_htn_diag":    panel.Number(60),
		}
		if v, ok := f.deathRate.(float64); ok {
			r["valdeathsrateboth"] = panel.Number(v)
			r["valdeathsratefemale"] = panel.Number(v - 10)
			r["valdeathsratemale"] = panel.Number(v + 10)
		}
		t.Append(r)
	}
	return t
}

func newStore(repo *memRepo) *Store {
	return NewStore(repo, nil, DefaultOptions())
}

func TestStore_EnsureLoadedOnceUnderConcurrency(t *testing.T) {
	repo := &memRepo{table: fixture()}
	s := newStore(repo)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.EnsureLoaded(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.loads))
}

func TestStore_LoadFailureIsRetried(t *testing.T) {
	repo := &memRepo{err: errors.New("disk gone")}
	s := newStore(repo)

	require.Error(t, s.EnsureLoaded(context.Background()))
	repo.err = nil
	repo.table = fixture()
	require.NoError(t, s.EnsureLoaded(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&repo.loads))
}

func TestStore_DatasetPreparation(t *testing.T) {
	s := newStore(&memRepo{table: fixture()})
	ds, err := s.Dataset(context.Background())
	require.NoError(t, err)

	ix := ds.Index
	assert.Equal(t, []string{"Americas", "Europe"}, ix.Regions)
	assert.Contains(t, ix.Incomes, UnknownIncome)
	assert.Equal(t, 2018, ix.MinYear)
	assert.Equal(t, 2019, ix.MaxYear)
	assert.Equal(t, []string{"Cardiovascular diseases", "Stroke"}, ix.Causes)
	assert.Equal(t, []string{AgeStandardized}, ix.Ages)
	assert.Equal(t, []string{"Bolivia", "Chile", "Peru", "Uruguay"}, ix.RegionCountries["Americas"])

	assert.Equal(t, []string{"Bolivia", "Chile", "France", "Peru", "Uruguay"}, ix.CountriesFor([]string{"Europe", "Americas"}))
	assert.Len(t, ix.CountriesFor([]string{"All"}), 6)
	assert.Empty(t, ix.CountriesFor([]string{"Atlantis"}))
}

func TestStore_QueryScenario(t *testing.T) {
	s := newStore(&memRepo{table: fixture()})

	res, err := s.Filter(context.Background(), FilterParams{
		Year:    2019,
		Regions: []string{"Americas"},
		Income:  "All",
		Gender:  "Both",
		Metric:  "Death Rate",
	})
	require.NoError(t, err)

	assert.Equal(t, "valdeathsrateboth", res.MetricColumn)
	require.Equal(t, 3, res.Len(), "Peru has no death rate")
	incomes := map[any]bool{}
	for _, rec := range res.Records {
		assert.Equal(t, 2019, rec[panel.ColYear])
		assert.Equal(t, "Americas", rec[panel.ColRegion])
		assert.NotNil(t, rec["valdeathsrateboth"])
		incomes[rec[panel.ColIncome]] = true
	}
	assert.Len(t, incomes, 2, "no income filter applied")
}

func TestStore_FilterCachedByNormalizedParams(t *testing.T) {
	s := newStore(&memRepo{table: fixture()})
	ctx := context.Background()

	a, err := s.Filter(ctx, FilterParams{Year: 2019, Regions: []string{"Europe", "Americas"}, Metric: "Death Rate"})
	require.NoError(t, err)
	b, err := s.Filter(ctx, FilterParams{Year: 2019, Regions: []string{"Americas", "Europe"}, Gender: "Both", Metric: "Death Rate"})
	require.NoError(t, err)
	assert.Same(t, a, b)

	all1, err := s.Filter(ctx, FilterParams{Regions: []string{"All"}, Income: "All"})
	require.NoError(t, err)
	all2, err := s.Filter(ctx, FilterParams{})
	require.NoError(t, err)
	assert.Same(t, all1, all2)
	assert.Equal(t, 7, all1.Len())
}

func TestStore_FilterRecomputesAfterTTL(t *testing.T) {
	opts := DefaultOptions()
	opts.FilterTTL = 40 * time.Millisecond
	s := NewStore(&memRepo{table: fixture()}, nil, opts)
	ctx := context.Background()

	p := FilterParams{Year: 2019, Income: "High income"}
	first, err := s.Filter(ctx, p)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	second, err := s.Filter(ctx, p)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Records, second.Records)
}

func TestStore_UnknownMetricIsNoData(t *testing.T) {
	s := newStore(&memRepo{table: fixture()})

	_, err := s.Filter(context.Background(), FilterParams{Year: 2019, Metric: "Heart Rate"})
	assert.True(t, core.IsNoData(err))

	_, err = s.Filter(context.Background(), FilterParams{Year: 2019, Gender: "Other", Metric: "Death Rate"})
	assert.True(t, core.IsNoData(err))

	_, err = s.Filter(context.Background(), FilterParams{Metric: "Prevalence Rate"})
	assert.True(t, core.IsNoData(err), "catalog column absent from this panel")

	_, err = s.Filter(context.Background(), FilterParams{Year: -1})
	assert.ErrorIs(t, err, core.ErrInvalidFilter)
}

func TestStore_EmptyResultIsNotAnError(t *testing.T) {
	s := newStore(&memRepo{table: fixture()})
	res, err := s.Filter(context.Background(), FilterParams{Year: 1900})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.NotNil(t, res.Records)
}
