package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal/metrics"
	"heartpanel/internal/query"
)

type stubRepo struct {
	table *panel.Table
	err   error
}

func (s *stubRepo) SavePanel(context.Context, core.RunID, *panel.Table) error { return nil }

func (s *stubRepo) LoadPanel(context.Context) (*panel.Table, error) { return s.table, s.err }

func testPanel() *panel.Table {
	t := panel.NewTable("panel", panel.ColEntity, panel.ColCode, panel.ColYear, panel.ColRegion,
		panel.ColIncome, panel.ColAge, panel.ColCause, "valdeathsrateboth")
	add := func(entity, code, region string, year, rate float64) {
		t.Append(panel.Row{
			panel.ColEntity:     panel.Text(entity),
			panel.ColCode:       panel.Text(code),
			panel.ColYear:       panel.Number(year),
			panel.ColRegion:     panel.Text(region),
			panel.ColIncome:     panel.Text("High income"),
			panel.ColAge:        panel.Text("Age-standardized"),
			panel.ColCause:      panel.Text("Cardiovascular diseases"),
			"valdeathsrateboth": panel.Number(rate),
		})
	}
	add("Uruguay", "URY", "Americas", 2019, 250)
	add("Chile", "CHL", "Americas", 2019, 200)
	add("France", "FRA", "Europe", 2019, 120)
	add("Uruguay", "URY", "Americas", 2018, 255)
	return t
}

func newTestServer(t *testing.T, repo *stubRepo) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts := query.DefaultOptions()
	opts.Metrics = metrics.New(reg)
	report := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(report, []byte("# Imputation Report\n\n- **Rows:** 4\n"), 0o644))
	return NewServer(query.NewStore(repo, nil, opts), Config{
		Port:           "0",
		AllowedOrigins: []string{"http://localhost:5173"},
		ReportPath:     report,
		Gatherer:       reg,
	}), reg
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHandleFilter(t *testing.T) {
	s, _ := newTestServer(t, &stubRepo{table: testPanel()})

	rec := get(t, s, "/api/filter?year=2019&regions=Americas&income=All&gender=Both&metric=Death+Rate")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Records      []map[string]any `json:"records"`
		MetricColumn string           `json:"metric_column"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "valdeathsrateboth", body.MetricColumn)
	require.Len(t, body.Records, 2)
	for _, r := range body.Records {
		assert.Equal(t, float64(2019), r["Year"])
		assert.Equal(t, "Americas", r["region"])
	}
}

func TestHandleFilter_Errors(t *testing.T) {
	s, _ := newTestServer(t, &stubRepo{table: testPanel()})

	rec := get(t, s, "/api/filter?metric=Heart+Rate")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no data available"}`, rec.Body.String())

	rec = get(t, s, "/api/filter?year=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/api/filter?year=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	broken, _ := newTestServer(t, &stubRepo{err: errors.New("disk gone")})
	rec = get(t, broken, "/api/filter?year=2019")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestHandleViews(t *testing.T) {
	s, _ := newTestServer(t, &stubRepo{table: testPanel()})

	rec := get(t, s, "/api/views/worldmap?year=2019&metric=Death+Rate")
	require.Equal(t, http.StatusOK, rec.Code)
	var body query.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Records, 3)

	rec = get(t, s, "/api/views/sankey?regions=Americas&metric=Heart+Rate")
	require.Equal(t, http.StatusOK, rec.Code, "views answer an unknown metric with no records")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Records)

	rec = get(t, s, "/api/views/trends?metric=Death+Rate")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"cause", "age", "Year", "valdeathsrateboth"}, body.Columns)
	assert.Len(t, body.Records, 4)
	assert.Contains(t, rec.Body.String(), `"Year":2018`)

	rec = get(t, s, "/api/views/pie")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleIndexAndCountries(t *testing.T) {
	s, _ := newTestServer(t, &stubRepo{table: testPanel()})

	rec := get(t, s, "/api/index")
	require.Equal(t, http.StatusOK, rec.Code)
	var ix query.Index
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ix))
	assert.Equal(t, []string{"Americas", "Europe"}, ix.Regions)
	assert.Equal(t, 2018, ix.MinYear)

	rec = get(t, s, "/api/countries?regions=Americas")
	assert.JSONEq(t, `{"countries":["Chile","Uruguay"]}`, rec.Body.String())

	rec = get(t, s, "/api/metrics")
	assert.Contains(t, rec.Body.String(), "Death Rate")
}

func TestHandleReportAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, &stubRepo{table: testPanel()})

	rec := get(t, s, "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "Imputation Report")

	get(t, s, "/api/filter?year=2019")
	rec = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "heartpanel_panel_rows 4")

	s.config.ReportPath = ""
	rec = get(t, s, "/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s, "/healthz")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
