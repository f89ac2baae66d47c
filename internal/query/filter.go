package query

import (
	"strings"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal/cache"
)

// All is the sentinel meaning "no constraint"
const All = "All"

// FilterParams are the recognized filter parameters. Zero values impose no constraint.
type FilterParams struct {
	Year    int      `json:"year,omitempty"`
	Regions []string `json:"regions,omitempty"`
	Income  string   `json:"income,omitempty"`
	Gender  string   `json:"gender,omitempty"` // demographic slice; selects the metric column
	Metric  string   `json:"metric,omitempty"`
	Age     string   `json:"age,omitempty"`
	Cause   string   `json:"cause,omitempty"`
}

func containsAll(values []string) bool {
	for _, v := range values {
		if v == All {
			return true
		}
	}
	return false
}

// Normalize canonicalizes sentinels and blanks so equivalent parameter sets compare equal.
func (p FilterParams) Normalize() FilterParams {
	out := FilterParams{
		Year:   p.Year,
		Income: strings.TrimSpace(p.Income),
		Gender: strings.TrimSpace(p.Gender),
		Metric: strings.TrimSpace(p.Metric),
		Age:    strings.TrimSpace(p.Age),
		Cause:  strings.TrimSpace(p.Cause),
	}
	for _, r := range p.Regions {
		if r = strings.TrimSpace(r); r != "" {
			out.Regions = append(out.Regions, r)
		}
	}
	if containsAll(out.Regions) {
		out.Regions = nil
	}
	if out.Income == All {
		out.Income = ""
	}
	if out.Gender == "" {
		out.Gender = "Both"
	}
	return out
}

// Validate rejects parameter values that can never match
func (p FilterParams) Validate() error {
	if p.Year < 0 {
		return core.NewInvalidFilterError("year", "must not be negative")
	}
	return nil
}

// Key is the cache key for the normalized parameters
func (p FilterParams) Key() string {
	n := p.Normalize()
	return cache.MakeKey("filter", n.Year, n.Regions, n.Income, n.Gender, n.Metric, n.Age, n.Cause)
}

// Result is a fully materialized query result. Callers must not mutate it.
type Result struct {
	Columns      []string       `json:"columns"`
	Records      []panel.Record `json:"records"`
	MetricColumn string         `json:"metric_column,omitempty"`
}

// Len returns the record count
func (r *Result) Len() int { return len(r.Records) }

func emptyResult() *Result {
	return &Result{Columns: []string{}, Records: []panel.Record{}}
}

// match reports whether a row satisfies every supplied constraint of normalized params
func match(r panel.Row, p FilterParams, regions map[string]bool) bool {
	if p.Year != 0 {
		if y, ok := r.Get(panel.ColYear).Float(); !ok || int(y) != p.Year {
			return false
		}
	}
	if len(regions) > 0 && !regions[r.Get(panel.ColRegion).String()] {
		return false
	}
	if p.Income != "" && r.Get(panel.ColIncome).String() != p.Income {
		return false
	}
	if p.Age != "" && r.Get(panel.ColAge).String() != p.Age {
		return false
	}
	if p.Cause != "" && r.Get(panel.ColCause).String() != p.Cause {
		return false
	}
	return true
}

// filterRows applies normalized params. metricCol, when set, must be non-null.
func filterRows(t *panel.Table, p FilterParams, metricCol string) []panel.Row {
	var regions map[string]bool
	if len(p.Regions) > 0 {
		regions = make(map[string]bool, len(p.Regions))
		for _, r := range p.Regions {
			regions[r] = true
		}
	}
	var out []panel.Row
	for _, r := range t.Rows {
		if !match(r, p, regions) {
			continue
		}
		if metricCol != "" && r.Get(metricCol).IsNull() {
			continue
		}
		out = append(out, r)
	}
	return out
}
