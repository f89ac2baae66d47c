package query

import (
	"context"
	"strings"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal/cache"
)

// Fixed parameters of the snapshot views
const (
	SnapshotYear    = 2019
	AgeStandardized = "Age-standardized"
)

// RiskColumns are the risk-factor indicators compared against a metric
var RiskColumns = []string{"obesity%", "t_htn_ctrl", "t_high_bp", "pacemaker_1m", "t_htn_diag"}

var geoColumns = []string{panel.ColEntity, panel.ColYear, panel.ColCode, "gdp_pc", panel.ColIncome, "Population", panel.ColRegion, panel.ColCause}

var requiredColumns = []string{panel.ColEntity, panel.ColCode, panel.ColRegion, panel.ColIncome, panel.ColYear, panel.ColCause}

// view caches a projection. "No data" becomes an empty result.
func (s *Store) view(ctx context.Context, key string, build func(context.Context) (*Result, error)) (*Result, error) {
	res, err := s.filters.GetOrCompute(ctx, key, build)
	if core.IsNoData(err) {
		return emptyResult(), nil
	}
	return res, err
}

// project keeps cols (those present) and drops records null in any of nonNull.
func project(in *Result, cols, nonNull []string, keep func(panel.Record) bool) *Result {
	present := make(map[string]bool, len(in.Columns))
	for _, c := range in.Columns {
		present[c] = true
	}
	out := &Result{Columns: []string{}, Records: []panel.Record{}, MetricColumn: in.MetricColumn}
	for _, c := range cols {
		if present[c] {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, c := range nonNull {
		if !present[c] {
			return out
		}
	}
	for _, rec := range in.Records {
		if keep != nil && !keep(rec) {
			continue
		}
		complete := true
		for _, c := range nonNull {
			if rec[c] == nil {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		p := make(panel.Record, len(out.Columns))
		for _, c := range out.Columns {
			p[c] = rec[c]
		}
		out.Records = append(out.Records, p)
	}
	return out
}

func inSet(values []string) func(panel.Record) bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return func(rec panel.Record) bool {
		name, _ := rec[panel.ColEntity].(string)
		return set[name]
	}
}

// WorldMap returns one record per entity with the selected metric, restricted
// to the default cause.
func (s *Store) WorldMap(ctx context.Context, p FilterParams) (*Result, error) {
	p = p.Normalize()
	if p.Year == 0 || p.Metric == "" {
		return emptyResult(), nil
	}
	key := cache.MakeKey("view:worldmap", p.Year, p.Regions, p.Income, p.Gender, p.Metric, p.Age)
	return s.view(ctx, key, func(ctx context.Context) (*Result, error) {
		res, err := s.Filter(ctx, FilterParams{Year: p.Year, Regions: p.Regions, Income: p.Income, Gender: p.Gender, Metric: p.Metric, Age: p.Age})
		if err != nil {
			return nil, err
		}
		cols := []string{panel.ColEntity, panel.ColCode, res.MetricColumn, panel.ColRegion, panel.ColIncome, panel.ColCause}
		return project(res, cols, nil, func(rec panel.Record) bool {
			cause, _ := rec[panel.ColCause].(string)
			return strings.EqualFold(cause, s.opts.DefaultCause)
		}), nil
	})
}

// GeoEco returns economic context plus the metric for every slice, optionally
// restricted to countries. Records missing any of those values are dropped.
func (s *Store) GeoEco(ctx context.Context, p FilterParams, countries []string) (*Result, error) {
	p = p.Normalize()
	if p.Year == 0 || p.Metric == "" {
		return emptyResult(), nil
	}
	key := cache.MakeKey("view:geoeco", p.Year, p.Regions, p.Income, p.Gender, p.Metric, p.Age, countries)
	return s.view(ctx, key, func(ctx context.Context) (*Result, error) {
		sliceCols, err := s.catalog.ColumnsFor(p.Metric)
		if err != nil {
			return nil, err
		}
		res, err := s.Filter(ctx, FilterParams{Year: p.Year, Regions: p.Regions, Income: p.Income, Gender: p.Gender, Metric: p.Metric, Age: p.Age, Cause: s.opts.DefaultCause})
		if err != nil {
			return nil, err
		}
		cols := append(append([]string(nil), geoColumns...), sliceCols...)
		nonNull := append(append([]string(nil), sliceCols...), "gdp_pc", "Population")
		return project(res, cols, nonNull, inSet(countries)), nil
	})
}

// Healthcare returns the identifying columns, every val* indicator and obesity.
func (s *Store) Healthcare(ctx context.Context, p FilterParams, countries []string) (*Result, error) {
	p = p.Normalize()
	if p.Year == 0 || p.Metric == "" {
		return emptyResult(), nil
	}
	key := cache.MakeKey("view:healthcare", p.Year, p.Regions, p.Income, p.Gender, p.Metric, p.Age, countries)
	return s.view(ctx, key, func(ctx context.Context) (*Result, error) {
		res, err := s.Filter(ctx, FilterParams{Year: p.Year, Regions: p.Regions, Income: p.Income, Gender: p.Gender, Metric: p.Metric, Age: p.Age, Cause: s.opts.DefaultCause})
		if err != nil {
			return nil, err
		}
		cols := append([]string(nil), requiredColumns...)
		for _, c := range res.Columns {
			if strings.HasPrefix(c, "val") {
				cols = append(cols, c)
			}
		}
		cols = append(cols, "obesity%")
		return project(res, cols, requiredColumns, inSet(countries)), nil
	})
}

// Sankey returns the age-standardized snapshot-year metric per entity
func (s *Store) Sankey(ctx context.Context, regions []string, income, gender, label string) (*Result, error) {
	p := FilterParams{Year: SnapshotYear, Regions: regions, Income: income, Gender: gender, Metric: label, Age: AgeStandardized}.Normalize()
	if p.Metric == "" {
		return emptyResult(), nil
	}
	key := cache.MakeKey("view:sankey", p.Regions, p.Income, p.Gender, p.Metric)
	return s.view(ctx, key, func(ctx context.Context) (*Result, error) {
		p.Cause = s.opts.DefaultCause
		res, err := s.Filter(ctx, p)
		if err != nil {
			return nil, err
		}
		cols := append(append([]string(nil), requiredColumns...), res.MetricColumn)
		return project(res, cols, cols, nil), nil
	})
}

// Risk returns risk-factor indicators next to the metric, complete rows only
func (s *Store) Risk(ctx context.Context, gender, label string) (*Result, error) {
	p := FilterParams{Year: SnapshotYear, Gender: gender, Metric: label, Age: AgeStandardized}.Normalize()
	if p.Metric == "" {
		return emptyResult(), nil
	}
	key := cache.MakeKey("view:risk", p.Gender, p.Metric)
	return s.view(ctx, key, func(ctx context.Context) (*Result, error) {
		p.Cause = s.opts.DefaultCause
		res, err := s.Filter(ctx, p)
		if err != nil {
			return nil, err
		}
		cols := append(append([]string(nil), RiskColumns...), res.MetricColumn)
		return project(res, cols, cols, nil), nil
	})
}

// TrendColumns are projected ahead of the metric column by Trends
var TrendColumns = []string{panel.ColCause, panel.ColAge, panel.ColYear}

// Trends returns the metric for every cause, age group and year. Year is an
// int in the records.
func (s *Store) Trends(ctx context.Context, gender, label string) (*Result, error) {
	p := FilterParams{Gender: gender, Metric: label}.Normalize()
	if p.Metric == "" {
		return emptyResult(), nil
	}
	key := cache.MakeKey("view:trends", p.Gender, p.Metric)
	return s.view(ctx, key, func(ctx context.Context) (*Result, error) {
		res, err := s.Filter(ctx, p)
		if err != nil {
			return nil, err
		}
		cols := append(append([]string(nil), TrendColumns...), res.MetricColumn)
		out := project(res, cols, nil, nil)
		for _, rec := range out.Records {
			if y, ok := rec[panel.ColYear].(float64); ok {
				rec[panel.ColYear] = int(y)
			}
		}
		return out, nil
	})
}
