package impute

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"heartpanel/domain/panel"
	"heartpanel/internal"
)

// Config tunes the engine
type Config struct {
	Workers     int      // concurrent entities
	Span        int      // EWM span for the boundary blend
	Categorical []string // forced categorical; text columns are categorical anyway
	Identifiers []string // carry-filled columns
}

// DefaultConfig returns the standard settings
func DefaultConfig() Config {
	return Config{Workers: 8, Span: 3, Identifiers: []string{panel.ColCode}}
}

// ColumnKind is how a column is imputed
type ColumnKind string

const (
	NumericColumn     ColumnKind = "numeric"
	CategoricalColumn ColumnKind = "categorical"
	IdentifierColumn  ColumnKind = "identifier"
)

// ColumnStats counts fills for one column
type ColumnStats struct {
	Column        string     `json:"column"`
	Kind          ColumnKind `json:"kind"`
	MissingBefore int        `json:"missing_before"`
	MissingAfter  int        `json:"missing_after"`
	SplineFilled  int        `json:"spline_filled,omitempty"`
	BlendFilled   int        `json:"blend_filled,omitempty"`
	ModeFilled    int        `json:"mode_filled,omitempty"`
	CarryFilled   int        `json:"carry_filled,omitempty"`
}

// Improvement is the share of missing cells that were filled, in percent
func (c ColumnStats) Improvement() float64 {
	if c.MissingBefore == 0 {
		return 0
	}
	return float64(c.MissingBefore-c.MissingAfter) / float64(c.MissingBefore) * 100
}

// Stats summarizes an imputation run
type Stats struct {
	Entities int            `json:"entities"`
	Rows     int            `json:"rows"`
	Columns  []*ColumnStats `json:"columns"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// Column returns the stats for col, nil when the column was not imputed
func (s *Stats) Column(col string) *ColumnStats {
	for _, c := range s.Columns {
		if c.Column == col {
			return c
		}
	}
	return nil
}

// Engine runs the per-entity imputation passes
type Engine struct {
	config Config
	logger *internal.Logger
}

// NewEngine creates an imputation engine
func NewEngine(config Config) *Engine {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Span < 1 {
		config.Span = 3
	}
	return &Engine{config: config, logger: internal.DefaultLogger}
}

type plan struct {
	column string
	kind   ColumnKind
}

// entityGroup is an owned copy of one entity's rows, ordered by year
type entityGroup struct {
	entity string
	idx    []int
	years  []float64
	rows   []panel.Row
	counts map[string]*ColumnStats
}

// Run imputes every column except Entity and Year and returns a new table.
func (e *Engine) Run(ctx context.Context, in *panel.Table) (*panel.Table, *Stats, error) {
	start := time.Now()
	out := in.Clone()
	plans := e.plan(out)
	groups := groupByEntity(out)

	stats := &Stats{Entities: len(groups), Rows: out.Len()}
	byCol := make(map[string]*ColumnStats, len(plans))
	for _, p := range plans {
		cs := &ColumnStats{Column: p.column, Kind: p.kind, MissingBefore: out.NullCount(p.column)}
		byCol[p.column] = cs
		stats.Columns = append(stats.Columns, cs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for _, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.imputeGroup(grp, plans)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// write back by position; each group owns disjoint rows
	for _, grp := range groups {
		for j, i := range grp.idx {
			out.Rows[i] = grp.rows[j]
		}
		for col, c := range grp.counts {
			cs := byCol[col]
			cs.SplineFilled += c.SplineFilled
			cs.BlendFilled += c.BlendFilled
			cs.ModeFilled += c.ModeFilled
			cs.CarryFilled += c.CarryFilled
		}
	}
	for _, cs := range stats.Columns {
		cs.MissingAfter = out.NullCount(cs.Column)
	}
	stats.Elapsed = time.Since(start)

	e.logger.Info("[Imputer] imputation complete", "entities", stats.Entities, "rows", stats.Rows,
		"columns", len(stats.Columns), "elapsed_ms", stats.Elapsed.Milliseconds())
	return out, stats, nil
}

func (e *Engine) plan(t *panel.Table) []plan {
	forced := make(map[string]ColumnKind)
	for _, c := range e.config.Categorical {
		forced[c] = CategoricalColumn
	}
	for _, c := range e.config.Identifiers {
		forced[c] = IdentifierColumn
	}

	var plans []plan
	for _, c := range t.Columns {
		if c == panel.ColEntity || c == panel.ColYear {
			continue
		}
		if kind, ok := forced[c]; ok {
			plans = append(plans, plan{c, kind})
			continue
		}
		switch {
		case t.IsNumeric(c):
			plans = append(plans, plan{c, NumericColumn})
		case t.NullCount(c) < t.Len():
			plans = append(plans, plan{c, CategoricalColumn})
		}
	}
	return plans
}

func groupByEntity(t *panel.Table) []*entityGroup {
	index := make(map[string]*entityGroup)
	var groups []*entityGroup
	for i, r := range t.Rows {
		year, ok := r.Get(panel.ColYear).Float()
		if !ok {
			continue
		}
		name := r.Get(panel.ColEntity).String()
		grp, found := index[name]
		if !found {
			grp = &entityGroup{entity: name}
			index[name] = grp
			groups = append(groups, grp)
		}
		grp.idx = append(grp.idx, i)
		grp.years = append(grp.years, year)
		grp.rows = append(grp.rows, r.Clone())
	}
	for _, grp := range groups {
		sort.Stable(byYear{grp})
	}
	return groups
}

type byYear struct{ g *entityGroup }

func (b byYear) Len() int           { return len(b.g.years) }
func (b byYear) Less(i, j int) bool { return b.g.years[i] < b.g.years[j] }
func (b byYear) Swap(i, j int) {
	g := b.g
	g.years[i], g.years[j] = g.years[j], g.years[i]
	g.idx[i], g.idx[j] = g.idx[j], g.idx[i]
	g.rows[i], g.rows[j] = g.rows[j], g.rows[i]
}

func (e *Engine) imputeGroup(grp *entityGroup, plans []plan) {
	grp.counts = make(map[string]*ColumnStats, len(plans))
	for _, p := range plans {
		cs := &ColumnStats{Column: p.column, Kind: p.kind}
		grp.counts[p.column] = cs

		switch p.kind {
		case NumericColumn:
			original := make([]float64, len(grp.rows))
			for j, r := range grp.rows {
				if f, ok := r.Get(p.column).Float(); ok {
					original[j] = f
				} else {
					original[j] = math.NaN()
				}
			}
			splined, n := SplineFill(grp.years, original)
			cs.SplineFilled = n
			blended, n := BlendFill(original, splined, e.config.Span)
			cs.BlendFilled = n
			for j, r := range grp.rows {
				if r.Get(p.column).IsNull() {
					r[p.column] = panel.Number(blended[j])
				}
			}

		case CategoricalColumn, IdentifierColumn:
			values := make([]panel.Value, len(grp.rows))
			for j, r := range grp.rows {
				values[j] = r.Get(p.column)
			}
			var filled []panel.Value
			if p.kind == CategoricalColumn {
				filled, cs.ModeFilled = ModeFill(values)
			} else {
				filled, cs.CarryFilled = CarryFill(values)
			}
			for j, r := range grp.rows {
				r[p.column] = filled[j]
			}
		}
	}
}
