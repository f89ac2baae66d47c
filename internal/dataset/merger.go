// Package dataset merges, reshapes and assembles source tables into the
// canonical (Entity, Year) panel, and persists the result.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal"
	"heartpanel/internal/errors"
)

// JoinType defines the type of join operation
type JoinType string

const (
	OuterJoin JoinType = "outer" // FULL OUTER JOIN - all rows from both
	LeftJoin  JoinType = "left"  // LEFT JOIN - all from left, matching from right
)

// MergeConfig holds configuration for merge operations
type MergeConfig struct {
	RequiredKeys     []string                               // Every source must carry these
	OptionalKeys     []string                               // Joined on when both sides carry them
	LeftSuffix       string                                 // Suffix for colliding left columns
	RightSuffix      string                                 // Suffix for colliding right columns
	ProgressCallback func(progress float64, message string) // Progress reporting
}

// DefaultMergeConfig joins on Entity and Year, plus cause and gender when shared
func DefaultMergeConfig() *MergeConfig {
	return &MergeConfig{
		RequiredKeys: []string{panel.ColEntity, panel.ColYear},
		OptionalKeys: []string{panel.ColCause, panel.ColGender},
		LeftSuffix:   "_x",
		RightSuffix:  "_y",
	}
}

// MergeResult contains the result of a merge operation
type MergeResult struct {
	Sources       int                 `json:"sources"`
	RowCount      int                 `json:"row_count"`
	ColumnCount   int                 `json:"column_count"`
	KeysBySource  map[string][]string `json:"keys_by_source"`
	Collisions    []string            `json:"collisions,omitempty"`
	ExecutionTime time.Duration       `json:"execution_time"`
}

// Merger handles dataset merging operations
type Merger struct {
	config *MergeConfig
	logger *internal.Logger
}

// NewMerger creates a new dataset merger
func NewMerger(config *MergeConfig) *Merger {
	if config == nil {
		config = DefaultMergeConfig()
	}
	return &Merger{config: config, logger: internal.DefaultLogger}
}

// Validate checks every source for the required key columns. It runs before
// any join so a bad source aborts the merge without partial output.
func (m *Merger) Validate(sources []*panel.Table) error {
	for _, src := range sources {
		for _, key := range m.config.RequiredKeys {
			if !src.HasColumn(key) {
				return errors.SourceInvalid(src.Name, core.NewMissingKeyError(src.Name, key))
			}
		}
	}
	return nil
}

// KeyColumns returns the required keys followed by the optional keys both tables carry.
func (m *Merger) KeyColumns(left, right *panel.Table) []string {
	keys := append([]string(nil), m.config.RequiredKeys...)
	for _, k := range m.config.OptionalKeys {
		if left.HasColumn(k) && right.HasColumn(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// KeyColumns is the package-level form using the default configuration
func KeyColumns(left, right *panel.Table) []string {
	return NewMerger(nil).KeyColumns(left, right)
}

// OuterJoin keeps every row from both tables
func (m *Merger) OuterJoin(left, right *panel.Table) (*panel.Table, error) {
	t, _, err := m.join(left, right, OuterJoin)
	return t, err
}

// LeftJoin keeps every left row and attaches matching right columns
func (m *Merger) LeftJoin(left, right *panel.Table) (*panel.Table, error) {
	t, _, err := m.join(left, right, LeftJoin)
	return t, err
}

// MergeAll folds sources into acc with outer joins, in order. A nil acc starts
// from the first source. Colliding columns are coalesced after every join, the
// later source winning, so the result carries no suffixed columns.
func (m *Merger) MergeAll(ctx context.Context, acc *panel.Table, sources []*panel.Table) (*panel.Table, *MergeResult, error) {
	start := time.Now()
	reportProgress(m.config, 0, "Validating source keys")

	all := sources
	if acc != nil {
		all = append([]*panel.Table{acc}, sources...)
	}
	if len(all) == 0 {
		return nil, nil, core.ErrNoSources
	}
	if err := m.Validate(all); err != nil {
		return nil, nil, err
	}

	result := &MergeResult{Sources: len(sources), KeysBySource: make(map[string][]string)}
	out := all[0]
	for i, src := range all[1:] {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		keys := m.KeyColumns(out, src)
		joined, collisions, err := m.join(out, src, OuterJoin)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "merge source %s", src.Name)
		}
		m.coalesce(joined, collisions)
		result.KeysBySource[src.Name] = keys
		result.Collisions = append(result.Collisions, collisions...)
		out = joined

		m.logger.Debug("[Merger] source joined", "source", src.Name, "keys", keys,
			"rows", out.Len(), "columns", len(out.Columns))
		reportProgress(m.config, float64(i+1)/float64(len(all)-1)*100, fmt.Sprintf("Merged %s", src.Name))
	}
	out.Name = "merged"

	result.RowCount = out.Len()
	result.ColumnCount = len(out.Columns)
	result.ExecutionTime = time.Since(start)
	m.logger.Info("[Merger] merge complete", "sources", len(all), "rows", result.RowCount,
		"columns", result.ColumnCount, "collisions", len(result.Collisions))
	return out, result, nil
}

// join matches rows on the shared key columns. Duplicate keys on either side
// produce every pairing. Non-key columns present on both sides are suffixed.
func (m *Merger) join(left, right *panel.Table, how JoinType) (*panel.Table, []string, error) {
	if err := m.Validate([]*panel.Table{left, right}); err != nil {
		return nil, nil, err
	}
	keys := m.KeyColumns(left, right)
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	leftNames := make(map[string]string, len(left.Columns))
	rightNames := make(map[string]string, len(right.Columns))
	var collisions []string
	for _, c := range left.Columns {
		leftNames[c] = c
	}
	for _, c := range right.Columns {
		rightNames[c] = c
		if !isKey[c] && left.HasColumn(c) {
			leftNames[c] = c + m.config.LeftSuffix
			rightNames[c] = c + m.config.RightSuffix
			collisions = append(collisions, c)
		}
	}
	sort.Strings(collisions)
	if err := checkNames(left, right, leftNames, rightNames, isKey); err != nil {
		return nil, nil, err
	}

	out := panel.NewTable(left.Name)
	for _, c := range left.Columns {
		out.AddColumn(leftNames[c])
	}
	for _, c := range right.Columns {
		if !isKey[c] {
			out.AddColumn(rightNames[c])
		}
	}

	index := make(map[string][]int, len(right.Rows))
	for j, r := range right.Rows {
		k := panel.Key(r, keys)
		index[k] = append(index[k], j)
	}
	matched := make([]bool, len(right.Rows))

	for _, lr := range left.Rows {
		matches := index[panel.Key(lr, keys)]
		if len(matches) == 0 {
			out.Append(projectRow(lr, leftNames))
			continue
		}
		for _, j := range matches {
			matched[j] = true
			row := projectRow(lr, leftNames)
			for c, v := range right.Rows[j] {
				if !isKey[c] {
					row[rightNames[c]] = v
				}
			}
			out.Append(row)
		}
	}

	if how == OuterJoin {
		for j, rr := range right.Rows {
			if !matched[j] {
				out.Append(projectRow(rr, rightNames))
			}
		}
	}
	return out, collisions, nil
}

// checkNames rejects a join whose suffixed names land on a column that already
// exists, which would put two source columns in one cell.
func checkNames(left, right *panel.Table, leftNames, rightNames map[string]string, isKey map[string]bool) error {
	owner := make(map[string]string, len(left.Columns)+len(right.Columns))
	claim := func(src, col, name string) error {
		if prev, ok := owner[name]; ok {
			return errors.SourceInvalid(right.Name, fmt.Errorf("column %q of %s and column %q both map to %q", prev, left.Name, src+"."+col, name))
		}
		owner[name] = src + "." + col
		return nil
	}
	for _, c := range left.Columns {
		if err := claim(left.Name, c, leftNames[c]); err != nil {
			return err
		}
	}
	for _, c := range right.Columns {
		if isKey[c] {
			continue
		}
		if err := claim(right.Name, c, rightNames[c]); err != nil {
			return err
		}
	}
	return nil
}

// coalesce folds every <col>_x / <col>_y pair produced by one join back into
// <col> at the left column's position. The right value wins; the left fills
// where the right is null.
func (m *Merger) coalesce(t *panel.Table, cols []string) {
	for _, c := range cols {
		left, right := c+m.config.LeftSuffix, c+m.config.RightSuffix
		for _, r := range t.Rows {
			v := r.Get(right)
			if v.IsNull() {
				v = r.Get(left)
			}
			delete(r, left)
			delete(r, right)
			if !v.IsNull() {
				r[c] = v
			}
		}
		t.DropColumns(right)
		t.RenameColumn(left, c)
	}
}

func projectRow(r panel.Row, names map[string]string) panel.Row {
	out := make(panel.Row, len(r))
	for c, v := range r {
		if name, ok := names[c]; ok {
			out[name] = v
		}
	}
	return out
}

func reportProgress(config *MergeConfig, progress float64, message string) {
	if config.ProgressCallback != nil {
		config.ProgressCallback(progress, message)
	}
}
