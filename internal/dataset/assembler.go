package dataset

import (
	"fmt"
	"strings"

	"heartpanel/domain/panel"
	"heartpanel/internal"
)

// AssembleResult summarizes what the assembler changed
type AssembleResult struct {
	Reconciled        []string `json:"reconciled,omitempty"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	ColumnsDropped    []string `json:"columns_dropped,omitempty"`
	EmptyRowsDropped  int      `json:"empty_rows_dropped"`
	Renamed           int      `json:"renamed"`
}

// Assembler finalizes a merged, reshaped and imputed table into the canonical panel
type Assembler struct {
	renames     map[string]string
	leftSuffix  string
	rightSuffix string
	logger      *internal.Logger
}

// NewAssembler creates an assembler. A nil rename map uses RenameTable.
func NewAssembler(renames map[string]string) *Assembler {
	if renames == nil {
		renames = RenameTable
	}
	cfg := DefaultMergeConfig()
	return &Assembler{
		renames:     renames,
		leftSuffix:  cfg.LeftSuffix,
		rightSuffix: cfg.RightSuffix,
		logger:      internal.DefaultLogger,
	}
}

// KeyColumnsOf returns the composite key of a panel: Entity, Year, and gender while it remains.
func KeyColumnsOf(t *panel.Table) []string {
	keys := []string{panel.ColEntity, panel.ColYear}
	if t.HasColumn(panel.ColGender) {
		keys = append(keys, panel.ColGender)
	}
	return keys
}

// Assemble returns a new table; the input is not modified.
func (a *Assembler) Assemble(in *panel.Table) (*panel.Table, *AssembleResult, error) {
	for _, k := range []string{panel.ColEntity, panel.ColYear} {
		if !in.HasColumn(k) {
			return nil, nil, fmt.Errorf("assemble %s: missing key column %q", in.Name, k)
		}
	}
	t := in.Clone()
	res := &AssembleResult{}

	res.Reconciled = a.Reconcile(t)
	res.DuplicatesRemoved = dedupe(t)
	res.ColumnsDropped = dropEmptyColumns(t)
	res.EmptyRowsDropped = dropEmptyRows(t, KeyColumnsOf(t))
	res.Renamed = a.rename(t)
	t.SortByKey()

	a.logger.Info("[Assembler] panel assembled", "rows", t.Len(), "columns", len(t.Columns),
		"reconciled", len(res.Reconciled), "duplicates", res.DuplicatesRemoved,
		"dropped_columns", len(res.ColumnsDropped), "dropped_rows", res.EmptyRowsDropped)
	return t, res, nil
}

// Reconcile coalesces every <col>_x / <col>_y pair into <col>. The right value
// wins; the left fills where the right is null.
func (a *Assembler) Reconcile(t *panel.Table) []string {
	var bases []string
	for _, c := range t.Columns {
		if !strings.HasSuffix(c, a.leftSuffix) {
			continue
		}
		base := strings.TrimSuffix(c, a.leftSuffix)
		if base != "" && t.HasColumn(base+a.rightSuffix) {
			bases = append(bases, base)
		}
	}

	for _, base := range bases {
		left, right := base+a.leftSuffix, base+a.rightSuffix
		hadBase := t.HasColumn(base)
		for _, r := range t.Rows {
			v := r.Get(right)
			if v.IsNull() {
				v = r.Get(left)
			}
			if v.IsNull() && hadBase {
				v = r.Get(base)
			}
			r[base] = v
		}
		if !hadBase {
			for i, c := range t.Columns {
				if c == left {
					t.Columns[i] = base
					break
				}
			}
		}
		t.DropColumns(left, right)
	}
	return bases
}

func dedupe(t *panel.Table) int {
	seen := make(map[string]bool, len(t.Rows))
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		k := t.RowKey(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, r)
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

func dropEmptyColumns(t *panel.Table) []string {
	var empty []string
	for _, c := range t.Columns {
		if c == panel.ColEntity || c == panel.ColYear {
			continue
		}
		if t.NullCount(c) == len(t.Rows) {
			empty = append(empty, c)
		}
	}
	t.DropColumns(empty...)
	return empty
}

func dropEmptyRows(t *panel.Table, keys []string) int {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			if !isKey[c] && !r.Get(c).IsNull() {
				kept = append(kept, r)
				break
			}
		}
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept
	return dropped
}

// rename applies the rename table. When the target already exists the
// existing value is kept and the renamed column fills its nulls.
func (a *Assembler) rename(t *panel.Table) int {
	n := 0
	for _, from := range append([]string(nil), t.Columns...) {
		to, ok := a.renames[from]
		if !ok || to == from {
			continue
		}
		if !t.HasColumn(to) {
			t.RenameColumn(from, to)
		} else {
			for _, r := range t.Rows {
				if r.Get(to).IsNull() {
					r[to] = r.Get(from)
				}
			}
			t.DropColumns(from)
		}
		n++
	}
	return n
}
