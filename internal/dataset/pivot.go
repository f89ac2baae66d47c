package dataset

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"heartpanel/domain/panel"
)

// PivotSpec describes one long-to-wide reshape
type PivotSpec struct {
	Name    string              `yaml:"name"`
	Index   []string            `yaml:"index"`   // defaults to Entity, Year
	Columns []string            `yaml:"columns"` // dimension columns lifted into names
	Values  []string            `yaml:"values"`  // value columns
	Filter  map[string][]string `yaml:"filter"`  // allowed values per dimension
}

func (s PivotSpec) index() []string {
	if len(s.Index) == 0 {
		return []string{panel.ColEntity, panel.ColYear}
	}
	return s.Index
}

// ColumnToken lower-cases s and keeps letters and digits only.
func ColumnToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PivotColumnName is the wide column name for a value column and its dimension values
func PivotColumnName(value string, dims ...string) string {
	var b strings.Builder
	b.WriteString(ColumnToken(value))
	for _, d := range dims {
		b.WriteString(ColumnToken(d))
	}
	return b.String()
}

func (s PivotSpec) allowed(r panel.Row) bool {
	for dim, values := range s.Filter {
		v := r.Get(dim).String()
		ok := false
		for _, a := range values {
			if strings.EqualFold(a, v) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Pivot lifts the spec's dimension columns into wide column names, one row per index
// key. When several rows land on the same cell the first non-null value wins.
func Pivot(t *panel.Table, spec PivotSpec) (*panel.Table, error) {
	index := spec.index()
	for _, c := range append(append(append([]string(nil), index...), spec.Columns...), spec.Values...) {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("pivot %s: column %q not found in %s", spec.Name, c, t.Name)
		}
	}
	if len(spec.Columns) == 0 || len(spec.Values) == 0 {
		return nil, fmt.Errorf("pivot %s: columns and values are required", spec.Name)
	}

	rows := make(map[string]panel.Row)
	var order []string
	produced := make(map[string]bool)

	for _, r := range t.Rows {
		if !spec.allowed(r) {
			continue
		}
		dims := make([]string, len(spec.Columns))
		skip := false
		for i, c := range spec.Columns {
			v := r.Get(c)
			if v.IsNull() {
				skip = true
				break
			}
			dims[i] = v.String()
		}
		if skip {
			continue
		}

		k := panel.Key(r, index)
		out, ok := rows[k]
		if !ok {
			out = make(panel.Row, len(index)+len(spec.Values))
			for _, c := range index {
				out[c] = r.Get(c)
			}
			rows[k] = out
			order = append(order, k)
		}
		for _, val := range spec.Values {
			col := PivotColumnName(val, dims...)
			produced[col] = true
			if out.Get(col).IsNull() {
				out[col] = r.Get(val)
			}
		}
	}

	cols := make([]string, 0, len(produced))
	for c := range produced {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	wide := panel.NewTable(spec.Name, append(append([]string(nil), index...), cols...)...)
	for _, k := range order {
		wide.Append(rows[k])
	}
	return wide, nil
}

// Reshape applies every pivot spec to t. Columns consumed by a pivot are removed;
// the remaining columns collapse to one row per (Entity, Year) with first non-null
// values, and each pivot's wide table is outer-joined back on.
func Reshape(t *panel.Table, specs []PivotSpec) (*panel.Table, []string, error) {
	index := []string{panel.ColEntity, panel.ColYear}
	consumed := make(map[string]bool)
	for _, s := range specs {
		for _, c := range s.Columns {
			consumed[c] = true
		}
		for _, c := range s.Values {
			consumed[c] = true
		}
	}

	var carry []string
	for _, c := range t.Columns {
		if !consumed[c] {
			carry = append(carry, c)
		}
	}

	type slot struct{ row panel.Row }
	rows := make(map[string]*slot)
	var order []string
	get := func(r panel.Row) *slot {
		k := panel.Key(r, index)
		s, ok := rows[k]
		if !ok {
			s = &slot{row: make(panel.Row)}
			for _, c := range index {
				s.row[c] = r.Get(c)
			}
			rows[k] = s
			order = append(order, k)
		}
		return s
	}
	fill := func(dst panel.Row, src panel.Row, cols []string) {
		for _, c := range cols {
			if dst.Get(c).IsNull() {
				if v := src.Get(c); !v.IsNull() {
					dst[c] = v
				}
			}
		}
	}

	for _, r := range t.Rows {
		fill(get(r).row, r, carry)
	}

	out := panel.NewTable(t.Name, carry...)
	var pivoted []string
	for _, spec := range specs {
		if len(spec.Index) == 0 {
			spec.Index = index
		}
		wide, err := Pivot(t, spec)
		if err != nil {
			return nil, nil, err
		}
		newCols := wide.Columns[len(spec.Index):]
		for _, r := range wide.Rows {
			fill(get(r).row, r, newCols)
		}
		for _, c := range newCols {
			out.AddColumn(c)
		}
		pivoted = append(pivoted, newCols...)
	}

	for _, k := range order {
		out.Append(rows[k].row)
	}
	out.SortByKey()
	return out, pivoted, nil
}
