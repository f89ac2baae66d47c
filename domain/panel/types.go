package panel

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Canonical column names shared by every stage of the pipeline and the query layer.
const (
	ColEntity = "Entity"
	ColYear   = "Year"
	ColCode   = "Code"
	ColGender = "gender"
	ColCause  = "cause"
	ColAge    = "age"
	ColRegion = "region"
	ColIncome = "WB_Income"
)

// Kind classifies a cell value
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

// Value is a nullable cell. The zero value is null.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Null returns the null value
func Null() Value { return Value{} }

// Number wraps a float. NaN and infinities are treated as null.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Text wraps a string. Empty strings are null.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, text: s}
}

var nullTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// Parse converts a raw cell string into a typed value.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if nullTokens[strings.ToLower(s)] {
		return Value{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

// Kind returns the value kind
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is empty
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the value the way it is keyed and persisted.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Interface returns the JSON-friendly payload: float64, string or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	default:
		return nil
	}
}

// Row maps column names to cells. Missing columns read as null.
type Row map[string]Value

// Get returns the cell for col, null when absent
func (r Row) Get(col string) Value {
	return r[col]
}

// Clone copies the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of columns and rows.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns
func NewTable(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// HasColumn reports whether col is declared on the table
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn declares col if it is not already present
func (t *Table) AddColumn(col string) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
	}
}

// DropColumns removes columns from the header and every row
func (t *Table) DropColumns(cols ...string) {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for c := range drop {
			delete(r, c)
		}
	}
}

// RenameColumn renames a column in the header and every row
func (t *Table) RenameColumn(from, to string) {
	if from == to || !t.HasColumn(from) {
		return
	}
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
		}
	}
	for _, r := range t.Rows {
		if v, ok := r[from]; ok {
			r[to] = v
			delete(r, from)
		}
	}
}

// Append adds a row
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the row count
func (t *Table) Len() int { return len(t.Rows) }

// Clone deep-copies the table
func (t *Table) Clone() *Table {
	out := NewTable(t.Name, t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// IsNumeric reports whether every non-null cell in col is a number and at least one exists.
func (t *Table) IsNumeric(col string) bool {
	seen := false
	for _, r := range t.Rows {
		v := r.Get(col)
		switch v.Kind() {
		case KindText:
			return false
		case KindNumber:
			seen = true
		}
	}
	return seen
}

// NullCount counts null cells in col
func (t *Table) NullCount(col string) int {
	n := 0
	for _, r := range t.Rows {
		if r.Get(col).IsNull() {
			n++
		}
	}
	return n
}

const keySep = "\x1f"

// Key builds a composite key from the given columns of a row.
func Key(r Row, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = r.Get(c).String()
	}
	return strings.Join(parts, keySep)
}

// RowKey builds a key over every declared column; used for exact-duplicate detection.
func (t *Table) RowKey(r Row) string {
	return Key(r, t.Columns)
}

// SortByKey orders rows by entity then year
func (t *Table) SortByKey() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		ei, ej := t.Rows[i].Get(ColEntity).String(), t.Rows[j].Get(ColEntity).String()
		if ei != ej {
			return ei < ej
		}
		yi, _ := t.Rows[i].Get(ColYear).Float()
		yj, _ := t.Rows[j].Get(ColYear).Float()
		return yi < yj
	})
}

// Record is the materialized form handed to consumers
type Record map[string]any

// ToRecord projects a row onto cols; nil cols means every column.
func (t *Table) ToRecord(r Row, cols []string) Record {
	if cols == nil {
		cols = t.Columns
	}
	rec := make(Record, len(cols))
	for _, c := range cols {
		rec[c] = r.Get(c).Interface()
	}
	return rec
}
