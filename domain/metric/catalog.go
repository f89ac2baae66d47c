// Package metric resolves (demographic slice, metric label) pairs to panel columns.
//
// The mapping is a finite enumeration built once and validated against the
// assembler's rename table at startup, so a label the panel cannot serve fails
// with ErrUnsupportedMetric instead of silently producing no column.
package metric

import (
	"fmt"
	"sort"

	"heartpanel/domain/core"
)

// Slice is a demographic slice
type Slice string

const (
	Both   Slice = "Both"
	Male   Slice = "Male"
	Female Slice = "Female"
)

// Slices lists every supported slice in display order
var Slices = []Slice{Both, Female, Male}

// Suffix is the column suffix for the slice
func (s Slice) Suffix() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	case Both:
		return "both"
	default:
		return ""
	}
}

// ParseSlice accepts the display name; empty means Both.
func ParseSlice(s string) (Slice, error) {
	switch Slice(s) {
	case "", Both:
		return Both, nil
	case Male, Female:
		return Slice(s), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownSlice, s)
	}
}

// Metric labels exposed to consumers
const (
	Death             = "Death"
	DeathRate         = "Death Rate"
	DeathPercent      = "Death Percent"
	Prevalence        = "Prevalence"
	PrevalenceRate    = "Prevalence Rate"
	PrevalencePercent = "Prevalence Percent"
)

// prefixes is the fixed per-metric column prefix
var prefixes = map[string]string{
	PrevalencePercent: "valprevpercent",
	PrevalenceRate:    "valprevrate",
	Prevalence:        "valprevnumber",
	DeathPercent:      "valdeathspercent",
	DeathRate:         "valdeathsrate",
	Death:             "valdeathsnumber",
}

type entry struct {
	slice Slice
	label string
}

// Catalog is the enumerated (slice, metric) -> column mapping
type Catalog struct {
	columns map[entry]string
	labels  []string
}

// NewCatalog builds the full enumeration
func NewCatalog() *Catalog {
	c := &Catalog{columns: make(map[entry]string, len(prefixes)*len(Slices))}
	for label, prefix := range prefixes {
		c.labels = append(c.labels, label)
		for _, s := range Slices {
			c.columns[entry{s, label}] = prefix + s.Suffix()
		}
	}
	sort.Strings(c.labels)
	return c
}

// Column resolves the column for a slice name and metric label.
func (c *Catalog) Column(slice, label string) (string, error) {
	s, err := ParseSlice(slice)
	if err != nil {
		return "", err
	}
	col, ok := c.columns[entry{s, label}]
	if !ok {
		return "", core.NewUnsupportedMetricError(slice, label)
	}
	return col, nil
}

// ColumnsFor returns the metric column for every slice, in Slices order.
func (c *Catalog) ColumnsFor(label string) ([]string, error) {
	cols := make([]string, 0, len(Slices))
	for _, s := range Slices {
		col, err := c.Column(string(s), label)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// Labels returns the supported metric labels, sorted
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Columns returns every column the catalog can resolve to, sorted
func (c *Catalog) Columns() []string {
	out := make([]string, 0, len(c.columns))
	for _, col := range c.columns {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every catalog column is produced by the panel.
func (c *Catalog) Validate(produced map[string]bool) error {
	var missing []string
	for _, col := range c.Columns() {
		if !produced[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("metric catalog references columns the panel never produces: %v", missing)
	}
	return nil
}
