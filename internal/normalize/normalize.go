// Package normalize maps entity names from heterogeneous sources to canonical names.
package normalize

import (
	"strings"

	"heartpanel/domain/panel"
)

// Normalizer resolves entity names against a static table. Unknown names pass through.
type Normalizer struct {
	table map[string]string
}

// New returns a normalizer over the built-in table plus any extra entries.
// Extra entries take precedence.
func New(extra map[string]string) *Normalizer {
	table := make(map[string]string, len(names)+len(extra))
	for k, v := range names {
		table[k] = v
	}
	for k, v := range extra {
		table[k] = v
	}
	return &Normalizer{table: table}
}

// Canonical returns the canonical form of name.
func (n *Normalizer) Canonical(name string) string {
	trimmed := strings.TrimSpace(name)
	if c, ok := n.table[trimmed]; ok {
		return c
	}
	return trimmed
}

// Apply rewrites column in place and returns how many cells changed.
func (n *Normalizer) Apply(t *panel.Table, column string) int {
	changed := 0
	for _, r := range t.Rows {
		v := r.Get(column)
		if v.Kind() != panel.KindText {
			continue
		}
		c := n.Canonical(v.String())
		if c != v.String() {
			r[column] = panel.Text(c)
			changed++
		}
	}
	return changed
}

// Len reports the number of mapped names
func (n *Normalizer) Len() int { return len(n.table) }
