package impute

import "heartpanel/domain/panel"

// Mode returns the most frequent non-null value, smallest by string on ties.
func Mode(values []panel.Value) (panel.Value, bool) {
	counts := make(map[string]int)
	first := make(map[string]panel.Value)
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		k := v.String()
		counts[k]++
		if _, ok := first[k]; !ok {
			first[k] = v
		}
	}
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	if bestN == 0 {
		return panel.Null(), false
	}
	return first[best], true
}

// ModeFill replaces nulls with the series mode. An all-null series stays null.
func ModeFill(values []panel.Value) ([]panel.Value, int) {
	out := append([]panel.Value(nil), values...)
	m, ok := Mode(values)
	if !ok {
		return out, 0
	}
	filled := 0
	for i, v := range out {
		if v.IsNull() {
			out[i] = m
			filled++
		}
	}
	return out, filled
}

// CarryFill forward-fills then backward-fills; used for stable identifiers.
func CarryFill(values []panel.Value) ([]panel.Value, int) {
	out := append([]panel.Value(nil), values...)
	filled := 0
	last := panel.Null()
	for i, v := range out {
		if !v.IsNull() {
			last = v
		} else if !last.IsNull() {
			out[i] = last
			filled++
		}
	}
	next := panel.Null()
	for i := len(out) - 1; i >= 0; i-- {
		if !out[i].IsNull() {
			next = out[i]
		} else if !next.IsNull() {
			out[i] = next
			filled++
		}
	}
	return out, filled
}
