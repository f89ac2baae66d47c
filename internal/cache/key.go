package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MakeKey builds an order-independent cache key from query parameters.
// Slices are treated as sets: sorted and de-duplicated, so equivalent inputs in
// a different order share one key. nil and "" are the same. Any other
// parameter type is a programming error and panics.
func MakeKey(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('|')
		}
		switch v := p.(type) {
		case nil:
			b.WriteString(`s:""`)
		case string:
			b.WriteString("s:")
			b.WriteString(strconv.Quote(v))
		case int:
			b.WriteString("i:")
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString("i:")
			b.WriteString(strconv.FormatInt(v, 10))
		case float64:
			b.WriteString("f:")
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case bool:
			b.WriteString("b:")
			b.WriteString(strconv.FormatBool(v))
		case []string:
			b.WriteString("S:[")
			for j, s := range normalizeSet(v) {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.Quote(s))
			}
			b.WriteByte(']')
		case []int:
			sorted := append([]int(nil), v...)
			sort.Ints(sorted)
			b.WriteString("I:[")
			for j, n := range sorted {
				if j > 0 && sorted[j-1] == n {
					continue
				}
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.Itoa(n))
			}
			b.WriteByte(']')
		default:
			panic(fmt.Sprintf("cache: unsupported key parameter type %T", p))
		}
	}
	return b.String()
}

func normalizeSet(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	n := 0
	for i, s := range out {
		if i > 0 && out[n-1] == s {
			continue
		}
		out[n] = s
		n++
	}
	return out[:n]
}
