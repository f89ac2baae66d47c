package query

import (
	"math"
	"sort"

	"heartpanel/domain/panel"
)

// UnknownIncome replaces a missing income classification at load time
const UnknownIncome = "Unknown"

// Dataset is the prepared, read-only panel plus its precomputed indexes
type Dataset struct {
	Table *panel.Table
	Index *Index
}

// Index holds the distinct values consumers build selectors from
type Index struct {
	Regions         []string            `json:"regions"`
	Incomes         []string            `json:"incomes"`
	Entities        []string            `json:"entities"`
	Ages            []string            `json:"ages"`
	Causes          []string            `json:"causes"`
	MinYear         int                 `json:"min_year"`
	MaxYear         int                 `json:"max_year"`
	RegionCountries map[string][]string `json:"region_countries"`
}

// CountriesFor returns the sorted union of countries in regions. An empty list
// or the "All" sentinel returns every entity.
func (ix *Index) CountriesFor(regions []string) []string {
	if len(regions) == 0 || containsAll(regions) {
		return append([]string(nil), ix.Entities...)
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range regions {
		for _, c := range ix.RegionCountries[r] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// prepare types the raw panel for querying: Year becomes a whole number, rows
// without a usable year are dropped, and a missing income becomes "Unknown".
// raw is not modified.
func prepare(raw *panel.Table) *Dataset {
	t := panel.NewTable("panel", raw.Columns...)
	t.AddColumn(panel.ColIncome)
	for _, r := range raw.Rows {
		y, ok := r.Get(panel.ColYear).Float()
		if !ok {
			continue
		}
		row := r.Clone()
		row[panel.ColYear] = panel.Number(math.Round(y))
		if row.Get(panel.ColIncome).IsNull() {
			row[panel.ColIncome] = panel.Text(UnknownIncome)
		}
		t.Append(row)
	}
	return &Dataset{Table: t, Index: buildIndex(t)}
}

func buildIndex(t *panel.Table) *Index {
	ix := &Index{
		Regions:         distinct(t, panel.ColRegion),
		Incomes:         distinct(t, panel.ColIncome),
		Entities:        distinct(t, panel.ColEntity),
		Ages:            distinct(t, panel.ColAge),
		Causes:          distinct(t, panel.ColCause),
		RegionCountries: make(map[string][]string),
	}

	first := true
	members := make(map[string]map[string]bool)
	for _, r := range t.Rows {
		y, _ := r.Get(panel.ColYear).Float()
		year := int(y)
		if first || year < ix.MinYear {
			ix.MinYear = year
		}
		if first || year > ix.MaxYear {
			ix.MaxYear = year
		}
		first = false

		region, entity := r.Get(panel.ColRegion), r.Get(panel.ColEntity)
		if region.IsNull() || entity.IsNull() {
			continue
		}
		if members[region.String()] == nil {
			members[region.String()] = make(map[string]bool)
		}
		members[region.String()][entity.String()] = true
	}
	for region, set := range members {
		countries := make([]string, 0, len(set))
		for c := range set {
			countries = append(countries, c)
		}
		sort.Strings(countries)
		ix.RegionCountries[region] = countries
	}
	return ix
}

func distinct(t *panel.Table, col string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range t.Rows {
		v := r.Get(col)
		if v.IsNull() || seen[v.String()] {
			continue
		}
		seen[v.String()] = true
		out = append(out, v.String())
	}
	sort.Strings(out)
	return out
}

// toRecord materializes a row; Year is an int.
func toRecord(r panel.Row, cols []string) panel.Record {
	rec := make(panel.Record, len(cols))
	for _, c := range cols {
		v := r.Get(c)
		if c == panel.ColYear {
			if y, ok := v.Float(); ok {
				rec[c] = int(y)
				continue
			}
		}
		rec[c] = v.Interface()
	}
	return rec
}
