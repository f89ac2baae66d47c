package dataset

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
)

func table(name string, cols []string, rows ...[]any) *panel.Table {
	t := panel.NewTable(name, cols...)
	for _, vals := range rows {
		r := make(panel.Row, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				r[cols[i]] = panel.Null()
			case int:
				r[cols[i]] = panel.Number(float64(x))
			case float64:
				r[cols[i]] = panel.Number(x)
			case string:
				r[cols[i]] = panel.Text(x)
			}
		}
		t.Append(r)
	}
	return t
}

func keySet(t *panel.Table) []string {
	var out []string
	for _, r := range t.Rows {
		out = append(out, panel.Key(r, []string{panel.ColEntity, panel.ColYear}))
	}
	sort.Strings(out)
	return out
}

func TestMerger_OuterJoinKeepsAllRows(t *testing.T) {
	left := table("a", []string{"Entity", "Year", "deaths"},
		[]any{"Uruguay", 2000, 5},
		[]any{"Chile", 2000, 7},
	)
	right := table("b", []string{"Entity", "Year", "obesity"},
		[]any{"Uruguay", 2000, 27.9},
		[]any{"Peru", 2001, 20.1},
	)

	out, err := NewMerger(nil).OuterJoin(left, right)
	require.NoError(t, err)

	assert.Equal(t, []string{"Entity", "Year", "deaths", "obesity"}, out.Columns)
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, 27.9, out.Rows[0]["obesity"].Interface())
	assert.True(t, out.Rows[1].Get("obesity").IsNull())
	assert.True(t, out.Rows[2].Get("deaths").IsNull())
}

func TestMerger_CollisionsAreSuffixed(t *testing.T) {
	left := table("a", []string{"Entity", "Year", "Population"}, []any{"Uruguay", 2000, 3.3})
	right := table("b", []string{"Entity", "Year", "Population"}, []any{"Uruguay", 2000, 3.4})

	out, err := NewMerger(nil).OuterJoin(left, right)
	require.NoError(t, err)
	assert.Equal(t, []string{"Entity", "Year", "Population_x", "Population_y"}, out.Columns)
	assert.Equal(t, 1, out.Len())
}

func TestMerger_OptionalKeysOnlyWhenShared(t *testing.T) {
	left := table("a", []string{"Entity", "Year", "gender", "v"}, []any{"Uruguay", 2000, "Male", 1})
	right := table("b", []string{"Entity", "Year", "gender", "w"}, []any{"Uruguay", 2000, "Female", 2})
	third := table("c", []string{"Entity", "Year", "z"}, []any{"Uruguay", 2000, 3})

	m := NewMerger(nil)
	assert.Equal(t, []string{"Entity", "Year", "gender"}, m.KeyColumns(left, right))
	assert.Equal(t, []string{"Entity", "Year"}, KeyColumns(left, third))

	out, err := m.OuterJoin(left, right)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len(), "different genders do not match")

	out, err = m.OuterJoin(out, third)
	require.NoError(t, err)
	for _, r := range out.Rows {
		assert.Equal(t, 3.0, r["z"].Interface(), "entity-year source broadcasts across genders")
	}
}

func TestMerger_DuplicateKeysProduceEveryPairing(t *testing.T) {
	left := table("a", []string{"Entity", "Year", "v"}, []any{"Uruguay", 2000, 1}, []any{"Uruguay", 2000, 2})
	right := table("b", []string{"Entity", "Year", "w"}, []any{"Uruguay", 2000, 3}, []any{"Uruguay", 2000, 4})

	out, err := NewMerger(nil).OuterJoin(left, right)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
}

func TestMerger_LeftJoin(t *testing.T) {
	left := table("a", []string{"Entity", "Year", "v"}, []any{"Uruguay", 2000, 1})
	right := table("b", []string{"Entity", "Year", "w"}, []any{"Uruguay", 2000, 3}, []any{"Peru", 2000, 4})

	out, err := NewMerger(nil).LeftJoin(left, right)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestMerger_MissingKeyIsFatalBeforeJoin(t *testing.T) {
	good := table("good", []string{"Entity", "Year", "v"}, []any{"Uruguay", 2000, 1})
	bad := table("bad", []string{"Country", "Year", "w"}, []any{"Uruguay", 2000, 3})

	var progressed bool
	cfg := DefaultMergeConfig()
	cfg.ProgressCallback = func(p float64, _ string) {
		if p > 0 {
			progressed = true
		}
	}
	out, res, err := NewMerger(cfg).MergeAll(context.Background(), nil, []*panel.Table{good, good, bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingKeyColumn)
	assert.True(t, core.IsSourceError(err))
	assert.Nil(t, out)
	assert.Nil(t, res)
	assert.False(t, progressed, "no join ran")
}

func TestMerger_MergeAllNoSources(t *testing.T) {
	_, _, err := NewMerger(nil).MergeAll(context.Background(), nil, nil)
	assert.ErrorIs(t, err, core.ErrNoSources)
}

func TestMerger_ReversedOrderSameKeySet(t *testing.T) {
	sources := []*panel.Table{
		table("a", []string{"Entity", "Year", "deaths"}, []any{"Uruguay", 2000, 5}, []any{"Chile", 2001, 4}),
		table("b", []string{"Entity", "Year", "deaths", "gdp"}, []any{"Uruguay", 2005, 9, 100}, []any{"Chile", 2001, 3, 50}),
		table("c", []string{"Entity", "Year", "region"}, []any{"Uruguay", 2010, "Americas"}, []any{"Peru", 1990, "Americas"}),
	}
	reversed := []*panel.Table{sources[2], sources[1], sources[0]}

	m := NewMerger(nil)
	fwd, res, err := m.MergeAll(context.Background(), nil, sources)
	require.NoError(t, err)
	rev, _, err := m.MergeAll(context.Background(), nil, reversed)
	require.NoError(t, err)

	assert.Equal(t, keySet(fwd), keySet(rev))
	assert.Equal(t, []string{"deaths"}, res.Collisions)
	assert.Equal(t, fwd.Len(), res.RowCount)
}

func sharedColumnSources(values ...any) []*panel.Table {
	names := []string{"a", "b", "c", "d", "e"}
	out := make([]*panel.Table, len(values))
	for i, v := range values {
		out[i] = table(names[i], []string{"Entity", "Year", "v"}, []any{"Uruguay", 2000, v})
	}
	return out
}

func TestMerger_MergeAllLaterSourceWins(t *testing.T) {
	tests := []struct {
		name    string
		sources []*panel.Table
		want    float64
	}{
		{"three sources", sharedColumnSources(1, 2, 3), 3},
		{"four sources, newest null", sharedColumnSources(1, 2, 3, nil), 3},
		{"older value fills a null", sharedColumnSources(1, nil), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res, err := NewMerger(nil).MergeAll(context.Background(), nil, tt.sources)
			require.NoError(t, err)

			assert.Equal(t, []string{"Entity", "Year", "v"}, out.Columns)
			require.Equal(t, 1, out.Len())
			assert.Equal(t, tt.want, out.Rows[0].Get("v").Interface())
			assert.Len(t, res.Collisions, len(tt.sources)-1)
		})
	}
}

func TestMerger_MergeAllIsDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		out, _, err := NewMerger(nil).MergeAll(context.Background(), nil, sharedColumnSources(1, 2, 3, nil))
		require.NoError(t, err)
		require.Equal(t, 3.0, out.Rows[0].Get("v").Interface())
		_, suffixed := out.Rows[0]["v_x"]
		require.False(t, suffixed)
	}
}

func TestMerger_SuffixTargetAlreadyPresent(t *testing.T) {
	left := table("a", []string{"Entity", "Year", "v", "v_x"}, []any{"Uruguay", 2000, 1, 2})
	right := table("b", []string{"Entity", "Year", "v"}, []any{"Uruguay", 2000, 3})

	_, err := NewMerger(nil).OuterJoin(left, right)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"v_x"`)
}
