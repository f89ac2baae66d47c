package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpanel/domain/metric"
)

func TestAssembler_Reconcile(t *testing.T) {
	tbl := table("m", []string{"Entity", "Year", "Population_x", "Population_y"},
		[]any{"Uruguay", 2000, 3.3, 3.4},
		[]any{"Uruguay", 2001, 3.35, nil},
		[]any{"Uruguay", 2002, nil, nil},
	)
	a := NewAssembler(nil)
	bases := a.Reconcile(tbl)

	assert.Equal(t, []string{"Population"}, bases)
	assert.Equal(t, []string{"Entity", "Year", "Population"}, tbl.Columns)
	assert.Equal(t, 3.4, tbl.Rows[0]["Population"].Interface(), "right wins")
	assert.Equal(t, 3.35, tbl.Rows[1]["Population"].Interface(), "left fills")
	assert.True(t, tbl.Rows[2].Get("Population").IsNull())
	_, stale := tbl.Rows[0]["Population_x"]
	assert.False(t, stale)
}

func TestAssembler_Assemble(t *testing.T) {
	in := table("m", []string{"Entity", "Year", "empty", "Obesity_Rate (%)", "valprevalencerateboth"},
		[]any{"Uruguay", 2001, nil, 27.9, 10.0},
		[]any{"Uruguay", 2000, nil, 27.0, 9.0},
		[]any{"Uruguay", 2000, nil, 27.0, 9.0},
		[]any{"Chile", 2000, nil, nil, nil},
	)

	out, res, err := NewAssembler(nil).Assemble(in)
	require.NoError(t, err)

	assert.Equal(t, 1, res.DuplicatesRemoved)
	assert.Equal(t, []string{"empty"}, res.ColumnsDropped)
	assert.Equal(t, 1, res.EmptyRowsDropped)
	assert.Equal(t, 2, res.Renamed)
	assert.Equal(t, []string{"Entity", "Year", "obesity%", "valprevrateboth"}, out.Columns)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 2000.0, out.Rows[0]["Year"].Interface())
	assert.Equal(t, 5, len(in.Columns), "input untouched")
}

func TestAssembler_MissingKey(t *testing.T) {
	_, _, err := NewAssembler(nil).Assemble(table("m", []string{"Entity", "v"}, []any{"Uruguay", 1}))
	assert.Error(t, err)
}

func TestCanonicalColumns_CoverMetricCatalog(t *testing.T) {
	assert.NoError(t, metric.NewCatalog().Validate(CanonicalColumns()))
}
