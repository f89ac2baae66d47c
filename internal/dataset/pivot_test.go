package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ihmeLong() []string {
	return []string{"Entity", "Year", "measure", "metric", "sex", "cause", "val"}
}

func TestColumnToken(t *testing.T) {
	assert.Equal(t, "deaths", ColumnToken("Deaths"))
	assert.Equal(t, "obesityrate", ColumnToken("Obesity_Rate (%)"))
	assert.Equal(t, "adultsaged3079", ColumnToken("adults aged 30–79"))
	assert.Equal(t, "valdeathsrateboth", PivotColumnName("val", "Deaths", "Rate", "Both"))
}

func TestPivot_FirstNonNullWins(t *testing.T) {
	long := table("ihme", ihmeLong(),
		[]any{"Uruguay", 2019, "Deaths", "Rate", "Both", "CVD", nil},
		[]any{"Uruguay", 2019, "Deaths", "Rate", "Both", "CVD", 250.5},
		[]any{"Uruguay", 2019, "Deaths", "Rate", "Both", "CVD", 999.0},
		[]any{"Uruguay", 2019, "Deaths", "Rate", "Male", "CVD", 270.0},
		[]any{"Uruguay", 2018, "Prevalence", "Percent", "Female", "CVD", 6.1},
	)
	spec := PivotSpec{Name: "ihme", Columns: []string{"measure", "metric", "sex"}, Values: []string{"val"}}

	wide, err := Pivot(long, spec)
	require.NoError(t, err)

	assert.Equal(t, []string{"Entity", "Year", "valdeathsrateboth", "valdeathsratemale", "valprevalencepercentfemale"}, wide.Columns)
	require.Equal(t, 2, wide.Len())
	assert.Equal(t, 250.5, wide.Rows[0]["valdeathsrateboth"].Interface())
	assert.True(t, wide.Rows[1].Get("valdeathsrateboth").IsNull())
}

func TestPivot_Filter(t *testing.T) {
	long := table("ihme", ihmeLong(),
		[]any{"Uruguay", 2019, "Deaths", "Rate", "Both", "CVD", 1.0},
		[]any{"Uruguay", 2019, "DALYs", "Rate", "Both", "CVD", 2.0},
	)
	spec := PivotSpec{
		Columns: []string{"measure", "metric", "sex"},
		Values:  []string{"val"},
		Filter:  map[string][]string{"measure": {"deaths", "prevalence"}},
	}
	wide, err := Pivot(long, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"Entity", "Year", "valdeathsrateboth"}, wide.Columns)
}

func TestPivot_MissingColumn(t *testing.T) {
	long := table("ihme", []string{"Entity", "Year", "val"}, []any{"Uruguay", 2019, 1.0})
	_, err := Pivot(long, PivotSpec{Columns: []string{"sex"}, Values: []string{"val"}})
	assert.Error(t, err)
}

func TestReshape_UniqueEntityYear(t *testing.T) {
	long := table("merged", append(ihmeLong(), "Code", "region"),
		[]any{"Uruguay", 2019, "Deaths", "Rate", "Both", "CVD", 250.0, "URY", nil},
		[]any{"Uruguay", 2019, "Deaths", "Rate", "Male", "CVD", 270.0, nil, "Americas"},
		[]any{"Uruguay", 2019, "Prevalence", "Number", "Both", "CVD", 1000.0, "URY", "Americas"},
		[]any{"Chile", 2019, "Deaths", "Rate", "Both", "CVD", 200.0, "CHL", "Americas"},
	)
	specs := []PivotSpec{{Name: "ihme", Columns: []string{"measure", "metric", "sex"}, Values: []string{"val"}}}

	out, pivoted, err := Reshape(long, specs)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Len())
	assert.ElementsMatch(t, []string{"valdeathsrateboth", "valdeathsratemale", "valprevalencenumberboth"}, pivoted)
	assert.False(t, out.HasColumn("measure"))
	assert.False(t, out.HasColumn("val"))
	assert.True(t, out.HasColumn("cause"))

	// sorted by entity: Chile first
	assert.Equal(t, "Chile", out.Rows[0]["Entity"].String())
	uy := out.Rows[1]
	assert.Equal(t, "URY", uy["Code"].String())
	assert.Equal(t, "Americas", uy["region"].String(), "carry columns take first non-null")
	assert.Equal(t, 1000.0, uy["valprevalencenumberboth"].Interface())
}
