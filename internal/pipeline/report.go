package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"heartpanel/domain/panel"
	"heartpanel/domain/run"
	"heartpanel/internal/impute"
)

// Coverage summarizes how complete the final panel is
type Coverage struct {
	MeanImprovement   float64 // percent of missing cells filled, averaged over columns that had gaps
	MedianImprovement float64
	MeanCompleteness  float64 // percent of non-null cells per column, averaged
	MinCompleteness   float64
}

// ComputeCoverage derives coverage statistics from the imputation stats and the final panel
func ComputeCoverage(st *impute.Stats, t *panel.Table) Coverage {
	var cov Coverage
	if st != nil {
		var improvements stats.Float64Data
		for _, c := range st.Columns {
			if c.MissingBefore > 0 {
				improvements = append(improvements, c.Improvement())
			}
		}
		if len(improvements) > 0 {
			cov.MeanImprovement, _ = stats.Mean(improvements)
			cov.MedianImprovement, _ = stats.Median(improvements)
		}
	}
	if t != nil && t.Len() > 0 {
		var completeness stats.Float64Data
		for _, c := range t.Columns {
			completeness = append(completeness, float64(t.Len()-t.NullCount(c))/float64(t.Len())*100)
		}
		cov.MeanCompleteness, _ = stats.Mean(completeness)
		cov.MinCompleteness, _ = stats.Min(completeness)
	}
	return cov
}

// BuildReport renders the run as Markdown: totals, coverage, per-column fills and stage timings.
func BuildReport(rm *run.Manifest, st *impute.Stats, t *panel.Table) string {
	var b strings.Builder
	cov := ComputeCoverage(st, t)

	b.WriteString("# Imputation Report\n\n")
	fmt.Fprintf(&b, "- **Run:** `%s`\n", rm.RunID)
	fmt.Fprintf(&b, "- **Fingerprint:** `%s`\n", shortHash(rm.Fingerprint.Fingerprint.String()))
	fmt.Fprintf(&b, "- **Sources:** %s\n", strings.Join(rm.Sources, ", "))
	fmt.Fprintf(&b, "- **Entities:** %d\n", rm.Entities)
	fmt.Fprintf(&b, "- **Rows:** %d\n", rm.Rows)
	fmt.Fprintf(&b, "- **Columns:** %d\n", rm.Columns)
	fmt.Fprintf(&b, "- **Cells filled:** %d\n\n", rm.CellsFilled)

	b.WriteString("## Coverage\n\n")
	b.WriteString("| Statistic | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Mean improvement | %.2f%% |\n", cov.MeanImprovement)
	fmt.Fprintf(&b, "| Median improvement | %.2f%% |\n", cov.MedianImprovement)
	fmt.Fprintf(&b, "| Mean completeness | %.2f%% |\n", cov.MeanCompleteness)
	fmt.Fprintf(&b, "| Min completeness | %.2f%% |\n\n", cov.MinCompleteness)

	if st != nil && len(st.Columns) > 0 {
		b.WriteString("## Columns\n\n")
		b.WriteString("| Column | Kind | Missing before | Missing after | Spline | Blend | Mode | Carry | Improvement |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, c := range st.Columns {
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %d | %d | %.2f%% |\n",
				c.Column, c.Kind, c.MissingBefore, c.MissingAfter,
				c.SplineFilled, c.BlendFilled, c.ModeFilled, c.CarryFilled, c.Improvement())
		}
		b.WriteString("\n")
	}

	if len(rm.Stages) > 0 {
		b.WriteString("## Stages\n\n")
		b.WriteString("| Stage | Duration | Rows | Columns |\n|---|---:|---:|---:|\n")
		for _, s := range rm.Stages {
			fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", s.Stage, s.Duration.Round(time.Microsecond), s.Rows, s.Columns)
		}
	}
	return b.String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
