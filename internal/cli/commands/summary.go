package commands

import (
	"fmt"
	"strconv"

	"github.com/arkstack-labs/arklens/internal/cli/output"
	"github.com/arkstack-labs/arklens/internal/dataset"
	"github.com/arkstack-labs/arklens/internal/pipeline"
)

// jsonGroup is the JSON shape of one group count.
type jsonGroup struct {
	Labels []string `json:"labels"`
	Count  int      `json:"count"`
}

// jsonReport is the JSON shape of a pipeline result.
type jsonReport struct {
	RunID       string                  `json:"run_id"`
	RosterRows  int                     `json:"roster_rows"`
	StatusRows  int                     `json:"status_rows"`
	RosterDupes int                     `json:"roster_duplicates_removed"`
	StatusDupes int                     `json:"status_duplicates_removed"`
	MergedRows  int                     `json:"merged_rows"`
	Unmatched   int                     `json:"unmatched_rows"`
	Assessed    int                     `json:"assessed_rows"`
	RiskCounts  []jsonGroup             `json:"risk_counts"`
	TrendCounts []jsonGroup             `json:"trend_counts"`
	RiskTrend   []jsonGroup             `json:"risk_trend_counts"`
	Columns     []dataset.ColumnSummary `json:"merged_columns,omitempty"`
}

func toJSONGroups(counts []dataset.GroupCount) []jsonGroup {
	out := make([]jsonGroup, 0, len(counts))
	for _, g := range counts {
		labels := make([]string, len(g.Keys))
		for i, k := range g.Keys {
			if k.Valid {
				labels[i] = k.S
			}
		}
		out = append(out, jsonGroup{Labels: labels, Count: g.Count})
	}
	return out
}

// printSummary writes the descriptive statistics of a run: table shape,
// per-column null/distinct counts, and the three group-count tables.
func printSummary(r *output.Renderer, res *pipeline.Result) error {
	if r.EffectiveMode() == output.ModeJSON {
		report := jsonReport{
			RunID:       res.ID,
			RosterRows:  res.RosterRows,
			StatusRows:  res.StatusRows,
			RosterDupes: res.RosterDupes,
			StatusDupes: res.StatusDupes,
			MergedRows:  res.MergedRows,
			Unmatched:   res.Unmatched,
			Assessed:    res.Assessed,
			RiskCounts:  toJSONGroups(res.RiskCounts),
			TrendCounts: toJSONGroups(res.TrendCounts),
			RiskTrend:   toJSONGroups(res.RiskTrendCounts),
		}
		if res.Merged != nil {
			report.Columns = res.Merged.Summarize()
		}
		return r.JSON(report)
	}

	r.Header(1, fmt.Sprintf("Merged dataset (%d rows)", res.MergedRows))
	r.Println()
	r.Printf("Roster: %d rows (%d duplicates removed)\n", res.RosterRows, res.RosterDupes)
	r.Printf("Status: %d rows (%d duplicates removed)\n", res.StatusRows, res.StatusDupes)
	r.Printf("Assessed: %d rows, unmatched: %d\n", res.Assessed, res.Unmatched)
	r.Println()

	if res.Merged != nil {
		r.Header(2, "Columns")
		r.Println()
		rows := make([][]string, 0, len(res.Merged.Columns()))
		for _, cs := range res.Merged.Summarize() {
			rows = append(rows, []string{cs.Name, strconv.Itoa(cs.Nulls), strconv.Itoa(cs.Distinct)})
		}
		r.Table([]string{"column", "nulls", "distinct"}, rows)
		r.Println()
	}

	printCounts(r, "Risk categories", res.RiskCounts, res.Assessed)
	printCounts(r, "Population trends", res.TrendCounts, res.Assessed)
	printCounts(r, "Risk x trend", res.RiskTrendCounts, res.Assessed)

	if res.Unmatched > 0 {
		r.Warnf("%d roster rows have no conservation-status match", res.Unmatched)
	}
	return nil
}

func printCounts(r *output.Renderer, title string, counts []dataset.GroupCount, denom int) {
	r.Header(2, title)
	r.Println()
	rows := make([][]string, 0, len(counts))
	for _, g := range counts {
		pct := "-"
		if denom > 0 && allValid(g.Keys) {
			pct = fmt.Sprintf("%.1f%%", float64(g.Count)/float64(denom)*100)
		}
		rows = append(rows, []string{g.Label("(none)"), strconv.Itoa(g.Count), pct})
	}
	r.Table([]string{"group", "count", "% of assessed"}, rows)
	r.Println()
}

func allValid(keys []dataset.Value) bool {
	for _, k := range keys {
		if !k.Valid {
			return false
		}
	}
	return true
}
