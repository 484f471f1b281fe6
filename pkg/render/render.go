// Package render prints run summaries and aggregation views as tables.
package render

import (
	"cmp"
	"fmt"
	"io"
	"math"

	"github.com/aarondl/opt/null"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/stintdeg/pkg/aggregate"
	"github.com/mpapenbr/stintdeg/pkg/pipeline"
)

const places = 4

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// Round formats v with at most 4 decimal places.
func Round(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).Round(places).String()
}

func roundNull(v null.Val[float64]) string {
	if x, ok := v.Get(); ok {
		return Round(x)
	}
	return "-"
}

// Summary prints the counters of a run. Sections without data (e.g. the
// lap counters of a merge) are left out.
func Summary(w io.Writer, s pipeline.Summary) {
	t := newTable(w, "Run summary")
	t.AppendHeader(table.Row{"Item", "Count"})
	if s.Stints > 0 || s.LapStats.Rows > 0 {
		t.AppendRows([]table.Row{
			{"lap rows", s.LapStats.Rows},
			{"laps loaded", s.LapStats.Loaded},
			{"laps without lap time", s.LapStats.InvalidLapTime},
			{"laps with invalid key", s.LapStats.InvalidKey},
			{"stints", s.Stints},
			{fmt.Sprintf("stints shorter than %d laps", s.MinLength), s.SkippedShort},
			{"stints without laps", s.SkippedNoLaps},
			{"stint length mismatches", s.LengthMismatches},
			{"degenerate fits", s.Degenerate},
		})
	}
	t.AppendRow(table.Row{"features", s.Features})
	if s.Enriched > 0 || s.ContextRecords > 0 {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"context records", s.ContextRecords},
			{"incomplete context records", s.ContextStats.Incomplete},
			{"enriched rows", s.Enriched},
			{"rows without context", s.Unmatched},
		})
		if len(s.UnmatchedRounds) > 0 {
			t.AppendRow(table.Row{"rounds without context", fmt.Sprint(s.UnmatchedRounds)})
		}
		if len(s.DuplicateContextRounds) > 0 {
			t.AppendRow(table.Row{"rounds with duplicate context", fmt.Sprint(s.DuplicateContextRounds)})
		}
	}
	t.Render()
}

func Describe[K cmp.Ordered](w io.Writer, title string, rows []aggregate.Summary[K]) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Group, r.Count,
			Round(r.Mean), Round(r.Std), Round(r.Min),
			Round(r.Q25), Round(r.Median), Round(r.Q75), Round(r.Max),
		})
	}
	t.Render()
}

func Means[K cmp.Ordered](w io.Writer, title string, rows []aggregate.GroupMean[K]) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"", "count", "mean slope"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Group, r.Count, Round(r.Mean)})
	}
	t.Render()
}

func Comparison(w io.Writer, groupName string, rows []aggregate.Comparison) {
	t := newTable(w, fmt.Sprintf("%s vs others (sec/lap)", groupName))
	t.AppendHeader(table.Row{"Compound", groupName, "Others", "Difference"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Compound, roundNull(r.Group), roundNull(r.Others), roundNull(r.Difference)})
	}
	t.Render()
}

func StintTimes(w io.Writer, rows []aggregate.LengthTime) {
	t := newTable(w, "Estimated total stint time")
	t.AppendHeader(table.Row{"Compound", "Stint length", "count", "mean time (s)"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Compound, r.StintLength, r.Count, Round(r.MeanStintTime)})
	}
	t.Render()
}
