package render

import (
	"bytes"
	"math"
	"testing"

	"github.com/aarondl/opt/null"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/stintdeg/pkg/aggregate"
	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/pipeline"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"round down", 0.123449, "0.1234"},
		{"round up", 0.12345, "0.1235"},
		{"negative", -0.0612345, "-0.0612"},
		{"integer", 91, "91"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round(tt.v))
		})
	}
}

func TestComparison(t *testing.T) {
	var buf bytes.Buffer
	Comparison(&buf, "LEC,HAM", []aggregate.Comparison{
		{Compound: "HARD", Others: null.From(0.02)},
		{Compound: "SOFT", Group: null.From(0.3), Others: null.From(0.2), Difference: null.From(0.1)},
	})
	out := buf.String()
	assert.Contains(t, out, "LEC,HAM vs others")
	assert.Contains(t, out, "HARD")
	assert.Contains(t, out, "0.02")
	assert.Contains(t, out, "-")
}

func TestDescribe(t *testing.T) {
	var buf bytes.Buffer
	Describe(&buf, "LapTimeSlope by compound", []aggregate.Summary[string]{
		{Group: "SOFT", Count: 4, Mean: 0.25, Std: 0.129099, Min: 0.1, Q25: 0.175, Median: 0.25, Q75: 0.325, Max: 0.4},
		{Group: "HARD", Count: 1, Mean: 0.05, Std: math.NaN(), Min: 0.05, Q25: 0.05, Median: 0.05, Q75: 0.05, Max: 0.05},
	})
	out := buf.String()
	assert.Contains(t, out, "SOFT")
	assert.Contains(t, out, "0.1291")
	assert.Contains(t, out, "NaN")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, pipeline.Summary{
		Stints: 12, Features: 9, MinLength: 5, ContextRecords: 3, Unmatched: 2,
		ContextStats: loader.ContextStats{Rows: 3, Incomplete: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "stints shorter than 5 laps")
	assert.Contains(t, out, "rows without context")
	assert.Contains(t, out, "incomplete context records")
}

func TestSummary_MergeOnly(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, pipeline.Summary{Features: 9, ContextRecords: 3, Enriched: 9, Unmatched: 2, UnmatchedRounds: []int{7}})
	out := buf.String()
	assert.NotContains(t, out, "lap rows")
	assert.Contains(t, out, "rounds without context")
	assert.Contains(t, out, "[7]")
}
