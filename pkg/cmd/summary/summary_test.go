package summary

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aarondl/opt/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

func sampleRows() []model.EnrichedStintFeature {
	feat := func(driver string, round int, compound string, slope float64) model.StintFeature {
		return model.StintFeature{
			Driver: driver, Round: round, Stint: 1, Compound: compound,
			StintLength: 12, StartLap: 1, EndLap: 12, AvgLapTime: 95, LapTimeSlope: slope,
		}
	}
	bahrain := &model.ContextRecord{
		Round: 1, TrackTemp: null.From(35.0), Humidity: null.From(30.0),
		WindSpeed: null.From(5.0), Conditions: "Clear",
	}
	return []model.EnrichedStintFeature{
		model.Enrich(feat("LEC", 1, "SOFT", 0.12), bahrain),
		model.Enrich(feat("HAM", 1, "MEDIUM", 0.08), bahrain),
		model.Enrich(feat("VER", 2, "SOFT", 0.2), nil),
		model.Enrich(feat("VER", 2, "HARD", 3.5), nil),
	}
}

func TestShow(t *testing.T) {
	labels := map[int]string{1: "Bahrain Grand Prix"}
	tests := []struct {
		name    string
		opts    options
		want    []string
		notWant []string
	}{
		{
			name: "by compound",
			opts: options{by: byCompound},
			want: []string{"LapTimeSlope by compound (4 stints)", "MEDIUM", "SOFT", "HARD"},
		},
		{
			name:    "by track falls back to round",
			opts:    options{by: byTrack},
			want:    []string{"Bahrain Grand Prix", "Round 2"},
			notWant: []string{"Round 1"},
		},
		{
			name:    "slope band",
			opts:    options{by: byCompound, slopeMin: -1, slopeMax: 1},
			want:    []string{"(3 stints)"},
			notWant: []string{"HARD"},
		},
		{
			name:    "with context only",
			opts:    options{by: byDriver, withContext: true},
			want:    []string{"LEC", "HAM"},
			notWant: []string{"VER"},
		},
		{
			name: "rank by round",
			opts: options{by: byRound, rank: true},
			want: []string{"LapTimeSlope by round"},
		},
		{
			name:    "drivers",
			opts:    options{by: byTrackCompound, drivers: []string{"VER"}},
			want:    []string{"Round 2 / SOFT", "(2 stints)"},
			notWant: []string{"Bahrain"},
		},
		{
			name: "compare",
			opts: options{compare: true, drivers: []string{"LEC", "HAM"}},
			want: []string{"LEC+HAM vs others"},
		},
		{
			name: "stint times",
			opts: options{stintTimes: true},
			want: []string{"Estimated total stint time", "1140"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, show(&buf, sampleRows(), labels, &tt.opts))
			out := buf.String()
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestShow_RankTracks(t *testing.T) {
	labels := map[int]string{1: "Bahrain Grand Prix"}
	var buf bytes.Buffer
	require.NoError(t, show(&buf, sampleRows(), labels, &options{by: byTrack, rank: true}))
	out := buf.String()
	// Round 2: mean(0.2, 3.5), Bahrain: mean(0.12, 0.08)
	assert.Less(t, strings.Index(out, "Round 2"), strings.Index(out, "Bahrain Grand Prix"))
	assert.Contains(t, out, "1.85")
}

func TestShow_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := show(&buf, sampleRows(), nil, &options{compare: true})
	assert.True(t, errors.Is(err, errCompareDrivers))

	err = show(&buf, sampleRows(), nil, &options{by: "team"})
	assert.ErrorContains(t, err, `unknown grouping "team"`)
}
