package tabular

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aarondl/opt/null"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/model"
)

var sampleFeatures = []model.StintFeature{
	{
		Driver: "LEC", Round: 1, Stint: 1, Compound: "MEDIUM", StintLength: 18,
		StartLap: 1, EndLap: 18, AvgLapTime: 97.12345678901234, LapTimeSlope: 0.0612345,
	},
	{
		Driver: "NA", Round: 7, Stint: 2, Compound: "HARD", StintLength: 25,
		StartLap: 19, EndLap: 43, AvgLapTime: 95.5, LapTimeSlope: -0.00001234,
	},
}

func TestWriteFeatures_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, sampleFeatures))
	assert.True(t, strings.HasPrefix(buf.String(),
		"Driver,Round,Stint,Compound,StintLength,StartLap,EndLap,AvgLapTime,LapTimeSlope\n"))

	got, err := loader.LoadFeatures(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleFeatures, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteEnriched_RoundTrip(t *testing.T) {
	want := []model.EnrichedStintFeature{
		model.Enrich(sampleFeatures[0], &model.ContextRecord{
			Round: 1, TrackTemp: null.From(28.333333333333332),
			Humidity: null.From(45.1), WindSpeed: null.From(12.0),
			Conditions: "Partially cloudy,Clear",
		}),
		model.Enrich(sampleFeatures[1], nil),
		// joined, but without conditions text
		model.Enrich(otherStint(sampleFeatures[0], 5), &model.ContextRecord{
			Round: 1, TrackTemp: null.From(30.5), Humidity: null.From(40.0),
			WindSpeed: null.From(3.0),
		}),
		// joined, no measurements at all
		model.Enrich(otherStint(sampleFeatures[0], 6), &model.ContextRecord{Round: 1}),
		// joined, single measurement missing
		model.Enrich(otherStint(sampleFeatures[0], 7), &model.ContextRecord{
			Round: 1, TrackTemp: null.From(30.5), WindSpeed: null.From(3.0),
			Conditions: "Rain",
		}),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, want))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[0], ",TrackTemp,Humidity,WindSpeed,Conditions"))
	assert.True(t, strings.HasSuffix(lines[1], `,"Partially cloudy,Clear"`))
	assert.True(t, strings.HasSuffix(lines[2], ",,,,"))
	assert.True(t, strings.HasSuffix(lines[3], ",30.5,40,3,"))
	assert.True(t, strings.HasSuffix(lines[4], ",NaN,NaN,NaN,"))
	assert.True(t, strings.HasSuffix(lines[5], ",30.5,NaN,3,Rain"))

	got, err := loader.LoadEnriched(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].StintFeature, got[i].StintFeature)
		assert.Equal(t, want[i].TrackTemp.Ptr(), got[i].TrackTemp.Ptr())
		assert.Equal(t, want[i].Humidity.Ptr(), got[i].Humidity.Ptr())
		assert.Equal(t, want[i].WindSpeed.Ptr(), got[i].WindSpeed.Ptr())
		assert.Equal(t, want[i].Conditions.Ptr(), got[i].Conditions.Ptr())
		assert.Equal(t, want[i].HasContext(), got[i].HasContext())
	}
}

func otherStint(f model.StintFeature, stint int) model.StintFeature {
	f.Stint = stint
	return f
}

func TestWriteFeaturesFile_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "processed", "features.csv")
	require.NoError(t, WriteFeaturesFile(path, sampleFeatures))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := loader.LoadFeatures(f)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWriteEnrichedFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "enriched.csv")
	require.NoError(t, WriteEnrichedFile(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Driver,Round,Stint,Compound,StintLength,StartLap,EndLap,AvgLapTime,LapTimeSlope,"+
			"TrackTemp,Humidity,WindSpeed,Conditions\n",
		string(data))
}

func TestWriteContext_RoundTrip(t *testing.T) {
	want := []model.ContextRecord{
		{
			Round: 1, TrackTemp: null.From(31.5), Humidity: null.From(40.0),
			WindSpeed: null.From(8.25), Conditions: "Clear",
		},
		{
			Round: 2, TrackTemp: null.From(24.1), Humidity: null.From(77.3),
			WindSpeed: null.From(14.0), Conditions: "Rain,Overcast",
		},
		{Round: 3, TrackTemp: null.From(20.0), WindSpeed: null.From(2.5)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteContext(&buf, want))
	assert.True(t, strings.HasPrefix(buf.String(),
		"Round,TrackTemp,Humidity,WindSpeed,Conditions\n"))

	got, err := loader.LoadContext(&buf)
	require.NoError(t, err)
	assert.Equal(t, loader.ContextStats{Rows: 3, Incomplete: 1}, got.Stats)
	nullFloats := cmp.Transformer("nullFloat", func(v null.Val[float64]) *float64 {
		return v.Ptr()
	})
	if diff := cmp.Diff(want, got.Records, nullFloats); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
