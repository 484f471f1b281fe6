//nolint:funlen // ok for tests
package features

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/segment"
)

func seg(driver string, stint int, times ...float64) segment.Segment {
	s := model.StintRecord{
		Driver: driver, Round: 1, Stint: stint, Compound: "SOFT",
		StartLap: 1, EndLap: len(times), StintLength: len(times),
	}
	laps := make([]model.LapRecord, len(times))
	for i, lt := range times {
		laps[i] = model.LapRecord{Driver: driver, Round: 1, Stint: stint, LapNumber: i + 1, LapTime: lt}
	}
	return segment.Segment{Stint: s, Laps: laps}
}

func TestBuild(t *testing.T) {
	segments := []segment.Segment{
		seg("LEC", 1, 90.0, 90.5, 91.0, 91.5, 92.0),
		seg("HAM", 1, 91.0, 91.0, 91.0, 91.0, 91.0),
	}
	// a stint whose laps all share one lap number
	bad := seg("VER", 2, 92, 93, 94, 95, 96)
	for i := range bad.Laps {
		bad.Laps[i].LapNumber = 3
	}
	segments = append(segments, bad)

	got, err := Build(context.Background(), segments, WithWorkers(2))
	require.NoError(t, err)

	want := []model.StintFeature{
		{
			Driver: "LEC", Round: 1, Stint: 1, Compound: "SOFT", StintLength: 5,
			StartLap: 1, EndLap: 5, AvgLapTime: 91.0, LapTimeSlope: 0.5,
		},
		{
			Driver: "HAM", Round: 1, Stint: 1, Compound: "SOFT", StintLength: 5,
			StartLap: 1, EndLap: 5, AvgLapTime: 91.0, LapTimeSlope: 0,
		},
	}
	if diff := cmp.Diff(want, got.Features, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, got.Degenerate, 1)
	assert.Equal(t, bad.Stint.Key(), got.Degenerate[0].Key)
	assert.Equal(t, 5, got.Degenerate[0].Err.Laps)
}

func TestBuild_ParallelMatchesSequential(t *testing.T) {
	segments := make([]segment.Segment, 0, 100)
	for i := 0; i < 100; i++ {
		times := make([]float64, 5+i%7)
		for j := range times {
			times[j] = 90 + float64(j)*0.01*float64(i%5) + float64(j%2)*0.2
		}
		segments = append(segments, seg(fmt.Sprintf("D%02d", i), i, times...))
	}
	seq, err := Build(context.Background(), segments, WithWorkers(1))
	require.NoError(t, err)
	par, err := Build(context.Background(), segments, WithWorkers(8))
	require.NoError(t, err)

	assert.Len(t, par.Features, 100)
	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel build differs (-seq +par):\n%s", diff)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, []segment.Segment{seg("LEC", 1, 90, 91, 92, 93, 94)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Empty(t *testing.T) {
	got, err := Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got.Features)
	assert.Empty(t, got.Degenerate)
}

func TestFold(t *testing.T) {
	f := model.StintFeature{Driver: "LEC", Round: 2, Stint: 1}
	d := DegenerateStint{Key: model.StintKey{Driver: "HAM", Round: 2, Stint: 3}}
	got := Fold([]Outcome{{Feature: &f}, {Degenerate: &d}, {}})
	assert.Equal(t, []model.StintFeature{f}, got.Features)
	assert.Equal(t, []DegenerateStint{d}, got.Degenerate)
}
