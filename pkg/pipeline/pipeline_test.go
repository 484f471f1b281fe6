//nolint:funlen // ok for tests
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aarondl/opt/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/enrich"
	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/model"
)

func stint(driver string, round, stint, length int) model.StintRecord {
	return model.StintRecord{
		Driver: driver, Round: round, Stint: stint, Compound: "MEDIUM",
		StartLap: 1, EndLap: length, StintLength: length,
	}
}

func laps(driver string, round, stint int, times ...float64) []model.LapRecord {
	ret := make([]model.LapRecord, len(times))
	for i, lt := range times {
		ret[i] = model.LapRecord{Driver: driver, Round: round, Stint: stint, LapNumber: i + 1, LapTime: lt}
	}
	return ret
}

func sampleInput() Input {
	lapList := laps("LEC", 1, 1, 90, 90.5, 91, 91.5, 92)
	lapList = append(lapList, laps("HAM", 1, 1, 91, 91, 91)...)
	lapList = append(lapList, laps("VER", 7, 1, 95, 95.1, 95.2, 95.3, 95.4)...)
	// all laps share one lap number, no slope can be fitted
	for _, l := range laps("SAI", 1, 1, 93, 94, 95, 96, 97) {
		l.LapNumber = 3
		lapList = append(lapList, l)
	}
	mismatch := stint("VER", 7, 1, 5)
	mismatch.EndLap = 6
	return Input{
		Laps: &loader.LapTable{
			Laps:  lapList,
			Stats: loader.LoadStats{Rows: len(lapList) + 2, Loaded: len(lapList), InvalidLapTime: 2},
		},
		Stints: []model.StintRecord{
			stint("LEC", 1, 1, 5),
			stint("HAM", 1, 1, 3),
			mismatch,
			stint("NOR", 1, 2, 10),
			stint("SAI", 1, 1, 5),
		},
		Context: []model.ContextRecord{
			{
				Round: 1, TrackTemp: null.From(35.0), Humidity: null.From(30.0),
				WindSpeed: null.From(8.0), Conditions: "Clear",
			},
		},
	}
}

type testEnv struct {
	reader *sdkmetric.ManualReader
	spans  *tracetest.SpanRecorder
	logBuf *bytes.Buffer
	opts   []Option
}

func newTestEnv() *testEnv {
	ret := &testEnv{
		reader: sdkmetric.NewManualReader(),
		spans:  tracetest.NewSpanRecorder(),
		logBuf: &bytes.Buffer{},
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(ret.reader))
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(ret.spans))
	ret.opts = []Option{
		WithLogger(log.New(ret.logBuf, log.DebugLevel)),
		WithMeter(mp.Meter("test")),
		WithTracer(tp.Tracer("test")),
	}
	return ret
}

func (e *testEnv) counter(t *testing.T, name string, attr ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, e.reader.Collect(context.Background(), &rm))
	want := attribute.NewSet(attr...)
	var ret int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if len(attr) == 0 || dp.Attributes.Equals(&want) {
					ret += dp.Value
				}
			}
		}
	}
	return ret
}

func TestRun(t *testing.T) {
	env := newTestEnv()
	p, err := New(DefaultConfig(), env.opts...)
	require.NoError(t, err)

	got, err := p.Run(context.Background(), sampleInput())
	require.NoError(t, err)

	require.Len(t, got.Features, 2)
	assert.Equal(t, "LEC", got.Features[0].Driver)
	assert.InDelta(t, 0.5, got.Features[0].LapTimeSlope, 1e-9)
	assert.InDelta(t, 91, got.Features[0].AvgLapTime, 1e-9)
	assert.Equal(t, "VER", got.Features[1].Driver)

	require.Len(t, got.Enriched, len(got.Features))
	assert.True(t, got.Enriched[0].HasContext())
	assert.False(t, got.Enriched[1].HasContext())

	assert.Equal(t, Summary{
		LapStats:         sampleInput().Laps.Stats,
		Stints:           5,
		MinLength:        5,
		SkippedShort:     1,
		SkippedNoLaps:    1,
		LengthMismatches: 1,
		Degenerate:       1,
		Features:         2,
		ContextRecords:   1,
		Enriched:         2,
		Unmatched:        1,
		UnmatchedRounds:  []int{7},
	}, got.Summary)

	assert.Equal(t, int64(2), env.counter(t, "stintdeg.stints", attribute.String("outcome", "fitted")))
	assert.Equal(t, int64(1), env.counter(t, "stintdeg.stints", attribute.String("outcome", "degenerate")))
	assert.Equal(t, int64(1), env.counter(t, "stintdeg.context.unmatched"))
	assert.Equal(t, int64(2), env.counter(t, "stintdeg.laps.dropped", attribute.String("reason", "laptime")))

	names := make([]string, 0)
	for _, s := range env.spans.Ended() {
		names = append(names, s.Name())
	}
	assert.Subset(t, names, []string{"run", "build features", "segment", "fit", "enrich"})

	logs := env.logBuf.String()
	assert.Contains(t, logs, "stints missing weather data")
	assert.Contains(t, logs, "stint length does not match lap range")
	assert.Contains(t, logs, "no degradation fit possible")
}

func TestRun_AmbiguousContext(t *testing.T) {
	env := newTestEnv()
	in := sampleInput()
	in.Context = append(in.Context, model.ContextRecord{Round: 1, TrackTemp: null.From(36.0)})

	p, err := New(DefaultConfig(), env.opts...)
	require.NoError(t, err)
	got, err := p.Run(context.Background(), in)
	assert.True(t, errors.Is(err, enrich.ErrAmbiguousJoin))
	assert.Nil(t, got)

	cfg := DefaultConfig()
	cfg.DuplicateContext = enrich.PolicyFirst
	p, err = New(cfg, env.opts...)
	require.NoError(t, err)
	got, err = p.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got.Summary.DuplicateContextRounds)
	temp, _ := got.Enriched[0].TrackTemp.Get()
	assert.InDelta(t, 35, temp, 1e-12)
}

func TestRun_IncompleteContext(t *testing.T) {
	env := newTestEnv()
	in := sampleInput()
	in.Context[0].Humidity = null.Val[float64]{}
	in.ContextStats = loader.ContextStats{Rows: 1, Incomplete: 1}

	p, err := New(DefaultConfig(), env.opts...)
	require.NoError(t, err)
	got, err := p.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, in.ContextStats, got.Summary.ContextStats)
	assert.True(t, got.Enriched[0].HasContext())
	assert.True(t, got.Enriched[0].Humidity.IsNull())
	assert.InDelta(t, 35, got.Enriched[0].TrackTemp.GetOrZero(), 1e-12)
	assert.Contains(t, env.logBuf.String(), "context records with missing measurements")
}

func TestRun_Cancelled(t *testing.T) {
	env := newTestEnv()
	p, err := New(DefaultConfig(), env.opts...)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := p.Run(ctx, sampleInput())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestRun_NoLaps(t *testing.T) {
	env := newTestEnv()
	p, err := New(DefaultConfig(), env.opts...)
	require.NoError(t, err)
	in := sampleInput()
	in.Laps = nil
	got, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, got.Features)
	assert.Empty(t, got.Enriched)
	assert.Equal(t, 4, got.Summary.SkippedNoLaps)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"first policy", func(c *Config) { c.DuplicateContext = enrich.PolicyFirst }, false},
		{"min length too small", func(c *Config) { c.MinStintLength = 1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"unknown policy", func(c *Config) { c.DuplicateContext = "last" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			_, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
