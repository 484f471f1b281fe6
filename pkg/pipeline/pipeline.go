// Package pipeline runs the stint feature extraction: segmenting the laps
// into stints, fitting the degradation per stint and joining the features
// with the per round context.
package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/enrich"
	"github.com/mpapenbr/stintdeg/pkg/features"
	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/segment"
)

type (
	Option   func(*Pipeline)
	Pipeline struct {
		cfg     Config
		logger  *log.Logger
		tracer  trace.Tracer
		meter   metric.Meter
		metrics *instruments
	}
	instruments struct {
		stints     metric.Int64Counter
		lapsDrop   metric.Int64Counter
		unmatched  metric.Int64Counter
		duplicates metric.Int64Counter
	}
)

func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

func WithMeter(m metric.Meter) Option {
	return func(p *Pipeline) {
		p.meter = m
	}
}

func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	ret := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = log.Default().Named("pipeline")
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("stintdeg")
	}
	if ret.meter == nil {
		ret.meter = otel.Meter("stintdeg")
	}
	var err error
	if ret.metrics, err = newInstruments(ret.meter); err != nil {
		return nil, err
	}
	return ret, nil
}

func newInstruments(m metric.Meter) (ret *instruments, err error) {
	ret = &instruments{}
	if ret.stints, err = m.Int64Counter("stintdeg.stints",
		metric.WithDescription("Number of processed stints by outcome"),
		metric.WithUnit("{stint}")); err != nil {
		return nil, err
	}
	if ret.lapsDrop, err = m.Int64Counter("stintdeg.laps.dropped",
		metric.WithDescription("Number of lap rows dropped while loading"),
		metric.WithUnit("{lap}")); err != nil {
		return nil, err
	}
	if ret.unmatched, err = m.Int64Counter("stintdeg.context.unmatched",
		metric.WithDescription("Number of stint features without context"),
		metric.WithUnit("{stint}")); err != nil {
		return nil, err
	}
	if ret.duplicates, err = m.Int64Counter("stintdeg.context.duplicates",
		metric.WithDescription("Number of rounds with multiple context records"),
		metric.WithUnit("{round}")); err != nil {
		return nil, err
	}
	return ret, nil
}

// Features holds the outcome of the feature stage.
type Features struct {
	Features []model.StintFeature
	Summary  Summary
}

// BuildFeatures segments the laps, fits every retained stint and returns the
// StintFeature table. Per stint problems are logged and counted, they do
// not abort the run.
func (p *Pipeline) BuildFeatures(
	ctx context.Context,
	laps *loader.LapTable,
	stints []model.StintRecord,
) (*Features, error) {
	ctx, span := p.tracer.Start(ctx, "build features")
	defer span.End()

	if laps == nil {
		laps = &loader.LapTable{}
	}

	sum := Summary{
		Stints:    len(stints),
		LapStats:  laps.Stats,
		MinLength: p.cfg.MinStintLength,
	}
	p.metrics.lapsDrop.Add(ctx, int64(laps.Stats.InvalidLapTime),
		metric.WithAttributes(attribute.String("reason", "laptime")))
	p.metrics.lapsDrop.Add(ctx, int64(laps.Stats.InvalidKey),
		metric.WithAttributes(attribute.String("reason", "key")))
	if laps.Stats.Dropped() > 0 {
		p.logger.Info("dropped lap rows",
			log.Int("invalidLapTime", laps.Stats.InvalidLapTime),
			log.Int("invalidKey", laps.Stats.InvalidKey))
	}

	_, segSpan := p.tracer.Start(ctx, "segment")
	seg := segment.Split(stints, laps.Laps, p.cfg.MinStintLength)
	segSpan.End()

	for _, m := range seg.LengthMismatches {
		p.logger.Warn("stint length does not match lap range",
			stintFields(m.Key,
				log.Int("stintLength", m.StintLength),
				log.Int("lapSpan", m.LapSpan))...)
	}
	for _, k := range seg.SkippedShort {
		p.logger.Debug("stint too short", stintFields(k)...)
	}
	for _, k := range seg.SkippedNoLaps {
		p.logger.Debug("stint without laps", stintFields(k)...)
	}
	sum.LengthMismatches = len(seg.LengthMismatches)
	sum.SkippedShort = len(seg.SkippedShort)
	sum.SkippedNoLaps = len(seg.SkippedNoLaps)

	fitCtx, fitSpan := p.tracer.Start(ctx, "fit")
	table, err := features.Build(fitCtx, seg.Segments, features.WithWorkers(p.cfg.Workers))
	fitSpan.End()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, d := range table.Degenerate {
		p.logger.Warn("no degradation fit possible",
			stintFields(d.Key, log.ErrorField(d.Err))...)
	}
	sum.Degenerate = len(table.Degenerate)
	sum.Features = len(table.Features)

	p.countStints(ctx, "fitted", sum.Features)
	p.countStints(ctx, "degenerate", sum.Degenerate)
	p.countStints(ctx, "short", sum.SkippedShort)
	p.countStints(ctx, "nolaps", sum.SkippedNoLaps)
	span.SetAttributes(
		attribute.Int("stints", sum.Stints),
		attribute.Int("features", sum.Features))

	p.logger.Info("features built",
		log.Int("stints", sum.Stints),
		log.Int("features", sum.Features),
		log.Int("skippedShort", sum.SkippedShort),
		log.Int("skippedNoLaps", sum.SkippedNoLaps),
		log.Int("degenerate", sum.Degenerate))
	return &Features{Features: table.Features, Summary: sum}, nil
}

// Enrich left-joins the features with the context records. The row count
// of the result always equals the number of features.
func (p *Pipeline) Enrich(
	ctx context.Context,
	feats []model.StintFeature,
	records []model.ContextRecord,
) (*enrich.Result, error) {
	ctx, span := p.tracer.Start(ctx, "enrich")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := enrich.LeftJoin(feats, records, p.cfg.DuplicateContext)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("context merge failed", log.ErrorField(err))
		return nil, err
	}
	if n := len(res.DuplicateRounds); n > 0 {
		p.metrics.duplicates.Add(ctx, int64(n))
		p.logger.Warn("multiple context records, using the first one",
			log.Ints("rounds", res.DuplicateRounds))
	}
	if res.Unmatched.Count > 0 {
		p.metrics.unmatched.Add(ctx, int64(res.Unmatched.Count))
		p.logger.Warn("stints missing weather data",
			log.Int("count", res.Unmatched.Count),
			log.Ints("rounds", res.Unmatched.Rounds))
	}
	span.SetAttributes(attribute.Int("unmatched", res.Unmatched.Count))
	return &res, nil
}

// Result is the outcome of a complete run.
type Result struct {
	Features []model.StintFeature
	Enriched []model.EnrichedStintFeature
	Summary  Summary
}

// Run executes all stages. A cancelled context or a fatal error returns no
// tables at all.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "run")
	defer span.End()

	feats, err := p.BuildFeatures(ctx, in.Laps, in.Stints)
	if err != nil {
		return nil, err
	}
	joined, err := p.Enrich(ctx, feats.Features, in.Context)
	if err != nil {
		return nil, err
	}
	sum := feats.Summary
	sum.ContextRecords = len(in.Context)
	sum.ContextStats = in.ContextStats
	if n := in.ContextStats.Incomplete; n > 0 {
		p.logger.Warn("context records with missing measurements", log.Int("count", n))
	}
	sum.Enriched = len(joined.Rows)
	sum.Unmatched = joined.Unmatched.Count
	sum.UnmatchedRounds = joined.Unmatched.Rounds
	sum.DuplicateContextRounds = joined.DuplicateRounds
	return &Result{
		Features: feats.Features,
		Enriched: joined.Rows,
		Summary:  sum,
	}, nil
}

// Input are the materialized tables of a run.
type Input struct {
	Laps         *loader.LapTable
	Stints       []model.StintRecord
	Context      []model.ContextRecord
	ContextStats loader.ContextStats
}

func (p *Pipeline) countStints(ctx context.Context, outcome string, n int) {
	p.metrics.stints.Add(ctx, int64(n),
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func stintFields(k model.StintKey, more ...log.Field) []log.Field {
	return append([]log.Field{
		log.String("driver", k.Driver),
		log.Int("round", k.Round),
		log.Int("stint", k.Stint),
	}, more...)
}
