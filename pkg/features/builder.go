// Package features turns segmented stints into the StintFeature table.
package features

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/stintdeg/pkg/degradation"
	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/segment"
)

type (
	// DegenerateStint is a stint which was dropped because no slope could be fitted.
	DegenerateStint struct {
		Key model.StintKey
		Err *degradation.DegenerateFitError
	}
	Table struct {
		Features   []model.StintFeature
		Degenerate []DegenerateStint
	}
	// Outcome is the result of fitting a single segment. Exactly one of
	// Feature and Degenerate is set.
	Outcome struct {
		Feature    *model.StintFeature
		Degenerate *DegenerateStint
	}
	Option  func(*builder)
	builder struct {
		workers int
	}
)

// WithWorkers limits the number of stints fitted in parallel.
// Values < 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *builder) {
		b.workers = n
	}
}

// Build fits every segment independently (in parallel) and folds the
// outcomes into a Table. Degenerate fits are collected, any other error
// aborts the build.
func Build(ctx context.Context, segments []segment.Segment, opts ...Option) (Table, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers < 1 {
		b.workers = runtime.GOMAXPROCS(0)
	}
	outcomes, err := b.fitAll(ctx, segments)
	if err != nil {
		return Table{}, err
	}
	return Fold(outcomes), nil
}

// every goroutine owns exactly one slot of the result slice
func (b *builder) fitAll(ctx context.Context, segments []segment.Segment) ([]Outcome, error) {
	ret := make([]Outcome, len(segments))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range segments {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			o, err := FitSegment(segments[i])
			if err != nil {
				return err
			}
			ret[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// FitSegment computes the feature of a single segment.
func FitSegment(seg segment.Segment) (Outcome, error) {
	fit, err := degradation.Estimate(seg.Laps)
	if err != nil {
		var dfe *degradation.DegenerateFitError
		if errors.As(err, &dfe) {
			return Outcome{Degenerate: &DegenerateStint{Key: seg.Stint.Key(), Err: dfe}}, nil
		}
		return Outcome{}, err
	}
	s := seg.Stint
	return Outcome{Feature: &model.StintFeature{
		Driver:       s.Driver,
		Round:        s.Round,
		Stint:        s.Stint,
		Compound:     s.Compound,
		StintLength:  s.StintLength,
		StartLap:     s.StartLap,
		EndLap:       s.EndLap,
		AvgLapTime:   fit.AvgLapTime,
		LapTimeSlope: fit.Slope,
	}}, nil
}

// Fold accumulates outcomes into a Table, keeping their order.
func Fold(outcomes []Outcome) Table {
	acc := Table{Features: make([]model.StintFeature, 0, len(outcomes))}
	for _, o := range outcomes {
		acc = acc.add(o)
	}
	return acc
}

func (t Table) add(o Outcome) Table {
	switch {
	case o.Feature != nil:
		t.Features = append(t.Features, *o.Feature)
	case o.Degenerate != nil:
		t.Degenerate = append(t.Degenerate, *o.Degenerate)
	}
	return t
}
