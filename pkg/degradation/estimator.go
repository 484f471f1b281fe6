// Package degradation estimates the tire degradation of a stint as the
// slope of a least squares line through (LapNumber, LapTime).
package degradation

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

var (
	ErrNoLaps        = errors.New("no laps to fit")
	ErrDegenerateFit = errors.New("degenerate fit")
)

// DegenerateFitError is returned when a stint doesn't provide enough
// distinct lap numbers to define a slope.
type DegenerateFitError struct {
	Laps               int
	DistinctLapNumbers int
	Reason             string
}

func (e *DegenerateFitError) Error() string {
	return fmt.Sprintf("degenerate fit (%d laps, %d distinct lap numbers): %s",
		e.Laps, e.DistinctLapNumbers, e.Reason)
}

func (e *DegenerateFitError) Is(target error) bool {
	return target == ErrDegenerateFit
}

type Fit struct {
	Slope      float64 // seconds per lap
	Intercept  float64
	AvgLapTime float64
	Laps       int
}

// Estimate fits LapTime = Intercept + Slope*LapNumber by ordinary least squares.
// No weighting and no outlier rejection is applied.
func Estimate(laps []model.LapRecord) (Fit, error) {
	if len(laps) == 0 {
		return Fit{}, ErrNoLaps
	}
	x := make([]float64, len(laps))
	y := make([]float64, len(laps))
	for i, l := range laps {
		x[i] = float64(l.LapNumber)
		y[i] = l.LapTime
	}
	distinct := len(lo.Uniq(x))
	if distinct < 2 {
		return Fit{}, &DegenerateFitError{
			Laps:               len(laps),
			DistinctLapNumbers: distinct,
			Reason:             "slope needs at least two distinct lap numbers",
		}
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	ret := Fit{
		Slope:      beta,
		Intercept:  alpha,
		AvgLapTime: stat.Mean(y, nil),
		Laps:       len(laps),
	}
	if !isFinite(ret.Slope) || !isFinite(ret.Intercept) || !isFinite(ret.AvgLapTime) {
		return Fit{}, &DegenerateFitError{
			Laps:               len(laps),
			DistinctLapNumbers: distinct,
			Reason:             "non finite result",
		}
	}
	return ret, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
