package aggregate

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

func ForDrivers(rows []model.EnrichedStintFeature, drivers ...string) []model.EnrichedStintFeature {
	return lo.Filter(rows, func(r model.EnrichedStintFeature, _ int) bool {
		return lo.Contains(drivers, r.Driver)
	})
}

func ExcludeDrivers(rows []model.EnrichedStintFeature, drivers ...string) []model.EnrichedStintFeature {
	return lo.Reject(rows, func(r model.EnrichedStintFeature, _ int) bool {
		return lo.Contains(drivers, r.Driver)
	})
}

// SlopeWithin keeps the rows with min <= LapTimeSlope <= max.
func SlopeWithin(rows []model.EnrichedStintFeature, minSlope, maxSlope float64) []model.EnrichedStintFeature {
	return lo.Filter(rows, func(r model.EnrichedStintFeature, _ int) bool {
		return r.LapTimeSlope >= minSlope && r.LapTimeSlope <= maxSlope
	})
}

// WithContext drops the rows without weather data.
func WithContext(rows []model.EnrichedStintFeature) []model.EnrichedStintFeature {
	return lo.Filter(rows, func(r model.EnrichedStintFeature, _ int) bool {
		return r.HasContext()
	})
}
