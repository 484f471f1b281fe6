// Package weather condenses hourly race day observations into the per round
// context records used to enrich the stint features.
package weather

import (
	"slices"
	"strings"

	"github.com/aarondl/opt/null"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

// Window is the inclusive range of hours considered to be race time.
type Window struct {
	From int `validate:"gte=0,lte=23"`
	To   int `validate:"gte=0,lte=23,gtefield=From"`
}

// DefaultWindow assumes a 14:00 race start, +- 1 hour.
var DefaultWindow = Window{From: 13, To: 15}

var validate = validator.New()

func (w Window) Validate() error {
	return validate.Struct(w)
}

func (w Window) Contains(hour int) bool {
	return hour >= w.From && hour <= w.To
}

// Condense averages the observations inside the window per round.
// Conditions holds the distinct conditions of these hours in order of
// appearance, joined by ",". Rounds without any observation inside the
// window are returned as skipped. Both results are sorted by round.
func Condense(hours []model.HourlyObservation, window Window) (
	records []model.ContextRecord, skipped []int,
) {
	byRound := lo.GroupBy(hours, func(h model.HourlyObservation) int { return h.Round })
	rounds := lo.Keys(byRound)
	slices.Sort(rounds)

	records = make([]model.ContextRecord, 0, len(rounds))
	for _, round := range rounds {
		selected := lo.Filter(byRound[round], func(h model.HourlyObservation, _ int) bool {
			return window.Contains(h.Hour)
		})
		if len(selected) == 0 {
			skipped = append(skipped, round)
			continue
		}
		records = append(records, condense(round, selected))
	}
	return records, skipped
}

func condense(round int, hours []model.HourlyObservation) model.ContextRecord {
	mean := func(get func(model.HourlyObservation) float64) null.Val[float64] {
		return null.From(stat.Mean(lo.Map(hours, func(h model.HourlyObservation, _ int) float64 {
			return get(h)
		}), nil))
	}
	conditions := lo.Uniq(lo.FilterMap(hours, func(h model.HourlyObservation, _ int) (string, bool) {
		return h.Conditions, h.Conditions != ""
	}))
	return model.ContextRecord{
		Round:      round,
		TrackTemp:  mean(func(h model.HourlyObservation) float64 { return h.Temp }),
		Humidity:   mean(func(h model.HourlyObservation) float64 { return h.Humidity }),
		WindSpeed:  mean(func(h model.HourlyObservation) float64 { return h.WindSpeed }),
		Conditions: strings.Join(conditions, ","),
	}
}
