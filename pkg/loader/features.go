package loader

import (
	"io"
	"math"

	"github.com/aarondl/opt/null"
	"github.com/go-gota/gota/series"
	"github.com/samber/lo"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

var featureColumns = map[string]series.Type{
	colDriver:      series.String,
	colRound:       series.Float,
	colStint:       series.Float,
	colCompound:    series.String,
	colStintLength: series.Float,
	colStartLap:    series.Float,
	colEndLap:      series.Float,
	colAvgLapTime:  series.Float,
	colSlope:       series.Float,
}

// LoadFeatures reads a persisted StintFeature table. As with the stint
// table Driver is required and (Driver, Round, Stint) must be unique.
func LoadFeatures(r io.Reader) ([]model.StintFeature, error) {
	f, err := readFrame("features", r, featureColumns)
	if err != nil {
		return nil, err
	}
	ret := make([]model.StintFeature, 0, f.rows())
	seen := newKeySet(f.table, f.rows())
	for i := 0; i < f.rows(); i++ {
		item, err := readFeature(f, i, seen)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

// LoadEnriched reads a persisted EnrichedStintFeature table. Empty context
// cells are loaded as null values, an empty Conditions cell is kept as ""
// if the row has any other context cell.
func LoadEnriched(r io.Reader) ([]model.EnrichedStintFeature, error) {
	cols := make(map[string]series.Type, len(featureColumns)+4)
	for k, v := range featureColumns {
		cols[k] = v
	}
	cols[colTrackTemp] = series.Float
	cols[colHumidity] = series.Float
	cols[colWindSpeed] = series.Float
	cols[colConditions] = series.String

	f, err := readFrame("enriched", r, cols)
	if err != nil {
		return nil, err
	}
	ret := make([]model.EnrichedStintFeature, 0, f.rows())
	seen := newKeySet(f.table, f.rows())
	for i := 0; i < f.rows(); i++ {
		feature, err := readFeature(f, i, seen)
		if err != nil {
			return nil, err
		}
		item := model.EnrichedStintFeature{StintFeature: feature}
		item.TrackTemp = nullFloat(f, colTrackTemp, i)
		item.Humidity = nullFloat(f, colHumidity, i)
		item.WindSpeed = nullFloat(f, colWindSpeed, i)
		item.Conditions = conditions(f, i)
		ret = append(ret, item)
	}
	return ret, nil
}

func conditions(f *frame, i int) null.Val[string] {
	if !f.isNA(colConditions, i) {
		return null.From(f.str(colConditions, i))
	}
	if f.text(colConditions, i) != "" {
		return null.Val[string]{}
	}
	hasContext := lo.SomeBy([]string{colTrackTemp, colHumidity, colWindSpeed},
		func(name string) bool { return f.text(name, i) != "" })
	if hasContext {
		return null.From("")
	}
	return null.Val[string]{}
}

// nullFloat loads missing and unparseable cells as null
func nullFloat(f *frame, name string, i int) null.Val[float64] {
	v := f.float(name, i)
	if math.IsNaN(v) {
		return null.Val[float64]{}
	}
	return null.From(v)
}

func readFeature(f *frame, i int, seen *keySet) (model.StintFeature, error) {
	var err error
	item := model.StintFeature{
		Driver:   f.str(colDriver, i),
		Compound: f.str(colCompound, i),
	}
	if item.Driver == "" {
		return item, missingDriver(f.table, i+1)
	}
	for _, target := range []struct {
		name string
		dest *int
	}{
		{colRound, &item.Round},
		{colStint, &item.Stint},
		{colStintLength, &item.StintLength},
		{colStartLap, &item.StartLap},
		{colEndLap, &item.EndLap},
	} {
		if *target.dest, err = f.mustInteger(target.name, i); err != nil {
			return item, err
		}
	}
	if item.AvgLapTime, err = f.mustFloat(colAvgLapTime, i); err != nil {
		return item, err
	}
	if item.LapTimeSlope, err = f.mustFloat(colSlope, i); err != nil {
		return item, err
	}
	return item, seen.add(item.Key(), i+1)
}
