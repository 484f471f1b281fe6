package loader

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/series"

	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/utils"
)

const (
	colHour = "Hour"
	colTemp = "Temp"
)

// LoadHourlyWeather reads hourly race day observations
// (Round, Hour, Temp, Humidity, WindSpeed, Conditions).
func LoadHourlyWeather(r io.Reader) ([]model.HourlyObservation, error) {
	f, err := readFrame("hourly weather", r, map[string]series.Type{
		colRound:      series.Float,
		colHour:       series.String,
		colTemp:       series.Float,
		colHumidity:   series.Float,
		colWindSpeed:  series.Float,
		colConditions: series.String,
	})
	if err != nil {
		return nil, err
	}
	ret := make([]model.HourlyObservation, 0, f.rows())
	for i := 0; i < f.rows(); i++ {
		item := model.HourlyObservation{Conditions: f.str(colConditions, i)}
		if item.Round, err = f.mustInteger(colRound, i); err != nil {
			return nil, err
		}
		if item.Hour, err = utils.ParseHour(f.str(colHour, i)); err != nil {
			return nil, &InputFormatError{
				Table: f.table, Column: colHour, Row: i + 1,
				Reason: fmt.Sprintf("%q is not an hour", f.str(colHour, i)),
			}
		}
		if item.Temp, err = f.mustFloat(colTemp, i); err != nil {
			return nil, err
		}
		if item.Humidity, err = f.mustFloat(colHumidity, i); err != nil {
			return nil, err
		}
		if item.WindSpeed, err = f.mustFloat(colWindSpeed, i); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}
