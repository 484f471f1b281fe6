package weather

import (
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/utils"
)

var ErrNoHours = errors.New("no hourly data found")

var (
	hoursPath = jp.MustParseString(`$.days[0].hours[*]`)
	fieldPath = map[string]jp.Expr{
		"datetime":   jp.C("datetime"),
		"temp":       jp.C("temp"),
		"humidity":   jp.C("humidity"),
		"windspeed":  jp.C("windspeed"),
		"conditions": jp.C("conditions"),
	}
)

// ReadTimeline reads a stored weather timeline response (JSON) for the
// race day of a round.
func ReadTimeline(file string, round int) ([]model.HourlyObservation, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParseTimeline(string(data), round)
}

// ParseTimeline extracts the hourly observations of the first day of a
// timeline response ({"days":[{"hours":[{"datetime":"13:00:00","temp":..}]}]}).
func ParseTimeline(jsonData string, round int) ([]model.HourlyObservation, error) {
	obj, err := oj.ParseString(jsonData)
	if err != nil {
		return nil, err
	}
	res := hoursPath.Get(obj)
	if len(res) == 0 {
		return nil, ErrNoHours
	}
	ret := make([]model.HourlyObservation, 0, len(res))
	for i, h := range res {
		item, err := readHour(h)
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", i, err)
		}
		item.Round = round
		ret = append(ret, item)
	}
	return ret, nil
}

func readHour(h any) (ret model.HourlyObservation, err error) {
	datetime, _ := first(h, "datetime").(string)
	if ret.Hour, err = utils.ParseHour(datetime); err != nil {
		return ret, err
	}
	if ret.Temp, err = number(h, "temp"); err != nil {
		return ret, err
	}
	if ret.Humidity, err = number(h, "humidity"); err != nil {
		return ret, err
	}
	if ret.WindSpeed, err = number(h, "windspeed"); err != nil {
		return ret, err
	}
	ret.Conditions, _ = first(h, "conditions").(string)
	return ret, nil
}

func first(h any, field string) any {
	if res := fieldPath[field].Get(h); len(res) > 0 {
		return res[0]
	}
	return nil
}

func number(h any, field string) (float64, error) {
	switch v := first(h, field).(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s: %v is not a number", field, v)
	}
}
