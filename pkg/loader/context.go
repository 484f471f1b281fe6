package loader

import (
	"io"

	"github.com/go-gota/gota/series"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

// ContextStats counts the rows of the weather table and those with at least
// one missing measurement.
type ContextStats struct {
	Rows       int `json:"rows"`
	Incomplete int `json:"incomplete"`
}

type ContextTable struct {
	Records []model.ContextRecord
	Stats   ContextStats
}

// LoadContext reads the per round weather table. Multiple rows for one
// round are kept as they are, the merge step decides how to deal with them.
// Empty or NaN measurements are loaded as null, Round must be valid.
func LoadContext(r io.Reader) (*ContextTable, error) {
	f, err := readFrame("context", r, map[string]series.Type{
		colRound:      series.Float,
		colTrackTemp:  series.Float,
		colHumidity:   series.Float,
		colWindSpeed:  series.Float,
		colConditions: series.String,
	})
	if err != nil {
		return nil, err
	}
	ret := &ContextTable{
		Records: make([]model.ContextRecord, 0, f.rows()),
		Stats:   ContextStats{Rows: f.rows()},
	}
	for i := 0; i < f.rows(); i++ {
		item := model.ContextRecord{
			TrackTemp:  nullFloat(f, colTrackTemp, i),
			Humidity:   nullFloat(f, colHumidity, i),
			WindSpeed:  nullFloat(f, colWindSpeed, i),
			Conditions: f.str(colConditions, i),
		}
		if item.Round, err = f.mustInteger(colRound, i); err != nil {
			return nil, err
		}
		if !item.Complete() {
			ret.Stats.Incomplete++
		}
		ret.Records = append(ret.Records, item)
	}
	return ret, nil
}

// LoadSchedule reads an optional Round -> EventName mapping used to label
// rounds with their track.
func LoadSchedule(r io.Reader) (map[int]string, error) {
	const colEvent = "EventName"
	f, err := readFrame("schedule", r, map[string]series.Type{
		colRound: series.Float,
		colEvent: series.String,
	})
	if err != nil {
		return nil, err
	}
	ret := make(map[int]string, f.rows())
	for i := 0; i < f.rows(); i++ {
		round, err := f.mustInteger(colRound, i)
		if err != nil {
			return nil, err
		}
		if name := f.str(colEvent, i); name != "" {
			ret[round] = name
		}
	}
	return ret, nil
}
