package loader

import (
	"io"

	"github.com/go-gota/gota/series"

	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/utils"
)

const (
	colDriver      = "Driver"
	colRound       = "Round"
	colStint       = "Stint"
	colLapNumber   = "LapNumber"
	colLapTime     = "LapTime"
	colCompound    = "Compound"
	colStartLap    = "StartLap"
	colEndLap      = "EndLap"
	colStintLength = "StintLength"
	colAvgLapTime  = "AvgLapTime"
	colSlope       = "LapTimeSlope"
	colTrackTemp   = "TrackTemp"
	colHumidity    = "Humidity"
	colWindSpeed   = "WindSpeed"
	colConditions  = "Conditions"
)

// LoadStats counts the rows read from the lap table and why some were dropped.
type LoadStats struct {
	Rows           int `json:"rows"`
	Loaded         int `json:"loaded"`
	InvalidLapTime int `json:"invalidLapTime"`
	InvalidKey     int `json:"invalidKey"`
}

func (s LoadStats) Dropped() int {
	return s.InvalidLapTime + s.InvalidKey
}

type LapTable struct {
	Laps  []model.LapRecord
	Stats LoadStats
}

// LoadLaps reads the lap table. LapTime may be given as seconds or as a
// duration string, it is normalized to seconds. Rows without a usable
// LapTime or with missing/non-integral key columns are dropped and counted.
func LoadLaps(r io.Reader) (*LapTable, error) {
	f, err := readFrame("laps", r, map[string]series.Type{
		colDriver:    series.String,
		colRound:     series.Float,
		colStint:     series.Float,
		colLapNumber: series.Float,
		colLapTime:   series.String,
	})
	if err != nil {
		return nil, err
	}
	ret := &LapTable{
		Laps:  make([]model.LapRecord, 0, f.rows()),
		Stats: LoadStats{Rows: f.rows()},
	}
	for i := 0; i < f.rows(); i++ {
		round, okRound := f.integer(colRound, i)
		stint, okStint := f.integer(colStint, i)
		lapNo, okLap := f.integer(colLapNumber, i)
		driver := f.str(colDriver, i)
		if !okRound || !okStint || !okLap || driver == "" {
			ret.Stats.InvalidKey++
			continue
		}
		lapTime, err := utils.ParseLapTime(f.str(colLapTime, i))
		if err != nil {
			ret.Stats.InvalidLapTime++
			continue
		}
		ret.Laps = append(ret.Laps, model.LapRecord{
			Driver:    driver,
			Round:     round,
			Stint:     stint,
			LapNumber: lapNo,
			LapTime:   lapTime,
		})
	}
	ret.Stats.Loaded = len(ret.Laps)
	return ret, nil
}
