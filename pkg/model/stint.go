package model

import (
	"fmt"

	"github.com/aarondl/opt/null"
)

// MinStintLength is the default minimum number of laps a stint needs to be
// considered for degradation modeling.
const MinStintLength = 5

type StintKey struct {
	Driver string `json:"driver"`
	Round  int    `json:"round"`
	Stint  int    `json:"stint"`
}

func (k StintKey) String() string {
	return fmt.Sprintf("%s/R%d/S%d", k.Driver, k.Round, k.Stint)
}

// LapRecord is a single timed lap. LapTime is in seconds and always > 0,
// laps without a usable time are dropped while loading.
type LapRecord struct {
	Driver    string  `json:"driver"`
	Round     int     `json:"round"`
	Stint     int     `json:"stint"`
	LapNumber int     `json:"lapNumber"`
	LapTime   float64 `json:"lapTime"`
}

func (l LapRecord) Key() StintKey {
	return StintKey{Driver: l.Driver, Round: l.Round, Stint: l.Stint}
}

type StintRecord struct {
	Driver      string `json:"driver"`
	Round       int    `json:"round"`
	Stint       int    `json:"stint"`
	Compound    string `json:"compound"`
	StartLap    int    `json:"startLap"`
	EndLap      int    `json:"endLap"`
	StintLength int    `json:"stintLength"`
}

func (s StintRecord) Key() StintKey {
	return StintKey{Driver: s.Driver, Round: s.Round, Stint: s.Stint}
}

// LapSpan is the stint length derived from the lap range.
func (s StintRecord) LapSpan() int {
	return s.EndLap - s.StartLap + 1
}

type StintFeature struct {
	Driver       string  `json:"driver"`
	Round        int     `json:"round"`
	Stint        int     `json:"stint"`
	Compound     string  `json:"compound"`
	StintLength  int     `json:"stintLength"`
	StartLap     int     `json:"startLap"`
	EndLap       int     `json:"endLap"`
	AvgLapTime   float64 `json:"avgLapTime"`
	LapTimeSlope float64 `json:"lapTimeSlope"` // seconds per lap
}

func (f StintFeature) Key() StintKey {
	return StintKey{Driver: f.Driver, Round: f.Round, Stint: f.Stint}
}

// ContextRecord holds the weather conditions of a round. Measurements
// missing in the source are null.
type ContextRecord struct {
	Round      int               `json:"round"`
	TrackTemp  null.Val[float64] `json:"trackTemp"`
	Humidity   null.Val[float64] `json:"humidity"`
	WindSpeed  null.Val[float64] `json:"windSpeed"`
	Conditions string            `json:"conditions"`
}

// Complete reports whether all measurements are present.
func (c ContextRecord) Complete() bool {
	return c.TrackTemp.IsValue() && c.Humidity.IsValue() && c.WindSpeed.IsValue()
}

// EnrichedStintFeature is a StintFeature with the (optional) context of its round.
type EnrichedStintFeature struct {
	StintFeature
	TrackTemp  null.Val[float64] `json:"trackTemp"`
	Humidity   null.Val[float64] `json:"humidity"`
	WindSpeed  null.Val[float64] `json:"windSpeed"`
	Conditions null.Val[string]  `json:"conditions"`
}

// HasContext reports whether a context record was joined to the row.
// Conditions is set for every joined row, the measurements may be null.
func (e EnrichedStintFeature) HasContext() bool {
	return e.Conditions.IsValue()
}

func Enrich(f StintFeature, c *ContextRecord) EnrichedStintFeature {
	ret := EnrichedStintFeature{StintFeature: f}
	if c != nil {
		ret.TrackTemp = c.TrackTemp
		ret.Humidity = c.Humidity
		ret.WindSpeed = c.WindSpeed
		ret.Conditions = null.From(c.Conditions)
	}
	return ret
}

// HourlyObservation is the weather of a single hour on race day.
type HourlyObservation struct {
	Round      int     `json:"round"`
	Hour       int     `json:"hour"`
	Temp       float64 `json:"temp"`
	Humidity   float64 `json:"humidity"`
	WindSpeed  float64 `json:"windSpeed"`
	Conditions string  `json:"conditions"`
}
