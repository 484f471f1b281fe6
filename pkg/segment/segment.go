// Package segment assigns laps to their stints and filters the stints
// which are not worth modeling.
package segment

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

// Segment is a stint together with its timed laps.
type Segment struct {
	Stint model.StintRecord
	Laps  []model.LapRecord
}

type LengthMismatch struct {
	Key         model.StintKey `json:"key"`
	StintLength int            `json:"stintLength"`
	LapSpan     int            `json:"lapSpan"`
}

type Result struct {
	Segments      []Segment
	SkippedShort  []model.StintKey
	SkippedNoLaps []model.StintKey
	// StintLength differs from EndLap-StartLap+1. Only reported, the given
	// StintLength stays authoritative.
	LengthMismatches []LengthMismatch
}

// Split pairs every stint with the laps sharing its (Driver, Round, Stint)
// key. Stints shorter than minLength are skipped before their laps are
// looked at, stints without any lap are skipped as well.
// Each stint is handled on its own, the order of the input does not change
// which segments are produced.
func Split(stints []model.StintRecord, laps []model.LapRecord, minLength int) Result {
	lapsByKey := lo.GroupBy(laps, func(l model.LapRecord) model.StintKey {
		return l.Key()
	})
	ret := Result{Segments: make([]Segment, 0, len(stints))}
	for _, s := range stints {
		if span := s.LapSpan(); span != s.StintLength {
			ret.LengthMismatches = append(ret.LengthMismatches, LengthMismatch{
				Key: s.Key(), StintLength: s.StintLength, LapSpan: span,
			})
		}
		if s.StintLength < minLength {
			ret.SkippedShort = append(ret.SkippedShort, s.Key())
			continue
		}
		stintLaps := lapsByKey[s.Key()]
		if len(stintLaps) == 0 {
			ret.SkippedNoLaps = append(ret.SkippedNoLaps, s.Key())
			continue
		}
		ret.Segments = append(ret.Segments, Segment{Stint: s, Laps: stintLaps})
	}
	return ret
}
