package aggregate

import (
	"fmt"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

func ByCompound(r model.EnrichedStintFeature) string { return r.Compound }

func ByRound(r model.EnrichedStintFeature) int { return r.Round }

func ByDriver(r model.EnrichedStintFeature) string { return r.Driver }

// TrackLabel returns the event name of a round, "Round N" if unknown.
func TrackLabel(labels map[int]string, round int) string {
	if name, ok := labels[round]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Round %d", round)
}

func ByTrack(labels map[int]string) func(model.EnrichedStintFeature) string {
	return func(r model.EnrichedStintFeature) string {
		return TrackLabel(labels, r.Round)
	}
}

func ByTrackCompound(labels map[int]string) func(model.EnrichedStintFeature) string {
	return func(r model.EnrichedStintFeature) string {
		return fmt.Sprintf("%s / %s", TrackLabel(labels, r.Round), r.Compound)
	}
}
