package basedata

import (
	"context"

	"github.com/aarondl/opt/null"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/model"
	runrepos "github.com/mpapenbr/stintdeg/pkg/repository/run"
)

func SampleFeatures() []model.StintFeature {
	return []model.StintFeature{
		{
			Driver: "LEC", Round: 1, Stint: 1, Compound: "MEDIUM", StintLength: 18,
			StartLap: 1, EndLap: 18, AvgLapTime: 97.25, LapTimeSlope: 0.061,
		},
		{
			Driver: "HAM", Round: 1, Stint: 2, Compound: "HARD", StintLength: 32,
			StartLap: 19, EndLap: 50, AvgLapTime: 96.5, LapTimeSlope: 0.032,
		},
		{
			Driver: "LEC", Round: 7, Stint: 1, Compound: "SOFT", StintLength: 12,
			StartLap: 1, EndLap: 12, AvgLapTime: 80.125, LapTimeSlope: 0.11,
		},
	}
}

// SampleEnriched has context for round 1 only.
func SampleEnriched() []model.EnrichedStintFeature {
	ctxRecord := &model.ContextRecord{
		Round: 1, TrackTemp: null.From(28.5), Humidity: null.From(45.0),
		WindSpeed: null.From(11.2), Conditions: "Clear",
	}
	ret := make([]model.EnrichedStintFeature, 0)
	for _, f := range SampleFeatures() {
		if f.Round == ctxRecord.Round {
			ret = append(ret, model.Enrich(f, ctxRecord))
		} else {
			ret = append(ret, model.Enrich(f, nil))
		}
	}
	return ret
}

func SampleRun() *model.Run {
	return &model.Run{
		LapsFile:         "data/raw/laps_2025.csv",
		StintsFile:       "data/raw/stints_2025.csv",
		ContextFile:      "data/raw/weather_2025.csv",
		MinStintLength:   model.MinStintLength,
		DuplicateContext: "fail",
		Summary:          map[string]any{"features": float64(3)},
	}
}

// CreateSampleRun stores a run in its own transaction.
func CreateSampleRun(pool *pgxpool.Pool) *model.Run {
	run := SampleRun()
	err := pgx.BeginFunc(context.Background(), pool, func(tx pgx.Tx) error {
		return runrepos.Create(context.Background(), tx, run)
	})
	if err != nil {
		log.Fatal("createSampleRun", log.ErrorField(err))
	}
	return run
}
