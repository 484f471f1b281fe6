//nolint:whitespace //can't make both the linter and editor happy :(
package feature

import (
	"context"

	"github.com/aarondl/opt/null"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/repository"
)

// CreateBatch stores the enriched features of a run. The row order is kept.
func CreateBatch(
	ctx context.Context,
	conn repository.Querier,
	runID uuid.UUID,
	rows []model.EnrichedStintFeature,
) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for i := range rows {
		r := &rows[i]
		batch.Queue(`
		insert into stint_feature (
			run_id, idx, driver, round, stint, compound, stint_length,
			start_lap, end_lap, avg_lap_time, lap_time_slope,
			track_temp, humidity, wind_speed, conditions
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			runID, i, r.Driver, r.Round, r.Stint, r.Compound, r.StintLength,
			r.StartLap, r.EndLap, r.AvgLapTime, r.LapTimeSlope,
			r.TrackTemp.Ptr(), r.Humidity.Ptr(), r.WindSpeed.Ptr(), r.Conditions.Ptr(),
		)
	}
	br := conn.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return 0, err
		}
	}
	return len(rows), br.Close()
}

type featureData struct {
	Driver       string
	Round        int
	Stint        int
	Compound     string
	StintLength  int
	StartLap     int
	EndLap       int
	AvgLapTime   float64
	LapTimeSlope float64
	TrackTemp    *float64
	Humidity     *float64
	WindSpeed    *float64
	Conditions   *string
}

func LoadByRun(
	ctx context.Context,
	exec bob.Executor,
	runID uuid.UUID,
) ([]model.EnrichedStintFeature, error) {
	q := psql.Select(
		sm.Columns(
			"driver", "round", "stint", "compound", "stint_length",
			"start_lap", "end_lap", "avg_lap_time", "lap_time_slope",
			"track_temp", "humidity", "wind_speed", "conditions",
		),
		sm.From("stint_feature"),
		sm.Where(psql.Quote("run_id").EQ(psql.Arg(runID))),
		sm.OrderBy(psql.Quote("idx")).Asc(),
	)
	res, err := bob.All(ctx, exec, q, scan.StructMapper[featureData]())
	if err != nil {
		return nil, err
	}
	ret := make([]model.EnrichedStintFeature, 0, len(res))
	for i := range res {
		d := &res[i]
		item := model.EnrichedStintFeature{
			TrackTemp:  null.FromPtr(d.TrackTemp),
			Humidity:   null.FromPtr(d.Humidity),
			WindSpeed:  null.FromPtr(d.WindSpeed),
			Conditions: null.FromPtr(d.Conditions),
		}
		item.Driver = d.Driver
		item.Round = d.Round
		item.Stint = d.Stint
		item.Compound = d.Compound
		item.StintLength = d.StintLength
		item.StartLap = d.StartLap
		item.EndLap = d.EndLap
		item.AvgLapTime = d.AvgLapTime
		item.LapTimeSlope = d.LapTimeSlope
		ret = append(ret, item)
	}
	return ret, nil
}

// deletes the features of a run, returns number of rows deleted.
func DeleteByRun(ctx context.Context, conn repository.Querier, runID uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from stint_feature where run_id=$1", runID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
