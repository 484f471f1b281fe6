//nolint:whitespace //can't make both the linter and editor happy :(
package run

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/repository"
)

// Create stores the run. A missing ID is generated (UUIDv7), Created is
// set by the database.
func Create(ctx context.Context, conn repository.Querier, run *model.Run) error {
	if run.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		run.ID = id
	}
	row := conn.QueryRow(ctx, `
	insert into run (
		id, laps_file, stints_file, context_file,
		min_stint_length, duplicate_context, summary
	) values ($1,$2,$3,$4,$5,$6,$7)
	returning created
	`,
		run.ID, run.LapsFile, run.StintsFile, run.ContextFile,
		run.MinStintLength, run.DuplicateContext, run.Summary,
	)
	return row.Scan(&run.Created)
}

// runData is the scan target of the read queries. The jsonb summary is
// decoded after scanning.
type runData struct {
	ID               uuid.UUID
	Created          time.Time
	LapsFile         string
	StintsFile       string
	ContextFile      string
	MinStintLength   int
	DuplicateContext string
	Summary          []byte
}

func LoadByID(
	ctx context.Context,
	exec bob.Executor,
	id uuid.UUID,
) (*model.Run, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	res, err := bob.One(ctx, exec, q, scan.StructMapper[runData]())
	if err != nil {
		return nil, err
	}
	return res.toModel()
}

// LoadLatest returns the most recent runs, newest first.
func LoadLatest(
	ctx context.Context,
	exec bob.Executor,
	limit int,
) ([]*model.Run, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.OrderBy(psql.Quote("created")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
		sm.Limit(limit),
	)
	res, err := bob.All(ctx, exec, q, scan.StructMapper[runData]())
	if err != nil {
		return nil, err
	}
	ret := make([]*model.Run, 0, len(res))
	for i := range res {
		item, err := res[i].toModel()
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

// deletes an entry (and its features) from the database, returns number of
// rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from run where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

const tableName = "run"

var columns = []any{
	"id", "created", "laps_file", "stints_file", "context_file",
	"min_stint_length", "duplicate_context", "summary",
}

func (d *runData) toModel() (*model.Run, error) {
	ret := &model.Run{
		ID:               d.ID,
		Created:          d.Created,
		LapsFile:         d.LapsFile,
		StintsFile:       d.StintsFile,
		ContextFile:      d.ContextFile,
		MinStintLength:   d.MinStintLength,
		DuplicateContext: d.DuplicateContext,
	}
	if len(d.Summary) > 0 {
		if err := json.Unmarshal(d.Summary, &ret.Summary); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
