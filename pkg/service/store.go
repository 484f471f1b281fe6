//nolint:whitespace //can't make both the linter and editor happy :(
package service

import (
	"context"
	"database/sql"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/repository/feature"
	"github.com/mpapenbr/stintdeg/pkg/repository/run"
)

// StoreService persists pipeline runs together with their enriched features.
type StoreService struct {
	pool   *pgxpool.Pool
	db     bob.DB
	tracer trace.Tracer
}

func InitStoreService(pool *pgxpool.Pool) *StoreService {
	return &StoreService{
		pool:   pool,
		db:     bob.NewDB(stdlib.OpenDBFromPool(pool)),
		tracer: otel.Tracer("stintdeg"),
	}
}

// StoreRun writes the run and all its rows in one transaction.
func (s *StoreService) StoreRun(
	ctx context.Context,
	r *model.Run,
	rows []model.EnrichedStintFeature,
) error {
	ctx, span := s.tracer.Start(ctx, "store run")
	defer span.End()
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := run.Create(ctx, tx, r); err != nil {
			return err
		}
		n, err := feature.CreateBatch(ctx, tx, r.ID, rows)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.Int("rows", n))
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	log.Info("Run stored", log.String("id", r.ID.String()), log.Int("rows", len(rows)))
	return nil
}

func (s *StoreService) LoadRun(
	ctx context.Context,
	id uuid.UUID,
) (*model.Run, []model.EnrichedStintFeature, error) {
	var (
		r    *model.Run
		rows []model.EnrichedStintFeature
	)
	err := s.db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true},
		func(ctx context.Context, ex bob.Executor) (err error) {
			if r, err = run.LoadByID(ctx, ex, id); err != nil {
				return err
			}
			rows, err = feature.LoadByRun(ctx, ex, id)
			return err
		})
	if err != nil {
		return nil, nil, err
	}
	return r, rows, nil
}

func (s *StoreService) LatestRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	return run.LoadLatest(ctx, s.db, limit)
}

// DeleteRun removes the run, its features are removed by the database.
func (s *StoreService) DeleteRun(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := run.DeleteByID(ctx, s.pool, id)
	return n > 0, err
}
