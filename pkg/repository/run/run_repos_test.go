//nolint:dupl,funlen,errcheck //ok for this test code
package run_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/repository/run"
	"github.com/mpapenbr/stintdeg/testsupport/basedata"
	"github.com/mpapenbr/stintdeg/testsupport/testdb"
)

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := basedata.CreateSampleRun(pool)
	tests := []struct {
		name    string
		run     *model.Run
		wantErr bool
	}{
		{
			name: "new entry",
			run:  basedata.SampleRun(),
		},
		{
			name:    "duplicate",
			run:     &model.Run{ID: sample.ID, Summary: map[string]any{}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pool.AcquireFunc(context.Background(), func(c *pgxpool.Conn) error {
				return run.Create(context.Background(), c.Conn(), tt.run)
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Create error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.Assert(t, tt.run.ID != uuid.Nil)
				assert.Assert(t, !tt.run.Created.IsZero())
			}
		})
	}
}

func TestLoadByID(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := basedata.CreateSampleRun(pool)
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	tests := []struct {
		name    string
		id      uuid.UUID
		want    *model.Run
		wantErr bool
	}{
		{
			name: "existing entry",
			id:   sample.ID,
			want: sample,
		},
		{
			name:    "unknown entry",
			id:      uuid.Must(uuid.NewV7()),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run.LoadByID(context.Background(), db, tt.id)
			if tt.wantErr {
				assert.Assert(t, errors.Is(err, sql.ErrNoRows))
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, got.ID, tt.want.ID)
			assert.Equal(t, got.LapsFile, tt.want.LapsFile)
			assert.Equal(t, got.ContextFile, tt.want.ContextFile)
			assert.Equal(t, got.MinStintLength, tt.want.MinStintLength)
			assert.Equal(t, got.DuplicateContext, tt.want.DuplicateContext)
			assert.DeepEqual(t, got.Summary, tt.want.Summary)
			assert.Assert(t, got.Created.Sub(tt.want.Created).Abs() < time.Millisecond)
		})
	}
}

func TestLoadLatest(t *testing.T) {
	pool := testdb.InitTestDb()
	first := basedata.CreateSampleRun(pool)
	second := basedata.CreateSampleRun(pool)
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))

	got, err := run.LoadLatest(context.Background(), db, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 2)
	// v7 ids are ordered by time
	assert.Equal(t, got[0].ID, second.ID)
	assert.Equal(t, got[1].ID, first.ID)

	got, err = run.LoadLatest(context.Background(), db, 1)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].ID, second.ID)
	assert.DeepEqual(t, got[0].Summary, second.Summary)
}

func TestDeleteByID(t *testing.T) {
	db := testdb.InitTestDb()
	sample := basedata.CreateSampleRun(db)

	tests := []struct {
		name string
		id   uuid.UUID
		want int
	}{
		{
			name: "delete_existing",
			id:   sample.ID,
			want: 1,
		},
		{
			name: "delete_non_existing",
			id:   uuid.Must(uuid.NewV7()),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run.DeleteByID(context.Background(), db, tt.id)
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}
