package postgres

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/stintdeg/log"
)

func TestMyTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, log.DebugLevel)
	tracer := NewMyTracer(logger, log.DebugLevel)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL:  "select id from run where id=$1",
		Args: []any{"abc"},
	})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("no rows")})

	out := buf.String()
	assert.Contains(t, out, "select id from run where id=$1")
	assert.Contains(t, out, "Query failed")
	assert.Contains(t, out, "no rows")
}

func TestMyTracer_LevelDisabled(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewMyTracer(log.New(&buf, log.InfoLevel), log.DebugLevel)
	tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "select 1"})
	assert.Empty(t, buf.String())
}
