// Package util contains helpers shared by the commands.
package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxtrace"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/config"
	"github.com/mpapenbr/stintdeg/pkg/db/postgres"
	"github.com/mpapenbr/stintdeg/pkg/enrich"
	"github.com/mpapenbr/stintdeg/pkg/pipeline"
	"github.com/mpapenbr/stintdeg/pkg/utils"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// NewLogger creates a logger according to the log format and the optional
// filter rules.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		filter, err := log.FilterOption(config.LogFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid log filter: %w", err)
		}
		opts = append(opts, filter)
	}
	switch config.LogFormat {
	case "json":
		return log.New(w, ParseLogLevel(level, log.InfoLevel), opts...), nil
	default:
		return log.DevLogger(w, ParseLogLevel(level, log.InfoLevel), opts...), nil
	}
}

// SetupLogger installs the default logger.
func SetupLogger() (*log.Logger, error) {
	logger, err := NewLogger(os.Stderr, config.LogLevel)
	if err != nil {
		return nil, err
	}
	log.ResetDefault(logger)
	return logger, nil
}

// PipelineConfig builds the validated pipeline config from the flags.
func PipelineConfig() (pipeline.Config, error) {
	policy, err := enrich.ParsePolicy(config.DuplicateContext)
	if err != nil {
		return pipeline.Config{}, err
	}
	cfg := pipeline.Config{
		MinStintLength:   config.MinStintLength,
		Workers:          config.Workers,
		DuplicateContext: policy,
	}
	return cfg, cfg.Validate()
}

// StartTelemetry returns nil if neither telemetry nor a metrics file is requested.
func StartTelemetry(ctx context.Context) *config.Telemetry {
	if !config.EnableTelemetry && config.MetricsFile == "" {
		return nil
	}
	telemetry, err := config.SetupTelemetry(ctx)
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return nil
	}
	return telemetry
}

func WaitForDB(ctx context.Context) error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	if postgresAddr := utils.ExtractFromDBURL(config.DB); postgresAddr != "" {
		log.Debug("Waiting for database", log.String("addr", postgresAddr))
		if err := utils.WaitForTCP(ctx, postgresAddr, timeout); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}
	}
	return nil
}

// OpenDB waits for the database and returns a connection pool.
func OpenDB(ctx context.Context) (*pgxpool.Pool, error) {
	if err := WaitForDB(ctx); err != nil {
		return nil, err
	}
	sqlLogger, err := NewLogger(os.Stderr, config.SQLLogLevel)
	if err != nil {
		return nil, err
	}
	pgTracer := pgxtrace.CompositeQueryTracer{
		postgres.NewMyTracer(sqlLogger.Named("sql"), log.DebugLevel),
	}
	if config.EnableTelemetry {
		pgTracer = append(pgTracer, postgres.NewOtlpTracer())
	}
	return postgres.InitWithURL(ctx, config.DB, postgres.WithTracer(pgTracer))
}

// ReadFile opens path and passes it to the loader.
func ReadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	ret, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return ret, nil
}
