//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/db/migrate"
	database "github.com/mpapenbr/stintdeg/pkg/db/postgres"
)

// SetupTestDb starts the postgres container and returns a pool for the
// migrated database.
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	container, err := SetupPostgres(ctx,
		WithInitialDatabase("postgres", "password", "stintdeg"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		WithName("stintdeg-test"),
	)
	if err != nil {
		log.Fatal("could not start postgres container", log.ErrorField(err))
	}
	dbURL, err := container.ConnectionString(ctx)
	if err != nil {
		log.Fatal("could not resolve container address", log.ErrorField(err))
	}
	return setupPool(ctx, dbURL)
}

// SetupExternalTestDb uses the database given by TESTDB_URL
func SetupExternalTestDb() *pgxpool.Pool {
	return setupPool(context.Background(), os.Getenv("TESTDB_URL"))
}

func setupPool(ctx context.Context, dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal("could not migrate test database", log.ErrorField(err))
	}
	pool, err := database.InitWithURL(ctx, dbURL)
	if err != nil {
		log.Fatal("could not connect test database", log.ErrorField(err))
	}
	return pool
}

func ClearFeatureTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from stint_feature")
}

func ClearRunTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from run")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearFeatureTable(pool)
	ClearRunTable(pool)
}
