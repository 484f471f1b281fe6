package tcpostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16"
	postgresPort  = "5432"
)

// PostgresContainer is a started postgres container together with the
// credentials it was created with.
type PostgresContainer struct {
	testcontainers.Container
	user     string
	password string
	dbName   string
}

type containerConfig struct {
	req      testcontainers.ContainerRequest
	user     string
	password string
	dbName   string
}

type PostgresContainerOption func(cfg *containerConfig)

func WithWaitStrategy(strategies ...wait.Strategy) PostgresContainerOption {
	return func(cfg *containerConfig) {
		cfg.req.WaitingFor = wait.ForAll(strategies...).WithDeadline(1 * time.Minute)
	}
}

func WithName(containerName string) PostgresContainerOption {
	return func(cfg *containerConfig) {
		cfg.req.Name = containerName
	}
}

func WithInitialDatabase(user, password, dbName string) PostgresContainerOption {
	return func(cfg *containerConfig) {
		cfg.user, cfg.password, cfg.dbName = user, password, dbName
	}
}

// SetupPostgres starts (or reuses) a postgres container. The container runs
// with fsync disabled, it is meant for tests only.
func SetupPostgres(ctx context.Context, opts ...PostgresContainerOption) (
	*PostgresContainer, error,
) {
	cfg := containerConfig{
		req: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{postgresPort + "/tcp"},
			Cmd:          []string{"postgres", "-c", "fsync=off"},
		},
		user:     "postgres",
		password: "password",
		dbName:   "postgres",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.req.Env = map[string]string{
		"POSTGRES_USER":     cfg.user,
		"POSTGRES_PASSWORD": cfg.password,
		"POSTGRES_DB":       cfg.dbName,
	}

	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: cfg.req,
			Started:          true,
			Reuse:            cfg.req.Name != "",
		})
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{
		Container: container,
		user:      cfg.user,
		password:  cfg.password,
		dbName:    cfg.dbName,
	}, nil
}

// ConnectionString returns the postgres url of the mapped container port.
func (c *PostgresContainer) ConnectionString(ctx context.Context) (string, error) {
	port, err := nat.NewPort("tcp", postgresPort)
	if err != nil {
		return "", err
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return "", err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.user, c.password, host, mapped.Port(), c.dbName), nil
}
