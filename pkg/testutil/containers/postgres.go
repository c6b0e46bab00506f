//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	platformpg "workcheck/internal/platform/postgres"
)

// PostgresContainer wraps a testcontainers Postgres instance with a migrated
// database handle. It is shared across suites: starting one container per
// suite makes the integration run several times slower for no isolation gain,
// since suites truncate between tests anyway.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

var (
	pgOnce   sync.Once
	pgShared *PostgresContainer
	pgErr    error
)

// GetPostgres returns the shared Postgres container, starting it and applying
// migrations on first use. Ryuk reaps the container after the test process
// exits.
func GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	pgOnce.Do(func() {
		ctx := context.Background()

		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("workcheck_test"),
			tcpostgres.WithUsername("workcheck"),
			tcpostgres.WithPassword("workcheck"),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			pgErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			pgErr = fmt.Errorf("postgres connection string: %w", err)
			return
		}

		db, err := platformpg.Open(dsn)
		if err != nil {
			_ = container.Terminate(ctx)
			pgErr = fmt.Errorf("open migrated database: %w", err)
			return
		}

		pgShared = &PostgresContainer{Container: container, DSN: dsn, DB: db}
	})

	if pgErr != nil {
		t.Fatalf("postgres container: %v", pgErr)
	}
	return pgShared
}

// TruncateTables removes all rows from the given tables. Call from SetupTest
// to isolate suite cases; list tables in dependency order or rely on CASCADE.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", "))
	_, err := p.DB.ExecContext(ctx, query)
	return err
}
