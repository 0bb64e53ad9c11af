package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testDSN     string
	testPool    *pgxpool.Pool
	testOnce    sync.Once
	testCleanup func()
)

// getSharedTestDatabase starts one postgres container for the whole package
// and returns its DSN plus an admin pool for seeding.
func getSharedTestDatabase(t *testing.T) (string, *pgxpool.Pool) {
	t.Helper()

	testOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		testCleanup = func() {
			if testPool != nil {
				testPool.Close()
			}
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %s", err)
			}
		}

		dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testCleanup()
			t.Fatalf("failed to get connection string: %v", err)
		}

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			testCleanup()
			t.Fatalf("could not connect to database: %v", err)
		}

		testDSN = dsn
		testPool = pool
	})

	return testDSN, testPool
}

// getRandomString generates a random string for unique test identifiers.
func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// seedSchema creates a uniquely named schema with two tables and a view,
// and returns its name plus a cleanup func.
func seedSchema(t *testing.T) (string, func()) {
	t.Helper()

	_, pool := getSharedTestDatabase(t)
	ctx := context.Background()
	schema := fmt.Sprintf("s_%s", getRandomString(t))

	ddl := fmt.Sprintf(`
		CREATE SCHEMA %[1]s;

		CREATE TABLE %[1]s.users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE %[1]s.memberships (
			user_id UUID NOT NULL,
			team_id UUID NOT NULL,
			role TEXT,
			PRIMARY KEY (user_id, team_id)
		);

		CREATE VIEW %[1]s.user_emails AS
		SELECT id, email FROM %[1]s.users;
	`, schema)

	_, err := pool.Exec(ctx, ddl)
	require.NoError(t, err, "seed schema")

	cleanup := func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
	}

	return schema, cleanup
}
