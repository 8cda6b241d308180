package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orchestrator-core/controlplane/internal/store/conformance"
	"github.com/orchestrator-core/controlplane/internal/store/postgres"
)

// TestPostgresStore runs the same conformance suite as TestMemoryStore
// against a real database, configured with TEST_DATABASE_URL.
func TestPostgresStore(t *testing.T) {
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, connString)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Pool().Exec(ctx, `TRUNCATE workspaces, templates, workloads, targets, hosts, deployments, assignments, configs CASCADE`)
	require.NoError(t, err)

	conformance.Run(t, db)
}
