package eventstream_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/eventstream/conformance"
)

// TestPostgresStream runs the same conformance suite as TestMemoryStream
// against a real database, configured with TEST_DATABASE_URL and already
// migrated by internal/store/postgres.New.
func TestPostgresStream(t *testing.T) {
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `TRUNCATE event_queue, event_consumers`)
	require.NoError(t, err)

	conformance.Run(t, eventstream.NewPostgres(pool))
}
