package indexer_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cfmm/indexer"
)

// setupTestDB connects to CFMM_TEST_DATABASE_URL and resets the archive
func setupTestDB(t *testing.T) *indexer.Postgres {
	url := os.Getenv("CFMM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CFMM_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pg, err := indexer.Open(ctx, indexer.Config{
		URL:            url,
		MaxConnections: 4,
		MaxIdle:        2,
		ConnMaxLife:    time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, pg.Close()) })

	require.NoError(t, pg.InitSchema(ctx))
	require.NoError(t, pg.Reset(ctx))
	return pg
}

func TestPostgres_ArchiveRoute(t *testing.T) {
	pg := setupTestDB(t)
	ctx := context.Background()

	calls := runRoute(t)
	for _, c := range calls {
		require.NoError(t, pg.Archive(ctx, c.call, c.events))
	}

	height, seq, err := pg.LastArchived(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), height)
	require.Equal(t, uint64(3), seq)

	r0, r1, err := pg.PairReserves(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "110000", r0)
	require.Equal(t, "181868", r1)

	n, err := pg.SwapCount(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// replaying a call at the same position replaces it
	last := calls[len(calls)-1]
	require.NoError(t, pg.Archive(ctx, last.call, last.events))
	n, err = pg.SwapCount(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPostgres_Ping(t *testing.T) {
	pg := setupTestDB(t)
	require.NoError(t, pg.Ping(context.Background()))
}
