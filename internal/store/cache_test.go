package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trentd187/tournament-finder/internal/models"
	"github.com/trentd187/tournament-finder/internal/testutil"
)

func TestListKey(t *testing.T) {
	assert.Equal(t, "tournaments:list:0:all", listKey(0, nil))
	assert.Equal(t, "tournaments:list:7:approved", listKey(7, StatusPtr(models.TournamentStatusApproved)))
	assert.NotEqual(t, listKey(1, nil), listKey(2, nil))
	assert.NotEqual(t, generationKey, listKey(0, nil))
}

// With Redis unreachable every operation must still succeed against the database.
func TestCachedTournamentsWithoutRedis(t *testing.T) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	cached := NewCachedTournaments(NewTournamentStore(testutil.NewSQLiteDB(t)), rdb, time.Minute, zap.NewNop())

	tournament := &models.Tournament{Name: "Offline Cache", LocationCoords: models.Coordinates{Latitude: 1, Longitude: 2}}
	require.NoError(t, cached.Create(ctx, tournament))

	listed, err := cached.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, tournament.ID, listed[0].ID)

	updated, err := cached.UpdateStatus(ctx, tournament.ID, models.TournamentStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusRejected, updated.Status)

	_, err = cached.Delete(ctx, tournament.ID)
	require.NoError(t, err)
	_, err = cached.Delete(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheEncodingKeepsCoordinates(t *testing.T) {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	in := []models.Tournament{{
		Name:           "Encoded",
		StartDate:      &start,
		LocationCoords: models.Coordinates{Latitude: -33.9, Longitude: 151.2},
		Status:         models.TournamentStatusApproved,
	}}

	raw, err := encodeList(in)
	require.NoError(t, err)
	out, err := decodeList(raw)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, in[0].LocationCoords, out[0].LocationCoords)
	assert.Equal(t, in[0].Status, out[0].Status)
	assert.True(t, start.Equal(*out[0].StartDate))
}
