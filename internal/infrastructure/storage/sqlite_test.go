package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testUser(id, username, email string) *domain.User {
	return &domain.User{
		ID:             id,
		Username:       username,
		Email:          email,
		PasswordHash:   "$2a$04$hash",
		FavoriteCrypto: "BTC",
		CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "alice", "alice@example.com")))

	byEmail, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, "$2a$04$hash", byEmail.PasswordHash)
	assert.True(t, byEmail.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

	byName, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byName.Email)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, store.SetFavorite(ctx, "u1", "SOL"))
	byID, err := store.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "SOL", byID.FavoriteCrypto)

	assert.ErrorIs(t, store.SetFavorite(ctx, "missing", "SOL"), domain.ErrUserNotFound)
}

func TestSQLiteStore_UniqueConstraints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, testUser("u1", "alice", "alice@example.com")))

	err := store.CreateUser(ctx, testUser("u2", "bob", "alice@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	err = store.CreateUser(ctx, testUser("u3", "alice", "other@example.com"))
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestSQLiteStore_Insights(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &domain.InsightRecord{
			Symbol:         "BTC",
			Timeframe:      "4h",
			TotalVolume:    float64(i) * 1000,
			HotZonePrice:   67000,
			LongShortRatio: "1.20:1",
			PeakMinutesAgo: i * 10,
			CurrentPrice:   67100,
			CreatedAt:      time.Now().UTC(),
		}
		require.NoError(t, store.SaveInsight(ctx, rec))
		assert.Equal(t, int64(i+1), rec.ID)
	}
	require.NoError(t, store.SaveInsight(ctx, &domain.InsightRecord{Symbol: "ETH", Timeframe: "1h", LongShortRatio: "n/a", CreatedAt: time.Now()}))

	records, err := store.ListInsights(ctx, "BTC", 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(5), records[0].ID)
	assert.Equal(t, 4000.0, records[0].TotalVolume)
	assert.Equal(t, 40, records[0].PeakMinutesAgo)
	assert.Equal(t, int64(3), records[2].ID)

	records, err = store.ListInsights(ctx, "SOL", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_ReopenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatmap.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, testUser("u1", "alice", "alice@example.com")))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	u, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}
