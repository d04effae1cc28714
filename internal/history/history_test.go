package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func openTestSQLite(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func openTestPostgres(t *testing.T) Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres backend needs docker; skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("wordimize"),
		postgres.WithUsername("wordimize"),
		postgres.WithPassword("wordimize"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, openTestSQLite(t))
}

func TestPostgresStore(t *testing.T) {
	runStoreSuite(t, openTestPostgres(t))
}

// runStoreSuite exercises the Store contract against one backend.
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	alice := User{ID: "u-alice", Username: "Alice", PasswordHash: "hash-a", CreatedAt: now}
	bob := User{ID: "u-bob", Username: "bob", PasswordHash: "hash-b", CreatedAt: now}

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("users", func(t *testing.T) {
		require.NoError(t, s.CreateUser(ctx, alice))
		require.NoError(t, s.CreateUser(ctx, bob))

		err := s.CreateUser(ctx, User{ID: "u-other", Username: "ALICE", PasswordHash: "x", CreatedAt: now})
		assert.ErrorIs(t, err, ErrUsernameTaken, "usernames are unique regardless of case")

		got, err := s.UserByName(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "u-alice", got.ID)
		assert.Equal(t, "hash-a", got.PasswordHash)
		assert.True(t, got.CreatedAt.Equal(now))

		got, err = s.UserByID(ctx, "u-bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Username)

		_, err = s.UserByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.UserByName(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rounds and stats", func(t *testing.T) {
		st, err := s.Stats(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, Stats{}, st)

		for i, found := range []int{3, 7, 5} {
			rec := RoundRecord{
				ID:         "r-" + string(rune('a'+i)),
				UserID:     alice.ID,
				Mode:       "free",
				Source:     "silkworm",
				WordsFound: found,
				Mistakes:   i,
				StartedAt:  now.Add(time.Duration(i) * time.Minute),
				FinishedAt: now.Add(time.Duration(i)*time.Minute + 30*time.Second),
			}
			require.NoError(t, s.RecordRound(ctx, rec))
		}
		// Same id again is ignored.
		require.NoError(t, s.RecordRound(ctx, RoundRecord{ID: "r-a", UserID: alice.ID, Mode: "free",
			Source: "silkworm", WordsFound: 99, StartedAt: now, FinishedAt: now}))

		recent, err := s.RecentRounds(ctx, alice.ID, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "r-c", recent[0].ID, "newest first")
		assert.Equal(t, "r-b", recent[1].ID)

		st, err = s.Stats(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, st.RoundsPlayed)
		assert.Equal(t, 15, st.WordsFound)
		assert.Equal(t, 7, st.BestRound)
	})

	t.Run("daily", func(t *testing.T) {
		date := "2026-10-18"

		played, err := s.DailyPlayed(ctx, alice.ID, date)
		require.NoError(t, err)
		assert.False(t, played)

		require.NoError(t, s.InsertDaily(ctx, DailyResult{UserID: alice.ID, Date: date, Source: "elephant", WordsFound: 4, ElapsedMs: 9000}))
		require.NoError(t, s.InsertDaily(ctx, DailyResult{UserID: bob.ID, Date: date, Source: "elephant", WordsFound: 4, ElapsedMs: 5000}))
		// Second result for the same day is ignored.
		require.NoError(t, s.InsertDaily(ctx, DailyResult{UserID: alice.ID, Date: date, Source: "elephant", WordsFound: 40, ElapsedMs: 1}))

		played, err = s.DailyPlayed(ctx, alice.ID, date)
		require.NoError(t, err)
		assert.True(t, played)

		lb, err := s.Leaderboard(ctx, date, 0)
		require.NoError(t, err)
		require.Len(t, lb, 2)
		assert.Equal(t, "bob", lb[0].Username, "ties on words are broken by time")
		assert.Equal(t, int64(5000), lb[0].ElapsedMs)
		assert.Equal(t, 4, lb[1].WordsFound)

		lb, err = s.Leaderboard(ctx, "2000-01-01", 10)
		require.NoError(t, err)
		assert.Empty(t, lb)

		st, err := s.Stats(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, st.DailyPlayed)
	})
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://u:p@localhost:5432/db"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/db"))
	assert.False(t, IsPostgresDSN("./data/wordimize.db"))
	assert.False(t, IsPostgresDSN(""))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, clampLimit(0))
	assert.Equal(t, defaultLimit, clampLimit(-3))
	assert.Equal(t, defaultLimit, clampLimit(1000))
	assert.Equal(t, 5, clampLimit(5))
}
