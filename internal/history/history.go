// Package history keeps durable records for signed-in players: accounts,
// finished rounds and daily challenge results.
//
// Two backends implement Store:
//   - SQLite (github.com/mattn/go-sqlite3) for single-node and local use.
//   - Postgres (github.com/jackc/pgx/v5) for shared deployments.
//
// Open picks the backend from the DSN and applies the embedded migrations.
package history

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a user lookup has no match.
	ErrNotFound = errors.New("history: not found")
	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("history: username taken")
)

// User is an account row.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RoundRecord is one finished round.
type RoundRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Mode       string    `json:"mode"`
	Source     string    `json:"source"`
	WordsFound int       `json:"wordsFound"`
	Mistakes   int       `json:"mistakes"`
	Resets     int       `json:"resets"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Stats aggregates a user's history.
type Stats struct {
	RoundsPlayed int `json:"roundsPlayed"`
	WordsFound   int `json:"wordsFound"`
	BestRound    int `json:"bestRound"`
	DailyPlayed  int `json:"dailyPlayed"`
}

// DailyResult is one user's finished daily challenge.
type DailyResult struct {
	UserID     string
	Date       string // YYYY-MM-DD
	Source     string
	WordsFound int
	ElapsedMs  int64
}

// LeaderboardRow is one entry of a daily leaderboard.
type LeaderboardRow struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	WordsFound int    `json:"wordsFound"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

// Store is the persistence interface for player history.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	UserByName(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)

	// RecordRound stores a finished round. Recording the same id twice is a no-op.
	RecordRound(ctx context.Context, r RoundRecord) error
	RecentRounds(ctx context.Context, userID string, limit int) ([]RoundRecord, error)
	Stats(ctx context.Context, userID string) (Stats, error)

	DailyPlayed(ctx context.Context, userID, date string) (bool, error)
	// InsertDaily stores a daily result; a second result for the same user and date is ignored.
	InsertDaily(ctx context.Context, r DailyResult) error
	Leaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error)

	Ping(ctx context.Context) error
	Close() error
}

const defaultLimit = 20

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultLimit
	}
	return limit
}

// IsPostgresDSN reports whether dsn addresses a Postgres server.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the backend selected by dsn and migrates it.
// Postgres URLs select Postgres; anything else is a SQLite file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if IsPostgresDSN(dsn) {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}
