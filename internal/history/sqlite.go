package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) a SQLite database file and
// applies migrations.
//
//   - Ensures the parent directory exists for relative paths (./data/app.db).
//   - Configures busy timeout and WAL journaling.
//   - Enforces foreign keys.
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(ctx, db, goose.DialectSQLite3, "migrations/sqlite"); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.UTC())
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *sqliteStore) UserByName(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *sqliteStore) UserByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *sqliteStore) RecordRound(ctx context.Context, r RoundRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rounds (id, user_id, mode, source, words_found, mistakes, resets, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		r.ID, r.UserID, r.Mode, r.Source, r.WordsFound, r.Mistakes, r.Resets,
		r.StartedAt.UTC(), r.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("record round %s: %w", r.ID, err)
	}
	return nil
}

func (s *sqliteStore) RecentRounds(ctx context.Context, userID string, limit int) ([]RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, mode, source, words_found, mistakes, resets, started_at, finished_at
		FROM rounds WHERE user_id = ?
		ORDER BY finished_at DESC
		LIMIT ?`, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	out := []RoundRecord{}
	for rows.Next() {
		var r RoundRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Mode, &r.Source, &r.WordsFound, &r.Mistakes, &r.Resets,
			&r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1), COALESCE(SUM(words_found), 0), COALESCE(MAX(words_found), 0)
		FROM rounds WHERE user_id = ?`, userID,
	).Scan(&st.RoundsPlayed, &st.WordsFound, &st.BestRound); err != nil {
		return Stats{}, fmt.Errorf("round stats: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id = ?`, userID,
	).Scan(&st.DailyPlayed); err != nil {
		return Stats{}, fmt.Errorf("daily stats: %w", err)
	}
	return st, nil
}

func (s *sqliteStore) DailyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id = ? AND date = ?`, userID, date,
	).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (s *sqliteStore) InsertDaily(ctx context.Context, r DailyResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_results (user_id, date, source, words_found, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		r.UserID, r.Date, r.Source, r.WordsFound, r.ElapsedMs)
	if err != nil {
		return fmt.Errorf("insert daily result: %w", err)
	}
	return nil
}

func (s *sqliteStore) Leaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.user_id, u.username, d.words_found, d.elapsed_ms
		FROM daily_results d JOIN users u ON u.id = d.user_id
		WHERE d.date = ?
		ORDER BY d.words_found DESC, d.elapsed_ms ASC, d.created_at ASC
		LIMIT ?`, date, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := []LeaderboardRow{}
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.WordsFound, &r.ElapsedMs); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqliteStore) Close() error { return s.db.Close() }
