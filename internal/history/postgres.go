package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

type pgStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pgx pool to dsn and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	// goose works on database/sql; borrow the pool through pgx's stdlib adapter.
	db := stdlib.OpenDBFromPool(pool)
	err = migrate(ctx, db, goose.DialectPostgres, "migrations/postgres")
	db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *pgStore) UserByName(ctx context.Context, username string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE lower(username) = lower($1)`, username)
	return scanPgUser(row)
}

func (s *pgStore) UserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id)
	return scanPgUser(row)
}

func scanPgUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *pgStore) RecordRound(ctx context.Context, r RoundRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rounds (id, user_id, mode, source, words_found, mistakes, resets, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		r.ID, r.UserID, r.Mode, r.Source, r.WordsFound, r.Mistakes, r.Resets,
		r.StartedAt.UTC(), r.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("record round %s: %w", r.ID, err)
	}
	return nil
}

func (s *pgStore) RecentRounds(ctx context.Context, userID string, limit int) ([]RoundRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, mode, source, words_found, mistakes, resets, started_at, finished_at
		FROM rounds WHERE user_id = $1
		ORDER BY finished_at DESC
		LIMIT $2`, userID, clampLimit(limit))
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

func (s *pgStore) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	if err := s.pool.QueryRow(ctx, `
		SELECT COUNT(1), COALESCE(SUM(words_found), 0), COALESCE(MAX(words_found), 0)
		FROM rounds WHERE user_id = $1`, userID,
	).Scan(&st.RoundsPlayed, &st.WordsFound, &st.BestRound); err != nil {
		return Stats{}, fmt.Errorf("round stats: %w", err)
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id = $1`, userID,
	).Scan(&st.DailyPlayed); err != nil {
		return Stats{}, fmt.Errorf("daily stats: %w", err)
	}
	return st, nil
}

func (s *pgStore) DailyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id = $1 AND date = $2`, userID, date,
	).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (s *pgStore) InsertDaily(ctx context.Context, r DailyResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_results (user_id, date, source, words_found, elapsed_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id, date) DO NOTHING`,
		r.UserID, r.Date, r.Source, r.WordsFound, r.ElapsedMs)
	if err != nil {
		return fmt.Errorf("insert daily result: %w", err)
	}
	return nil
}

func (s *pgStore) Leaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.user_id, u.username, d.words_found, d.elapsed_ms
		FROM daily_results d JOIN users u ON u.id = d.user_id
		WHERE d.date = $1
		ORDER BY d.words_found DESC, d.elapsed_ms ASC, d.created_at ASC
		LIMIT $2`, date, clampLimit(limit))
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

func (s *pgStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}
