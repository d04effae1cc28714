// internal/httpserver/play.go
//
// Round operations shared by the JSON routes and the websocket channel.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordimize/internal/daily"
	"github.com/robalobadob/wordimize/internal/game"
	"github.com/robalobadob/wordimize/internal/history"
	"github.com/robalobadob/wordimize/internal/store"
)

// playError carries the HTTP status and the error code sent to clients.
type playError struct {
	status int
	code   string
	msg    string
}

func (e *playError) Error() string { return e.code + ": " + e.msg }

var (
	errRoundNotFound = &playError{http.StatusNotFound, "not_found", "round not found"}
	errDailyRestart  = &playError{http.StatusConflict, "daily_restart", "daily rounds cannot be restarted"}
	errAlreadyPlayed = &playError{http.StatusConflict, "already_played", "today's challenge is already finished"}
	errRateLimited   = &playError{http.StatusTooManyRequests, "rate_limited", "too many submissions, slow down"}
	errBadMode       = &playError{http.StatusBadRequest, "bad_mode", "mode must be free or daily"}
)

// startRound creates and stores a new round for owner ("" for guests).
// A signed-in player asking for the daily round again gets their open one
// back, and the bool result (created) is false.
func (s *Server) startRound(ctx context.Context, mode game.Mode, owner string) (game.Round, bool, error) {
	now := s.now()
	var source string
	switch mode {
	case "", game.ModeFree:
		mode = game.ModeFree
		source = s.lists.RandomSource()
	case game.ModeDaily:
		if owner != "" {
			// Held until the new round is indexed.
			s.dailyMu.Lock()
			defer s.dailyMu.Unlock()

			played, err := s.history.DailyPlayed(ctx, owner, daily.DateKey(now))
			if err != nil {
				return game.Round{}, false, fmt.Errorf("daily played: %w", err)
			}
			if played {
				return game.Round{}, false, errAlreadyPlayed
			}
			open, ok, err := s.openDaily(ctx, owner, now)
			if err != nil {
				return game.Round{}, false, err
			}
			if ok {
				return open, false, nil
			}
		}
		source = daily.Picker(s.lists, now, s.cfg.DailySalt).Pick(1)
	default:
		return game.Round{}, false, errBadMode
	}

	r, err := game.New(source,
		game.WithMode(mode),
		game.WithOwner(owner),
		game.WithClock(s.now),
		game.WithMaxMistakes(s.cfg.MaxMistakes),
		game.WithMinLength(s.cfg.MinLength),
	)
	if err != nil {
		return game.Round{}, false, err
	}
	if err := s.rounds.Save(ctx, r); err != nil {
		return game.Round{}, false, fmt.Errorf("save round: %w", err)
	}
	if mode == game.ModeDaily && owner != "" {
		s.dailyOpen[dailyKey(owner, now)] = r.ID
	}
	log.Debug().Str("round", r.ID).Str("mode", string(mode)).Msg("round started")
	return r.Snapshot(), true, nil
}

// dailyKey indexes a player's open daily round: userID|YYYY-MM-DD.
func dailyKey(owner string, date time.Time) string {
	return owner + "|" + daily.DateKey(date)
}

// openDaily returns owner's unfinished daily round for date, if any.
// Callers hold dailyMu.
func (s *Server) openDaily(ctx context.Context, owner string, date time.Time) (game.Round, bool, error) {
	key := dailyKey(owner, date)
	id, ok := s.dailyOpen[key]
	if !ok {
		return game.Round{}, false, nil
	}
	snap, err := s.rounds.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		delete(s.dailyOpen, key)
		return game.Round{}, false, nil
	}
	if err != nil {
		return game.Round{}, false, fmt.Errorf("open daily round: %w", err)
	}
	return snap, true, nil
}

// forgetDaily drops index entries whose rounds have left the store.
func (s *Server) forgetDaily(ctx context.Context) int {
	s.dailyMu.Lock()
	defer s.dailyMu.Unlock()
	removed := 0
	for key, id := range s.dailyOpen {
		if _, err := s.rounds.Get(ctx, id); errors.Is(err, store.ErrNotFound) {
			delete(s.dailyOpen, key)
			removed++
		}
	}
	return removed
}

// pickerFor returns where r's next source word comes from.
// Daily rounds walk the list from the day's word so every player sees the same sequence.
func (s *Server) pickerFor(r *game.Round) game.Picker {
	if r.Mode == game.ModeDaily {
		return daily.Picker(s.lists, r.StartedAt, s.cfg.DailySalt)
	}
	return game.RandomPicker(s.lists)
}

// canPlay reports whether owner may act on r. Guest rounds are open to
// whoever holds the id.
func canPlay(r *game.Round, owner string) bool {
	return r.Owner == "" || r.Owner == owner
}

// update runs fn on round id with ownership checks and error translation.
func (s *Server) update(ctx context.Context, id, owner string, fn func(*game.Round) error) (game.Round, error) {
	snap, err := s.rounds.Update(ctx, id, func(r *game.Round) error {
		if !canPlay(r, owner) {
			return errRoundNotFound
		}
		return fn(r)
	})
	if errors.Is(err, store.ErrNotFound) {
		return game.Round{}, errRoundNotFound
	}
	return snap, err
}

// submit applies word to round id.
func (s *Server) submit(ctx context.Context, id, owner, word string) (game.Outcome, game.Round, error) {
	var out game.Outcome
	snap, err := s.update(ctx, id, owner, func(r *game.Round) error {
		out = r.Submit(word, s.lists, s.pickerFor(r))
		return nil
	})
	if err != nil {
		return game.Outcome{}, game.Round{}, err
	}
	if out.Reset {
		log.Debug().Str("round", id).Str("source", out.NewSource).Msg("round reset after too many mistakes")
	}
	return out, snap, nil
}

// restart gives round id a fresh source word.
func (s *Server) restart(ctx context.Context, id, owner string) (game.Round, error) {
	return s.update(ctx, id, owner, func(r *game.Round) error {
		if r.Mode == game.ModeDaily {
			return errDailyRestart
		}
		r.Restart(s.pickerFor(r))
		return nil
	})
}

// finish closes round id. Rounds owned by the caller are written to history
// first; recorded reports whether that happened.
func (s *Server) finish(ctx context.Context, id, owner string) (snap game.Round, recorded bool, err error) {
	snap, err = s.rounds.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return game.Round{}, false, errRoundNotFound
	}
	if err != nil {
		return game.Round{}, false, err
	}
	if !canPlay(&snap, owner) {
		return game.Round{}, false, errRoundNotFound
	}

	if snap.Owner != "" {
		if err := s.record(ctx, snap); err != nil {
			return game.Round{}, false, err
		}
		recorded = true
	}
	if err := s.rounds.Delete(ctx, id); err != nil {
		return game.Round{}, false, fmt.Errorf("delete round: %w", err)
	}
	if snap.Mode == game.ModeDaily && snap.Owner != "" {
		s.dailyMu.Lock()
		delete(s.dailyOpen, dailyKey(snap.Owner, snap.StartedAt))
		s.dailyMu.Unlock()
	}
	return snap, recorded, nil
}

func (s *Server) record(ctx context.Context, snap game.Round) error {
	now := s.now()
	rec := history.RoundRecord{
		ID:         snap.ID,
		UserID:     snap.Owner,
		Mode:       string(snap.Mode),
		Source:     snap.Source,
		WordsFound: len(snap.Words),
		Mistakes:   snap.Mistakes,
		Resets:     snap.Resets,
		StartedAt:  snap.StartedAt,
		FinishedAt: now,
	}
	if err := s.history.RecordRound(ctx, rec); err != nil {
		return err
	}
	if snap.Mode != game.ModeDaily {
		return nil
	}
	return s.history.InsertDaily(ctx, history.DailyResult{
		UserID:     snap.Owner,
		Date:       daily.DateKey(snap.StartedAt),
		Source:     snap.Source,
		WordsFound: len(snap.Words),
		ElapsedMs:  now.Sub(snap.StartedAt).Milliseconds(),
	})
}
