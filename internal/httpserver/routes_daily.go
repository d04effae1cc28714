// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily challenge.
//   - POST /daily/new         → start today's round (same source word for everyone);
//                               signed-in players get their open round back
//   - GET  /daily/leaderboard → results for today (or ?date=YYYY-MM-DD)
//
// Daily rounds are played and finished through the /game/{id} routes.
// Signed-in players can finish one daily round per date.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordimize/internal/daily"
	"github.com/robalobadob/wordimize/internal/game"
	"github.com/robalobadob/wordimize/internal/history"
)

func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

type dailyRes struct {
	Date  string     `json:"date"`
	Round game.Round `json:"round"`
}

type leaderboardRes struct {
	Date string                   `json:"date"`
	Rows []history.LeaderboardRow `json:"rows"`
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	snap, created, err := s.startRound(r.Context(), game.ModeDaily, userID(r))
	if err != nil {
		s.fail(w, r, err, "daily new")
		return
	}
	writeJSON(w, createdStatus(created), dailyRes{Date: daily.DateKey(snap.StartedAt), Round: snap})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	} else if _, err := daily.ParseDateKey(date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := s.history.Leaderboard(r.Context(), date, limit)
	if err != nil {
		s.fail(w, r, err, "leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Date: date, Rows: rows})
}
