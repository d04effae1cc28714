// internal/httpserver/routes_game.go
//
// HTTP routes for free-play rounds:
//   - POST /game/new          → start a round, returns its snapshot
//   - GET  /game/{id}         → current snapshot
//   - POST /game/{id}/submit  → {"word": "..."} → outcome + snapshot
//   - POST /game/{id}/restart → new source word (the refresh action)
//   - POST /game/{id}/finish  → close the round; signed-in rounds are recorded

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordimize/internal/game"
	"github.com/robalobadob/wordimize/internal/store"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Get("/{id}", s.handleGetGame)
		r.Post("/{id}/submit", s.handleSubmit)
		r.Post("/{id}/restart", s.handleRestart)
		r.Post("/{id}/finish", s.handleFinish)
	})
}

type newGameReq struct {
	Mode string `json:"mode"` // "free" (default) | "daily"
}

type submitReq struct {
	Word string `json:"word"`
}

type submitRes struct {
	Outcome game.Outcome `json:"outcome"`
	Round   game.Round   `json:"round"`
}

type finishRes struct {
	Round    game.Round `json:"round"`
	Recorded bool       `json:"recorded"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	snap, created, err := s.startRound(r.Context(), game.Mode(req.Mode), userID(r))
	if err != nil {
		s.fail(w, r, err, "start round")
		return
	}
	writeJSON(w, createdStatus(created), snap)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rounds.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && !canPlay(&snap, userID(r))) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		s.fail(w, r, err, "get round")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errRateLimited.code)
		return
	}
	var req submitReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, snap, err := s.submit(r.Context(), chi.URLParam(r, "id"), userID(r), req.Word)
	if err != nil {
		s.fail(w, r, err, "submit")
		return
	}
	writeJSON(w, http.StatusOK, submitRes{Outcome: out, Round: snap})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	snap, err := s.restart(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.fail(w, r, err, "restart")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	snap, recorded, err := s.finish(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.fail(w, r, err, "finish")
		return
	}
	writeJSON(w, http.StatusOK, finishRes{Round: snap, Recorded: recorded})
}

// createdStatus is 201 for a new round and 200 for one handed back again.
func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// fail writes the error response for err, logging unexpected failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("op", op).Str("requestId", requestID(r)).Msg("request failed")
	}
	writeError(w, status, code)
}
