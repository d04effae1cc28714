// internal/httpserver/server.go
//
// HTTP server wiring for the Wordimize backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     request logging, JSON, CORS).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Round endpoints (optional auth): /game/new, /game/{id}, submit, restart, finish.
//   - Daily challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile endpoints: /auth/*, /stats/me, /rounds/mine.
//   - Websocket play channel: /ws.
//
// Notes:
//   - Active rounds live in store.Store; finished rounds of signed-in players
//     are written to history.Store.
//   - Optional auth decorates requests with the user when a valid token is
//     present; guests can still play.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordimize/internal/config"
	"github.com/robalobadob/wordimize/internal/history"
	"github.com/robalobadob/wordimize/internal/store"
	"github.com/robalobadob/wordimize/internal/words"
)

// Server bundles the router with the round store, history and word lists.
type Server struct {
	r       *chi.Mux
	cfg     *config.Config
	rounds  store.Store
	history history.Store
	lists   *words.Lists
	limiter *RateLimiter
	now     func() time.Time

	dailyMu   sync.Mutex
	dailyOpen map[string]string // userID|date -> open daily round id
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, rounds store.Store, hist history.Store, lists *words.Lists) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       cfg,
		rounds:    rounds,
		history:   hist,
		lists:     lists,
		limiter:   NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
		now:       time.Now,
		dailyOpen: make(map[string]string),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(corsFor(cfg.ClientOrigin))

	// The websocket outlives any request timeout.
	s.r.With(s.withOptionalAuth()).Get("/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   "wordimize",
				"endpoints": []string{"/health", "POST /game/new", "POST /game/{id}/submit", "/daily/*", "/auth/*", "/ws"},
			})
		})
		r.Get("/health", s.handleHealth)
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			src, dict := s.lists.Stats()
			writeJSON(w, http.StatusOK, map[string]int{"sources": src, "dictionary": dict})
		})

		// Rounds and the daily challenge: guests can play.
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			s.mountGame(r)
			s.mountDaily(r)
		})

		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return s
}

// Handler exposes the router (http.Server and tests).
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Limiter exposes the submission rate limiter for periodic cleanup.
func (s *Server) Limiter() *RateLimiter { return s.limiter }

// Sweep drops idle rounds and stale rate-limit entries.
func (s *Server) Sweep(ctx context.Context) (int, error) {
	n, err := s.rounds.Sweep(ctx, s.cfg.RoundTTL)
	if err != nil {
		return 0, err
	}
	keys := s.limiter.Cleanup()
	dailies := s.forgetDaily(ctx)
	if n > 0 || keys > 0 || dailies > 0 {
		log.Debug().Int("rounds", n).Int("limiterKeys", keys).Int("dailyKeys", dailies).Msg("sweep")
	}
	return n, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("health: history ping")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "db_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rounds": s.rounds.Len()})
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ev := log.Info()
			if status >= 500 {
				ev = log.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Str("requestId", chimw.GetReqID(r.Context())).
				Msg("http")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError sends {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// statusFor maps play errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	var pe *playError
	if errors.As(err, &pe) {
		return pe.status, pe.code
	}
	return http.StatusInternalServerError, "internal"
}
