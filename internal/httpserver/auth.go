// internal/httpserver/auth.go
//
// Accounts and sessions.
// Responsibilities:
//   - /auth/signup, /auth/login, /auth/logout, /auth/me.
//   - /stats/me and /rounds/mine for signed-in players.
//   - HS256 JWTs carried in an HttpOnly cookie or an Authorization bearer header.
//   - Optional and required auth middleware.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordimize/internal/history"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// tokenClaims are the JWT claims; Subject holds the user id.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var (
	errInvalidUsername = errors.New("invalid_username")
	errInvalidPassword = errors.New("invalid_password")
)

// compareHash checks a password against a bcrypt hash.
var compareHash = bcrypt.CompareHashAndPassword

// dummyHash is compared against when the username is unknown, so a missing
// account takes as long to reject as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("wordimize-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("dummy bcrypt hash: %v", err))
	}
	return h
})

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, currentUser(r))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/rounds/mine", s.handleMyRounds)
	})
}

// handleSignup creates a user, signs a JWT and sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	username := strings.TrimSpace(body.Username)
	if err := validateSignup(username, body.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		s.fail(w, r, err, "hash password")
		return
	}
	u := history.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.history.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, history.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username_taken")
			return
		}
		s.fail(w, r, err, "create user")
		return
	}
	if !s.issueToken(w, r, u) {
		return
	}
	log.Info().Str("user", u.ID).Msg("signup")
	writeJSON(w, http.StatusCreated, u)
}

// handleLogin checks the password and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	u, err := s.history.UserByName(r.Context(), strings.TrimSpace(body.Username))
	if err != nil && !errors.Is(err, history.ErrNotFound) {
		s.fail(w, r, err, "find user")
		return
	}
	hash := []byte(u.PasswordHash)
	if err != nil {
		hash = dummyHash()
	}
	if compareHash(hash, []byte(body.Password)) != nil || err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if !s.issueToken(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Time{}, -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	st, err := s.history.Stats(r.Context(), me.ID)
	if err != nil {
		s.fail(w, r, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           me.ID,
		"roundsPlayed": st.RoundsPlayed,
		"wordsFound":   st.WordsFound,
		"bestRound":    st.BestRound,
		"dailyPlayed":  st.DailyPlayed,
	})
}

func (s *Server) handleMyRounds(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rounds, err := s.history.RecentRounds(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		s.fail(w, r, err, "recent rounds")
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

// --------------------------- middleware ------------------------------------

// withOptionalAuth decorates requests with the user if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := s.authenticate(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT for a user that still exists.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := s.authenticate(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// authenticate resolves the request's token to a stored user.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	raw := bearerOrCookie(r, s.cfg.CookieName)
	if raw == "" {
		return nil, errors.New("no token")
	}
	c := &tokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	u, err := s.history.UserByID(r.Context(), c.Subject)
	if err != nil {
		return nil, err
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT for u that expires after the configured TTL.
func (s *Server) signJWT(u history.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.JWTTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// issueToken signs a token for u, sets the cookie and mirrors the token in
// the X-Auth-Token header for non-browser clients.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, u history.User) bool {
	tok, exp, err := s.signJWT(u)
	if err != nil {
		s.fail(w, r, err, "sign token")
		return false
	}
	s.setAuthCookie(w, tok, exp, 0)
	w.Header().Set("X-Auth-Token", tok)
	return true
}

// setAuthCookie writes (or with maxAge < 0 deletes) the auth cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode // cross-site cookies must be Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request, cookieName string) string {
	if a := r.Header.Get("Authorization"); len(a) > 7 && strings.EqualFold(a[:7], "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------- small util --------------------------------

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// userID returns the signed-in user's id or "" for guests.
func userID(r *http.Request) string {
	if u := currentUser(r); u != nil {
		return u.ID
	}
	return ""
}

// clientKey identifies the caller for rate limiting.
func clientKey(r *http.Request) string {
	if id := userID(r); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func requestID(r *http.Request) string { return chimw.GetReqID(r.Context()) }

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errInvalidUsername
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errInvalidUsername
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return errInvalidPassword
	}
	return nil
}
