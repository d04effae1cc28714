// internal/httpserver/ws.go
//
// Websocket play channel at /ws.
//
// Every frame is a {"type","payload"} envelope.
//   client → server: ping, new_game {mode}, submit {word}, restart
//   server → client: pong, round, outcome, error {code,message}
//
// A connection plays one round at a time; new_game replaces it. Rounds live
// in the shared store, so a round started here can also be read over HTTP.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordimize/internal/game"
)

// ClientMessage is a frame sent by the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is a frame sent by the server.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewGameRequest is the new_game payload.
type NewGameRequest struct {
	Mode string `json:"mode"`
}

// SubmitRequest is the submit payload.
type SubmitRequest struct {
	Word string `json:"word"`
}

// OutcomeResponse is the outcome payload.
type OutcomeResponse struct {
	Outcome game.Outcome `json:"outcome"`
	Round   game.Round   `json:"round"`
}

// ErrorResponse is the error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// validateMessageType rejects unknown client frame types.
func validateMessageType(msgType string) error {
	switch msgType {
	case "ping", "new_game", "submit", "restart":
		return nil
	}
	return fmt.Errorf("INVALID_MESSAGE_TYPE: Unknown message type '%s'", msgType)
}

// wsConn is the per-connection state.
type wsConn struct {
	id      string
	owner   string
	roundID string
	conn    *websocket.Conn
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.cfg.ClientOrigin),
	})
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "server closing")

	c := &wsConn{id: uuid.NewString(), owner: userID(r), conn: socket}
	log.Info().Str("conn", c.id).Bool("signedIn", c.owner != "").Msg("ws connected")
	defer func() {
		s.limiter.Forget("ws:" + c.id)
		log.Info().Str("conn", c.id).Msg("ws closed")
	}()

	ctx := r.Context()
	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.Debug().Err(err).Str("conn", c.id).Msg("ws read")
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		if err := s.dispatch(ctx, c, data); err != nil {
			if werr := s.sendError(ctx, c, err); werr != nil {
				log.Debug().Err(werr).Str("conn", c.id).Msg("ws write")
				return
			}
		}
	}
}

// dispatch handles one client frame. Errors returned here are reported to
// the client and keep the connection open.
func (s *Server) dispatch(ctx context.Context, c *wsConn, data []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return errors.New("INVALID_JSON: Could not parse message")
	}
	if err := validateMessageType(msg.Type); err != nil {
		return err
	}

	switch msg.Type {
	case "ping":
		return send(ctx, c.conn, "pong", map[string]string{"conn": c.id})

	case "new_game":
		var req NewGameRequest
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return errors.New("INVALID_PAYLOAD: new_game expects {\"mode\"}")
			}
		}
		snap, _, err := s.startRound(ctx, game.Mode(req.Mode), c.owner)
		if err != nil {
			return err
		}
		c.roundID = snap.ID
		return send(ctx, c.conn, "round", snap)

	case "submit":
		if c.roundID == "" {
			return errors.New("NO_ROUND: Start a game first")
		}
		if !s.limiter.Allow("ws:" + c.id) {
			return errRateLimited
		}
		var req SubmitRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errors.New("INVALID_PAYLOAD: submit expects {\"word\"}")
		}
		out, snap, err := s.submit(ctx, c.roundID, c.owner, req.Word)
		if err != nil {
			return err
		}
		return send(ctx, c.conn, "outcome", OutcomeResponse{Outcome: out, Round: snap})

	case "restart":
		if c.roundID == "" {
			return errors.New("NO_ROUND: Start a game first")
		}
		snap, err := s.restart(ctx, c.roundID, c.owner)
		if err != nil {
			return err
		}
		return send(ctx, c.conn, "round", snap)
	}
	return nil
}

// sendError reports err as an error frame. Messages use the "CODE: message" form.
func (s *Server) sendError(ctx context.Context, c *wsConn, err error) error {
	resp := ErrorResponse{Code: "INTERNAL", Message: "Something went wrong"}
	var pe *playError
	switch {
	case errors.As(err, &pe):
		resp = ErrorResponse{Code: strings.ToUpper(pe.code), Message: pe.msg}
	default:
		if code, msg, ok := strings.Cut(err.Error(), ": "); ok && code == strings.ToUpper(code) {
			resp = ErrorResponse{Code: code, Message: msg}
		} else {
			log.Error().Err(err).Str("conn", c.id).Msg("ws request failed")
		}
	}
	return send(ctx, c.conn, "error", resp)
}

func send(ctx context.Context, conn *websocket.Conn, msgType string, payload any) error {
	data, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// originPatterns turns the configured client origin into an accept pattern.
func originPatterns(origin string) []string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
