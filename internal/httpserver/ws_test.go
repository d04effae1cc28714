package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/robalobadob/wordimize/internal/config"
	"github.com/robalobadob/wordimize/internal/game"
)

// serverFrame mirrors ServerMessage with the payload left raw.
type serverFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func wsURL(base string) string {
	return "ws" + strings.TrimPrefix(base, "http") + "/ws"
}

func dialWS(t *testing.T, ctx context.Context, base string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, wsURL(base), nil)
	require.NoError(t, err)
	return conn
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// roundTrip writes one client frame and reads the reply.
func roundTrip(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, payload any) serverFrame {
	t.Helper()
	msg := ClientMessage{Type: msgType}
	if payload != nil {
		msg.Payload = mustMarshal(payload)
	}
	require.NoError(t, conn.Write(ctx, websocket.MessageText, mustMarshal(msg)))
	return readFrame(t, ctx, conn)
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) serverFrame {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var f serverFrame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func decodePayload[T any](t *testing.T, f serverFrame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Payload, &v))
	return v
}

func TestWebSocketPingPong(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, ts, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "")

	f := roundTrip(t, ctx, conn, "ping", nil)
	assert.Equal(t, "pong", f.Type)
	assert.NotEmpty(t, decodePayload[map[string]string](t, f)["conn"])
}

func TestWebSocketPlayRound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv, ts, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "")

	f := roundTrip(t, ctx, conn, "new_game", NewGameRequest{Mode: "free"})
	require.Equal(t, "round", f.Type)
	round := decodePayload[game.Round](t, f)
	assert.Equal(t, "silkworm", round.Source)

	f = roundTrip(t, ctx, conn, "submit", SubmitRequest{Word: "Worm"})
	require.Equal(t, "outcome", f.Type)
	out := decodePayload[OutcomeResponse](t, f)
	assert.Equal(t, game.VerdictAccepted, out.Outcome.Verdict)
	assert.Equal(t, []string{"worm"}, out.Round.Words)

	f = roundTrip(t, ctx, conn, "submit", SubmitRequest{Word: "worm"})
	out = decodePayload[OutcomeResponse](t, f)
	assert.Equal(t, game.VerdictAlreadyUsed, out.Outcome.Verdict)
	assert.Equal(t, "Word already used!", out.Outcome.Title)
	assert.Equal(t, 1, out.Round.Mistakes)

	// The round is shared with the HTTP side.
	stored, err := srv.rounds.Get(ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"worm"}, stored.Words)

	f = roundTrip(t, ctx, conn, "restart", nil)
	require.Equal(t, "round", f.Type)
	restarted := decodePayload[game.Round](t, f)
	assert.Equal(t, 2, restarted.Number)
	assert.Empty(t, restarted.Words)
}

func TestWebSocketForcedReset(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, ts, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "")
	require.Equal(t, "round", roundTrip(t, ctx, conn, "new_game", nil).Type)

	var out OutcomeResponse
	for i := 0; i <= game.DefaultMaxMistakes; i++ {
		out = decodePayload[OutcomeResponse](t, roundTrip(t, ctx, conn, "submit", SubmitRequest{Word: "xyz"}))
	}
	assert.True(t, out.Outcome.Reset)
	assert.Equal(t, "silkworm", out.Outcome.NewSource)
	assert.Equal(t, 0, out.Round.Mistakes)
	assert.Equal(t, 1, out.Round.Resets)
}

func TestWebSocketErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, ts, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "")

	tests := []struct {
		name     string
		frame    []byte
		wantCode string
	}{
		{"unknown type", mustMarshal(ClientMessage{Type: "dance"}), "INVALID_MESSAGE_TYPE"},
		{"bad json", []byte("{nope"), "INVALID_JSON"},
		{"submit before new_game", mustMarshal(ClientMessage{Type: "submit", Payload: mustMarshal(SubmitRequest{Word: "silk"})}), "NO_ROUND"},
		{"restart before new_game", mustMarshal(ClientMessage{Type: "restart"}), "NO_ROUND"},
		{"bad mode", mustMarshal(ClientMessage{Type: "new_game", Payload: mustMarshal(NewGameRequest{Mode: "blitz"})}), "BAD_MODE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.Write(ctx, websocket.MessageText, tt.frame))
			f := readFrame(t, ctx, conn)
			require.Equal(t, "error", f.Type)
			assert.Equal(t, tt.wantCode, decodePayload[ErrorResponse](t, f).Code)
		})
	}

	// The connection survives errors.
	assert.Equal(t, "pong", roundTrip(t, ctx, conn, "ping", nil).Type)
}

func TestWebSocketRateLimiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, ts, cleanup := setupTestServer(t, func(c *config.Config) {
		c.RateLimit = 2
		c.RateWindow = time.Minute
	})
	defer cleanup()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "")
	roundTrip(t, ctx, conn, "new_game", nil)

	assert.Equal(t, "outcome", roundTrip(t, ctx, conn, "submit", SubmitRequest{Word: "silk"}).Type)
	assert.Equal(t, "outcome", roundTrip(t, ctx, conn, "submit", SubmitRequest{Word: "milk"}).Type)

	f := roundTrip(t, ctx, conn, "submit", SubmitRequest{Word: "worm"})
	require.Equal(t, "error", f.Type)
	assert.Equal(t, "RATE_LIMITED", decodePayload[ErrorResponse](t, f).Code)

	// A second connection has its own budget.
	other := dialWS(t, ctx, ts.URL)
	defer other.Close(websocket.StatusNormalClosure, "")
	roundTrip(t, ctx, other, "new_game", nil)
	assert.Equal(t, "outcome", roundTrip(t, ctx, other, "submit", SubmitRequest{Word: "worm"}).Type)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, ts, cleanup := setupTestServer(t)
	defer cleanup()

	_, resp, err := websocket.Dial(ctx, wsURL(ts.URL), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.example"}},
	})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}

func TestWebSocketNoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, ts, cleanup := setupTestServer(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		conn := dialWS(t, ctx, ts.URL)
		roundTrip(t, ctx, conn, "new_game", nil)
		roundTrip(t, ctx, conn, "submit", SubmitRequest{Word: "silk"})
		require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	}
}
