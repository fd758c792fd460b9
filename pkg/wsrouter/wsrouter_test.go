package wsrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRouter(t *testing.T, router *WSRouter) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		go router.ServeConn(context.Background(), NewConn(conn))
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestRouting(t *testing.T) {
	router := New()

	type echoPayload struct {
		Value string `json:"value"`
	}
	router.Handle("echo", TypedHandler(func(ctx context.Context, conn *Conn, input echoPayload) error {
		assert.Equal(t, "echo", GetMessageTypeFromCtx(ctx))
		return conn.WriteJSON(map[string]any{"type": "echoed", "payload": input})
	}))

	conn := dialRouter(t, router)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "echo",
		"payload": echoPayload{Value: "hello"},
	}))

	var reply struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "echoed", reply.Type)
	assert.JSONEq(t, `{"value":"hello"}`, string(reply.Payload))
}

func TestUnknownMessageType(t *testing.T) {
	conn := dialRouter(t, New())

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "bogus"}))

	var reply struct {
		Type    string `json:"type"`
		Payload struct {
			Message string `json:"message"`
		} `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, "unknown message type", reply.Payload.Message)
}

func TestHandlerErrorKeepsConnAlive(t *testing.T) {
	router := New()
	router.Handle("boom", func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
		return assert.AnError
	})
	router.Handle("ping", func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
		return conn.WriteJSON(map[string]any{"type": "pong"})
	})

	conn := dialRouter(t, router)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "boom"}))

	var errReply struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&errReply))
	assert.Equal(t, "error", errReply.Type)

	// the connection survives the failed handler
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))

	var pongReply struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&pongReply))
	assert.Equal(t, "pong", pongReply.Type)
}

func TestMiddlewareOrder(t *testing.T) {
	router := New()

	var calls []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
				calls = append(calls, name)
				return next(ctx, conn, payload)
			}
		}
	}
	router.Use(mw("outer"))
	router.Use(mw("inner"))
	router.Handle("noop", func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
		calls = append(calls, "handler")
		return conn.WriteJSON(map[string]any{"type": "done"})
	})

	conn := dialRouter(t, router)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "noop"}))

	var reply struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestConcurrentWrites(t *testing.T) {
	const writers = 50

	router := New()
	router.Handle("burst", func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, conn.WriteJSON(map[string]any{"type": "tick"}))
			}()
		}
		wg.Wait()
		return nil
	})

	conn := dialRouter(t, router)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "burst"}))

	for i := 0; i < writers; i++ {
		var reply struct {
			Type string `json:"type"`
		}
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, "tick", reply.Type)
	}
}
