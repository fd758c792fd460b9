package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/watchsync/server/internal/repository/connection/inmemory"
	"github.com/watchsync/server/internal/repository/media/disk"
	roomInmemory "github.com/watchsync/server/internal/repository/room/inmemory"
	"github.com/watchsync/server/internal/service/room"
)

// minimal mp4: size box + ftyp/isom brand, enough for content sniffing
var mp4Bytes = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mediaStorage, err := disk.NewStorage(t.TempDir())
	require.NoError(t, err)

	roomService := room.NewService(roomInmemory.NewRepo(), connInmemory.NewRepo(), mediaStorage, slog.Default())
	c := NewController(roomService, mediaStorage, Config{
		UploadsDir:     mediaStorage.Dir(),
		MaxUploadBytes: 500 << 20,
	}, slog.Default())

	srv := httptest.NewServer(c.GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, messageType string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": messageType, "payload": payload}))
}

func read(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func join(t *testing.T, conn *websocket.Conn, roomId string) wsMessage {
	t.Helper()
	send(t, conn, "joinRoom", map[string]any{"roomId": roomId})

	msg := read(t, conn)
	require.Equal(t, "syncVideo", msg.Type)
	return msg
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJoinAndPlayback(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dialWS(t, srv)
	msg := join(t, conn1, "r1")
	assert.JSONEq(t, `{"currentTime":0,"isPlaying":false}`, string(msg.Payload))

	conn2 := dialWS(t, srv)
	join(t, conn2, "r1")

	// play from conn1 reaches conn2 only
	send(t, conn1, "play", map[string]any{"roomId": "r1"})
	msg = read(t, conn2)
	assert.Equal(t, "play", msg.Type)

	send(t, conn1, "pause", map[string]any{"roomId": "r1"})
	msg = read(t, conn2)
	assert.Equal(t, "pause", msg.Type)

	send(t, conn2, "seeked", map[string]any{"roomId": "r1", "currentTime": 42.5})
	msg = read(t, conn1)
	assert.Equal(t, "seek", msg.Type)
	assert.JSONEq(t, `{"currentTime":42.5}`, string(msg.Payload))

	send(t, conn1, "checkSync", map[string]any{"roomId": "r1", "currentTime": 43.0, "isPlaying": true})
	msg = read(t, conn2)
	assert.Equal(t, "syncResponse", msg.Type)
	assert.JSONEq(t, `{"hostTime":43,"isPlaying":true}`, string(msg.Payload))

	// a late joiner receives the reconciled state
	conn3 := dialWS(t, srv)
	msg = join(t, conn3, "r1")
	assert.JSONEq(t, `{"currentTime":43,"isPlaying":true}`, string(msg.Payload))
}

func TestConcurrentSenders(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dialWS(t, srv)
	join(t, conn1, "r1")
	conn2 := dialWS(t, srv)
	join(t, conn2, "r1")
	conn3 := dialWS(t, srv)
	join(t, conn3, "r1")

	const eventsPerSender = 100

	// the two senders also receive each other's fan-out; drain it so the
	// server side never blocks on their write buffers
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		go func(conn *websocket.Conn) {
			var msg wsMessage
			for conn.ReadJSON(&msg) == nil {
			}
		}(conn)
	}

	// two members emit playback events simultaneously; every broadcast
	// targets conn3's connection from a different server goroutine
	var wg sync.WaitGroup
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			for i := 0; i < eventsPerSender; i++ {
				assert.NoError(t, conn.WriteJSON(map[string]any{
					"type":    "play",
					"payload": map[string]any{"roomId": "r1"},
				}))
			}
		}(conn)
	}

	for i := 0; i < 2*eventsPerSender; i++ {
		msg := read(t, conn3)
		require.Equal(t, "play", msg.Type)
	}
	wg.Wait()
}

func TestStaleEventsAreDropped(t *testing.T) {
	srv := newTestServer(t)

	conn := dialWS(t, srv)
	join(t, conn, "r1")

	// events for rooms this server does not know go nowhere, without an
	// error frame and without creating the room
	send(t, conn, "play", map[string]any{"roomId": "ghost"})
	send(t, conn, "seeked", map[string]any{"roomId": "ghost", "currentTime": 10})
	send(t, conn, "checkSync", map[string]any{"roomId": "ghost", "currentTime": 10, "isPlaying": true})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var msg wsMessage
	err := conn.ReadJSON(&msg)
	require.Error(t, err, "expected no frame, got %q", msg.Type)
	assert.True(t, strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline"))
}

func TestUnknownMessageType(t *testing.T) {
	srv := newTestServer(t)

	conn := dialWS(t, srv)
	send(t, conn, "selfDestruct", nil)

	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
}

func uploadVideo(t *testing.T, srv *httptest.Server, roomId string, content []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("video", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/v1/room/"+roomId+"/video", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestUploadVideo(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dialWS(t, srv)
	join(t, conn1, "r1")
	conn2 := dialWS(t, srv)
	join(t, conn2, "r1")

	resp := uploadVideo(t, srv, "r1", mp4Bytes)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var uploadResp struct {
		VideoURL string `json:"videoUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadResp))
	assert.True(t, strings.HasPrefix(uploadResp.VideoURL, "/uploads/video-r1-"))

	// the media change reaches every member, uploader's session included
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := read(t, conn)
		assert.Equal(t, "videoChange", msg.Type)

		var payload struct {
			VideoURL string `json:"videoUrl"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, uploadResp.VideoURL, payload.VideoURL)
	}

	// the uploaded file is served statically
	fileResp, err := http.Get(srv.URL + uploadResp.VideoURL)
	require.NoError(t, err)
	defer fileResp.Body.Close()
	require.Equal(t, http.StatusOK, fileResp.StatusCode)

	served, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	assert.Equal(t, mp4Bytes, served)

	// a late joiner is synced onto the uploaded media
	conn3 := dialWS(t, srv)
	msg := join(t, conn3, "r1")

	var player struct {
		CurrentMedia string `json:"currentMedia"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &player))
	assert.Equal(t, uploadResp.VideoURL, player.CurrentMedia)
}

func TestUploadVideoUnknownRoom(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadVideo(t, srv, "ghost", mp4Bytes)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadRejectsNonVideo(t *testing.T) {
	srv := newTestServer(t)

	conn := dialWS(t, srv)
	join(t, conn, "r1")

	resp := uploadVideo(t, srv, "r1", []byte("definitely not a video"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
