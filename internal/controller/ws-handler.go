package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/watchsync/server/internal/domain"
	"github.com/watchsync/server/internal/service/room"
	"github.com/watchsync/server/pkg/ctxlogger"
	"github.com/watchsync/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.loggerWSMw())

	mux.Handle(domain.MsgJoinRoom, wsrouter.TypedHandler(c.handleJoinRoom))
	mux.Handle(domain.MsgPlay, wsrouter.TypedHandler(c.handlePlay))
	mux.Handle(domain.MsgPause, wsrouter.TypedHandler(c.handlePause))
	mux.Handle(domain.MsgSeeked, wsrouter.TypedHandler(c.handleSeeked))
	mux.Handle(domain.MsgCheckSync, wsrouter.TypedHandler(c.handleCheckSync))

	return mux
}

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	// all writers share this connection; its write path is serialized
	conn := wsrouter.NewConn(wsConn)

	sessionId := uuid.NewString()
	if err := c.roomService.ConnectSession(r.Context(), &room.ConnectSessionParams{
		Conn:      conn,
		SessionId: sessionId,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect session", "error", err)
		conn.Close()
		return
	}

	ctx := context.WithValue(r.Context(), sessionIdCtxKey, sessionId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", sessionId))

	// the read loop ending, for any reason, is the one cancellation signal
	defer func() {
		if _, err := c.roomService.DisconnectSession(ctx, &room.DisconnectSessionParams{
			SessionId: sessionId,
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to disconnect session", "error", err)
		}
	}()

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "error", err)
	}
}

type JoinRoomInput struct {
	RoomId string `json:"roomId"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *wsrouter.Conn, input JoinRoomInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId:    input.RoomId,
		SessionId: sessionId,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	// sync push: full state to the joiner only
	if err := c.writeToConn(ctx, conn, &Output{
		Type:    domain.MsgSyncVideo,
		Payload: joinRoomResp.Player,
	}); err != nil {
		return fmt.Errorf("failed to write sync push: %w", err)
	}

	return nil
}

type PlayInput struct {
	RoomId string `json:"roomId"`
}

func (c controller) handlePlay(ctx context.Context, _ *wsrouter.Conn, input PlayInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	playResp, err := c.roomService.Play(ctx, &room.PlayParams{
		RoomId:   input.RoomId,
		SenderId: sessionId,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.logger.DebugContext(ctx, "dropped stale play event", "room_id", input.RoomId)
			return nil
		}

		return fmt.Errorf("failed to play: %w", err)
	}

	c.broadcast(ctx, playResp.Conns, &Output{
		Type:    domain.MsgPlay,
		Payload: struct{}{},
	})

	return nil
}

type PauseInput struct {
	RoomId string `json:"roomId"`
}

func (c controller) handlePause(ctx context.Context, _ *wsrouter.Conn, input PauseInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	pauseResp, err := c.roomService.Pause(ctx, &room.PauseParams{
		RoomId:   input.RoomId,
		SenderId: sessionId,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.logger.DebugContext(ctx, "dropped stale pause event", "room_id", input.RoomId)
			return nil
		}

		return fmt.Errorf("failed to pause: %w", err)
	}

	c.broadcast(ctx, pauseResp.Conns, &Output{
		Type:    domain.MsgPause,
		Payload: struct{}{},
	})

	return nil
}

type SeekedInput struct {
	RoomId      string  `json:"roomId"`
	CurrentTime float64 `json:"currentTime"`
}

type seekPayload struct {
	CurrentTime float64 `json:"currentTime"`
}

func (c controller) handleSeeked(ctx context.Context, _ *wsrouter.Conn, input SeekedInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	seekResp, err := c.roomService.Seek(ctx, &room.SeekParams{
		RoomId:      input.RoomId,
		SenderId:    sessionId,
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.logger.DebugContext(ctx, "dropped stale seek event", "room_id", input.RoomId)
			return nil
		}

		return fmt.Errorf("failed to seek: %w", err)
	}

	c.broadcast(ctx, seekResp.Conns, &Output{
		Type:    domain.MsgSeek,
		Payload: seekPayload{CurrentTime: input.CurrentTime},
	})

	return nil
}

type CheckSyncInput struct {
	RoomId      string  `json:"roomId"`
	CurrentTime float64 `json:"currentTime"`
	IsPlaying   bool    `json:"isPlaying"`
}

type syncResponsePayload struct {
	HostTime  float64 `json:"hostTime"`
	IsPlaying bool    `json:"isPlaying"`
}

func (c controller) handleCheckSync(ctx context.Context, _ *wsrouter.Conn, input CheckSyncInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	checkSyncResp, err := c.roomService.CheckSync(ctx, &room.CheckSyncParams{
		RoomId:      input.RoomId,
		SenderId:    sessionId,
		CurrentTime: input.CurrentTime,
		IsPlaying:   input.IsPlaying,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.logger.DebugContext(ctx, "dropped stale sync event", "room_id", input.RoomId)
			return nil
		}

		return fmt.Errorf("failed to check sync: %w", err)
	}

	c.broadcast(ctx, checkSyncResp.Conns, &Output{
		Type:    domain.MsgSyncResponse,
		Payload: syncResponsePayload{HostTime: input.CurrentTime, IsPlaying: input.IsPlaying},
	})

	return nil
}
