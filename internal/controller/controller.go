package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/watchsync/server/internal/repository/media"
	"github.com/watchsync/server/internal/service/room"
	"github.com/watchsync/server/pkg/validator"
	"github.com/watchsync/server/pkg/wsrouter"
)

type iRoomService interface {
	ConnectSession(context.Context, *room.ConnectSessionParams) error
	DisconnectSession(context.Context, *room.DisconnectSessionParams) (room.DisconnectSessionResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	Play(context.Context, *room.PlayParams) (room.PlayResponse, error)
	Pause(context.Context, *room.PauseParams) (room.PauseResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	CheckSync(context.Context, *room.CheckSyncParams) (room.CheckSyncResponse, error)
	ChangeMedia(context.Context, *room.ChangeMediaParams) (room.ChangeMediaResponse, error)
}

type MediaStorage interface {
	Save(ctx context.Context, params *media.SaveParams) (string, error)
	Release(ctx context.Context, mediaURL string) error
}

type Config struct {
	// UploadsDir enables static serving of uploaded files when non-empty.
	UploadsDir     string
	MaxUploadBytes int64
}

type controller struct {
	roomService  iRoomService
	mediaStorage MediaStorage
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	wsmux        *wsrouter.WSRouter
	logger       *slog.Logger
	cfg          Config
}

func NewController(roomService iRoomService, mediaStorage MediaStorage, cfg Config, logger *slog.Logger) *controller {
	c := &controller{
		roomService:  roomService,
		mediaStorage: mediaStorage,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
		cfg:      cfg,
	}
	c.wsmux = c.getWSRouter()

	return c
}
