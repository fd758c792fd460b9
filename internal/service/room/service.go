package room

import (
	"context"
	"log/slog"

	"github.com/watchsync/server/internal/repository/room"
	"github.com/watchsync/server/pkg/wsrouter"
)

type RoomRepo interface {
	AddMember(context.Context, *room.AddMemberParams) error
	RemoveMember(context.Context, *room.RemoveMemberParams) error
	GetMemberIds(ctx context.Context, roomId string) ([]string, error)
	GetPlayer(ctx context.Context, roomId string) (room.Player, error)
	SetPlaying(context.Context, *room.SetPlayingParams) error
	SetCurrentTime(context.Context, *room.SetCurrentTimeParams) error
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) error
	GetMediaURL(ctx context.Context, roomId string) (string, error)
	SetMediaURL(context.Context, *room.SetMediaURLParams) error
	RemoveRoom(ctx context.Context, roomId string) error
}

type ConnRepo interface {
	Add(conn *wsrouter.Conn, sessionId string) error
	RemoveBySessionId(sessionId string) (*wsrouter.Conn, error)
	GetConn(sessionId string) (*wsrouter.Conn, error)
	GetSessionRoomId(sessionId string) (string, error)
	SetSessionRoomId(sessionId, roomId string) error
}

type MediaStorage interface {
	Release(ctx context.Context, mediaURL string) error
}

type service struct {
	roomRepo RoomRepo
	connRepo ConnRepo
	media    MediaStorage
	locks    *roomLocker
	logger   *slog.Logger
}

func NewService(roomRepo RoomRepo, connRepo ConnRepo, media MediaStorage, logger *slog.Logger) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		media:    media,
		locks:    newRoomLocker(),
		logger:   logger,
	}
}
