package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchsync/server/internal/domain"
	"github.com/watchsync/server/internal/repository/connection"
	"github.com/watchsync/server/internal/repository/room"
	"github.com/watchsync/server/pkg/wsrouter"
)

type ConnectSessionParams struct {
	Conn      *wsrouter.Conn
	SessionId string
}

// ConnectSession registers a freshly upgraded connection. The session is not
// a member of any room until it sends joinRoom.
func (s service) ConnectSession(ctx context.Context, params *ConnectSessionParams) error {
	if err := s.connRepo.Add(params.Conn, params.SessionId); err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}

	return nil
}

type JoinRoomParams struct {
	RoomId    string
	SessionId string
}

type JoinRoomResponse struct {
	// Player is the room state at the moment of join, for the sync push to
	// the joiner.
	Player domain.PlayerState
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if err := params.validate(); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("%w: %s", ErrValidationError, err)
	}

	// a session belongs to at most one room
	prevRoomId, err := s.connRepo.GetSessionRoomId(params.SessionId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get session room id: %w", err)
	}
	if prevRoomId != "" && prevRoomId != params.RoomId {
		if _, err := s.leaveRoom(ctx, prevRoomId, params.SessionId); err != nil {
			s.logger.WarnContext(ctx, "failed to leave previous room", "room_id", prevRoomId, "error", err)
		}
	}

	unlock := s.locks.lock(params.RoomId)
	defer unlock()

	if err := s.roomRepo.AddMember(ctx, &room.AddMemberParams{
		RoomId:    params.RoomId,
		SessionId: params.SessionId,
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to add member: %w", err)
	}

	if err := s.connRepo.SetSessionRoomId(params.SessionId, params.RoomId); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to set session room id: %w", err)
	}

	player, err := s.roomRepo.GetPlayer(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get player: %w", err)
	}

	return JoinRoomResponse{
		Player: domain.PlayerState{
			CurrentTime:  player.CurrentTime,
			IsPlaying:    player.IsPlaying,
			CurrentMedia: player.MediaURL,
		},
	}, nil
}

type DisconnectSessionParams struct {
	SessionId string
}

type DisconnectSessionResponse struct {
	IsRoomDeleted    bool
	ReleasedMediaURL string
}

// DisconnectSession is the single cancellation path: the transport calls it
// exactly once when a connection closes, gracefully or not.
func (s service) DisconnectSession(ctx context.Context, params *DisconnectSessionParams) (DisconnectSessionResponse, error) {
	roomId, err := s.connRepo.GetSessionRoomId(params.SessionId)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return DisconnectSessionResponse{}, nil
		}

		return DisconnectSessionResponse{}, fmt.Errorf("failed to get session room id: %w", err)
	}

	if _, err := s.connRepo.RemoveBySessionId(params.SessionId); err != nil {
		s.logger.DebugContext(ctx, "failed to remove connection", "session_id", params.SessionId, "error", err)
	}

	if roomId == "" {
		return DisconnectSessionResponse{}, nil
	}

	result, err := s.leaveRoom(ctx, roomId, params.SessionId)
	if err != nil {
		return DisconnectSessionResponse{}, err
	}

	return DisconnectSessionResponse(result), nil
}

type leaveResult struct {
	IsRoomDeleted    bool
	ReleasedMediaURL string
}

// leaveRoom removes the session from the room and destroys the room when the
// last member is gone, releasing its media reference.
func (s service) leaveRoom(ctx context.Context, roomId, sessionId string) (leaveResult, error) {
	unlock := s.locks.lock(roomId)
	defer unlock()

	if err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
		RoomId:    roomId,
		SessionId: sessionId,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return leaveResult{}, nil
		}

		return leaveResult{}, fmt.Errorf("failed to remove member: %w", err)
	}

	if err := s.connRepo.SetSessionRoomId(sessionId, ""); err != nil && !errors.Is(err, connection.ErrNotFound) {
		s.logger.DebugContext(ctx, "failed to clear session room id", "session_id", sessionId, "error", err)
	}

	sessionIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		return leaveResult{}, fmt.Errorf("failed to get member ids: %w", err)
	}
	if len(sessionIds) > 0 {
		return leaveResult{}, nil
	}

	mediaURL, err := s.roomRepo.GetMediaURL(ctx, roomId)
	if err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		return leaveResult{}, fmt.Errorf("failed to get media url: %w", err)
	}

	if err := s.roomRepo.RemoveRoom(ctx, roomId); err != nil {
		return leaveResult{}, fmt.Errorf("failed to remove room: %w", err)
	}

	if mediaURL != "" {
		if err := s.media.Release(ctx, mediaURL); err != nil {
			s.logger.WarnContext(ctx, "failed to release media", "media_url", mediaURL, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "room deleted", "room_id", roomId)

	return leaveResult{IsRoomDeleted: true, ReleasedMediaURL: mediaURL}, nil
}
