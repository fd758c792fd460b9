package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchsync/server/internal/repository/room"
	"github.com/watchsync/server/pkg/wsrouter"
)

type PlayParams struct {
	RoomId   string
	SenderId string
}

type PlayResponse struct {
	// Conns is the fan-out set: every member except the sender.
	Conns []*wsrouter.Conn
}

func (s service) Play(ctx context.Context, params *PlayParams) (PlayResponse, error) {
	if err := params.validate(); err != nil {
		return PlayResponse{}, fmt.Errorf("%w: %s", ErrValidationError, err)
	}

	unlock := s.locks.lock(params.RoomId)
	defer unlock()

	if err := s.roomRepo.SetPlaying(ctx, &room.SetPlayingParams{
		RoomId:    params.RoomId,
		IsPlaying: true,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return PlayResponse{}, ErrRoomNotFound
		}

		return PlayResponse{}, fmt.Errorf("failed to set playing: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, params.SenderId)
	if err != nil {
		return PlayResponse{}, err
	}

	return PlayResponse{Conns: conns}, nil
}

type PauseParams struct {
	RoomId   string
	SenderId string
}

type PauseResponse struct {
	Conns []*wsrouter.Conn
}

func (s service) Pause(ctx context.Context, params *PauseParams) (PauseResponse, error) {
	if err := params.validate(); err != nil {
		return PauseResponse{}, fmt.Errorf("%w: %s", ErrValidationError, err)
	}

	unlock := s.locks.lock(params.RoomId)
	defer unlock()

	if err := s.roomRepo.SetPlaying(ctx, &room.SetPlayingParams{
		RoomId:    params.RoomId,
		IsPlaying: false,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return PauseResponse{}, ErrRoomNotFound
		}

		return PauseResponse{}, fmt.Errorf("failed to set playing: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, params.SenderId)
	if err != nil {
		return PauseResponse{}, err
	}

	return PauseResponse{Conns: conns}, nil
}

type SeekParams struct {
	RoomId      string
	SenderId    string
	CurrentTime float64
}

type SeekResponse struct {
	Conns []*wsrouter.Conn
}

func (s service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	if err := params.validate(); err != nil {
		return SeekResponse{}, fmt.Errorf("%w: %s", ErrValidationError, err)
	}

	unlock := s.locks.lock(params.RoomId)
	defer unlock()

	if err := s.roomRepo.SetCurrentTime(ctx, &room.SetCurrentTimeParams{
		RoomId:      params.RoomId,
		CurrentTime: params.CurrentTime,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return SeekResponse{}, ErrRoomNotFound
		}

		return SeekResponse{}, fmt.Errorf("failed to set current time: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, params.SenderId)
	if err != nil {
		return SeekResponse{}, err
	}

	return SeekResponse{Conns: conns}, nil
}

type CheckSyncParams struct {
	RoomId      string
	SenderId    string
	CurrentTime float64
	IsPlaying   bool
}

type CheckSyncResponse struct {
	Conns []*wsrouter.Conn
}

// CheckSync applies a periodic position report from the sender and fans the
// reconciled state out to everyone else. Drift converges through these
// reports rather than through any cross-session ordering guarantee.
func (s service) CheckSync(ctx context.Context, params *CheckSyncParams) (CheckSyncResponse, error) {
	if err := params.validate(); err != nil {
		return CheckSyncResponse{}, fmt.Errorf("%w: %s", ErrValidationError, err)
	}

	unlock := s.locks.lock(params.RoomId)
	defer unlock()

	if err := s.roomRepo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId:      params.RoomId,
		CurrentTime: params.CurrentTime,
		IsPlaying:   params.IsPlaying,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return CheckSyncResponse{}, ErrRoomNotFound
		}

		return CheckSyncResponse{}, fmt.Errorf("failed to update player state: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, params.SenderId)
	if err != nil {
		return CheckSyncResponse{}, err
	}

	return CheckSyncResponse{Conns: conns}, nil
}
