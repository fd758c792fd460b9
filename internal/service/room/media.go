package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchsync/server/internal/repository/room"
	"github.com/watchsync/server/pkg/wsrouter"
)

type ChangeMediaParams struct {
	RoomId   string
	MediaURL string
}

type ChangeMediaResponse struct {
	// Conns covers every member of the room, including the uploader's own
	// session: the uploader has not set its video source through this path
	// yet and must receive the change like everyone else.
	Conns            []*wsrouter.Conn
	ReleasedMediaURL string
}

// ChangeMedia attaches a freshly uploaded media reference to the room. The
// superseded reference is released at most once per actual change; repeating
// the same URL re-broadcasts but releases nothing.
func (s service) ChangeMedia(ctx context.Context, params *ChangeMediaParams) (ChangeMediaResponse, error) {
	if err := params.validate(); err != nil {
		return ChangeMediaResponse{}, fmt.Errorf("%w: %s", ErrValidationError, err)
	}

	unlock := s.locks.lock(params.RoomId)
	defer unlock()

	prevMediaURL, err := s.roomRepo.GetMediaURL(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return ChangeMediaResponse{}, ErrRoomNotFound
		}

		return ChangeMediaResponse{}, fmt.Errorf("failed to get media url: %w", err)
	}

	var released string
	if prevMediaURL != "" && prevMediaURL != params.MediaURL {
		if err := s.media.Release(ctx, prevMediaURL); err != nil {
			s.logger.WarnContext(ctx, "failed to release media", "media_url", prevMediaURL, "error", err)
		}
		released = prevMediaURL
	}

	if err := s.roomRepo.SetMediaURL(ctx, &room.SetMediaURLParams{
		RoomId:   params.RoomId,
		MediaURL: params.MediaURL,
	}); err != nil {
		return ChangeMediaResponse{}, fmt.Errorf("failed to set media url: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, "")
	if err != nil {
		return ChangeMediaResponse{}, err
	}

	return ChangeMediaResponse{Conns: conns, ReleasedMediaURL: released}, nil
}
