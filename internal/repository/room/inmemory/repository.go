package inmemory

import (
	"context"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/watchsync/server/internal/repository/room"
)

type roomState struct {
	player  room.Player
	members map[string]struct{}
}

type repo struct {
	rooms map[string]*roomState
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		rooms: make(map[string]*roomState),
	}
}

func (r *repo) AddMember(_ context.Context, params *room.AddMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomId]
	if !exists {
		state = &roomState{
			members: make(map[string]struct{}),
		}
		r.rooms[params.RoomId] = state
	}

	state.members[params.SessionId] = struct{}{}

	return nil
}

func (r *repo) RemoveMember(_ context.Context, params *room.RemoveMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomId]
	if !exists {
		return room.ErrRoomNotFound
	}

	delete(state.members, params.SessionId)

	return nil
}

func (r *repo) GetMemberIds(_ context.Context, roomId string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.rooms[roomId]
	if !exists {
		return []string{}, nil
	}

	return maps.Keys(state.members), nil
}

func (r *repo) GetPlayer(_ context.Context, roomId string) (room.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.rooms[roomId]
	if !exists {
		return room.Player{}, room.ErrRoomNotFound
	}

	return state.player, nil
}

func (r *repo) SetPlaying(_ context.Context, params *room.SetPlayingParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomId]
	if !exists {
		return room.ErrRoomNotFound
	}

	state.player.IsPlaying = params.IsPlaying

	return nil
}

func (r *repo) SetCurrentTime(_ context.Context, params *room.SetCurrentTimeParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomId]
	if !exists {
		return room.ErrRoomNotFound
	}

	state.player.CurrentTime = params.CurrentTime

	return nil
}

func (r *repo) UpdatePlayerState(_ context.Context, params *room.UpdatePlayerStateParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomId]
	if !exists {
		return room.ErrRoomNotFound
	}

	state.player.CurrentTime = params.CurrentTime
	state.player.IsPlaying = params.IsPlaying

	return nil
}

func (r *repo) GetMediaURL(_ context.Context, roomId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.rooms[roomId]
	if !exists {
		return "", room.ErrRoomNotFound
	}

	return state.player.MediaURL, nil
}

func (r *repo) SetMediaURL(_ context.Context, params *room.SetMediaURLParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomId]
	if !exists {
		return room.ErrRoomNotFound
	}

	state.player.MediaURL = params.MediaURL

	return nil
}

func (r *repo) RemoveRoom(_ context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomId)

	return nil
}
