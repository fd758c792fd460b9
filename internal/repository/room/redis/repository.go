package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/watchsync/server/internal/repository/room"
)

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) getPlayerKey(roomId string) string {
	return "room:" + roomId + ":player"
}

func (r repo) getMembersKey(roomId string) string {
	return "room:" + roomId + ":members"
}

func (r repo) roomExists(ctx context.Context, roomId string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getPlayerKey(roomId)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}

	return res > 0, nil
}

func (r *repo) AddMember(ctx context.Context, params *room.AddMemberParams) error {
	playerKey := r.getPlayerKey(params.RoomId)

	pipe := r.rc.TxPipeline()
	pipe.HSetNX(ctx, playerKey, "current_time", 0)
	pipe.HSetNX(ctx, playerKey, "is_playing", false)
	pipe.HSetNX(ctx, playerKey, "media_url", "")
	pipe.SAdd(ctx, r.getMembersKey(params.RoomId), params.SessionId)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

func (r *repo) RemoveMember(ctx context.Context, params *room.RemoveMemberParams) error {
	exists, err := r.roomExists(ctx, params.RoomId)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	if err := r.rc.SRem(ctx, r.getMembersKey(params.RoomId), params.SessionId).Err(); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (r *repo) GetMemberIds(ctx context.Context, roomId string) ([]string, error) {
	sessionIds, err := r.rc.SMembers(ctx, r.getMembersKey(roomId)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	return sessionIds, nil
}

func (r *repo) GetPlayer(ctx context.Context, roomId string) (room.Player, error) {
	exists, err := r.roomExists(ctx, roomId)
	if err != nil {
		return room.Player{}, err
	}
	if !exists {
		return room.Player{}, room.ErrRoomNotFound
	}

	var player room.Player
	if err := r.rc.HGetAll(ctx, r.getPlayerKey(roomId)).Scan(&player); err != nil {
		return room.Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (r *repo) SetPlaying(ctx context.Context, params *room.SetPlayingParams) error {
	exists, err := r.roomExists(ctx, params.RoomId)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, r.getPlayerKey(params.RoomId), "is_playing", params.IsPlaying).Err(); err != nil {
		return fmt.Errorf("failed to set playing: %w", err)
	}

	return nil
}

func (r *repo) SetCurrentTime(ctx context.Context, params *room.SetCurrentTimeParams) error {
	exists, err := r.roomExists(ctx, params.RoomId)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, r.getPlayerKey(params.RoomId), "current_time", params.CurrentTime).Err(); err != nil {
		return fmt.Errorf("failed to set current time: %w", err)
	}

	return nil
}

func (r *repo) UpdatePlayerState(ctx context.Context, params *room.UpdatePlayerStateParams) error {
	exists, err := r.roomExists(ctx, params.RoomId)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, r.getPlayerKey(params.RoomId),
		"current_time", params.CurrentTime,
		"is_playing", params.IsPlaying,
	).Err(); err != nil {
		return fmt.Errorf("failed to update player state: %w", err)
	}

	return nil
}

func (r *repo) GetMediaURL(ctx context.Context, roomId string) (string, error) {
	exists, err := r.roomExists(ctx, roomId)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", room.ErrRoomNotFound
	}

	mediaURL, err := r.rc.HGet(ctx, r.getPlayerKey(roomId), "media_url").Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}

		return "", fmt.Errorf("failed to get media url: %w", err)
	}

	return mediaURL, nil
}

func (r *repo) SetMediaURL(ctx context.Context, params *room.SetMediaURLParams) error {
	exists, err := r.roomExists(ctx, params.RoomId)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, r.getPlayerKey(params.RoomId), "media_url", params.MediaURL).Err(); err != nil {
		return fmt.Errorf("failed to set media url: %w", err)
	}

	return nil
}

func (r *repo) RemoveRoom(ctx context.Context, roomId string) error {
	if err := r.rc.Del(ctx, r.getPlayerKey(roomId), r.getMembersKey(roomId)).Err(); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}
