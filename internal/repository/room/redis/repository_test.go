package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchsync/server/internal/repository/room"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRepo(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
}

func TestAddMemberCreatesRoomWithDefaults(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	err := r.AddMember(ctx, &room.AddMemberParams{RoomId: "r1", SessionId: "s1"})
	require.NoError(t, err)

	player, err := r.GetPlayer(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, room.Player{}, player)

	memberIds, err := r.GetMemberIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, memberIds)
}

func TestAddMemberKeepsExistingState(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "r1", SessionId: "s1"}))
	require.NoError(t, r.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{RoomId: "r1", CurrentTime: 42, IsPlaying: true}))

	// joining an existing room must not reset the player
	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "r1", SessionId: "s2"}))

	player, err := r.GetPlayer(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, room.Player{CurrentTime: 42, IsPlaying: true}, player)

	memberIds, err := r.GetMemberIds(ctx, "r1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, memberIds)
}

func TestPlayerMutations(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "r1", SessionId: "s1"}))

	require.NoError(t, r.SetPlaying(ctx, &room.SetPlayingParams{RoomId: "r1", IsPlaying: true}))
	require.NoError(t, r.SetCurrentTime(ctx, &room.SetCurrentTimeParams{RoomId: "r1", CurrentTime: 12.5}))

	player, err := r.GetPlayer(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, room.Player{CurrentTime: 12.5, IsPlaying: true}, player)
}

func TestMediaURL(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "r1", SessionId: "s1"}))

	mediaURL, err := r.GetMediaURL(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, mediaURL)

	require.NoError(t, r.SetMediaURL(ctx, &room.SetMediaURLParams{RoomId: "r1", MediaURL: "/uploads/v1.mp4"}))

	mediaURL, err = r.GetMediaURL(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/v1.mp4", mediaURL)
}

func TestUnknownRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetPlayer(ctx, "nope")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	assert.ErrorIs(t, r.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "nope", SessionId: "s1"}), room.ErrRoomNotFound)
	assert.ErrorIs(t, r.SetPlaying(ctx, &room.SetPlayingParams{RoomId: "nope", IsPlaying: true}), room.ErrRoomNotFound)
	assert.ErrorIs(t, r.SetCurrentTime(ctx, &room.SetCurrentTimeParams{RoomId: "nope", CurrentTime: 1}), room.ErrRoomNotFound)
	assert.ErrorIs(t, r.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{RoomId: "nope"}), room.ErrRoomNotFound)
	assert.ErrorIs(t, r.SetMediaURL(ctx, &room.SetMediaURLParams{RoomId: "nope", MediaURL: "x"}), room.ErrRoomNotFound)

	_, err = r.GetMediaURL(ctx, "nope")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	memberIds, err := r.GetMemberIds(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, memberIds)
}

func TestRemoveRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "r1", SessionId: "s1"}))
	require.NoError(t, r.SetMediaURL(ctx, &room.SetMediaURLParams{RoomId: "r1", MediaURL: "/uploads/v1.mp4"}))

	require.NoError(t, r.RemoveRoom(ctx, "r1"))

	_, err := r.GetPlayer(ctx, "r1")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	memberIds, err := r.GetMemberIds(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, memberIds)

	require.NoError(t, r.RemoveRoom(ctx, "r1"))
}
