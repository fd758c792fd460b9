package room

// AddMemberParams adds a session to a room's member set. The room is created
// with default playback state if it does not exist yet.
type AddMemberParams struct {
	RoomId    string
	SessionId string
}

type RemoveMemberParams struct {
	RoomId    string
	SessionId string
}

type SetPlayingParams struct {
	RoomId    string
	IsPlaying bool
}

type SetCurrentTimeParams struct {
	RoomId      string
	CurrentTime float64
}

type UpdatePlayerStateParams struct {
	RoomId      string
	CurrentTime float64
	IsPlaying   bool
}

type SetMediaURLParams struct {
	RoomId   string
	MediaURL string
}
