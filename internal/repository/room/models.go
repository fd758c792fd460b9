package room

// Player is the stored playback state of a room. MediaURL is empty when no
// media has been uploaded yet.
type Player struct {
	CurrentTime float64 `redis:"current_time"`
	IsPlaying   bool    `redis:"is_playing"`
	MediaURL    string  `redis:"media_url"`
}
