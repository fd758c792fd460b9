package domain

// SeekEpsilon is the receiver-side echo-suppression tolerance in seconds.
// Clients ignore an incoming seek that lands within this distance of their
// local position; the server never filters seeks itself.
const SeekEpsilon = 0.5

// PlayerState is the authoritative playback state of a room, pushed in full
// to every joining session.
type PlayerState struct {
	CurrentTime  float64 `json:"currentTime"`
	IsPlaying    bool    `json:"isPlaying"`
	CurrentMedia string  `json:"currentMedia,omitempty"`
}
