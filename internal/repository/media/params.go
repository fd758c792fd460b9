package media

import "io"

// SaveParams stores one uploaded video. Ext includes the leading dot.
type SaveParams struct {
	RoomId      string
	Ext         string
	ContentType string
	Content     io.Reader
	Size        int64
}
