package domain

// Inbound message types, sent by clients over the websocket.
const (
	MsgJoinRoom  = "joinRoom"
	MsgPlay      = "play"
	MsgPause     = "pause"
	MsgSeeked    = "seeked"
	MsgCheckSync = "checkSync"
)

// Outbound message types, sent by the server.
const (
	MsgSyncVideo    = "syncVideo"
	MsgSeek         = "seek"
	MsgSyncResponse = "syncResponse"
	MsgVideoChange  = "videoChange"
)
