package controller

import (
	"context"

	"github.com/watchsync/server/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c controller) writeToConn(ctx context.Context, conn *wsrouter.Conn, out *Output) error {
	return conn.WriteJSON(out)
}

// broadcast is fire-and-forget, at most once per recipient: a failed write
// to one connection is logged and does not affect the rest of the fan-out.
func (c controller) broadcast(ctx context.Context, conns []*wsrouter.Conn, out *Output) {
	for _, conn := range conns {
		if err := conn.WriteJSON(out); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
		}
	}
}
