package room

import (
	"context"
	"fmt"

	"github.com/watchsync/server/pkg/wsrouter"
)

// getConnsByRoomId returns the connections of every member of the room,
// excluding exceptSessionId when it is non-empty. Members without a tracked
// connection are skipped; a broadcast must never fail because one recipient
// is already gone.
func (s service) getConnsByRoomId(ctx context.Context, roomId, exceptSessionId string) ([]*wsrouter.Conn, error) {
	sessionIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	conns := make([]*wsrouter.Conn, 0, len(sessionIds))
	for _, sessionId := range sessionIds {
		if sessionId == exceptSessionId {
			continue
		}

		conn, err := s.connRepo.GetConn(sessionId)
		if err != nil {
			s.logger.DebugContext(ctx, "member has no connection", "session_id", sessionId, "error", err)
			continue
		}

		conns = append(conns, conn)
	}

	return conns, nil
}
