package inmemory

import (
	"sync"

	"github.com/watchsync/server/internal/repository/connection"
	"github.com/watchsync/server/pkg/wsrouter"
)

// session is the explicit per-connection record: one websocket and the id of
// the room the session currently belongs to, empty when it has not joined
// any room yet.
type session struct {
	conn   *wsrouter.Conn
	roomId string
}

type repo struct {
	sessions map[string]*session
	conns    map[*wsrouter.Conn]string
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		sessions: make(map[string]*session),
		conns:    make(map[*wsrouter.Conn]string),
	}
}

func (r *repo) Add(conn *wsrouter.Conn, sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionId]; ok {
		return connection.ErrAlreadyExists
	}
	if _, ok := r.conns[conn]; ok {
		return connection.ErrAlreadyExists
	}

	r.sessions[sessionId] = &session{conn: conn}
	r.conns[conn] = sessionId

	return nil
}

func (r *repo) RemoveBySessionId(sessionId string) (*wsrouter.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	delete(r.sessions, sessionId)
	delete(r.conns, s.conn)

	return s.conn, nil
}

func (r *repo) GetConn(sessionId string) (*wsrouter.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return s.conn, nil
}

func (r *repo) GetSessionId(conn *wsrouter.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionId, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return sessionId, nil
}

func (r *repo) GetSessionRoomId(sessionId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionId]
	if !ok {
		return "", connection.ErrNotFound
	}

	return s.roomId, nil
}

func (r *repo) SetSessionRoomId(sessionId, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionId]
	if !ok {
		return connection.ErrNotFound
	}

	s.roomId = roomId

	return nil
}
