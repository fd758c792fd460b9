package room

import "sync"

// roomLocker serializes all mutations of one room while leaving different
// rooms free to proceed concurrently. Entries are reference-counted so the
// map does not grow with the set of room ids ever seen.
type roomLocker struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocker() *roomLocker {
	return &roomLocker{locks: make(map[string]*roomLock)}
}

func (l *roomLocker) lock(roomId string) func() {
	l.mu.Lock()
	rl, ok := l.locks[roomId]
	if !ok {
		rl = &roomLock{}
		l.locks[roomId] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()

	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, roomId)
		}
		l.mu.Unlock()
	}
}
