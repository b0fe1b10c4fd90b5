package realtime

import (
	"sync"
)

// Registry tracks which users currently hold live sessions. A user may
// have several sessions at once (two browser tabs both receive pushes),
// so entries are sets of session ids, not single slots. The local
// implementation covers one process; RedisRegistry shares presence
// across instances.
type Registry interface {
	// Register records a live session. It reports whether this is the
	// user's first active session.
	Register(userId int, sessionId string) (bool, error)
	// Unregister drops a session. It reports whether the user has no
	// sessions left.
	Unregister(userId int, sessionId string) (bool, error)
	IsOnline(userId int) (bool, error)
	OnlineUsers() ([]int, error)
}

type LocalRegistry struct {
	mu       sync.RWMutex
	sessions map[int]map[string]struct{}
}

func NewLocalRegistry() *LocalRegistry {
	return &LocalRegistry{
		sessions: make(map[int]map[string]struct{}),
	}
}

func (r *LocalRegistry) Register(userId int, sessionId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[userId]
	if !ok {
		set = make(map[string]struct{})
		r.sessions[userId] = set
	}
	set[sessionId] = struct{}{}

	return len(set) == 1, nil
}

func (r *LocalRegistry) Unregister(userId int, sessionId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[userId]
	if !ok {
		return true, nil
	}

	delete(set, sessionId)
	if len(set) == 0 {
		delete(r.sessions, userId)
		return true, nil
	}

	return false, nil
}

func (r *LocalRegistry) IsOnline(userId int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[userId]
	return ok, nil
}

func (r *LocalRegistry) OnlineUsers() ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userIds := make([]int, 0, len(r.sessions))
	for userId := range r.sessions {
		userIds = append(userIds, userId)
	}

	return userIds, nil
}
