package session

import "sync"

// Registry enumerates live sessions for the sweeper. The transport adds a
// session on handshake and removes it on disconnect.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int]*Session
	nextIdx  int
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[int]*Session{}}
}

// Add registers a session under a fresh player index and returns it.
func (r *Registry) Add(ip string, slots int) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := New(r.nextIdx, ip, slots)
	r.sessions[r.nextIdx] = s
	r.nextIdx++
	return s
}

func (r *Registry) Remove(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[index]; ok {
		s.SetActive(false)
		delete(r.sessions, index)
	}
}

func (r *Registry) Get(index int) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[index]
}

// Active snapshots the currently active sessions. Order is not significant.
func (r *Registry) Active() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Active() {
			out = append(out, s)
		}
	}
	return out
}
