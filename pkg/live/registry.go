package live

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry tracks the one live session per conversation. Buffers are owned
// exclusively by one session instance; the registry enforces that a second
// start on the same conversation reuses (or is rejected by) the existing one.
type Registry struct {
	sessions cmap.ConcurrentMap[string, *Session]
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: cmap.New[*Session](),
	}
}

// Acquire returns the session registered for the conversation, creating it
// with build on first use.
func (r *Registry) Acquire(conversationID string, build func() *Session) *Session {
	if existing, ok := r.sessions.Get(conversationID); ok {
		return existing
	}

	created := build()
	if !r.sessions.SetIfAbsent(conversationID, created) {
		existing, _ := r.sessions.Get(conversationID)
		return existing
	}
	return created
}

func (r *Registry) Get(conversationID string) (*Session, bool) {
	return r.sessions.Get(conversationID)
}

func (r *Registry) Release(conversationID string) {
	r.sessions.Remove(conversationID)
}

// Count reports live sessions for metrics and admin stats.
func (r *Registry) Count() int {
	return r.sessions.Count()
}
