package cart

import "sync"

// Sessions maps session ids to carts. Carts are created lazily on first use
// and dropped when the session's cart is removed.
type Sessions struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*Cart)}
}

// Get returns the session's cart, creating it on first access.
func (s *Sessions) Get(sessionID string) *Cart {
	s.mu.RLock()
	c, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c
	}
	c = New()
	s.carts[sessionID] = c
	return c
}

// Remove drops the session's cart entirely.
func (s *Sessions) Remove(sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
}
