package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("cart session not found")
)

// Store holds the active cart sessions. Each cart is owned by exactly
// one checkout session and discarded on commit or explicit removal.
type Store struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{carts: make(map[uuid.UUID]*Cart)}
}

// Create opens a new session with an empty cart and returns its id
func (s *Store) Create() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.carts[id] = New()
	return id
}

// Remove discards a session and its cart; idempotent if absent
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, id)
}

// Update runs fn against the session's cart while holding the store
// lock. Carts themselves are unsynchronized, so every read or edit of
// a stored cart must go through here.
func (s *Store) Update(id uuid.UUID, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(c)
}
