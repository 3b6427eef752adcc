// Package session maps opaque session-cookie UUIDs to the account that
// owns them (C6). Unlike a JWT, a session token carries no claims of its
// own — it is meaningless without a server-side lookup, which is the
// property the authorization pipeline (authz) relies on.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store is a concurrent session_uuid -> account_uuid map. There is no TTL
// or idle eviction: a session lives until the process restarts, matching
// the original implementation, which never expired sessions server-side
// either (§7 "Open Questions").
type Store struct {
	mu sync.RWMutex
	m  map[uuid.UUID]uuid.UUID
}

// New returns an empty Store.
func New() *Store {
	return &Store{m: make(map[uuid.UUID]uuid.UUID)}
}

// Insert records that sessionID belongs to accountID, overwriting any
// prior owner — logging in again simply mints a new session rather than
// reusing one, so collisions are not expected in practice.
func (s *Store) Insert(sessionID, accountID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sessionID] = accountID
}

// GetUserUUID resolves a session cookie's value to the account that owns
// it. ok is false for an unknown or expired-by-restart session.
func (s *Store) GetUserUUID(sessionID uuid.UUID) (accountID uuid.UUID, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok = s.m[sessionID]
	return accountID, ok
}

// Delete forgets a session, used by logout paths if the caller exposes
// one.
func (s *Store) Delete(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionID)
}

// Len reports how many sessions are currently tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
