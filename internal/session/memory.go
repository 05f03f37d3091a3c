package session

import (
	"context"
	"sync"
)

// MemoryRepository keeps sessions in process memory. Last write wins.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[int64]Session)}
}

// Get returns a copy of the user's session, or nil if there is none.
func (r *MemoryRepository) Get(ctx context.Context, userID int64) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Set stores a copy of s for the user, replacing any previous session.
func (r *MemoryRepository) Set(ctx context.Context, userID int64, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return r.Clear(ctx, userID)
	}
	r.mu.Lock()
	r.sessions[userID] = *s
	r.mu.Unlock()
	return nil
}

// Clear removes the user's session. Clearing a missing session is not an error.
func (r *MemoryRepository) Clear(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
	return nil
}

// Len returns the number of active sessions.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

var _ Repository = (*MemoryRepository)(nil)
