package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps history in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	rewrites map[uuid.UUID]Rewrite
}

func NewMemory() *MemoryStore {
	return &MemoryStore{rewrites: make(map[uuid.UUID]Rewrite)}
}

func (s *MemoryStore) SaveRewrite(_ context.Context, rw Rewrite) (Rewrite, error) {
	rw = prepare(rw)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewrites[rw.ID] = rw
	return rw, nil
}

func (s *MemoryStore) GetRewrite(_ context.Context, id uuid.UUID) (Rewrite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rw, ok := s.rewrites[id]
	if !ok {
		return Rewrite{}, ErrRewriteNotFound
	}
	return rw, nil
}

func (s *MemoryStore) ListRewrites(_ context.Context, sessionID uuid.UUID) ([]Rewrite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Rewrite{}
	for _, rw := range s.rewrites {
		if rw.SessionID == sessionID {
			out = append(out, rw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
