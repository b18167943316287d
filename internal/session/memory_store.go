package session

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return nil, nil
	}

	cp := *s.snap
	cp.Cookies = append([]Cookie(nil), s.snap.Cookies...)

	return &cp, nil
}

func (s *memoryStore) Save(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *snap
	cp.Cookies = append([]Cookie(nil), snap.Cookies...)
	s.snap = &cp

	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = nil

	return nil
}
