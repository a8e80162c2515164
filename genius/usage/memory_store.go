package usage

import (
	"context"
	"sync"
)

// implements Ledger in process memory, for development and tests
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int
}

// creates a new in-memory ledger
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int)}
}

func (s *MemoryStore) Count(_ context.Context, userID string) (int, error) {
	if err := validate(userID); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[userID], nil
}

func (s *MemoryStore) Increment(_ context.Context, userID string) (int, error) {
	if err := validate(userID); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[userID]++
	return s.counts[userID], nil
}

func (s *MemoryStore) IncrementIfBelow(_ context.Context, userID string, limit int) (int, bool, error) {
	if err := validate(userID); err != nil {
		return 0, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.counts[userID]
	if current >= limit {
		return current, false, nil
	}

	s.counts[userID] = current + 1
	return current + 1, true, nil
}

func (s *MemoryStore) Release(_ context.Context, userID string) error {
	if err := validate(userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts[userID] > 0 {
		s.counts[userID]--
	}

	return nil
}

func (s *MemoryStore) Reset(_ context.Context, userID string) error {
	if err := validate(userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counts[userID]; ok {
		s.counts[userID] = 0
	}

	return nil
}
