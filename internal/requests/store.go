package requests

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Store persists signing requests by token. Put replaces the stored request.
type Store interface {
	Get(ctx context.Context, token string) (*Request, error)
	Put(ctx context.Context, req *Request) error
	ListAll(ctx context.Context) ([]*Request, error)
	Delete(ctx context.Context, token string) error
}

type memoryStore struct {
	mu   sync.RWMutex
	reqs map[string]*Request
}

// NewMemoryStore returns a Store that keeps requests in process memory.
func NewMemoryStore() Store {
	return &memoryStore{reqs: make(map[string]*Request)}
}

func (s *memoryStore) Get(ctx context.Context, token string) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.reqs[token]
	if !ok {
		return nil, ErrNotFound
	}
	return req.Clone(), nil
}

func (s *memoryStore) Put(ctx context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reqs[req.Token] = req.Clone()
	return nil
}

func (s *memoryStore) ListAll(ctx context.Context) ([]*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Request, 0, len(s.reqs))
	for _, req := range s.reqs {
		out = append(out, req.Clone())
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *memoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reqs[token]; !ok {
		return ErrNotFound
	}
	delete(s.reqs, token)
	return nil
}

func sortNewestFirst(reqs []*Request) {
	slices.SortStableFunc(reqs, func(a, b *Request) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Token, a.Token)
	})
}
