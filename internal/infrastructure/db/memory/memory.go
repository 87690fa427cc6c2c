// Package memory is an in-process entity backend. Nothing survives a restart;
// it backs tests and STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"iter"
	"sync"

	"github.com/queuejw/messenger/internal/core/domain"
)

type Store struct {
	mu    sync.RWMutex
	kinds map[string]map[string][]byte
}

func New() *Store {
	return &Store{kinds: make(map[string]map[string][]byte)}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Insert(_ context.Context, kind, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.kinds[kind]
	if !ok {
		records = make(map[string][]byte)
		s.kinds[kind] = records
	}
	if _, exists := records[id]; exists {
		return domain.ErrAlreadyExists
	}
	records[id] = clone(data)
	return nil
}

func (s *Store) Read(_ context.Context, kind, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.kinds[kind][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(data), nil
}

func (s *Store) Exists(_ context.Context, kind, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.kinds[kind][id]
	return ok, nil
}

// Scan snapshots the ids of kind and then reads each record as it is yielded,
// so records removed mid-scan are skipped.
func (s *Store) Scan(ctx context.Context, kind string) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		s.mu.RLock()
		ids := make([]string, 0, len(s.kinds[kind]))
		for id := range s.kinds[kind] {
			ids = append(ids, id)
		}
		s.mu.RUnlock()

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			data, err := s.Read(ctx, kind, id)
			if err != nil {
				continue
			}
			if !yield(data, nil) {
				return
			}
		}
	}
}

func (s *Store) Remove(_ context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.kinds[kind], id)
	return nil
}

func (s *Store) Ping(_ context.Context) error  { return nil }
func (s *Store) Close(_ context.Context) error { return nil }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
