package audit

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for unit tests. RejectFn, when set,
// simulates per-document write failures the way an unordered bulk write
// reports them.
type MemoryStore struct {
	mu       sync.Mutex
	docs     []Document
	RejectFn func(Document) bool
	// Err, when set, is returned from InsertMany to simulate an unavailable
	// store.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) EnsureIndexes(context.Context) error {
	return nil
}

func (s *MemoryStore) InsertMany(_ context.Context, docs []Document) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, 0, s.Err
	}
	inserted, failed := 0, 0
	for _, doc := range docs {
		if s.RejectFn != nil && s.RejectFn(doc) {
			failed++
			continue
		}
		s.docs = append(s.docs, doc)
		inserted++
	}
	return inserted, failed, nil
}

// Documents returns a copy of everything inserted so far.
func (s *MemoryStore) Documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}
