package aggregate

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for unit tests. It records the TTL last
// requested for each key rather than simulating decay; expiry is the real
// store's job and tests assert on the requested retention instead.
type MemoryStore struct {
	mu     sync.Mutex
	sets   map[string]map[string]struct{}
	hashes map[string]map[string]int64
	ttls   map[string]time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sets:   make(map[string]map[string]struct{}),
		hashes: make(map[string]map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (s *MemoryStore) AddActiveUser(_ context.Context, bucket, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addToSet(activeUsersKey(bucket), userID, ttl)
	return nil
}

func (s *MemoryStore) IncrPageView(_ context.Context, bucket, pageURL string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pageViewsKey(bucket)
	if s.hashes[key] == nil {
		s.hashes[key] = make(map[string]int64)
	}
	s.hashes[key][pageURL]++
	s.ttls[key] = ttl
	return nil
}

func (s *MemoryStore) AddUserSession(_ context.Context, userID, bucket, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addToSet(userSessionsKey(userID, bucket), sessionID, ttl)
	return nil
}

func (s *MemoryStore) ActiveUsers(_ context.Context, bucket string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]string, 0, len(s.sets[activeUsersKey(bucket)]))
	for m := range s.sets[activeUsersKey(bucket)] {
		members = append(members, m)
	}
	return members, nil
}

func (s *MemoryStore) SessionCount(_ context.Context, userID, bucket string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sets[userSessionsKey(userID, bucket)])), nil
}

func (s *MemoryStore) PageViews(_ context.Context, bucket string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make(map[string]int64, len(s.hashes[pageViewsKey(bucket)]))
	for url, n := range s.hashes[pageViewsKey(bucket)] {
		views[url] = n
	}
	return views, nil
}

// TTL reports the retention last requested for a key, or zero if the key was
// never written.
func (s *MemoryStore) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttls[key]
}

// SetSize reports the cardinality of a set key.
func (s *MemoryStore) SetSize(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets[key])
}

func (s *MemoryStore) addToSet(key, member string, ttl time.Duration) {
	if s.sets[key] == nil {
		s.sets[key] = make(map[string]struct{})
	}
	s.sets[key][member] = struct{}{}
	s.ttls[key] = ttl
}
