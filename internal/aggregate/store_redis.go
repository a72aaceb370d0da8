package aggregate

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the production Store backed by an expiring key-value store.
// Concurrent writers to the same bucket rely on SADD and HINCRBY being
// atomic server-side; no application-level locking is used.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed aggregate store. The client
// lifecycle is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) AddActiveUser(ctx context.Context, bucket, userID string, ttl time.Duration) error {
	key := activeUsersKey(bucket)
	if err := s.client.SAdd(ctx, key, userID).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) IncrPageView(ctx context.Context, bucket, pageURL string, ttl time.Duration) error {
	key := pageViewsKey(bucket)
	if err := s.client.HIncrBy(ctx, key, pageURL, 1).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) AddUserSession(ctx context.Context, userID, bucket, sessionID string, ttl time.Duration) error {
	key := userSessionsKey(userID, bucket)
	if err := s.client.SAdd(ctx, key, sessionID).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) ActiveUsers(ctx context.Context, bucket string) ([]string, error) {
	return s.client.SMembers(ctx, activeUsersKey(bucket)).Result()
}

func (s *RedisStore) SessionCount(ctx context.Context, userID, bucket string) (int64, error) {
	return s.client.SCard(ctx, userSessionsKey(userID, bucket)).Result()
}

func (s *RedisStore) PageViews(ctx context.Context, bucket string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, pageViewsKey(bucket)).Result()
	if err != nil {
		return nil, err
	}
	views := make(map[string]int64, len(raw))
	for url, count := range raw {
		n, err := strconv.ParseInt(count, 10, 64)
		if err != nil {
			return nil, err
		}
		views[url] = n
	}
	return views, nil
}
