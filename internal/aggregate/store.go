package aggregate

import (
	"context"
	"fmt"
	"time"
)

// Retention per dimension. Expiry is reset on every write to a key, so a
// bucket lives this long past its last matching event.
const (
	ActiveUsersTTL  = 300 * time.Second
	UserSessionsTTL = 300 * time.Second
	PageViewsTTL    = 900 * time.Second
)

// Key prefixes for the three aggregate dimensions.
const (
	activeUsersKeyPrefix  = "active_users:"
	pageViewsKeyPrefix    = "page_views:"
	userSessionsKeyPrefix = "user_sessions:"
)

func activeUsersKey(bucket string) string {
	return activeUsersKeyPrefix + bucket
}

func pageViewsKey(bucket string) string {
	return pageViewsKeyPrefix + bucket
}

func userSessionsKey(userID, bucket string) string {
	return fmt.Sprintf("%s%s:%s", userSessionsKeyPrefix, userID, bucket)
}

// Store is the expiring key-value surface the aggregation sink writes and
// the dashboard reads. The store's per-key TTL is the only decay mechanism;
// the pipeline never deletes aggregate keys itself.
type Store interface {
	// AddActiveUser adds userID to the bucket's active-user set and resets
	// the key expiry.
	AddActiveUser(ctx context.Context, bucket, userID string, ttl time.Duration) error
	// IncrPageView increments the bucket's per-URL view count by one and
	// resets the key expiry.
	IncrPageView(ctx context.Context, bucket, pageURL string, ttl time.Duration) error
	// AddUserSession adds sessionID to the user's per-bucket session set and
	// resets the key expiry.
	AddUserSession(ctx context.Context, userID, bucket, sessionID string, ttl time.Duration) error

	// ActiveUsers returns the members of the bucket's active-user set.
	// A missing bucket reads as empty, matching expired keys.
	ActiveUsers(ctx context.Context, bucket string) ([]string, error)
	// SessionCount returns the size of the user's session set for a bucket.
	SessionCount(ctx context.Context, userID, bucket string) (int64, error)
	// PageViews returns the bucket's URL→count mapping.
	PageViews(ctx context.Context, bucket string) (map[string]int64, error)
}
