// Package dashboard serves read-side views over the expiring aggregates:
// who was active in the last few minutes and which pages they viewed.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"clickstream/internal/aggregate"
	"clickstream/internal/window"
)

// UserDetails is one active user with their session count across the window.
type UserDetails struct {
	UserID       string `json:"user_id"`
	SessionCount int64  `json:"session_count"`
}

// ActiveUsersResponse lists distinct users seen across the queried buckets.
type ActiveUsersResponse struct {
	Users []UserDetails `json:"users"`
}

// PageViewCount is one URL with its summed view count across the window.
type PageViewCount struct {
	PageURL string `json:"page_url"`
	Count   int64  `json:"count"`
}

// PageViewsResponse lists the top viewed pages across the queried buckets.
type PageViewsResponse struct {
	PageViews []PageViewCount `json:"page_views"`
}

// Service reads the trailing minute buckets from the aggregate store. It
// never writes; expiry alone ages data out of the responses.
type Service struct {
	store              aggregate.Store
	activeUsersBuckets int
	pageViewsBuckets   int
	logger             *slog.Logger
	now                func() time.Time
}

func NewService(store aggregate.Store, activeUsersBuckets, pageViewsBuckets int, logger *slog.Logger) *Service {
	return &Service{
		store:              store,
		activeUsersBuckets: activeUsersBuckets,
		pageViewsBuckets:   pageViewsBuckets,
		logger:             logger,
		now:                time.Now,
	}
}

// ActiveUsers returns the union of active-user sets over the last N minute
// buckets, with each user's session count summed over the same window.
func (s *Service) ActiveUsers(ctx context.Context) (ActiveUsersResponse, error) {
	buckets := recentBuckets(s.now(), s.activeUsersBuckets)

	seen := make(map[string]struct{})
	for _, bucket := range buckets {
		members, err := s.store.ActiveUsers(ctx, bucket)
		if err != nil {
			return ActiveUsersResponse{}, fmt.Errorf("read active users %s: %w", bucket, err)
		}
		for _, userID := range members {
			seen[userID] = struct{}{}
		}
	}

	users := make([]UserDetails, 0, len(seen))
	for userID := range seen {
		var sessions int64
		for _, bucket := range buckets {
			n, err := s.store.SessionCount(ctx, userID, bucket)
			if err != nil {
				return ActiveUsersResponse{}, fmt.Errorf("count sessions for %s in %s: %w", userID, bucket, err)
			}
			sessions += n
		}
		users = append(users, UserDetails{UserID: userID, SessionCount: sessions})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })

	return ActiveUsersResponse{Users: users}, nil
}

// TopPages merges the page-view hashes over the last N minute buckets and
// returns up to limit URLs sorted by descending count.
func (s *Service) TopPages(ctx context.Context, limit int) (PageViewsResponse, error) {
	buckets := recentBuckets(s.now(), s.pageViewsBuckets)

	merged := make(map[string]int64)
	for _, bucket := range buckets {
		views, err := s.store.PageViews(ctx, bucket)
		if err != nil {
			return PageViewsResponse{}, fmt.Errorf("read page views %s: %w", bucket, err)
		}
		for url, n := range views {
			merged[url] += n
		}
	}

	pages := make([]PageViewCount, 0, len(merged))
	for url, n := range merged {
		pages = append(pages, PageViewCount{PageURL: url, Count: n})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Count != pages[j].Count {
			return pages[i].Count > pages[j].Count
		}
		return pages[i].PageURL < pages[j].PageURL
	})
	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}

	return PageViewsResponse{PageViews: pages}, nil
}

// recentBuckets returns the bucket keys for now and the n-1 minutes before
// it, newest first.
func recentBuckets(now time.Time, n int) []string {
	buckets := make([]string, 0, n)
	for i := 0; i < n; i++ {
		buckets = append(buckets, window.Bucket(now.Add(-time.Duration(i)*time.Minute)))
	}
	return buckets
}
