// Package aggregate applies validated events to the minute-bucketed activity
// counters: active users, per-URL page views, and per-user session sets.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clickstream/internal/event"
	"clickstream/internal/window"
)

var (
	eventsAggregated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clickstream_events_aggregated_total",
		Help: "Total number of valid events applied to the aggregate store",
	})
	applyDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clickstream_aggregate_apply_duration_ms",
		Help:    "Latency of applying one event to the aggregate store in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

// Sink writes one validated event into the three aggregate dimensions.
type Sink struct {
	store  Store
	logger *slog.Logger
}

func NewSink(store Store, logger *slog.Logger) *Sink {
	return &Sink{store: store, logger: logger}
}

// Apply derives the event-time bucket and updates the three counters, each
// with its own retention. The three writes are independent and not
// transactional: a failure mid-way leaves earlier dimensions updated.
//
// Set membership tolerates at-least-once redelivery; the page-view increment
// does not, so redelivered events inflate the histogram. That is an accepted
// consequence of the broker's delivery contract.
func (s *Sink) Apply(ctx context.Context, ev event.UserEvent) error {
	start := time.Now()
	bucket := window.Bucket(ev.Timestamp)

	if err := s.store.AddActiveUser(ctx, bucket, ev.UserID, ActiveUsersTTL); err != nil {
		return fmt.Errorf("add active user: %w", err)
	}
	if err := s.store.IncrPageView(ctx, bucket, ev.PageURL, PageViewsTTL); err != nil {
		return fmt.Errorf("increment page view: %w", err)
	}
	if err := s.store.AddUserSession(ctx, ev.UserID, bucket, ev.SessionID, UserSessionsTTL); err != nil {
		return fmt.Errorf("add user session: %w", err)
	}

	eventsAggregated.Inc()
	applyDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)

	s.logger.Debug("event aggregated",
		"bucket", bucket,
		"user_id", ev.UserID,
		"page_url", ev.PageURL,
	)
	return nil
}
