//go:build integration

package pipeline_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clickstream/internal/aggregate"
	"clickstream/internal/pipeline"
	"clickstream/internal/platform/config"
	"clickstream/internal/platform/kafka/consumer"
	"clickstream/internal/platform/kafka/producer"
	"clickstream/internal/testutil/containers"
)

// TestConsumeFromBroker drives the full poll/validate/aggregate path against
// a real Kafka-compatible broker: produce a mixed batch, consume it as the
// aggregation group, and check the counters.
func TestConsumeFromBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t)
	logger := slog.New(slog.DiscardHandler)

	const topic = "user-events"

	prod, err := producer.New(ctx, []string{broker.Broker})
	require.NoError(t, err)
	t.Cleanup(prod.Close)
	require.NoError(t, prod.EnsureTopic(ctx, topic, 1))

	payloads := []string{
		`{"timestamp":"2024-01-01T00:00:30Z","user_id":"u1","event_type":"page_view","page_url":"/home","session_id":"s1"}`,
		`not-json`,
		`{"timestamp":"2024-01-01T00:00:45Z","user_id":"u2","event_type":"page_view","page_url":"/home","session_id":"s2"}`,
	}
	for _, p := range payloads {
		require.NoError(t, prod.Send(ctx, topic, nil, []byte(p)))
	}
	require.NoError(t, prod.Flush(ctx))

	cons, err := consumer.New(ctx, config.Kafka{
		Brokers:     []string{broker.Broker},
		Topic:       topic,
		GroupID:     "event-processor-test",
		PollTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(cons.Close)

	store := aggregate.NewMemoryStore()
	handler := pipeline.NewAggregateHandler(aggregate.NewSink(store, logger), logger)
	loop := pipeline.NewLoop("event-processor-test", cons, handler, 500, 100*time.Millisecond, logger)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- loop.Run(runCtx) }()

	require.Eventually(t, func() bool {
		views, err := store.PageViews(ctx, "202401010000")
		return err == nil && views["/home"] == 2
	}, 30*time.Second, 100*time.Millisecond, "both valid events should be aggregated")

	users, err := store.ActiveUsers(ctx, "202401010000")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u2"}, users)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("loop did not exit after cancellation")
	}
}
