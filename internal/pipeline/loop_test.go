package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"clickstream/internal/aggregate"
	"clickstream/internal/audit"
	"clickstream/internal/platform/kafka/consumer"
)

// scriptedPoller returns its batches one per poll, then empty batches.
type scriptedPoller struct {
	mu      sync.Mutex
	batches [][]consumer.Message
	err     error
}

func (p *scriptedPoller) Poll(ctx context.Context, _ int) ([]consumer.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	if len(p.batches) == 0 {
		return nil, nil
	}
	batch := p.batches[0]
	p.batches = p.batches[1:]
	return batch, nil
}

type recordingHandler struct {
	mu   sync.Mutex
	msgs []consumer.Message
	err  error
}

func (h *recordingHandler) HandleBatch(_ context.Context, msgs []consumer.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.msgs = append(h.msgs, msgs...)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}

func msg(value string) consumer.Message {
	return consumer.Message{Topic: "user-events", Value: []byte(value)}
}

func newLoop(p Poller, h Handler) *Loop {
	return NewLoop("test", p, h, 500, time.Millisecond, slog.New(slog.DiscardHandler))
}

func TestLoopProcessesUntilCancelled(t *testing.T) {
	poller := &scriptedPoller{batches: [][]consumer.Message{
		{msg("a"), msg("b")},
		{msg("c")},
	}}
	handler := &recordingHandler{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- newLoop(poller, handler).Run(ctx) }()

	require.Eventually(t, func() bool { return handler.count() == 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown")
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after cancellation")
	}
}

func TestLoopStopsOnHandlerError(t *testing.T) {
	poller := &scriptedPoller{batches: [][]consumer.Message{{msg("a")}}}
	handler := &recordingHandler{err: errors.New("store unavailable")}

	err := newLoop(poller, handler).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handle batch")
}

func TestLoopStopsOnPollError(t *testing.T) {
	poller := &scriptedPoller{err: errors.New("broker gone")}

	err := newLoop(poller, &recordingHandler{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll")
}

// HandlerSuite exercises the two routing handlers over memory stores.
type HandlerSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.logger = slog.New(slog.DiscardHandler)
}

func (s *HandlerSuite) TestAggregateHandlerSkipsInvalidRecords() {
	store := aggregate.NewMemoryStore()
	handler := NewAggregateHandler(aggregate.NewSink(store, s.logger), s.logger)

	err := handler.HandleBatch(context.Background(), []consumer.Message{
		msg(`{"timestamp":"2024-01-01T00:00:30Z","user_id":"u1","event_type":"page_view","page_url":"/home","session_id":"s1"}`),
		msg(`not-json`),
		msg(`{"timestamp":"2024-01-01T00:00:45Z","user_id":"u2","event_type":"page_view","page_url":"/home","session_id":"s2"}`),
	})
	s.Require().NoError(err, "invalid records never fail the aggregation loop")

	users, err := store.ActiveUsers(context.Background(), "202401010000")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"u1", "u2"}, users)

	views, err := store.PageViews(context.Background(), "202401010000")
	s.Require().NoError(err)
	s.Equal(int64(2), views["/home"])
}

func (s *HandlerSuite) TestAuditHandlerRecordsEveryRecord() {
	store := audit.NewMemoryStore()
	handler := NewAuditHandler(audit.NewSink(store, s.logger), s.logger)

	err := handler.HandleBatch(context.Background(), []consumer.Message{
		msg(`{"timestamp":"2024-01-01T00:00:30Z","user_id":"u1","event_type":"page_view","page_url":"/home","session_id":"s1"}`),
		msg(`not-json`),
		msg(`{"user_id":"u1"}`),
	})
	s.Require().NoError(err)

	// count(success) + count(failed) == count(records consumed)
	docs := store.Documents()
	s.Require().Len(docs, 3)
	var success, failed int
	for _, doc := range docs {
		switch doc.DocType {
		case audit.DocTypeSuccess:
			success++
		case audit.DocTypeFailed:
			failed++
		}
	}
	s.Equal(1, success)
	s.Equal(2, failed)
}
