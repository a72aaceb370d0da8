package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"clickstream/internal/platform/config"
)

// Message is a single record read from the broker. The pipeline only reads
// the value; partition and offset travel along for logging.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
}

// Consumer is a consumer-group reader over a single topic. Offsets are
// auto-committed by the client independently of downstream sink success,
// which is what makes delivery at-least-once rather than exactly-once.
type Consumer struct {
	client      *kgo.Client
	pollTimeout time.Duration
}

// New joins the configured consumer group and verifies broker connectivity.
func New(ctx context.Context, cfg config.Kafka) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	return &Consumer{client: client, pollTimeout: cfg.PollTimeout}, nil
}

// Poll waits up to the configured poll timeout for up to max records. An
// empty batch after a quiet poll is normal and returns no error; broker-side
// failures are returned so the owning loop can decide whether to terminate.
func (c *Consumer) Poll(ctx context.Context, max int) ([]Message, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	fetches := c.client.PollRecords(pollCtx, max)

	for _, fetchErr := range fetches.Errors() {
		if errors.Is(fetchErr.Err, context.DeadlineExceeded) || errors.Is(fetchErr.Err, context.Canceled) {
			continue
		}
		return nil, fmt.Errorf("fetch %s/%d: %w", fetchErr.Topic, fetchErr.Partition, fetchErr.Err)
	}

	var msgs []Message
	fetches.EachRecord(func(r *kgo.Record) {
		msgs = append(msgs, Message{
			Topic:     r.Topic,
			Partition: r.Partition,
			Offset:    r.Offset,
			Key:       r.Key,
			Value:     r.Value,
		})
	})
	return msgs, nil
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
