package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is a thin synchronous producer used by the event generator.
type Producer struct {
	client *kgo.Client
	admin  *kadm.Client
}

// New connects a producer client and verifies broker connectivity.
func New(ctx context.Context, brokers []string) (*Producer, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	return &Producer{client: client, admin: kadm.NewClient(client)}, nil
}

// EnsureTopic creates the topic if it does not exist. Safe to repeat on
// every generator start.
func (p *Producer) EnsureTopic(ctx context.Context, topic string, partitions int32) error {
	resp, err := p.admin.CreateTopic(ctx, partitions, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Send produces a single record and waits for the broker acknowledgement.
func (p *Producer) Send(ctx context.Context, topic string, key, value []byte) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Flush blocks until all buffered records are acknowledged.
func (p *Producer) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}

// Close releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
