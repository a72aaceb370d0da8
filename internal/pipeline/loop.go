// Package pipeline drives the poll/validate/route cycle shared by the two
// consumer groups. Each Loop is a single sequential worker; the aggregation
// and audit groups run separate Loop instances in separate processes and
// share no in-process state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clickstream/internal/platform/kafka/consumer"
)

var (
	batchRecords = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clickstream_consumer_batch_records",
		Help:    "Number of records returned per poll",
		Buckets: []float64{0, 1, 10, 50, 100, 250, 500},
	}, []string{"group"})
	invalidRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clickstream_invalid_records_total",
		Help: "Total number of records rejected by validation",
	}, []string{"group"})
)

// Poller yields a bounded batch of records, blocking up to its configured
// poll timeout.
type Poller interface {
	Poll(ctx context.Context, max int) ([]consumer.Message, error)
}

// Handler processes one polled batch. A returned error is fatal to the loop:
// it means the downstream sink cannot persist, and continuing to consume
// while offsets auto-commit would silently drop data.
type Handler interface {
	HandleBatch(ctx context.Context, msgs []consumer.Message) error
}

// Loop is the consumer state machine: poll, process, sleep, repeat until the
// context is cancelled. The inter-batch sleep is deliberate pacing, not flow
// control; it is cut short only by shutdown.
type Loop struct {
	group      string
	poller     Poller
	handler    Handler
	maxRecords int
	batchSleep time.Duration
	logger     *slog.Logger
}

func NewLoop(group string, poller Poller, handler Handler, maxRecords int, batchSleep time.Duration, logger *slog.Logger) *Loop {
	return &Loop{
		group:      group,
		poller:     poller,
		handler:    handler,
		maxRecords: maxRecords,
		batchSleep: batchSleep,
		logger:     logger,
	}
}

// Run loops until ctx is cancelled, which reads as a clean shutdown. The
// in-flight batch is processed to completion before exiting.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		msgs, err := l.poller.Poll(ctx, l.maxRecords)
		if err != nil {
			return fmt.Errorf("poll: %w", err)
		}
		batchRecords.WithLabelValues(l.group).Observe(float64(len(msgs)))

		if len(msgs) > 0 {
			l.logger.Info("processing batch",
				"group", l.group,
				"records", len(msgs),
			)
			if err := l.handler.HandleBatch(ctx, msgs); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return fmt.Errorf("handle batch: %w", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.batchSleep):
		}
	}
}
