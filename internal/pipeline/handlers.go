package pipeline

import (
	"context"
	"log/slog"

	"clickstream/internal/aggregate"
	"clickstream/internal/audit"
	"clickstream/internal/event"
	"clickstream/internal/platform/config"
	"clickstream/internal/platform/kafka/consumer"
)

// AggregateHandler routes each valid record into the aggregation sink.
// Invalid records are logged and skipped here; the audit consumer group
// records them durably on its own cadence.
type AggregateHandler struct {
	sink   *aggregate.Sink
	logger *slog.Logger
}

func NewAggregateHandler(sink *aggregate.Sink, logger *slog.Logger) *AggregateHandler {
	return &AggregateHandler{sink: sink, logger: logger}
}

func (h *AggregateHandler) HandleBatch(ctx context.Context, msgs []consumer.Message) error {
	for _, msg := range msgs {
		out := event.Validate(msg.Value)
		if !out.Valid {
			invalidRecords.WithLabelValues(config.GroupAggregator).Inc()
			h.logger.Warn("invalid event",
				"payload", out.Raw,
				"reason", out.Reason,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			continue
		}
		if err := h.sink.Apply(ctx, out.Event); err != nil {
			return err
		}
	}
	return nil
}

// AuditHandler validates the whole batch and hands the outcomes, valid and
// invalid alike, to the audit sink as one bulk write.
type AuditHandler struct {
	sink   *audit.Sink
	logger *slog.Logger
}

func NewAuditHandler(sink *audit.Sink, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{sink: sink, logger: logger}
}

func (h *AuditHandler) HandleBatch(ctx context.Context, msgs []consumer.Message) error {
	outcomes := make([]event.Outcome, 0, len(msgs))
	for _, msg := range msgs {
		out := event.Validate(msg.Value)
		if !out.Valid {
			invalidRecords.WithLabelValues(config.GroupAuditor).Inc()
		}
		outcomes = append(outcomes, out)
	}

	result, err := h.sink.RecordBatch(ctx, outcomes)
	if err != nil {
		return err
	}
	h.logger.Info("audit batch recorded",
		"attempted", result.Attempted,
		"inserted", result.Inserted,
		"failed", result.Failed,
	)
	return nil
}
