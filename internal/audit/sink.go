// Package audit persists every consumed record, parsed or not, as one
// document in the durable audit trail.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clickstream/internal/event"
)

var (
	documentsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clickstream_audit_documents_inserted_total",
		Help: "Total number of audit documents inserted",
	})
	documentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clickstream_audit_documents_failed_total",
		Help: "Total number of audit documents rejected by the store in bulk writes",
	})
)

// BatchResult reports the outcome of one bulk audit write.
type BatchResult struct {
	Attempted int
	Inserted  int
	Failed    int
}

// Sink builds audit documents from validation outcomes and persists them in
// a single unordered bulk write per batch.
type Sink struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewSink(store Store, logger *slog.Logger) *Sink {
	return &Sink{store: store, logger: logger, now: time.Now}
}

// RecordBatch persists exactly one document per outcome. Per-document store
// rejections are counted and logged, not retried; re-driving the failed
// subset is the operator's call. A returned error means the store itself is
// unavailable and the owning loop should terminate.
func (s *Sink) RecordBatch(ctx context.Context, outcomes []event.Outcome) (BatchResult, error) {
	if len(outcomes) == 0 {
		return BatchResult{}, nil
	}

	docs := make([]Document, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Valid {
			docs = append(docs, SuccessDocument(out.Event))
			continue
		}
		s.logger.Warn("invalid event",
			"payload", out.Raw,
			"reason", out.Reason,
		)
		docs = append(docs, FailedDocument(out.Raw, out.Reason, s.now().UTC()))
	}

	inserted, failed, err := s.store.InsertMany(ctx, docs)
	if err != nil {
		return BatchResult{Attempted: len(docs)}, err
	}

	documentsInserted.Add(float64(inserted))
	if failed > 0 {
		documentsFailed.Add(float64(failed))
		s.logger.Error("bulk write completed with failures",
			"attempted", len(docs),
			"inserted", inserted,
			"failed", failed,
		)
	}

	return BatchResult{Attempted: len(docs), Inserted: inserted, Failed: failed}, nil
}
