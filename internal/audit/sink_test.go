package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clickstream/internal/event"
)

type SinkSuite struct {
	suite.Suite
	store *MemoryStore
	sink  *Sink
	now   time.Time
}

func TestSinkSuite(t *testing.T) {
	suite.Run(t, new(SinkSuite))
}

func (s *SinkSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.sink = NewSink(s.store, slog.New(slog.DiscardHandler))
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.sink.now = func() time.Time { return s.now }
}

func validOutcome(userID string) event.Outcome {
	return event.Validate([]byte(`{"timestamp":"2024-01-01T00:00:30Z","user_id":"` + userID + `","event_type":"page_view","page_url":"/home","session_id":"s1"}`))
}

func (s *SinkSuite) TestOneDocumentPerOutcome() {
	outcomes := []event.Outcome{
		validOutcome("u1"),
		event.Validate([]byte(`not-json`)),
		validOutcome("u2"),
		event.Validate([]byte(`{"user_id":"u3"}`)),
	}

	result, err := s.sink.RecordBatch(context.Background(), outcomes)
	s.Require().NoError(err)
	s.Equal(BatchResult{Attempted: 4, Inserted: 4, Failed: 0}, result)

	docs := s.store.Documents()
	s.Require().Len(docs, 4)

	var success, failed int
	for _, doc := range docs {
		switch doc.DocType {
		case DocTypeSuccess:
			success++
		case DocTypeFailed:
			failed++
		}
	}
	s.Equal(2, success)
	s.Equal(2, failed)
}

func (s *SinkSuite) TestSuccessDocumentCarriesEventFields() {
	_, err := s.sink.RecordBatch(context.Background(), []event.Outcome{validOutcome("u1")})
	s.Require().NoError(err)

	docs := s.store.Documents()
	s.Require().Len(docs, 1)
	doc := docs[0]
	s.Equal(DocTypeSuccess, doc.DocType)
	s.Equal(time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC), doc.Timestamp.UTC())
	s.Equal("u1", doc.UserID)
	s.Equal("page_view", doc.EventType)
	s.Equal("/home", doc.PageURL)
	s.Equal("s1", doc.SessionID)
	s.Empty(doc.FailedEvent)
	s.Empty(doc.Reason)
}

func (s *SinkSuite) TestFailedDocumentCarriesRawAndIngestionTime() {
	_, err := s.sink.RecordBatch(context.Background(), []event.Outcome{event.Validate([]byte(`not-json`))})
	s.Require().NoError(err)

	docs := s.store.Documents()
	s.Require().Len(docs, 1)
	doc := docs[0]
	s.Equal(DocTypeFailed, doc.DocType)
	s.Equal("not-json", doc.FailedEvent)
	s.Contains(doc.Reason, "invalid JSON")
	// Failure timestamps use ingestion time, not event time.
	s.Equal(s.now, doc.Timestamp)
	// user_id must be absent so the sparse compound index skips the doc.
	s.Empty(doc.UserID)
}

func (s *SinkSuite) TestEmptyBatchIsANoOp() {
	result, err := s.sink.RecordBatch(context.Background(), nil)
	s.Require().NoError(err)
	s.Equal(BatchResult{}, result)
	s.Empty(s.store.Documents())
}

func (s *SinkSuite) TestPartialFailureInsertsTheRest() {
	s.store.RejectFn = func(doc Document) bool { return doc.UserID == "u2" }

	result, err := s.sink.RecordBatch(context.Background(), []event.Outcome{
		validOutcome("u1"),
		validOutcome("u2"),
		validOutcome("u3"),
	})
	s.Require().NoError(err, "partial failure is reported, not returned")
	s.Equal(BatchResult{Attempted: 3, Inserted: 2, Failed: 1}, result)
	s.Len(s.store.Documents(), 2)
}

func (s *SinkSuite) TestStoreUnavailableIsFatal() {
	s.store.Err = errors.New("server selection timeout")

	_, err := s.sink.RecordBatch(context.Background(), []event.Outcome{validOutcome("u1")})
	s.Require().Error(err)
}
