package audit

import (
	"time"

	"clickstream/internal/event"
)

// DocType distinguishes the two audit document variants in the collection.
const (
	DocTypeSuccess = "success"
	DocTypeFailed  = "failed"
)

// Document is one audit trail entry. Every consumed record yields exactly
// one Document, written once and never mutated. The two variants serialize
// to disjoint field sets: success documents carry the validated event fields
// and event time, failed documents carry the raw payload, the rejection
// reason, and ingestion time (no trustworthy event time exists for a record
// that failed to parse). The sparse (user_id, timestamp) index relies on
// user_id being absent from failed documents.
type Document struct {
	DocType   string    `bson:"doc_type" json:"doc_type"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	// Success variant.
	UserID    string `bson:"user_id,omitempty" json:"user_id,omitempty"`
	EventType string `bson:"event_type,omitempty" json:"event_type,omitempty"`
	PageURL   string `bson:"page_url,omitempty" json:"page_url,omitempty"`
	SessionID string `bson:"session_id,omitempty" json:"session_id,omitempty"`

	// Failed variant.
	FailedEvent string `bson:"failed_event,omitempty" json:"failed_event,omitempty"`
	Reason      string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// SuccessDocument builds the audit entry for a validated event.
func SuccessDocument(ev event.UserEvent) Document {
	return Document{
		DocType:   DocTypeSuccess,
		Timestamp: ev.Timestamp,
		UserID:    ev.UserID,
		EventType: ev.EventType,
		PageURL:   ev.PageURL,
		SessionID: ev.SessionID,
	}
}

// FailedDocument builds the audit entry for a rejected payload. ingestedAt
// is the consumption time.
func FailedDocument(raw, reason string, ingestedAt time.Time) Document {
	return Document{
		DocType:     DocTypeFailed,
		Timestamp:   ingestedAt,
		FailedEvent: raw,
		Reason:      reason,
	}
}
