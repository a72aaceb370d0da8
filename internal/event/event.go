package event

import "time"

// UserEvent is a validated user interaction event. All five wire fields are
// required strings; Timestamp is the parsed event-time instant.
type UserEvent struct {
	Timestamp time.Time
	UserID    string
	EventType string
	PageURL   string
	SessionID string
}

// WireEvent is the JSON shape carried on the topic. The timestamp travels as
// RFC 3339 text.
type WireEvent struct {
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	EventType string `json:"event_type"`
	PageURL   string `json:"page_url"`
	SessionID string `json:"session_id"`
}
