package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// requiredFields in wire order. Missing-field reasons list every absent
// field, not just the first one found.
var requiredFields = []string{"timestamp", "user_id", "event_type", "page_url", "session_id"}

// Outcome classifies one raw record. Exactly one variant holds: either Event
// is populated and Valid is true, or Reason explains the rejection. Raw is
// always the original payload so the audit path can persist it verbatim.
type Outcome struct {
	Valid  bool
	Event  UserEvent
	Raw    string
	Reason string
}

func valid(raw []byte, ev UserEvent) Outcome {
	return Outcome{Valid: true, Event: ev, Raw: string(raw)}
}

func invalid(raw []byte, reason string) Outcome {
	return Outcome{Raw: string(raw), Reason: reason}
}

// Validate classifies a raw payload as a well-formed UserEvent or a
// structured failure. A record is entirely valid or entirely invalid; no
// partially-populated event ever reaches a sink.
func Validate(raw []byte) Outcome {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return invalid(raw, fmt.Sprintf("invalid JSON: %v", err))
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return invalid(raw, "missing fields: "+strings.Join(missing, ", "))
	}

	str := make(map[string]string, len(requiredFields))
	for _, f := range requiredFields {
		s, ok := fields[f].(string)
		if !ok {
			return invalid(raw, fmt.Sprintf("field %q must be a string", f))
		}
		str[f] = s
	}

	ts, err := time.Parse(time.RFC3339, str["timestamp"])
	if err != nil {
		return invalid(raw, fmt.Sprintf("field %q must be an RFC 3339 instant: %v", "timestamp", err))
	}

	return valid(raw, UserEvent{
		Timestamp: ts,
		UserID:    str["user_id"],
		EventType: str["event_type"],
		PageURL:   str["page_url"],
		SessionID: str["session_id"],
	})
}
