package sync

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The remote system has shipped several incompatible envelopes for the
// same logical events. Each field below is resolved by walking an
// ordered list of dot-separated paths, most specific first; adding a
// newly observed shape means adding a path, not new control flow.
var (
	eventTypePaths = []string{"event.event_type", "event", "event_type", "type"}

	ticketIDPaths = []string{"issue.id", "issue_id", "data.issue_id", "data.issue.id", "data.id", "id"}

	statusPaths = []string{"new_status", "data.new_status", "status", "data.status", "issue.status", "data.issue.status"}

	oldStatusPaths = []string{"old_status", "previous_status", "data.old_status", "data.previous_status"}

	commentPaths = []string{"event.comment", "comment", "data.comment"}

	authorPaths = []string{"event.author", "author", "comment.author", "data.author"}
)

// Normalize projects a raw webhook body onto a CanonicalEvent. It
// never fails: unparseable or unclassifiable payloads come back with
// Kind set to KindUnknown so the caller can log them for triage.
func Normalize(raw []byte) CanonicalEvent {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CanonicalEvent{Kind: KindUnknown}
	}
	return NormalizeMap(payload)
}

// NormalizeMap is Normalize for an already-decoded payload.
func NormalizeMap(payload map[string]interface{}) CanonicalEvent {
	evt := CanonicalEvent{Kind: classify(payload)}

	evt.TicketID = firstInt(payload, ticketIDPaths)
	evt.Status = extractStatus(firstValue(payload, statusPaths))
	evt.OldStatus = extractStatus(firstValue(payload, oldStatusPaths))

	if comment, ok := firstValue(payload, commentPaths).(map[string]interface{}); ok {
		evt.CommentID = asInt(comment["id"])
		evt.CommentBody, _ = comment["content"].(string)
		evt.IsPublic = extractPublicFlag(comment)
	}

	if author, ok := firstValue(payload, authorPaths).(map[string]interface{}); ok {
		evt.AuthorID = asInt(author["id"])
		evt.AuthorKind, _ = author["type"].(string)
		evt.AuthorName = extractAuthorName(author)
	}

	// A comment event without a ticket id in any known location is
	// useless downstream; demote it so it surfaces in triage logs.
	if evt.Kind != KindUnknown && evt.TicketID == 0 {
		evt.Kind = KindUnknown
	}

	return evt
}

func classify(payload map[string]interface{}) EventKind {
	name, _ := firstValue(payload, eventTypePaths).(string)

	switch strings.ToLower(name) {
	case "issue.created", "new_ticket", "ticket.created":
		return KindTicketCreated
	case "issue.updated", "ticket.updated":
		return KindTicketUpdated
	case "issue.status_changed", "status_changed":
		return KindStatusChanged
	case "comment.created", "new_comment":
		return KindCommentCreated
	}

	// Unlabeled deliveries that still carry a comment body are treated
	// as comment events; the remote has been observed to omit the
	// event name on comment hooks.
	if comment, ok := firstValue(payload, commentPaths).(map[string]interface{}); ok {
		if _, hasContent := comment["content"]; hasContent {
			return KindCommentCreated
		}
	}

	return KindUnknown
}

// extractStatus accepts a bare status string or a {code, name} object.
func extractStatus(value interface{}) string {
	switch status := value.(type) {
	case string:
		return status
	case map[string]interface{}:
		if code, ok := status["code"].(string); ok && code != "" {
			return code
		}
		if name, ok := status["name"].(string); ok {
			return name
		}
	}
	return ""
}

// extractPublicFlag handles the visibility flag under either of its
// observed names and types. Missing or unrecognized defaults to false:
// internal notes must never leak on a parsing gap.
func extractPublicFlag(comment map[string]interface{}) bool {
	for _, key := range []string{"public", "is_public"} {
		value, present := comment[key]
		if !present {
			continue
		}
		switch flag := value.(type) {
		case bool:
			return flag
		case string:
			switch strings.ToLower(flag) {
			case "true", "1", "yes":
				return true
			}
			return false
		}
	}
	return false
}

func extractAuthorName(author map[string]interface{}) string {
	if name, ok := author["name"].(string); ok && name != "" {
		return name
	}
	first, _ := author["first_name"].(string)
	last, _ := author["last_name"].(string)
	return strings.TrimSpace(first + " " + last)
}

// firstValue walks the ordered paths and returns the first value
// present, or nil.
func firstValue(payload map[string]interface{}, paths []string) interface{} {
	for _, path := range paths {
		if value, ok := lookup(payload, path); ok {
			return value
		}
	}
	return nil
}

func firstInt(payload map[string]interface{}, paths []string) int64 {
	for _, path := range paths {
		value, ok := lookup(payload, path)
		if !ok {
			continue
		}
		if n := asInt(value); n != 0 {
			return n
		}
	}
	return 0
}

// lookup resolves a dot-separated path against nested JSON objects.
func lookup(payload map[string]interface{}, path string) (interface{}, bool) {
	current := interface{}(payload)
	for _, segment := range strings.Split(path, ".") {
		object, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = object[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// asInt tolerates the number encodings seen on the wire: JSON numbers
// (float64 after decoding) and numeric strings.
func asInt(value interface{}) int64 {
	switch n := value.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}
