// Package sync turns inbound helpdesk webhook deliveries into local
// state transitions. The normalizer projects any of the observed
// payload shapes onto one CanonicalEvent; the engine decides whether a
// real transition happened and which side effects to run, assuming
// at-least-once delivery with no ordering guarantees.
package sync

// EventKind classifies one webhook delivery.
type EventKind string

const (
	KindTicketCreated  EventKind = "ticket-created"
	KindTicketUpdated  EventKind = "ticket-updated"
	KindStatusChanged  EventKind = "status-changed"
	KindCommentCreated EventKind = "comment-created"
	KindUnknown        EventKind = "unknown"
)

// CanonicalEvent is the shape-independent projection of one webhook
// delivery. It lives for one ProcessDelivery call and is never stored.
type CanonicalEvent struct {
	Kind EventKind

	TicketID  int64
	Status    string
	OldStatus string

	CommentID   int64
	CommentBody string
	IsPublic    bool

	AuthorID   int64
	AuthorKind string
	AuthorName string
}

// Outcome is the structured result of processing one delivery. The
// webhook handler always answers 2xx with it; the remote system
// expects success regardless of how the delivery was classified.
type Outcome struct {
	Result   string    `json:"result"`
	Event    EventKind `json:"event"`
	TicketID int64     `json:"ticket_id,omitempty"`
	Reason   string    `json:"reason,omitempty"`
}

const (
	ResultAccepted     = "accepted"
	ResultIgnored      = "ignored"
	ResultDuplicate    = "duplicate"
	ResultUnclassified = "unclassified"
)

func accepted(kind EventKind, ticketID int64) Outcome {
	return Outcome{Result: ResultAccepted, Event: kind, TicketID: ticketID}
}

func ignored(kind EventKind, ticketID int64, reason string) Outcome {
	return Outcome{Result: ResultIgnored, Event: kind, TicketID: ticketID, Reason: reason}
}

func duplicate(kind EventKind, ticketID int64) Outcome {
	return Outcome{Result: ResultDuplicate, Event: kind, TicketID: ticketID}
}
