package sync

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/pkg/errors"
	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

// Notifier is the outbound side-effect surface the engine drives. The
// engine never talks to the chat channel directly.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, ticket *ports.Ticket, newStatus string, promptRating bool) error
	NotifyNewComment(ctx context.Context, ticket *ports.Ticket, body, authorName string) error
}

// Engine applies canonical webhook events to local ticket state.
// Deliveries are at-least-once and unordered, so every handler here is
// idempotent: replaying any event leaves state and side effects as if
// it arrived once.
type Engine struct {
	status   config.StatusConfig
	tickets  ports.TicketRepository
	comments ports.CommentRepository
	users    ports.UserRepository
	notifier Notifier
	logger   *logger.Logger
}

func NewEngine(
	status config.StatusConfig,
	tickets ports.TicketRepository,
	comments ports.CommentRepository,
	users ports.UserRepository,
	notifier Notifier,
	log *logger.Logger,
) *Engine {
	return &Engine{
		status:   status,
		tickets:  tickets,
		comments: comments,
		users:    users,
		notifier: notifier,
		logger:   log.WithModule("sync"),
	}
}

// ProcessDelivery is the single entry point for inbound webhook
// bodies. It always returns a structured outcome; malformed input is
// classified, logged and absorbed, never raised.
func (e *Engine) ProcessDelivery(ctx context.Context, raw []byte) Outcome {
	evt := Normalize(raw)

	if evt.Kind == KindUnknown {
		e.logger.WarnWithFields("Unclassified webhook delivery", map[string]interface{}{
			"payload_bytes": len(raw),
			"ticket_id":     evt.TicketID,
		})
		return Outcome{Result: ResultUnclassified, Event: KindUnknown}
	}

	return e.ProcessEvent(ctx, evt)
}

// ProcessEvent applies one canonical event.
func (e *Engine) ProcessEvent(ctx context.Context, evt CanonicalEvent) Outcome {
	ticket, err := e.tickets.GetByRemoteID(ctx, evt.TicketID)
	if err != nil {
		if errors.GetAppError(err) == errors.ErrTicketNotFound {
			return ignored(evt.Kind, evt.TicketID, "ticket not tracked locally")
		}
		e.logger.ErrorWithFields("Failed to load ticket for webhook event", map[string]interface{}{
			"ticket_id": evt.TicketID,
			"error":     err.Error(),
		})
		return ignored(evt.Kind, evt.TicketID, "ticket lookup failed")
	}

	switch evt.Kind {
	case KindTicketCreated:
		// Locally-initiated tickets are already tracked by the time
		// the creation hook arrives; foreign tickets stay untracked.
		return ignored(evt.Kind, evt.TicketID, "ticket already tracked")
	case KindStatusChanged, KindTicketUpdated:
		return e.handleStatusEvent(ctx, evt, ticket)
	case KindCommentCreated:
		return e.handleCommentEvent(ctx, evt, ticket)
	}

	return ignored(evt.Kind, evt.TicketID, "no handler for event kind")
}

func (e *Engine) handleStatusEvent(ctx context.Context, evt CanonicalEvent, ticket *ports.Ticket) Outcome {
	newStatus := e.canonicalStatus(evt.Status)
	if newStatus == "" {
		return ignored(evt.Kind, evt.TicketID, "no status in payload")
	}

	realTransition := newStatus != e.canonicalStatus(ticket.Status)

	// Completion is evaluated even for duplicate deliveries: the
	// channels are unordered, so the delivery that should have carried
	// the prompt may have been processed after a duplicate already
	// applied the status.
	promptRating := false
	if e.isCompletion(newStatus) && !ticket.RatingPromptSent && ticket.Rating == nil {
		flipped, err := e.tickets.MarkRatingPromptSent(ctx, ticket.ID)
		if err != nil {
			e.logger.ErrorWithFields("Failed to mark rating prompt sent", map[string]interface{}{
				"ticket_id": evt.TicketID,
				"error":     err.Error(),
			})
		}
		// The flag is written before the outbound send. A crash in
		// between loses the prompt; a duplicate prompt is the failure
		// mode this ordering exists to rule out.
		promptRating = flipped
	}

	if !realTransition && !promptRating {
		return duplicate(evt.Kind, evt.TicketID)
	}

	if realTransition {
		if err := e.tickets.UpdateStatus(ctx, ticket.ID, newStatus); err != nil {
			e.logger.ErrorWithFields("Failed to persist status transition", map[string]interface{}{
				"ticket_id":  evt.TicketID,
				"new_status": newStatus,
				"error":      err.Error(),
			})
			return ignored(evt.Kind, evt.TicketID, "status update failed")
		}
		ticket.Status = newStatus
	}

	if err := e.notifier.NotifyStatusChange(ctx, ticket, newStatus, promptRating); err != nil {
		// State is already committed; the notification is best-effort.
		e.logger.WarnWithFields("Status notification failed", map[string]interface{}{
			"ticket_id": evt.TicketID,
			"error":     err.Error(),
		})
	}

	return accepted(evt.Kind, evt.TicketID)
}

func (e *Engine) handleCommentEvent(ctx context.Context, evt CanonicalEvent, ticket *ports.Ticket) Outcome {
	if evt.CommentID == 0 || evt.CommentBody == "" {
		return ignored(evt.Kind, evt.TicketID, "comment id or body missing")
	}

	// Internal notes never surface to the chat user.
	if !evt.IsPublic {
		return ignored(evt.Kind, evt.TicketID, "private comment")
	}

	comment := &ports.Comment{
		ID:              uuid.New(),
		RemoteCommentID: evt.CommentID,
		TicketID:        ticket.ID,
		ChatUserID:      ticket.OwnerChatUserID,
		Body:            evt.CommentBody,
		FromRemote:      true,
	}

	inserted, err := e.comments.Insert(ctx, comment)
	if err != nil {
		e.logger.ErrorWithFields("Failed to store mirrored comment", map[string]interface{}{
			"ticket_id":  evt.TicketID,
			"comment_id": evt.CommentID,
			"error":      err.Error(),
		})
		return ignored(evt.Kind, evt.TicketID, "comment store failed")
	}
	if !inserted {
		return duplicate(evt.Kind, evt.TicketID)
	}

	if e.suppressCommentNotification(ctx, evt, ticket) {
		return accepted(evt.Kind, evt.TicketID)
	}

	if err := e.notifier.NotifyNewComment(ctx, ticket, evt.CommentBody, evt.AuthorName); err != nil {
		e.logger.WarnWithFields("Comment notification failed", map[string]interface{}{
			"ticket_id":  evt.TicketID,
			"comment_id": evt.CommentID,
			"error":      err.Error(),
		})
	}

	return accepted(evt.Kind, evt.TicketID)
}

// suppressCommentNotification decides whether the comment is recorded
// silently: the owner's own comment echoed back through the webhook,
// or the assignee's closing comment arriving together with a
// completion status change.
func (e *Engine) suppressCommentNotification(ctx context.Context, evt CanonicalEvent, ticket *ports.Ticket) bool {
	if evt.AuthorID == 0 {
		return false
	}

	owner, err := e.users.GetByChatUserID(ctx, ticket.OwnerChatUserID)
	if err == nil && owner.RemoteContactID != nil && *owner.RemoteContactID == evt.AuthorID {
		e.logger.DebugWithFields("Suppressing self-comment notification", map[string]interface{}{
			"ticket_id":  evt.TicketID,
			"comment_id": evt.CommentID,
		})
		return true
	}

	if ticket.AssigneeRemoteID != nil && *ticket.AssigneeRemoteID == evt.AuthorID &&
		e.isCompletion(e.canonicalStatus(evt.Status)) {
		e.logger.DebugWithFields("Suppressing assignee closing-comment notification", map[string]interface{}{
			"ticket_id":  evt.TicketID,
			"comment_id": evt.CommentID,
		})
		return true
	}

	return false
}

// canonicalStatus maps a raw remote status value through the
// configured alias table. Unmapped values pass through lowercased so a
// vocabulary drift degrades to a visible odd status, not a crash.
func (e *Engine) canonicalStatus(raw string) string {
	if raw == "" {
		return ""
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := e.status.Aliases[key]; ok {
		return mapped
	}
	return key
}

func (e *Engine) isCompletion(canonical string) bool {
	return e.status.Completion[canonical]
}
