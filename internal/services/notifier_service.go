package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

// NotifierService renders ticket events into chat messages. Status
// updates reuse one pinned message per ticket: edit the last status
// message when there is one, send a fresh message otherwise.
type NotifierService struct {
	status  config.StatusConfig
	bot     ports.BotSender
	tickets ports.TicketRepository
	logger  *logger.Logger
}

func NewNotifierService(
	status config.StatusConfig,
	bot ports.BotSender,
	tickets ports.TicketRepository,
	logger *logger.Logger,
) *NotifierService {
	return &NotifierService{
		status:  status,
		bot:     bot,
		tickets: tickets,
		logger:  logger.WithModule("notifier"),
	}
}

// NotifyStatusChange tells the ticket owner about a status transition.
// When promptRating is set the message carries a 1-5 rating keyboard;
// the caller has already guaranteed the prompt goes out at most once.
func (s *NotifierService) NotifyStatusChange(ctx context.Context, ticket *ports.Ticket, newStatus string, promptRating bool) error {
	text := s.renderStatus(ticket, newStatus)

	var keyboard ports.Keyboard
	if promptRating {
		text += "\n\nПожалуйста, оцените качество решения:"
		keyboard = ratingKeyboard(ticket.RemoteTicketID)
	}

	return s.ShowOrUpdateTicketStatus(ctx, ticket, text, keyboard)
}

// NotifyNewComment forwards a public remote comment to the ticket
// owner. Comments are always fresh messages, never edits.
func (s *NotifierService) NotifyNewComment(ctx context.Context, ticket *ports.Ticket, body, authorName string) error {
	header := fmt.Sprintf("💬 Новый комментарий по заявке %s", s.ticketRef(ticket))
	if authorName != "" {
		header += fmt.Sprintf(" от %s", authorName)
	}

	_, err := s.bot.SendMessage(ctx, ticket.OwnerChatUserID, header+":\n\n"+body, nil)
	if err != nil {
		return fmt.Errorf("send comment notification: %w", err)
	}
	return nil
}

// ShowOrUpdateTicketStatus edits the ticket's last status message in
// place, falling back to a fresh send when there is nothing to edit or
// the edit fails (the message may have been deleted by the user). The
// id of whichever message ends up current is persisted.
func (s *NotifierService) ShowOrUpdateTicketStatus(ctx context.Context, ticket *ports.Ticket, text string, keyboard ports.Keyboard) error {
	if ticket.LastMessageID != nil {
		err := s.bot.EditMessage(ctx, ticket.OwnerChatUserID, *ticket.LastMessageID, text, keyboard)
		if err == nil {
			return nil
		}
		s.logger.DebugWithFields("Edit failed, sending fresh status message", map[string]interface{}{
			"remote_ticket_id": ticket.RemoteTicketID,
			"message_id":       *ticket.LastMessageID,
			"error":            err.Error(),
		})
	}

	messageID, err := s.bot.SendMessage(ctx, ticket.OwnerChatUserID, text, keyboard)
	if err != nil {
		return fmt.Errorf("send status message: %w", err)
	}

	if err := s.tickets.SetLastMessageID(ctx, ticket.ID, messageID); err != nil {
		s.logger.WarnWithFields("Failed to persist status message id", map[string]interface{}{
			"remote_ticket_id": ticket.RemoteTicketID,
			"message_id":       messageID,
			"error":            err.Error(),
		})
	}
	ticket.LastMessageID = &messageID

	return nil
}

func (s *NotifierService) renderStatus(ticket *ports.Ticket, status string) string {
	label, ok := s.status.Labels[status]
	if !ok {
		label = "Статус: " + status
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Заявка %s: %s", s.ticketRef(ticket), ticket.Title))
	if ticket.RemoteURL != nil {
		b.WriteString("\n")
		b.WriteString(*ticket.RemoteURL)
	}
	return b.String()
}

func (s *NotifierService) ticketRef(ticket *ports.Ticket) string {
	if ticket.RemoteNumber != nil && *ticket.RemoteNumber != "" {
		return "№" + *ticket.RemoteNumber
	}
	return fmt.Sprintf("#%d", ticket.RemoteTicketID)
}

func ratingKeyboard(remoteTicketID int64) ports.Keyboard {
	row := make([]ports.InlineButton, 0, 5)
	for rating := 1; rating <= 5; rating++ {
		row = append(row, ports.InlineButton{
			Text:         strings.Repeat("⭐", rating),
			CallbackData: fmt.Sprintf("rate_%d_%d", remoteTicketID, rating),
		})
	}
	return ports.Keyboard{row}
}
