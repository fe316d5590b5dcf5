package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/pkg/errors"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

type ticketRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

func NewTicketRepository(db *sqlx.DB, logger *logger.Logger) ports.TicketRepository {
	return &ticketRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *ports.Ticket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	query := `
		INSERT INTO tickets (
			id, remote_ticket_id, owner_chat_user_id, title, description,
			status, remote_number, remote_url, assignee_remote_id,
			last_message_id, rating, rating_comment, rating_prompt_sent,
			created_at, updated_at
		) VALUES (
			:id, :remote_ticket_id, :owner_chat_user_id, :title, :description,
			:status, :remote_number, :remote_url, :assignee_remote_id,
			:last_message_id, :rating, :rating_comment, :rating_prompt_sent,
			:created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, ticket)
	if err != nil {
		r.logger.ErrorWithFields("Failed to create ticket", map[string]interface{}{
			"remote_ticket_id": ticket.RemoteTicketID,
			"error":            err.Error(),
		})
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	r.logger.InfoWithFields("Ticket created", map[string]interface{}{
		"ticket_id":        ticket.ID.String(),
		"remote_ticket_id": ticket.RemoteTicketID,
	})
	return nil
}

func (r *ticketRepository) GetByRemoteID(ctx context.Context, remoteTicketID int64) (*ports.Ticket, error) {
	var ticket ports.Ticket
	query := `SELECT * FROM tickets WHERE remote_ticket_id = $1`

	err := r.db.GetContext(ctx, &ticket, query, remoteTicketID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("remote ticket %d: %w", remoteTicketID, errors.ErrTicketNotFound)
		}
		return nil, fmt.Errorf("failed to get ticket by remote id: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id uuid.UUID) (*ports.Ticket, error) {
	var ticket ports.Ticket
	query := `SELECT * FROM tickets WHERE id = $1`

	err := r.db.GetContext(ctx, &ticket, query, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ticket %s: %w", id.String(), errors.ErrTicketNotFound)
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, chatUserID int64) ([]*ports.Ticket, error) {
	var tickets []*ports.Ticket
	query := `SELECT * FROM tickets WHERE owner_chat_user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &tickets, query, chatUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	return tickets, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE tickets SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("ticket %s: %w", id.String(), errors.ErrTicketNotFound)
	}

	return nil
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeRemoteID *int64) error {
	query := `UPDATE tickets SET assignee_remote_id = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, assigneeRemoteID)
	if err != nil {
		return fmt.Errorf("failed to update ticket assignee: %w", err)
	}

	return nil
}

func (r *ticketRepository) SetLastMessageID(ctx context.Context, id uuid.UUID, messageID int64) error {
	query := `UPDATE tickets SET last_message_id = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, messageID)
	if err != nil {
		return fmt.Errorf("failed to set last message id: %w", err)
	}

	return nil
}

func (r *ticketRepository) SetRating(ctx context.Context, id uuid.UUID, rating int, comment *string) error {
	query := `
		UPDATE tickets SET rating = $2, rating_comment = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, rating, comment)
	if err != nil {
		return fmt.Errorf("failed to set rating: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rating write: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("ticket %s: %w", id.String(), errors.ErrTicketNotFound)
	}

	r.logger.InfoWithFields("Rating stored", map[string]interface{}{
		"ticket_id": id.String(),
		"rating":    rating,
	})
	return nil
}

// MarkRatingPromptSent flips the flag in a single conditional UPDATE
// so concurrent duplicate deliveries race on the database, not in
// application code. Exactly one caller observes the flip.
func (r *ticketRepository) MarkRatingPromptSent(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE tickets SET rating_prompt_sent = TRUE, updated_at = NOW()
		WHERE id = $1 AND rating_prompt_sent = FALSE AND rating IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark rating prompt sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rating prompt flip: %w", err)
	}

	return rows > 0, nil
}
