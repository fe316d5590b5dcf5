package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

type commentRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

func NewCommentRepository(db *sqlx.DB, logger *logger.Logger) ports.CommentRepository {
	return &commentRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a mirrored comment. ON CONFLICT on the remote comment
// id makes redelivery a no-op; the returned bool is the dedup signal
// the sync engine keys its notification on.
func (r *commentRepository) Insert(ctx context.Context, comment *ports.Comment) (bool, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO comments (
			id, remote_comment_id, ticket_id, chat_user_id, body,
			from_remote, created_at
		) VALUES (
			:id, :remote_comment_id, :ticket_id, :chat_user_id, :body,
			:from_remote, :created_at
		)
		ON CONFLICT (remote_comment_id) DO NOTHING
	`

	result, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		r.logger.ErrorWithFields("Failed to insert comment", map[string]interface{}{
			"remote_comment_id": comment.RemoteCommentID,
			"error":             err.Error(),
		})
		return false, fmt.Errorf("failed to insert comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check comment insert: %w", err)
	}

	return rows > 0, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*ports.Comment, error) {
	var comments []*ports.Comment
	query := `SELECT * FROM comments WHERE ticket_id = $1 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &comments, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
