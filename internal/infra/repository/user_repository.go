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

type userRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

func NewUserRepository(db *sqlx.DB, logger *logger.Logger) ports.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) GetByChatUserID(ctx context.Context, chatUserID int64) (*ports.User, error) {
	var user ports.User
	query := `SELECT * FROM users WHERE chat_user_id = $1`

	err := r.db.GetContext(ctx, &user, query, chatUserID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chat user %d: %w", chatUserID, errors.ErrUserNotFound)
		}
		r.logger.ErrorWithFields("Failed to get user", map[string]interface{}{
			"chat_user_id": chatUserID,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *ports.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, chat_user_id, username, user_type, full_name, phone,
			tax_id, company_name, remote_contact_id, remote_company_id,
			created_at, updated_at
		) VALUES (
			:id, :chat_user_id, :username, :user_type, :full_name, :phone,
			:tax_id, :company_name, :remote_contact_id, :remote_company_id,
			:created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		r.logger.ErrorWithFields("Failed to create user", map[string]interface{}{
			"chat_user_id": user.ChatUserID,
			"error":        err.Error(),
		})
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.InfoWithFields("User created", map[string]interface{}{
		"chat_user_id": user.ChatUserID,
		"user_type":    user.UserType,
	})
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *ports.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			username = :username,
			user_type = :user_type,
			full_name = :full_name,
			phone = :phone,
			tax_id = :tax_id,
			company_name = :company_name,
			updated_at = :updated_at
		WHERE chat_user_id = :chat_user_id
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("chat user %d: %w", user.ChatUserID, errors.ErrUserNotFound)
	}

	return nil
}

// SetRemoteContactID writes the resolved contact id only when the
// column is still NULL. A no-op on an already-resolved user is not an
// error; the stored binding wins.
func (r *userRepository) SetRemoteContactID(ctx context.Context, chatUserID int64, contactID int64) error {
	query := `
		UPDATE users SET remote_contact_id = $2, updated_at = NOW()
		WHERE chat_user_id = $1 AND remote_contact_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, chatUserID, contactID)
	if err != nil {
		return fmt.Errorf("failed to set remote contact id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check contact id write: %w", err)
	}
	if rows == 0 {
		r.logger.DebugWithFields("Remote contact id already set, keeping existing", map[string]interface{}{
			"chat_user_id": chatUserID,
			"contact_id":   contactID,
		})
	}

	return nil
}

func (r *userRepository) SetRemoteCompanyID(ctx context.Context, chatUserID int64, companyID int64) error {
	query := `
		UPDATE users SET remote_company_id = $2, updated_at = NOW()
		WHERE chat_user_id = $1 AND remote_company_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, chatUserID, companyID)
	if err != nil {
		return fmt.Errorf("failed to set remote company id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check company id write: %w", err)
	}
	if rows == 0 {
		r.logger.DebugWithFields("Remote company id already set, keeping existing", map[string]interface{}{
			"chat_user_id": chatUserID,
			"company_id":   companyID,
		})
	}

	return nil
}
