package ports

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the local user store. All remote-id writes go
// through the two Set methods so the no-silent-overwrite invariant is
// enforced in one place.
type UserRepository interface {
	GetByChatUserID(ctx context.Context, chatUserID int64) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateProfile(ctx context.Context, user *User) error

	// SetRemoteContactID persists a freshly resolved contact id. It
	// only writes when the column is still NULL; an already-resolved
	// user keeps its id unless re-resolution is explicit.
	SetRemoteContactID(ctx context.Context, chatUserID int64, contactID int64) error
	SetRemoteCompanyID(ctx context.Context, chatUserID int64, companyID int64) error
}

// TicketRepository is the local ticket store.
type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByRemoteID(ctx context.Context, remoteTicketID int64) (*Ticket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListByOwner(ctx context.Context, chatUserID int64) ([]*Ticket, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeRemoteID *int64) error
	SetLastMessageID(ctx context.Context, id uuid.UUID, messageID int64) error
	SetRating(ctx context.Context, id uuid.UUID, rating int, comment *string) error

	// MarkRatingPromptSent flips rating_prompt_sent to true and reports
	// whether this call performed the flip. It is a single atomic
	// statement: two concurrent duplicate deliveries cannot both
	// observe "not yet sent". The flag is never reset, even on reopen.
	MarkRatingPromptSent(ctx context.Context, id uuid.UUID) (bool, error)
}

// CommentRepository is the local comment mirror.
type CommentRepository interface {
	// Insert stores the comment unless its remote id is already
	// present, and reports whether a row was actually written.
	Insert(ctx context.Context, comment *Comment) (bool, error)
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*Comment, error)
}
