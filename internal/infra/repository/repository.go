package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

type Repositories struct {
	User    ports.UserRepository
	Ticket  ports.TicketRepository
	Comment ports.CommentRepository
}

func NewRepositories(db *sqlx.DB, logger *logger.Logger) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db, logger),
		Ticket:  NewTicketRepository(db, logger),
		Comment: NewCommentRepository(db, logger),
	}
}
