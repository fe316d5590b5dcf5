package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/pkg/errors"
	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

// maxDerivedTitleLen caps titles derived from free-form descriptions.
const maxDerivedTitleLen = 100

// CreateTicketInput carries a ticket request from the chat side.
// ContactID and CompanyID are explicit binding hints; when set they
// win over identity resolution.
type CreateTicketInput struct {
	ChatUserID  int64
	Title       string
	Description string
	ContactID   *int64
	CompanyID   *int64
}

// TicketService orchestrates ticket creation and outbound comments
// between the local store, the identity resolver and the remote
// helpdesk.
type TicketService struct {
	cfg      *config.Config
	users    ports.UserRepository
	tickets  ports.TicketRepository
	comments ports.CommentRepository
	resolver *ResolverService
	remote   ports.TicketClient
	logger   *logger.Logger
}

func NewTicketService(
	cfg *config.Config,
	users ports.UserRepository,
	tickets ports.TicketRepository,
	comments ports.CommentRepository,
	resolver *ResolverService,
	remote ports.TicketClient,
	logger *logger.Logger,
) *TicketService {
	return &TicketService{
		cfg:      cfg,
		users:    users,
		tickets:  tickets,
		comments: comments,
		resolver: resolver,
		remote:   remote,
		logger:   logger.WithModule("tickets"),
	}
}

// CreateTicket creates a remote ticket and mirrors it locally.
// Binding precedence: explicit hint, then identity resolution, then
// none. Resolution failure degrades to an unbound ticket rather than
// blocking creation; only remote unavailability aborts.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*ports.Ticket, error) {
	user, err := s.users.GetByChatUserID(ctx, input.ChatUserID)
	if err != nil {
		return nil, fmt.Errorf("load ticket owner: %w", err)
	}

	contactID, companyID := s.resolveBinding(ctx, user, input)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DeriveTitle(input.Description)
	}

	issue, err := s.remote.CreateIssue(ctx, ports.NewIssueInput{
		Title:       title,
		Description: input.Description,
		ContactID:   contactID,
		CompanyID:   companyID,
	})
	if err != nil {
		return nil, fmt.Errorf("create remote issue: %w", err)
	}

	ticket := &ports.Ticket{
		ID:              uuid.New(),
		RemoteTicketID:  issue.ID,
		OwnerChatUserID: input.ChatUserID,
		Title:           title,
		Description:     &input.Description,
		Status:          "opened",
	}
	if issue.Status != "" {
		ticket.Status = issue.Status
	}
	if issue.Number != "" {
		number := issue.Number
		ticket.RemoteNumber = &number
	}
	remoteURL := fmt.Sprintf("%s/issues/%d", s.cfg.PortalBaseURL(), issue.ID)
	ticket.RemoteURL = &remoteURL
	if issue.Assignee != nil {
		ticket.AssigneeRemoteID = &issue.Assignee.ID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		// The remote ticket exists but is not tracked; operators can
		// recover it by number from the log line below.
		s.logger.ErrorWithFields("Remote ticket created but local mirror failed", map[string]interface{}{
			"remote_ticket_id": issue.ID,
			"chat_user_id":     input.ChatUserID,
			"error":            err.Error(),
		})
		return nil, fmt.Errorf("persist ticket: %w", err)
	}

	s.logger.InfoWithFields("Ticket created", map[string]interface{}{
		"remote_ticket_id": issue.ID,
		"chat_user_id":     input.ChatUserID,
		"bound_contact":    contactID != nil,
		"bound_company":    companyID != nil,
	})
	return ticket, nil
}

// resolveBinding computes the client binding for a new ticket.
// Explicit hints short-circuit resolution entirely.
func (s *TicketService) resolveBinding(ctx context.Context, user *ports.User, input CreateTicketInput) (*int64, *int64) {
	if input.ContactID != nil || input.CompanyID != nil {
		return input.ContactID, input.CompanyID
	}

	var contactID, companyID *int64

	if user.UserType == "legal" {
		id, err := s.resolver.ResolveCompany(ctx, user, false)
		if err != nil {
			s.logger.WarnWithFields("Company resolution failed, creating unbound", map[string]interface{}{
				"chat_user_id": user.ChatUserID,
				"error":        err.Error(),
			})
		} else {
			companyID = &id
		}
	}

	id, err := s.resolver.ResolveContact(ctx, user)
	if err != nil {
		s.logger.WarnWithFields("Contact resolution failed, creating unbound", map[string]interface{}{
			"chat_user_id": user.ChatUserID,
			"error":        err.Error(),
		})
	} else {
		contactID = &id
	}

	return contactID, companyID
}

// RepairClientBinding re-resolves the owner of a ticket created
// unbound and pushes the binding to the remote side.
func (s *TicketService) RepairClientBinding(ctx context.Context, ticket *ports.Ticket) error {
	user, err := s.users.GetByChatUserID(ctx, ticket.OwnerChatUserID)
	if err != nil {
		return fmt.Errorf("load ticket owner: %w", err)
	}

	contactID, err := s.resolver.ResolveContact(ctx, user)
	if err != nil {
		return fmt.Errorf("resolve contact for rebind: %w", err)
	}

	if err := s.remote.UpdateIssueClient(ctx, ticket.RemoteTicketID, &contactID, user.RemoteCompanyID); err != nil {
		return fmt.Errorf("rebind remote issue: %w", err)
	}

	s.logger.InfoWithFields("Ticket client binding repaired", map[string]interface{}{
		"remote_ticket_id": ticket.RemoteTicketID,
		"contact_id":       contactID,
	})
	return nil
}

// AddComment posts a user's chat message to the remote ticket. The
// comment is attributed to the user's resolved contact when one
// exists; otherwise it goes out under the configured system author
// with the sender named in the body.
func (s *TicketService) AddComment(ctx context.Context, ticket *ports.Ticket, chatUserID int64, body string) error {
	user, err := s.users.GetByChatUserID(ctx, chatUserID)
	if err != nil {
		return fmt.Errorf("load comment author: %w", err)
	}

	input := ports.NewCommentInput{
		Content: body,
		Public:  true,
	}
	if user.RemoteContactID != nil {
		input.AuthorID = user.RemoteContactID
		input.AuthorType = "contact"
	} else {
		systemID := int64(s.cfg.OkdeskSystemAuthorID)
		input.AuthorID = &systemID
		input.AuthorType = "employee"
		input.Content = fmt.Sprintf("%s:\n%s", displayName(user), body)
	}

	remote, err := s.remote.AddComment(ctx, ticket.RemoteTicketID, input)
	if err != nil {
		return fmt.Errorf("post comment: %w", err)
	}

	comment := &ports.Comment{
		ID:              uuid.New(),
		RemoteCommentID: remote.ID,
		TicketID:        ticket.ID,
		ChatUserID:      chatUserID,
		Body:            body,
		FromRemote:      false,
	}
	// The outbound comment will echo back through the webhook; storing
	// its remote id now is what makes that echo a duplicate.
	if _, err := s.comments.Insert(ctx, comment); err != nil {
		s.logger.WarnWithFields("Failed to mirror outbound comment", map[string]interface{}{
			"remote_ticket_id":  ticket.RemoteTicketID,
			"remote_comment_id": remote.ID,
			"error":             err.Error(),
		})
	}

	return nil
}

// SubmitRating records a 1-5 rating for a completed ticket and posts
// it to the remote side as an internal note.
func (s *TicketService) SubmitRating(ctx context.Context, ticket *ports.Ticket, rating int, comment *string) error {
	if rating < 1 || rating > 5 {
		return errors.NewWithDetails(400, "Invalid rating", fmt.Sprintf("rating %d out of range", rating))
	}

	if err := s.tickets.SetRating(ctx, ticket.ID, rating, comment); err != nil {
		return fmt.Errorf("store rating: %w", err)
	}

	body := fmt.Sprintf("Оценка клиента: %d/5", rating)
	if comment != nil && strings.TrimSpace(*comment) != "" {
		body += "\n" + strings.TrimSpace(*comment)
	}
	systemID := int64(s.cfg.OkdeskSystemAuthorID)
	if _, err := s.remote.AddComment(ctx, ticket.RemoteTicketID, ports.NewCommentInput{
		Content:    body,
		Public:     false,
		AuthorID:   &systemID,
		AuthorType: "employee",
	}); err != nil {
		// The rating is stored; losing the remote note is tolerable.
		s.logger.WarnWithFields("Failed to post rating note", map[string]interface{}{
			"remote_ticket_id": ticket.RemoteTicketID,
			"error":            err.Error(),
		})
	}

	return nil
}

func (s *TicketService) ListUserTickets(ctx context.Context, chatUserID int64) ([]*ports.Ticket, error) {
	return s.tickets.ListByOwner(ctx, chatUserID)
}

func (s *TicketService) GetByRemoteID(ctx context.Context, remoteTicketID int64) (*ports.Ticket, error) {
	return s.tickets.GetByRemoteID(ctx, remoteTicketID)
}

// DeriveTitle builds a ticket title from a free-form description: the
// first line, truncated on a word boundary where possible.
func DeriveTitle(description string) string {
	line := strings.TrimSpace(description)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" {
		return "Заявка из чата"
	}

	runes := []rune(line)
	if len(runes) <= maxDerivedTitleLen {
		return line
	}

	cut := string(runes[:maxDerivedTitleLen])
	if idx := strings.LastIndexByte(cut, ' '); idx > maxDerivedTitleLen/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}

func displayName(user *ports.User) string {
	if user.FullName != nil && strings.TrimSpace(*user.FullName) != "" {
		return strings.TrimSpace(*user.FullName)
	}
	if user.Username != nil && *user.Username != "" {
		return "@" + *user.Username
	}
	return fmt.Sprintf("User %d", user.ChatUserID)
}
