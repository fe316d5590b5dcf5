package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/pkg/errors"
)

type fakeUserRepo struct {
	users map[int64]*ports.User
}

func newFakeUserRepo(users ...*ports.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]*ports.User)}
	for _, user := range users {
		repo.users[user.ChatUserID] = user
	}
	return repo
}

func (r *fakeUserRepo) GetByChatUserID(ctx context.Context, chatUserID int64) (*ports.User, error) {
	user, ok := r.users[chatUserID]
	if !ok {
		return nil, fmt.Errorf("chat user %d: %w", chatUserID, errors.ErrUserNotFound)
	}
	return user, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *ports.User) error {
	r.users[user.ChatUserID] = user
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *ports.User) error {
	return nil
}

func (r *fakeUserRepo) SetRemoteContactID(ctx context.Context, chatUserID int64, contactID int64) error {
	user := r.users[chatUserID]
	if user.RemoteContactID == nil {
		user.RemoteContactID = &contactID
	}
	return nil
}

func (r *fakeUserRepo) SetRemoteCompanyID(ctx context.Context, chatUserID int64, companyID int64) error {
	user := r.users[chatUserID]
	if user.RemoteCompanyID == nil {
		user.RemoteCompanyID = &companyID
	}
	return nil
}

type fakeTicketRepo struct {
	tickets        map[int64]*ports.Ticket
	lastMessageIDs map[uuid.UUID]int64
}

func newFakeTicketRepo(tickets ...*ports.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{
		tickets:        make(map[int64]*ports.Ticket),
		lastMessageIDs: make(map[uuid.UUID]int64),
	}
	for _, ticket := range tickets {
		repo.tickets[ticket.RemoteTicketID] = ticket
	}
	return repo
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *ports.Ticket) error {
	r.tickets[ticket.RemoteTicketID] = ticket
	return nil
}

func (r *fakeTicketRepo) GetByRemoteID(ctx context.Context, remoteTicketID int64) (*ports.Ticket, error) {
	ticket, ok := r.tickets[remoteTicketID]
	if !ok {
		return nil, fmt.Errorf("remote ticket %d: %w", remoteTicketID, errors.ErrTicketNotFound)
	}
	return ticket, nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*ports.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			return ticket, nil
		}
	}
	return nil, fmt.Errorf("ticket %s: %w", id.String(), errors.ErrTicketNotFound)
}

func (r *fakeTicketRepo) ListByOwner(ctx context.Context, chatUserID int64) ([]*ports.Ticket, error) {
	var tickets []*ports.Ticket
	for _, ticket := range r.tickets {
		if ticket.OwnerChatUserID == chatUserID {
			tickets = append(tickets, ticket)
		}
	}
	return tickets, nil
}

func (r *fakeTicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	ticket, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ticket.Status = status
	return nil
}

func (r *fakeTicketRepo) UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeRemoteID *int64) error {
	return nil
}

func (r *fakeTicketRepo) SetLastMessageID(ctx context.Context, id uuid.UUID, messageID int64) error {
	r.lastMessageIDs[id] = messageID
	return nil
}

func (r *fakeTicketRepo) SetRating(ctx context.Context, id uuid.UUID, rating int, comment *string) error {
	ticket, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ticket.Rating = &rating
	ticket.RatingComment = comment
	return nil
}

func (r *fakeTicketRepo) MarkRatingPromptSent(ctx context.Context, id uuid.UUID) (bool, error) {
	ticket, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if ticket.RatingPromptSent || ticket.Rating != nil {
		return false, nil
	}
	ticket.RatingPromptSent = true
	return true, nil
}

type fakeCommentRepo struct {
	inserted []*ports.Comment
}

func (r *fakeCommentRepo) Insert(ctx context.Context, comment *ports.Comment) (bool, error) {
	for _, existing := range r.inserted {
		if existing.RemoteCommentID == comment.RemoteCommentID {
			return false, nil
		}
	}
	r.inserted = append(r.inserted, comment)
	return true, nil
}

func (r *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*ports.Comment, error) {
	return r.inserted, nil
}

// fakeRemote implements both the directory and ticket surfaces of the
// helpdesk API.
type fakeRemote struct {
	contactsByPhone map[string]*ports.RemoteContact
	companiesByTax  map[string]*ports.RemoteCompany

	contactCreates int
	companyCreates int
	issueCreates   int

	nextContactID int64
	nextCompanyID int64
	nextIssueID   int64

	issueClients map[int64]ports.NewIssueInput
	comments     []ports.NewCommentInput

	unavailable bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		contactsByPhone: make(map[string]*ports.RemoteContact),
		companiesByTax:  make(map[string]*ports.RemoteCompany),
		issueClients:    make(map[int64]ports.NewIssueInput),
		nextContactID:   100,
		nextCompanyID:   200,
		nextIssueID:     300,
	}
}

func (f *fakeRemote) FindContactByPhone(ctx context.Context, phone string) (*ports.RemoteContact, error) {
	if f.unavailable {
		return nil, errors.ErrRemoteUnavailable
	}
	return f.contactsByPhone[phone], nil
}

func (f *fakeRemote) CreateContact(ctx context.Context, input ports.NewContactInput) (*ports.RemoteContact, error) {
	if f.unavailable {
		return nil, errors.ErrRemoteUnavailable
	}
	f.contactCreates++
	f.nextContactID++
	contact := &ports.RemoteContact{
		ID:        f.nextContactID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}
	f.contactsByPhone[input.Phone] = contact
	return contact, nil
}

func (f *fakeRemote) FindCompanyByTaxID(ctx context.Context, taxID string) (*ports.RemoteCompany, error) {
	if f.unavailable {
		return nil, errors.ErrRemoteUnavailable
	}
	return f.companiesByTax[taxID], nil
}

func (f *fakeRemote) CreateCompany(ctx context.Context, input ports.NewCompanyInput) (*ports.RemoteCompany, error) {
	if f.unavailable {
		return nil, errors.ErrRemoteUnavailable
	}
	f.companyCreates++
	f.nextCompanyID++
	company := &ports.RemoteCompany{ID: f.nextCompanyID, Name: input.Name, INN: input.TaxID}
	f.companiesByTax[input.TaxID] = company
	return company, nil
}

func (f *fakeRemote) CreateIssue(ctx context.Context, input ports.NewIssueInput) (*ports.RemoteIssue, error) {
	if f.unavailable {
		return nil, errors.ErrRemoteUnavailable
	}
	f.issueCreates++
	f.nextIssueID++
	f.issueClients[f.nextIssueID] = input
	return &ports.RemoteIssue{
		ID:     f.nextIssueID,
		Number: fmt.Sprintf("%d", f.nextIssueID),
		Title:  input.Title,
		Status: "opened",
	}, nil
}

func (f *fakeRemote) GetIssue(ctx context.Context, issueID int64) (*ports.RemoteIssue, error) {
	if _, ok := f.issueClients[issueID]; !ok {
		return nil, nil
	}
	return &ports.RemoteIssue{ID: issueID, Status: "opened"}, nil
}

func (f *fakeRemote) UpdateIssueClient(ctx context.Context, issueID int64, contactID, companyID *int64) error {
	if f.unavailable {
		return errors.ErrRemoteUnavailable
	}
	input := f.issueClients[issueID]
	input.ContactID = contactID
	input.CompanyID = companyID
	f.issueClients[issueID] = input
	return nil
}

func (f *fakeRemote) AddComment(ctx context.Context, issueID int64, input ports.NewCommentInput) (*ports.RemoteComment, error) {
	if f.unavailable {
		return nil, errors.ErrRemoteUnavailable
	}
	f.comments = append(f.comments, input)
	return &ports.RemoteComment{ID: int64(len(f.comments)), Content: input.Content, Public: input.Public}, nil
}

func (f *fakeRemote) ListComments(ctx context.Context, issueID int64) ([]ports.RemoteComment, error) {
	return nil, nil
}

type sentMessage struct {
	chatID   int64
	text     string
	keyboard ports.Keyboard
}

type fakeBot struct {
	sent          []sentMessage
	edits         []sentMessage
	nextMessageID int64
	failEdits     bool
}

func (b *fakeBot) SendMessage(ctx context.Context, chatID int64, text string, keyboard ports.Keyboard) (int64, error) {
	b.sent = append(b.sent, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	b.nextMessageID++
	return b.nextMessageID, nil
}

func (b *fakeBot) EditMessage(ctx context.Context, chatID int64, messageID int64, text string, keyboard ports.Keyboard) error {
	if b.failEdits {
		return errors.ErrBotSendFailed
	}
	b.edits = append(b.edits, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}
