package ports

import (
	"time"

	"github.com/google/uuid"
)

// User is one chat identity. remote_contact_id and remote_company_id
// are filled in by the identity resolver once resolution succeeds and
// are never silently overwritten afterwards.
type User struct {
	ID              uuid.UUID `db:"id"`
	ChatUserID      int64     `db:"chat_user_id"`
	Username        *string   `db:"username"`
	UserType        string    `db:"user_type"` // "physical" or "legal"
	FullName        *string   `db:"full_name"`
	Phone           *string   `db:"phone"`
	TaxID           *string   `db:"tax_id"`
	CompanyName     *string   `db:"company_name"`
	RemoteContactID *int64    `db:"remote_contact_id"`
	RemoteCompanyID *int64    `db:"remote_company_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Ticket mirrors one remote helpdesk issue locally. Status carries the
// remote vocabulary; RatingPromptSent is monotonic false→true.
type Ticket struct {
	ID               uuid.UUID `db:"id"`
	RemoteTicketID   int64     `db:"remote_ticket_id"`
	OwnerChatUserID  int64     `db:"owner_chat_user_id"`
	Title            string    `db:"title"`
	Description      *string   `db:"description"`
	Status           string    `db:"status"`
	RemoteNumber     *string   `db:"remote_number"`
	RemoteURL        *string   `db:"remote_url"`
	AssigneeRemoteID *int64    `db:"assignee_remote_id"`
	LastMessageID    *int64    `db:"last_message_id"`
	Rating           *int      `db:"rating"`
	RatingComment    *string   `db:"rating_comment"`
	RatingPromptSent bool      `db:"rating_prompt_sent"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// Comment is one remote comment mirrored locally, keyed by the remote
// comment id for dedup.
type Comment struct {
	ID              uuid.UUID `db:"id"`
	RemoteCommentID int64     `db:"remote_comment_id"`
	TicketID        uuid.UUID `db:"ticket_id"`
	ChatUserID      int64     `db:"chat_user_id"`
	Body            string    `db:"body"`
	FromRemote      bool      `db:"from_remote"`
	CreatedAt       time.Time `db:"created_at"`
}

// RemoteContact is a contact record in the helpdesk directory.
type RemoteContact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	CompanyID *int64 `json:"company_id"`
}

// RemoteCompany is a company record in the helpdesk directory. The tax
// id may live in a top-level field, in the parameters list, or in the
// free-form custom parameters map, depending on deployment.
type RemoteCompany struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	INN              string                 `json:"inn"`
	LegalINN         string                 `json:"legal_inn"`
	TaxNumber        string                 `json:"tax_number"`
	Parameters       []CompanyParameter     `json:"parameters"`
	CustomParameters map[string]interface{} `json:"custom_parameters"`
}

type CompanyParameter struct {
	Code  string      `json:"code"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// RemoteIssue is a helpdesk ticket as returned by the remote API.
type RemoteIssue struct {
	ID       int64              `json:"id"`
	Number   string             `json:"number"`
	Title    string             `json:"title"`
	Status   string             `json:"-"`
	Assignee *RemoteAssignee    `json:"assignee"`
	Client   *RemoteIssueClient `json:"client"`
}

type RemoteAssignee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RemoteIssueClient struct {
	Contact *RemoteContactRef `json:"contact"`
	Company *RemoteCompanyRef `json:"company"`
}

type RemoteContactRef struct {
	ID int64 `json:"id"`
}

type RemoteCompanyRef struct {
	ID int64 `json:"id"`
}

// RemoteComment is a helpdesk comment as returned by the remote API.
type RemoteComment struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	Public  bool   `json:"public"`
}

// NewContactInput carries the fields for provisioning a contact.
type NewContactInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Comment   string
	CompanyID *int64
}

// NewCompanyInput carries the fields for provisioning a company.
type NewCompanyInput struct {
	Name  string
	TaxID string
}

// NewIssueInput carries the fields for creating a remote ticket. The
// client binding is always sent, even when both ids are absent: the
// remote system treats an omitted client differently from an
// explicitly empty one.
type NewIssueInput struct {
	Title       string
	Description string
	ContactID   *int64
	CompanyID   *int64
}

// NewCommentInput carries the fields for posting a comment.
type NewCommentInput struct {
	Content    string
	Public     bool
	AuthorID   *int64
	AuthorType string
}

// InlineButton is one button of a chat keyboard row.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Keyboard is an inline keyboard: rows of buttons.
type Keyboard [][]InlineButton
