package ports

import "context"

// DirectoryClient is the remote helpdesk directory surface. Lookups
// return (nil, nil) for not-found; errors are reserved for transport
// failures (RemoteUnavailable). No retries at this layer.
type DirectoryClient interface {
	FindContactByPhone(ctx context.Context, phone string) (*RemoteContact, error)
	CreateContact(ctx context.Context, input NewContactInput) (*RemoteContact, error)

	FindCompanyByTaxID(ctx context.Context, taxID string) (*RemoteCompany, error)
	CreateCompany(ctx context.Context, input NewCompanyInput) (*RemoteCompany, error)
}

// TicketClient is the remote helpdesk ticket surface.
type TicketClient interface {
	CreateIssue(ctx context.Context, input NewIssueInput) (*RemoteIssue, error)
	GetIssue(ctx context.Context, issueID int64) (*RemoteIssue, error)
	UpdateIssueClient(ctx context.Context, issueID int64, contactID, companyID *int64) error

	AddComment(ctx context.Context, issueID int64, input NewCommentInput) (*RemoteComment, error)
	ListComments(ctx context.Context, issueID int64) ([]RemoteComment, error)
}
