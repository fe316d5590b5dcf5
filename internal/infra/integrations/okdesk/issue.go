package okdesk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yofomoose/okdesk-bot/internal/ports"
)

// issueEnvelope is the wire form of an issue; status needs custom
// handling because it arrives as a bare string or a {code,name} object
// depending on the endpoint.
type issueEnvelope struct {
	ID       int64                    `json:"id"`
	Number   json.Number              `json:"number"`
	Title    string                   `json:"title"`
	Status   json.RawMessage          `json:"status"`
	Assignee *ports.RemoteAssignee    `json:"assignee"`
	Client   *ports.RemoteIssueClient `json:"client"`
}

func (e *issueEnvelope) toIssue() *ports.RemoteIssue {
	return &ports.RemoteIssue{
		ID:       e.ID,
		Number:   e.Number.String(),
		Title:    e.Title,
		Status:   statusCode(e.Status),
		Assignee: e.Assignee,
		Client:   e.Client,
	}
}

// CreateIssue creates a remote ticket. The client sub-object is always
// present: sending an explicitly empty client and omitting the field
// behave differently upstream, and the explicit form is the one that
// keeps the ticket claimable later.
func (c *Client) CreateIssue(ctx context.Context, input ports.NewIssueInput) (*ports.RemoteIssue, error) {
	client := map[string]interface{}{}
	if input.ContactID != nil {
		client["contact"] = map[string]interface{}{"id": *input.ContactID}
	}
	if input.CompanyID != nil {
		client["company"] = map[string]interface{}{"id": *input.CompanyID}
	}

	payload := map[string]interface{}{
		"title":       input.Title,
		"description": input.Description,
		"client":      client,
	}

	var envelope issueEnvelope
	if err := c.makeRequest(ctx, "POST", "/issues", payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	if envelope.ID == 0 {
		return nil, fmt.Errorf("issue creation returned no id")
	}

	c.logger.InfoWithFields("Issue created", map[string]interface{}{
		"issue_id":    envelope.ID,
		"has_contact": input.ContactID != nil,
		"has_company": input.CompanyID != nil,
	})
	return envelope.toIssue(), nil
}

func (c *Client) GetIssue(ctx context.Context, issueID int64) (*ports.RemoteIssue, error) {
	var envelope issueEnvelope
	if err := c.makeRequest(ctx, "GET", fmt.Sprintf("/issues/%d", issueID), nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.ID == 0 {
		return nil, nil
	}
	return envelope.toIssue(), nil
}

// UpdateIssueClient rebinds the client sub-object of an existing
// ticket; used to repair tickets created before their owner resolved.
func (c *Client) UpdateIssueClient(ctx context.Context, issueID int64, contactID, companyID *int64) error {
	client := map[string]interface{}{}
	if contactID != nil {
		client["contact"] = map[string]interface{}{"id": *contactID}
	}
	if companyID != nil {
		client["company"] = map[string]interface{}{"id": *companyID}
	}

	payload := map[string]interface{}{"client": client}
	if err := c.makeRequest(ctx, "PATCH", fmt.Sprintf("/issues/%d", issueID), payload, nil); err != nil {
		return fmt.Errorf("failed to update issue client: %w", err)
	}
	return nil
}

func (c *Client) AddComment(ctx context.Context, issueID int64, input ports.NewCommentInput) (*ports.RemoteComment, error) {
	payload := map[string]interface{}{
		"content": input.Content,
		"public":  input.Public,
	}
	if input.AuthorID != nil {
		payload["author_id"] = *input.AuthorID
	}
	if input.AuthorType != "" {
		payload["author_type"] = input.AuthorType
	}

	var comment ports.RemoteComment
	if err := c.makeRequest(ctx, "POST", fmt.Sprintf("/issues/%d/comments", issueID), payload, &comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}

func (c *Client) ListComments(ctx context.Context, issueID int64) ([]ports.RemoteComment, error) {
	var raw json.RawMessage
	if err := c.makeRequest(ctx, "GET", fmt.Sprintf("/issues/%d/comments", issueID), nil, &raw); err != nil {
		return nil, err
	}

	var comments []ports.RemoteComment
	for _, item := range extractList(raw, "comments") {
		var comment ports.RemoteComment
		if err := json.Unmarshal(item, &comment); err != nil {
			continue
		}
		comments = append(comments, comment)
	}
	return comments, nil
}
