package okdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/yofomoose/okdesk-bot/internal/core/ident"
	"github.com/yofomoose/okdesk-bot/internal/ports"
)

// FindContactByPhone searches the contact directory for a phone
// number. Strategy, first hit wins:
//  1. server-side search with the literal input;
//  2. server-side search with each canonical candidate form;
//  3. one bounded bulk listing scanned client-side by last-10-digit
//     equivalence.
func (c *Client) FindContactByPhone(ctx context.Context, phone string) (*ports.RemoteContact, error) {
	if phone == "" {
		return nil, nil
	}

	probes := []string{phone}
	for _, candidate := range ident.PhoneCandidates(phone) {
		if candidate != phone {
			probes = append(probes, candidate)
		}
	}

	for _, probe := range probes {
		contact, err := c.searchContactByPhoneParam(ctx, probe)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			return contact, nil
		}
	}

	return c.scanContactsByPhone(ctx, phone)
}

func (c *Client) searchContactByPhoneParam(ctx context.Context, phone string) (*ports.RemoteContact, error) {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("/contacts?phone=%s", url.QueryEscape(phone))
	if err := c.makeRequest(ctx, "GET", endpoint, nil, &raw); err != nil {
		return nil, err
	}

	for _, item := range extractList(raw, "contacts") {
		var contact ports.RemoteContact
		if err := json.Unmarshal(item, &contact); err != nil {
			continue
		}
		// The endpoint is a loose search; confirm the match before
		// trusting it.
		if contact.ID != 0 && ident.PhonesEqual(contact.Phone, phone) {
			return &contact, nil
		}
	}

	return nil, nil
}

// scanContactsByPhone is the bulk-listing fallback: one page of recent
// contacts filtered client-side. Single page, no pagination loop; the
// page size caps how far back this strategy can see.
func (c *Client) scanContactsByPhone(ctx context.Context, phone string) (*ports.RemoteContact, error) {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("/contacts?limit=%d", c.scanLimit)
	if err := c.makeRequest(ctx, "GET", endpoint, nil, &raw); err != nil {
		return nil, err
	}

	var matches []*ports.RemoteContact
	for _, item := range extractList(raw, "contacts") {
		var contact ports.RemoteContact
		if err := json.Unmarshal(item, &contact); err != nil {
			continue
		}
		if contact.ID != 0 && ident.PhonesEqual(contact.Phone, phone) {
			matched := contact
			matches = append(matches, &matched)
		}
	}

	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		c.logger.WarnWithFields("Ambiguous phone match in contact scan, taking first", map[string]interface{}{
			"phone":   phone,
			"matches": len(matches),
		})
	}

	c.logger.InfoWithFields("Contact found via bulk scan", map[string]interface{}{
		"contact_id": matches[0].ID,
	})
	return matches[0], nil
}

// CreateContact provisions a new contact record.
func (c *Client) CreateContact(ctx context.Context, input ports.NewContactInput) (*ports.RemoteContact, error) {
	payload := map[string]interface{}{
		"first_name": input.FirstName,
		"last_name":  input.LastName,
	}
	if input.Phone != "" {
		payload["phone"] = input.Phone
	}
	if input.Email != "" {
		payload["email"] = input.Email
	}
	if input.Comment != "" {
		payload["comment"] = input.Comment
	}
	if input.CompanyID != nil {
		payload["company_id"] = *input.CompanyID
	}

	var contact ports.RemoteContact
	if err := c.makeRequest(ctx, "POST", "/contacts", payload, &contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	c.logger.InfoWithFields("Contact created", map[string]interface{}{
		"contact_id": contact.ID,
	})
	return &contact, nil
}
