package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yofomoose/okdesk-bot/internal/core/ident"
	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/pkg/errors"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

// ResolverService binds local chat users to remote directory records.
// Resolution is idempotent: once a remote id is stored it is the
// answer, and the directory is never consulted again for that user.
type ResolverService struct {
	users     ports.UserRepository
	directory ports.DirectoryClient
	logger    *logger.Logger
}

func NewResolverService(
	users ports.UserRepository,
	directory ports.DirectoryClient,
	logger *logger.Logger,
) *ResolverService {
	return &ResolverService{
		users:     users,
		directory: directory,
		logger:    logger.WithModule("resolver"),
	}
}

// ResolveContact returns the remote contact id for a user, resolving
// and provisioning on first use. Order: stored binding, directory
// search by phone, automatic provisioning.
func (s *ResolverService) ResolveContact(ctx context.Context, user *ports.User) (int64, error) {
	if user.RemoteContactID != nil {
		return *user.RemoteContactID, nil
	}

	if user.Phone == nil || ident.NormalizePhone(*user.Phone) == "" {
		return 0, fmt.Errorf("chat user %d: %w", user.ChatUserID, errors.ErrNoPhone)
	}
	phone := ident.NormalizePhone(*user.Phone)

	contact, err := s.directory.FindContactByPhone(ctx, phone)
	if err != nil {
		return 0, fmt.Errorf("contact lookup: %w", err)
	}

	if contact == nil {
		contact, err = s.provisionContact(ctx, user, phone)
		if err != nil {
			return 0, err
		}
	} else {
		s.logger.InfoWithFields("Contact resolved by phone", map[string]interface{}{
			"chat_user_id": user.ChatUserID,
			"contact_id":   contact.ID,
		})
	}

	if err := s.users.SetRemoteContactID(ctx, user.ChatUserID, contact.ID); err != nil {
		return 0, fmt.Errorf("persist contact binding: %w", err)
	}
	user.RemoteContactID = &contact.ID

	return contact.ID, nil
}

// ResolveCompany returns the remote company id for a legal-entity
// user. Companies are only provisioned when createIfMissing is set;
// by default an unknown tax id is a resolution failure, not a
// provisioning trigger.
func (s *ResolverService) ResolveCompany(ctx context.Context, user *ports.User, createIfMissing bool) (int64, error) {
	if user.RemoteCompanyID != nil {
		return *user.RemoteCompanyID, nil
	}

	if user.TaxID == nil || ident.NormalizeTaxID(*user.TaxID) == "" {
		return 0, fmt.Errorf("chat user %d: %w", user.ChatUserID, errors.ErrNoTaxID)
	}
	taxID := ident.NormalizeTaxID(*user.TaxID)

	company, err := s.directory.FindCompanyByTaxID(ctx, taxID)
	if err != nil {
		return 0, fmt.Errorf("company lookup: %w", err)
	}

	if company == nil {
		if !createIfMissing {
			return 0, fmt.Errorf("tax id %s: %w", taxID, errors.ErrCompanyNotResolved)
		}
		name := taxID
		if user.CompanyName != nil && *user.CompanyName != "" {
			name = *user.CompanyName
		}
		company, err = s.directory.CreateCompany(ctx, ports.NewCompanyInput{
			Name:  name,
			TaxID: taxID,
		})
		if err != nil {
			return 0, fmt.Errorf("company provisioning: %w", err)
		}
		s.logger.InfoWithFields("Company provisioned", map[string]interface{}{
			"chat_user_id": user.ChatUserID,
			"company_id":   company.ID,
		})
	} else {
		s.logger.InfoWithFields("Company resolved by tax id", map[string]interface{}{
			"chat_user_id": user.ChatUserID,
			"company_id":   company.ID,
		})
	}

	if err := s.users.SetRemoteCompanyID(ctx, user.ChatUserID, company.ID); err != nil {
		return 0, fmt.Errorf("persist company binding: %w", err)
	}
	user.RemoteCompanyID = &company.ID

	return company.ID, nil
}

func (s *ResolverService) provisionContact(ctx context.Context, user *ports.User, phone string) (*ports.RemoteContact, error) {
	firstName, lastName := splitFullName(user)

	input := ports.NewContactInput{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Comment:   fmt.Sprintf("Created automatically from chat bot (user %d)", user.ChatUserID),
		CompanyID: user.RemoteCompanyID,
	}

	contact, err := s.directory.CreateContact(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("contact provisioning: %w", err)
	}

	s.logger.InfoWithFields("Contact provisioned", map[string]interface{}{
		"chat_user_id": user.ChatUserID,
		"contact_id":   contact.ID,
	})
	return contact, nil
}

// splitFullName derives first/last names from whatever profile data the
// chat platform handed over, falling back to the username and finally
// to a numeric placeholder so provisioning never fails on an empty
// name.
func splitFullName(user *ports.User) (string, string) {
	if user.FullName != nil {
		parts := strings.Fields(strings.TrimSpace(*user.FullName))
		switch {
		case len(parts) >= 2:
			return parts[0], strings.Join(parts[1:], " ")
		case len(parts) == 1:
			return parts[0], ""
		}
	}
	if user.Username != nil && *user.Username != "" {
		return *user.Username, ""
	}
	return fmt.Sprintf("User %d", user.ChatUserID), ""
}
