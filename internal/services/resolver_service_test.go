package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/yofomoose/okdesk-bot/internal/ports"
	"github.com/yofomoose/okdesk-bot/pkg/errors"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

func str(s string) *string { return &s }

func testLogger() *logger.Logger {
	return logger.New(logger.TestConfig())
}

func TestResolveContactStoredBindingShortCircuits(t *testing.T) {
	contactID := int64(77)
	user := &ports.User{ChatUserID: 1, RemoteContactID: &contactID}
	remote := newFakeRemote()
	resolver := NewResolverService(newFakeUserRepo(user), remote, testLogger())

	got, err := resolver.ResolveContact(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 77 {
		t.Fatalf("contact id = %d, want 77", got)
	}
	if remote.contactCreates != 0 {
		t.Fatal("stored binding must not touch the directory")
	}
}

func TestResolveContactFindsByPhone(t *testing.T) {
	user := &ports.User{ChatUserID: 1, Phone: str("89123456789"), FullName: str("Ivan Petrov")}
	remote := newFakeRemote()
	remote.contactsByPhone["+79123456789"] = &ports.RemoteContact{ID: 5, Phone: "+79123456789"}

	users := newFakeUserRepo(user)
	resolver := NewResolverService(users, remote, testLogger())

	got, err := resolver.ResolveContact(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Fatalf("contact id = %d, want 5", got)
	}
	if remote.contactCreates != 0 {
		t.Fatal("found contact must not be re-created")
	}
	if user.RemoteContactID == nil || *user.RemoteContactID != 5 {
		t.Fatal("binding must be persisted on the user")
	}
}

func TestResolveContactProvisionsOnce(t *testing.T) {
	user := &ports.User{ChatUserID: 1, Phone: str("89123456789"), FullName: str("Ivan Petrov")}
	remote := newFakeRemote()
	resolver := NewResolverService(newFakeUserRepo(user), remote, testLogger())

	first, err := resolver.ResolveContact(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := resolver.ResolveContact(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("resolution not idempotent: %d then %d", first, second)
	}
	if remote.contactCreates != 1 {
		t.Fatalf("contact created %d times, want exactly 1", remote.contactCreates)
	}
}

func TestResolveContactWithoutPhone(t *testing.T) {
	user := &ports.User{ChatUserID: 1}
	resolver := NewResolverService(newFakeUserRepo(user), newFakeRemote(), testLogger())

	_, err := resolver.ResolveContact(context.Background(), user)
	if err == nil {
		t.Fatal("expected error for user without phone")
	}
	if !stderrors.Is(err, errors.ErrNoPhone) {
		t.Fatalf("error %v, want ErrNoPhone", err)
	}
}

func TestResolveContactRemoteUnavailable(t *testing.T) {
	user := &ports.User{ChatUserID: 1, Phone: str("89123456789")}
	remote := newFakeRemote()
	remote.unavailable = true
	resolver := NewResolverService(newFakeUserRepo(user), remote, testLogger())

	_, err := resolver.ResolveContact(context.Background(), user)
	if !errors.IsRemoteUnavailable(err) {
		t.Fatalf("error %v, want RemoteUnavailable passthrough", err)
	}
	if user.RemoteContactID != nil {
		t.Fatal("failed resolution must not persist a binding")
	}
}

func TestResolveCompanyRequiresExplicitProvisioning(t *testing.T) {
	user := &ports.User{ChatUserID: 1, TaxID: str("7707083893"), CompanyName: str("ООО Ромашка")}
	remote := newFakeRemote()
	resolver := NewResolverService(newFakeUserRepo(user), remote, testLogger())

	_, err := resolver.ResolveCompany(context.Background(), user, false)
	if !stderrors.Is(err, errors.ErrCompanyNotResolved) {
		t.Fatalf("error %v, want ErrCompanyNotResolved without createIfMissing", err)
	}
	if remote.companyCreates != 0 {
		t.Fatal("company must not be provisioned without createIfMissing")
	}

	got, err := resolver.ResolveCompany(context.Background(), user, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.companyCreates != 1 {
		t.Fatalf("company created %d times, want 1", remote.companyCreates)
	}
	if user.RemoteCompanyID == nil || *user.RemoteCompanyID != got {
		t.Fatal("binding must be persisted on the user")
	}
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		user  ports.User
		first string
		last  string
	}{
		{ports.User{FullName: str("Ivan Petrov")}, "Ivan", "Petrov"},
		{ports.User{FullName: str("Anna Maria von Bern")}, "Anna", "Maria von Bern"},
		{ports.User{FullName: str("Madonna")}, "Madonna", ""},
		{ports.User{Username: str("ivan42")}, "ivan42", ""},
		{ports.User{ChatUserID: 7}, "User 7", ""},
	}

	for _, tt := range tests {
		first, last := splitFullName(&tt.user)
		if first != tt.first || last != tt.last {
			t.Errorf("splitFullName = (%q, %q), want (%q, %q)", first, last, tt.first, tt.last)
		}
	}
}
