package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/authz"
	"github.com/aqasend/aqasend/session"
	"github.com/aqasend/aqasend/store"
	"github.com/google/uuid"
)

func TestCurrentUserWithNoCookieIsNotAnError(t *testing.T) {
	r := authz.New(session.New(), store.New())
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok, err := r.CurrentUser(req)
	if err != nil || ok {
		t.Fatalf("got ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestCurrentUserResolvesSessionToAccount(t *testing.T) {
	db := store.New()
	sessions := session.New()
	accID := uuid.New()
	if err := db.AddAccount(accID, account.Account{UUID: accID, Username: "dev", AccType: account.User}); err != nil {
		t.Fatal(err)
	}
	sessID := uuid.New()
	sessions.Insert(sessID, accID)

	r := authz.New(sessions, db)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "session="+sessID.String())

	acc, ok, err := r.CurrentUser(req)
	if err != nil || !ok || acc.UUID != accID {
		t.Fatalf("got acc=%+v ok=%v err=%v", acc, ok, err)
	}
}

func TestRequireLoginFailsWithoutSession(t *testing.T) {
	r := authz.New(session.New(), store.New())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := r.RequireLogin(req); err == nil {
		t.Fatal("expected auth error")
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	db := store.New()
	sessions := session.New()
	accID := uuid.New()
	if err := db.AddAccount(accID, account.Account{UUID: accID, Username: "dev", AccType: account.User}); err != nil {
		t.Fatal(err)
	}
	sessID := uuid.New()
	sessions.Insert(sessID, accID)

	r := authz.New(sessions, db)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "session="+sessID.String())

	if _, err := r.RequireAdmin(req); err == nil {
		t.Fatal("expected forbidden error for non-admin account")
	}
}

func TestCanDeleteAdminAlwaysAllowed(t *testing.T) {
	admin := account.Account{UUID: uuid.New(), AccType: account.Admin}
	entry := &store.FileEntry{}
	if !authz.CanDelete(admin, true, entry) {
		t.Fatal("expected admin to be able to delete any entry")
	}
}

func TestCanDeleteOwnerAllowed(t *testing.T) {
	owner := uuid.New()
	acc := account.Account{UUID: owner, AccType: account.User}
	entry := &store.FileEntry{UploaderUUID: &owner}
	if !authz.CanDelete(acc, true, entry) {
		t.Fatal("expected owner to be able to delete their own entry")
	}
}

func TestCanDeleteStrangerRejected(t *testing.T) {
	owner := uuid.New()
	acc := account.Account{UUID: uuid.New(), AccType: account.User}
	entry := &store.FileEntry{UploaderUUID: &owner}
	if authz.CanDelete(acc, true, entry) {
		t.Fatal("expected non-owner non-admin to be rejected")
	}
}

func TestCanDeleteAnonymousRejected(t *testing.T) {
	entry := &store.FileEntry{}
	if authz.CanDelete(account.Account{}, false, entry) {
		t.Fatal("expected anonymous caller to be rejected")
	}
}

func TestCanViewPublicAlwaysAllowed(t *testing.T) {
	entry := &store.FileEntry{Visibility: store.Public}
	if !authz.CanView(account.Account{}, false, entry, nil) {
		t.Fatal("expected public entry to be viewable by anyone")
	}
}

func TestCanViewPrivateRequiresOwnerOrPassword(t *testing.T) {
	pw := "s3cret"
	entry := &store.FileEntry{Visibility: store.Private, Password: &pw}

	if authz.CanView(account.Account{}, false, entry, nil) {
		t.Fatal("expected anonymous caller without password to be rejected")
	}
	wrong := "nope"
	if authz.CanView(account.Account{}, false, entry, &wrong) {
		t.Fatal("expected wrong password to be rejected")
	}
	if !authz.CanView(account.Account{}, false, entry, &pw) {
		t.Fatal("expected correct password to be accepted")
	}
}

func TestCanViewPrivateOwnerAllowedWithoutPassword(t *testing.T) {
	owner := uuid.New()
	entry := &store.FileEntry{Visibility: store.Private, UploaderUUID: &owner}
	acc := account.Account{UUID: owner, AccType: account.User}
	if !authz.CanView(acc, true, entry, nil) {
		t.Fatal("expected owner to view their own private entry without a password")
	}
}

func TestCanViewPrivateAdminWithoutPasswordRejected(t *testing.T) {
	owner := uuid.New()
	entry := &store.FileEntry{Visibility: store.Private, UploaderUUID: &owner}
	admin := account.Account{UUID: uuid.New(), AccType: account.Admin}
	if authz.CanView(admin, true, entry, nil) {
		t.Fatal("expected an admin with no password to be rejected from viewing another user's private entry")
	}
}
