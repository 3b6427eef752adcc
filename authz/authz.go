// Package authz resolves a request's session cookie down to the logged-in
// account, if any, and applies the per-route authorization predicates used
// by httpapi (C8). Grounded on the original aqaSend implementation's
// get_logged_in_user/delete.rs admin-or-owner check.
package authz

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/apierr"
	"github.com/aqasend/aqasend/cookie"
	"github.com/aqasend/aqasend/session"
	"github.com/aqasend/aqasend/store"
)

// Resolver ties the session store to the account table so handlers can
// resolve "who is making this request" without reaching into either
// directly.
type Resolver struct {
	sessions *session.Store
	db       *store.DB
}

// New returns a Resolver over the given session store and database.
func New(sessions *session.Store, db *store.DB) *Resolver {
	return &Resolver{sessions: sessions, db: db}
}

// CurrentUser resolves the request's "Cookie: session=..." value down to
// an Account. ok is false (with a nil error) when the request simply has
// no session — that is not itself an error, only the absence of one.
func (r *Resolver) CurrentUser(req *http.Request) (account.Account, bool, error) {
	header := req.Header.Get("Cookie")
	if header == "" {
		return account.Account{}, false, nil
	}

	cookies, err := cookie.ParseCookie(header)
	if err != nil {
		return account.Account{}, false, apierr.BadRequest("malformed Cookie header")
	}

	raw, present := cookies["session"]
	if !present {
		return account.Account{}, false, nil
	}

	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return account.Account{}, false, apierr.BadRequest("session cookie is not a valid uuid")
	}

	accountID, ok := r.sessions.GetUserUUID(sessionID)
	if !ok {
		return account.Account{}, false, nil
	}

	acc, ok := r.db.GetAccount(accountID)
	if !ok {
		return account.Account{}, false, nil
	}
	return acc, true, nil
}

// RequireLogin is CurrentUser but turns "no session" into a 401, for
// routes that only make sense for a logged-in caller (registration code
// minting, through RequireAdmin).
func (r *Resolver) RequireLogin(req *http.Request) (account.Account, error) {
	acc, ok, err := r.CurrentUser(req)
	if err != nil {
		return account.Account{}, err
	}
	if !ok {
		return account.Account{}, apierr.Auth("not logged in")
	}
	return acc, nil
}

// RequireAdmin is RequireLogin plus an account-type check, for
// admin-only routes (registration code minting).
func (r *Resolver) RequireAdmin(req *http.Request) (account.Account, error) {
	acc, err := r.RequireLogin(req)
	if err != nil {
		return account.Account{}, err
	}
	if acc.AccType != account.Admin {
		return account.Account{}, apierr.Forbidden("admin account required")
	}
	return acc, nil
}

// CanDelete reports whether acc (possibly the zero value, if loggedIn is
// false) may delete entry. An admin may delete anything; any other
// account may only delete entries it uploaded; an anonymous caller may
// delete nothing.
func CanDelete(acc account.Account, loggedIn bool, entry *store.FileEntry) bool {
	if !loggedIn {
		return false
	}
	if acc.AccType == account.Admin {
		return true
	}
	return entry.UploaderUUID != nil && *entry.UploaderUUID == acc.UUID
}

// CanView reports whether a download request for entry, authenticated as
// described by (acc, loggedIn) and carrying providedPassword, may read its
// contents. The uploader's own session may always proceed. Any other
// caller needs the correct password when the entry has one set, whatever
// its visibility; an entry without a password is open to everyone when
// public and to its uploader alone when private. Unlike CanDelete, admins
// get no blanket exception here.
func CanView(acc account.Account, loggedIn bool, entry *store.FileEntry, providedPassword *string) bool {
	if loggedIn && entry.UploaderUUID != nil && *entry.UploaderUUID == acc.UUID {
		return true
	}
	if entry.Password != nil {
		return providedPassword != nil && *providedPassword == *entry.Password
	}
	return entry.Visibility == store.Public
}
