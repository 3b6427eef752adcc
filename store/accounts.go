package store

import (
	"github.com/aqasend/aqasend/account"
	"github.com/google/uuid"
)

// Account and RegistrationCode are re-exported from package account so
// store's public surface names the same types spec.md §3 does, without
// store depending on account for anything but these two records.
type (
	Account          = account.Account
	RegistrationCode = account.RegistrationCode
)

// GetAccount returns a clone of the account at id, or (zero, false).
func (db *DB) GetAccount(id uuid.UUID) (Account, bool) {
	db.accountsMu.RLock()
	defer db.accountsMu.RUnlock()
	a, ok := db.accounts[id]
	return a, ok
}

// AccountsView is a read-only view over the accounts map.
type AccountsView struct{ m map[uuid.UUID]Account }

// Get looks up id within the view.
func (v AccountsView) Get(id uuid.UUID) (Account, bool) {
	a, ok := v.m[id]
	return a, ok
}

// AccountsReader acquires a read guard over the accounts map.
func (db *DB) AccountsReader() (AccountsView, func()) {
	db.accountsMu.RLock()
	return AccountsView{db.accounts}, db.accountsMu.RUnlock
}

func (db *DB) snapshotAccounts() map[uuid.UUID]Account {
	db.accountsMu.RLock()
	defer db.accountsMu.RUnlock()
	out := make(map[uuid.UUID]Account, len(db.accounts))
	for k, v := range db.accounts {
		out[k] = v
	}
	return out
}

func (db *DB) restoreAccounts(m map[uuid.UUID]Account) {
	db.accountsMu.Lock()
	defer db.accountsMu.Unlock()
	db.accounts = m
}

// AccountUUIDsView is a read-only view over the username→uuid index.
type AccountUUIDsView struct{ m map[string]uuid.UUID }

// Get looks up username within the view.
func (v AccountUUIDsView) Get(username string) (uuid.UUID, bool) {
	id, ok := v.m[username]
	return id, ok
}

// AccountUUIDsReader acquires a read guard over the username→uuid index.
func (db *DB) AccountUUIDsReader() (AccountUUIDsView, func()) {
	db.accountUUIDsMu.RLock()
	return AccountUUIDsView{db.accountUUIDs}, db.accountUUIDsMu.RUnlock
}

func (db *DB) snapshotAccountUUIDs() map[string]uuid.UUID {
	db.accountUUIDsMu.RLock()
	defer db.accountUUIDsMu.RUnlock()
	out := make(map[string]uuid.UUID, len(db.accountUUIDs))
	for k, v := range db.accountUUIDs {
		out[k] = v
	}
	return out
}

// rebuildAccountUUIDs derives the secondary index from the accounts map
// (§3 "rebuilt from accounts at startup"); the index itself is never
// persisted.
func (db *DB) rebuildAccountUUIDs() {
	db.accountsMu.RLock()
	defer db.accountsMu.RUnlock()
	db.accountUUIDsMu.Lock()
	defer db.accountUUIDsMu.Unlock()
	idx := make(map[string]uuid.UUID, len(db.accounts))
	for id, a := range db.accounts {
		idx[a.Username] = id
	}
	db.accountUUIDs = idx
}

// AddAccount inserts acc into the accounts map and its username index
// entry, atomically with respect to the accounts lock (§4.3). This is the
// one documented multi-lock path: accounts-write, then, while still held,
// account_uuids-write.
func (db *DB) AddAccount(id uuid.UUID, acc Account) error {
	db.accountsMu.Lock()
	defer db.accountsMu.Unlock()
	if _, exists := db.accounts[id]; exists {
		return ErrAccountAlreadyExists
	}
	db.accounts[id] = acc

	db.accountUUIDsMu.Lock()
	defer db.accountUUIDsMu.Unlock()
	db.accountUUIDs[acc.Username] = id
	return nil
}

// RegCodesView is a read-only view over the registration codes.
type RegCodesView struct{ codes []RegistrationCode }

// Find returns the registration code matching code, if any.
func (v RegCodesView) Find(code uuid.UUID) (RegistrationCode, bool) {
	for _, rc := range v.codes {
		if rc.Code == code {
			return rc, true
		}
	}
	return RegistrationCode{}, false
}

// RegistrationCodesReader acquires a read guard over the registration
// codes.
func (db *DB) RegistrationCodesReader() (RegCodesView, func()) {
	db.regCodesMu.RLock()
	return RegCodesView{db.regCodes}, db.regCodesMu.RUnlock
}

// RegistrationCodesGuard is a write view over the registration codes.
type RegistrationCodesGuard struct{ db *DB }

// Add appends a freshly minted registration code. Redemption does not
// remove it (§9 Open Questions: single-use is an open, undecided question;
// aqasend keeps the teacher/original behavior of allowing reuse — see
// DESIGN.md).
func (g RegistrationCodesGuard) Add(rc RegistrationCode) {
	g.db.regCodes = append(g.db.regCodes, rc)
}

// RegistrationCodesWriter acquires a write guard over the registration
// codes.
func (db *DB) RegistrationCodesWriter() (RegistrationCodesGuard, func()) {
	db.regCodesMu.Lock()
	return RegistrationCodesGuard{db}, db.regCodesMu.Unlock
}

func (db *DB) snapshotRegCodes() []RegistrationCode {
	db.regCodesMu.RLock()
	defer db.regCodesMu.RUnlock()
	out := make([]RegistrationCode, len(db.regCodes))
	copy(out, db.regCodes)
	return out
}

func (db *DB) restoreRegCodes(codes []RegistrationCode) {
	db.regCodesMu.Lock()
	defer db.regCodesMu.Unlock()
	db.regCodes = codes
}
