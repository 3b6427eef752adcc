package store

import "github.com/google/uuid"

// Snap is a point-in-time, deep-cloned view of all three persisted
// collections, suitable for handing to the snapshot codec outside of any
// lock (§4.2).
type Snap struct {
	Entries  map[uuid.UUID]*FileEntry
	Accounts map[uuid.UUID]Account
	RegCodes []RegistrationCode
}

// Snapshot clones each of the three persisted collections under its own
// read guard. It is not a cross-map transaction: the three clones are not
// taken atomically with respect to each other (§4.2).
func (db *DB) Snapshot() Snap {
	return Snap{
		Entries:  db.snapshotEntries(),
		Accounts: db.snapshotAccounts(),
		RegCodes: db.snapshotRegCodes(),
	}
}

// RestoreAll installs freshly loaded collections, then rebuilds the
// username→uuid index from the loaded accounts (§3). Intended for use only
// at startup, before the server begins serving requests.
func (db *DB) RestoreAll(entries map[uuid.UUID]*FileEntry, accounts map[uuid.UUID]Account, regCodes []RegistrationCode) {
	db.restoreEntries(entries)
	db.restoreAccounts(accounts)
	db.restoreRegCodes(regCodes)
	db.rebuildAccountUUIDs()
}
