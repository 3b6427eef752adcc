package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrUpdateFail is returned by Update when the target UUID does not exist.
var ErrUpdateFail = errors.New("update failed: entry does not exist")

// ErrAccountAlreadyExists is returned by AddAccount when the UUID is
// already present in the accounts map.
var ErrAccountAlreadyExists = errors.New("account already exists")

// DB is the process-wide, in-memory four-map database (§4.3). Each map has
// its own RW-lock; the only documented multi-lock path is AddAccount, which
// takes accounts-write then account_uuids-write (never the reverse).
type DB struct {
	entriesMu sync.RWMutex
	entries   map[uuid.UUID]*FileEntry

	accountsMu sync.RWMutex
	accounts   map[uuid.UUID]Account

	accountUUIDsMu sync.RWMutex
	accountUUIDs   map[string]uuid.UUID

	regCodesMu sync.RWMutex
	regCodes   []RegistrationCode
}

// New returns an empty database. Load (in the snapshot package) populates
// it from disk at startup.
func New() *DB {
	return &DB{
		entries:      make(map[uuid.UUID]*FileEntry),
		accounts:     make(map[uuid.UUID]Account),
		accountUUIDs: make(map[string]uuid.UUID),
		regCodes:     nil,
	}
}

// Get returns a read-owned clone of the entry, or (nil, false) if absent.
// Never blocks longer than acquiring the entries read-lock.
func (db *DB) Get(id uuid.UUID) (*FileEntry, bool) {
	db.entriesMu.RLock()
	defer db.entriesMu.RUnlock()
	e, ok := db.entries[id]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// Put inserts or replaces the entry at id.
func (db *DB) Put(id uuid.UUID, e *FileEntry) {
	db.entriesMu.Lock()
	defer db.entriesMu.Unlock()
	db.entries[id] = e
}

// Update replaces an existing entry, failing if id is not present (§4.3).
func (db *DB) Update(id uuid.UUID, e *FileEntry) error {
	db.entriesMu.Lock()
	defer db.entriesMu.Unlock()
	if _, ok := db.entries[id]; !ok {
		return ErrUpdateFail
	}
	db.entries[id] = e
	return nil
}

// EntriesReader acquires a read guard over the entries map and returns a
// function to release it along with a read-only view. Guards are never
// held across blob I/O or blocking-pool handoffs (§5).
func (db *DB) EntriesReader() (EntriesView, func()) {
	db.entriesMu.RLock()
	return EntriesView{db.entries}, db.entriesMu.RUnlock
}

// EntriesWriter acquires a write guard over the entries map.
func (db *DB) EntriesWriter() (*EntriesGuard, func()) {
	db.entriesMu.Lock()
	return &EntriesGuard{db.entries}, db.entriesMu.Unlock
}

// EntriesView is a read-only view over the entries map, valid only while
// the guard that produced it is held.
type EntriesView struct {
	m map[uuid.UUID]*FileEntry
}

// Each calls fn for every (uuid, entry) pair. fn must not retain entry
// beyond the call.
func (v EntriesView) Each(fn func(uuid.UUID, *FileEntry)) {
	for id, e := range v.m {
		fn(id, e)
	}
}

// Len returns the number of entries currently held.
func (v EntriesView) Len() int { return len(v.m) }

// EntriesGuard is a write view over the entries map.
type EntriesGuard struct {
	m map[uuid.UUID]*FileEntry
}

// Each calls fn for every (uuid, entry) pair.
func (g *EntriesGuard) Each(fn func(uuid.UUID, *FileEntry)) {
	for id, e := range g.m {
		fn(id, e)
	}
}

// Delete removes id from the entries map. Used by the eviction engine and
// the delete handler, each of which removes the corresponding blob after
// releasing the guard.
func (g *EntriesGuard) Delete(id uuid.UUID) {
	delete(g.m, id)
}

// Get returns a clone of the entry at id under the held write guard, for
// callers that need a read-modify-write sequence (download's atomic
// download_count increment) without releasing the lock in between.
func (g *EntriesGuard) Get(id uuid.UUID) (*FileEntry, bool) {
	e, ok := g.m[id]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// Set installs e at id, replacing whatever was there. Used alongside Get
// to complete a read-modify-write under one guard acquisition.
func (g *EntriesGuard) Set(id uuid.UUID, e *FileEntry) {
	g.m[id] = e
}

// UpdateInPlace acquires the entries write guard once and runs fn against
// the current entry, replacing it with whatever fn returns unless fn
// reports !ok — the same shape as download's "re-acquire the writer"
// increment (§4.8). Returns false if id is not present.
func (db *DB) UpdateInPlace(id uuid.UUID, fn func(*FileEntry) (*FileEntry, bool)) bool {
	db.entriesMu.Lock()
	defer db.entriesMu.Unlock()
	e, ok := db.entries[id]
	if !ok {
		return false
	}
	next, ok := fn(e.clone())
	if !ok {
		return false
	}
	db.entries[id] = next
	return true
}

// snapshotEntries returns a copy of the whole entries map with every entry
// cloned, suitable for
// handing to the snapshot codec under a read guard (§4.2 clone-then-write).
func (db *DB) snapshotEntries() map[uuid.UUID]*FileEntry {
	db.entriesMu.RLock()
	defer db.entriesMu.RUnlock()
	out := make(map[uuid.UUID]*FileEntry, len(db.entries))
	for id, e := range db.entries {
		out[id] = e.clone()
	}
	return out
}

// restoreEntries replaces the whole entries map, used only at load time
// before the server starts serving requests.
func (db *DB) restoreEntries(m map[uuid.UUID]*FileEntry) {
	db.entriesMu.Lock()
	defer db.entriesMu.Unlock()
	db.entries = m
}
