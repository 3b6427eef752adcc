// Package snapshot serializes three of the database's four maps to JSON
// files and restores them at startup (C2); the username index is derived
// rather than stored. Three files live under the DB root:
// index, accounts, registration_codes (§4.2, §6). The write path follows
// the teacher's cmn/jsp.Save pattern — write to a sibling temp file, then
// rename — upgrading the original aqaSend implementation's in-place write,
// which spec.md §9 flags as a known atomicity gap.
package snapshot

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/store"
	"github.com/google/uuid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	indexFile    = "index"
	accountsFile = "accounts"
	regCodesFile = "registration_codes"
)

// Error tags a failure with the snapshot file that caused it (§4.2 "tagging
// the faulting file").
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string { return e.File + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func tagged(file string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{File: file, Err: err}
}

// Load reads the three snapshot files under root into db. A missing file
// is treated as an empty collection; any other I/O or parse error is
// fatal and tagged with the offending file (§4.2). The username→uuid
// index is rebuilt from the loaded accounts, never read from disk (§3).
func Load(root string, db *store.DB) error {
	entries, err := loadIndex(filepath.Join(root, indexFile))
	if err != nil {
		return tagged(indexFile, err)
	}
	accounts, err := loadAccounts(filepath.Join(root, accountsFile))
	if err != nil {
		return tagged(accountsFile, err)
	}
	regCodes, err := loadRegCodes(filepath.Join(root, regCodesFile))
	if err != nil {
		return tagged(regCodesFile, err)
	}

	db.RestoreAll(entries, accounts, regCodes)
	return nil
}

func readIfPresent(path string) ([]byte, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func loadIndex(path string) (map[uuid.UUID]*store.FileEntry, error) {
	b, present, err := readIfPresent(path)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*store.FileEntry)
	if !present {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func loadAccounts(path string) (map[uuid.UUID]account.Account, error) {
	b, present, err := readIfPresent(path)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]account.Account)
	if !present {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func loadRegCodes(path string) ([]account.RegistrationCode, error) {
	b, present, err := readIfPresent(path)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	var out []account.RegistrationCode
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save clones each of the three collections under its own read guard, then
// writes all three files concurrently on the blocking pool via errgroup —
// each map is cloned and written independently; this is deliberately not a
// cross-map transaction (§4.2).
func Save(root string, db *store.DB) error {
	snap := db.Snapshot()

	g := new(errgroup.Group)
	g.Go(func() error {
		return tagged(indexFile, writeJSON(filepath.Join(root, indexFile), snap.Entries))
	})
	g.Go(func() error {
		return tagged(accountsFile, writeJSON(filepath.Join(root, accountsFile), snap.Accounts))
	})
	g.Go(func() error {
		return tagged(regCodesFile, writeJSON(filepath.Join(root, regCodesFile), snap.RegCodes))
	})
	return g.Wait()
}

// writeJSON marshals v and writes it to path via a temp-file-then-rename,
// so a crash mid-write never leaves a half-written snapshot file in place.
func writeJSON(path string, v interface{}) (err error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode")
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(b); err != nil {
		f.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
