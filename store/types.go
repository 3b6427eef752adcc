// Package store is the in-memory database (C3): four independently
// RW-guarded maps — file entries, accounts, the username→uuid index, and
// registration codes — plus the invariant-preserving mutators over them.
// Grounded on the teacher's RW-guarded, clone-on-read map pattern
// (cmn.GCO's globalConfigOwner, ais/*.go's widespread use of sync.RWMutex
// around shared daemon state).
package store

import (
	"time"

	"github.com/google/uuid"
)

// Visibility controls who may list or download an entry (§3, §4.8).
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// DownloadCountKind distinguishes an unlimited download budget from a
// bounded one.
type DownloadCountKind int

const (
	Infinite DownloadCountKind = iota
	Count
)

// DownloadCountType is the download-count policy attached to a FileEntry
// (§3). Max is meaningful only when Kind == Count.
type DownloadCountType struct {
	Kind DownloadCountKind
	Max  uint64
}

// Bucket returns the on-disk directory name this policy maps to (§4.1),
// one of the fixed set in config.Buckets.
func (d DownloadCountType) Bucket() string {
	if d.Kind == Infinite {
		return "infinite"
	}
	return fmtUint(d.Max)
}

func fmtUint(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// LifetimeKind distinguishes an unbounded lifetime from a fixed duration.
type LifetimeKind int

const (
	LifetimeInfinite LifetimeKind = iota
	LifetimeDuration
)

// Lifetime is the absolute-lifetime policy attached to a FileEntry (§3).
// Duration is meaningful only when Kind == LifetimeDuration.
type Lifetime struct {
	Kind     LifetimeKind
	Duration time.Duration
}

// FileEntry is the authoritative record for one uploaded blob (§3).
type FileEntry struct {
	Filename          string            `json:"filename"`
	ContentType       string            `json:"content_type"`
	UploaderUUID      *uuid.UUID        `json:"uploader_uuid,omitempty"`
	DownloadCountType DownloadCountType `json:"download_count_type"`
	DownloadCount     uint64            `json:"download_count"`
	Visibility        Visibility        `json:"visibility"`
	Password          *string           `json:"password,omitempty"`
	Lifetime          Lifetime          `json:"lifetime"`
	UploadDate        time.Time         `json:"upload_date"`
}

// Exhausted reports whether the entry's download budget has been consumed
// (§4.7 predicate 1). Evaluated the same way at eviction, download, and
// listing time.
func (e *FileEntry) Exhausted() bool {
	return e.DownloadCountType.Kind == Count && e.DownloadCount >= e.DownloadCountType.Max
}

// Expired reports whether the entry's absolute lifetime has elapsed
// (§4.7 predicate 2), evaluated against now.
func (e *FileEntry) Expired(now time.Time) bool {
	return e.Lifetime.Kind == LifetimeDuration && now.Sub(e.UploadDate) > e.Lifetime.Duration
}

// Gone reports whether the entry should be invisible to listing/download
// right now — the disjunction the eviction engine, the download handler,
// and the list handler all evaluate identically (§4.7).
func (e *FileEntry) Gone(now time.Time) bool {
	return e.Exhausted() || e.Expired(now)
}

// HasPassword reports whether the entry requires a password for download.
// Listing projections expose only this boolean, never Password itself.
func (e *FileEntry) HasPassword() bool {
	return e.Password != nil
}

// clone returns a deep copy of e, safe to hand to a caller outside the
// entries lock.
func (e *FileEntry) clone() *FileEntry {
	cp := *e
	if e.UploaderUUID != nil {
		u := *e.UploaderUUID
		cp.UploaderUUID = &u
	}
	if e.Password != nil {
		p := *e.Password
		cp.Password = &p
	}
	return &cp
}
