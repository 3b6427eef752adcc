// Package blob owns the on-disk directory tree of uploaded bytes (C1). A
// blob is addressed by (bucket, uuid); no path is ever stored in a
// FileEntry — it is always re-derived (§3 "Ownership").
package blob

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Store is rooted at a directory containing one subdirectory per bucket
// (§4.1). It is safe for concurrent use: every operation opens, writes, or
// removes exactly one file.
type Store struct {
	root    string
	buckets []string
}

// New returns a Store rooted at root. Call EnsureDirs once at startup
// before accepting requests.
func New(root string, buckets []string) *Store {
	return &Store{root: root, buckets: buckets}
}

// EnsureDirs creates <root>/<bucket> for every configured bucket.
func (s *Store) EnsureDirs() error {
	for _, b := range s.buckets {
		dir := filepath.Join(s.root, b)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create bucket dir %s", dir)
		}
	}
	return nil
}

// Path returns the on-disk path for (bucket, id). Exported so handlers can
// report it in error messages without the store needing to reach back
// into FileEntry/DownloadCountType.
func (s *Store) Path(bucket string, id uuid.UUID) string {
	return filepath.Join(s.root, bucket, id.String())
}

// Create opens a fresh, empty blob file for writing. The caller streams
// into it and must Close it — there is no separate temp-file dance for
// blobs (unlike the snapshot codec): a partially written blob from a
// cancelled upload is an accepted, documented risk (§9 "Cancellation
// cleanup").
func (s *Store) Create(bucket string, id uuid.UUID) (*os.File, error) {
	path := s.Path(bucket, id)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "create blob %s", path)
	}
	return f, nil
}

// Open opens a blob for reading.
func (s *Store) Open(bucket string, id uuid.UUID) (*os.File, error) {
	path := s.Path(bucket, id)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open blob %s", path)
	}
	return f, nil
}

// Delete removes a blob. An already-absent file is not an error — it is
// logged by the caller and otherwise ignored (§4.1).
func (s *Store) Delete(bucket string, id uuid.UUID) error {
	path := s.Path(bucket, id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "delete blob %s", path)
	}
	return nil
}

// CopyFrom streams r into a freshly created blob file for (bucket, id),
// returning the number of bytes written. Used by the upload handler.
func (s *Store) CopyFrom(bucket string, id uuid.UUID, r io.Reader) (int64, error) {
	f, err := s.Create(bucket, id)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := io.Copy(f, r)
	if err != nil {
		return n, errors.Wrapf(err, "write blob %s", s.Path(bucket, id))
	}
	return n, nil
}
