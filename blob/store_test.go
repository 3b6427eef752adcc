package blob_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aqasend/aqasend/blob"
	"github.com/google/uuid"
)

func TestEnsureDirsCreatesBuckets(t *testing.T) {
	root := t.TempDir()
	s := blob.New(root, []string{"1", "infinite"})
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	for _, b := range []string{"1", "infinite"} {
		if _, err := os.Stat(filepath.Join(root, b)); err != nil {
			t.Fatalf("bucket dir %s missing: %v", b, err)
		}
	}
}

func TestCopyFromAndOpen(t *testing.T) {
	root := t.TempDir()
	s := blob.New(root, []string{"1"})
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	id := uuid.New()
	payload := []byte("hello blob store")

	n, err := s.CopyFrom("1", id, bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("wrote %d bytes, want %d", n, len(payload))
	}

	f, err := s.Open("1", id)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got := make([]byte, len(payload))
	if _, err := f.Read(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestDeleteAbsentFileIsNotAnError(t *testing.T) {
	root := t.TempDir()
	s := blob.New(root, []string{"1"})
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("1", uuid.New()); err != nil {
		t.Fatalf("delete of absent blob should not error, got %v", err)
	}
}
