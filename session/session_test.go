package session_test

import (
	"testing"

	"github.com/aqasend/aqasend/session"
	"github.com/google/uuid"
)

func TestInsertAndGet(t *testing.T) {
	s := session.New()
	sessID, accID := uuid.New(), uuid.New()
	s.Insert(sessID, accID)

	got, ok := s.GetUserUUID(sessID)
	if !ok || got != accID {
		t.Fatalf("GetUserUUID = %v, %v; want %v, true", got, ok, accID)
	}
}

func TestGetUnknownSession(t *testing.T) {
	s := session.New()
	if _, ok := s.GetUserUUID(uuid.New()); ok {
		t.Fatal("expected unknown session to miss")
	}
}

func TestDelete(t *testing.T) {
	s := session.New()
	sessID, accID := uuid.New(), uuid.New()
	s.Insert(sessID, accID)
	s.Delete(sessID)
	if _, ok := s.GetUserUUID(sessID); ok {
		t.Fatal("expected session to be gone after Delete")
	}
}

func TestLen(t *testing.T) {
	s := session.New()
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got len %d", s.Len())
	}
	s.Insert(uuid.New(), uuid.New())
	s.Insert(uuid.New(), uuid.New())
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
}
