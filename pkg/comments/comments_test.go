package comments

import (
	"context"
	"errors"
	"testing"
)

func TestNilStore_ListIsEmpty(t *testing.T) {
	var s *Store
	got, err := s.List(context.Background(), "c1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("comments = %v, want empty", got)
	}
}

func TestNilStore_AddFailsExplicitly(t *testing.T) {
	var s *Store
	_, err := s.Add(context.Background(), "c1", "hello", "Thu")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestAdd_RejectsBlankContent(t *testing.T) {
	var s *Store
	_, err := s.Add(context.Background(), "c1", "   \n", "Thu")
	if err == nil || errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want blank-content rejection before store check", err)
	}
}

func TestOpen_EmptyURLIsUnconfigured(t *testing.T) {
	s, err := Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Configured() {
		t.Error("empty URL must yield an unconfigured store")
	}
}
