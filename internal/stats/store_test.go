package stats

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "statistics.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_startsAtZero(t *testing.T) {
	s := openTestStore(t)

	n, err := s.Total(context.Background())
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if n != 0 {
		t.Errorf("fresh counter = %d, want 0", n)
	}
}

func TestStore_increment(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Increment(ctx); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}

	n, err := s.Total(ctx)
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if n != 3 {
		t.Errorf("counter = %d, want 3", n)
	}
}

func TestStore_survivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statistics.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Increment(ctx); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	n, err := s2.Total(ctx)
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if n != 1 {
		t.Errorf("counter after reopen = %d, want 1", n)
	}
}
