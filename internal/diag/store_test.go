package diag

import "testing"

func TestMemStoreReplaceOnSet(t *testing.T) {
	s := NewMemStore()
	s.Set("file:///a.md", []Diagnostic{{Code: "old1"}, {Code: "old2"}})
	s.Set("file:///a.md", []Diagnostic{{Code: "new"}})

	got := s.Get("file:///a.md")
	if len(got) != 1 || got[0].Code != "new" {
		t.Fatalf("set must fully replace, got %+v", got)
	}
	if s.Len() != 1 {
		t.Errorf("expected a single entry per file, got %d", s.Len())
	}
}

func TestMemStoreDelete(t *testing.T) {
	s := NewMemStore()
	s.Set("file:///a.md", []Diagnostic{{Code: "x"}})
	s.Delete("file:///a.md")
	if got := s.Get("file:///a.md"); got != nil {
		t.Fatalf("expected no entry after delete, got %+v", got)
	}
	// Deleting an absent entry is a no-op.
	s.Delete("file:///missing.md")
	if s.Len() != 0 {
		t.Errorf("store should be empty, got %d entries", s.Len())
	}
}

func TestMemStoreClear(t *testing.T) {
	s := NewMemStore()
	s.Set("file:///a.md", []Diagnostic{{Code: "x"}})
	s.Set("file:///b.md", []Diagnostic{{Code: "y"}})
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", s.Len())
	}
}
