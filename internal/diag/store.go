package diag

import (
	"sort"
	"sync"
)

// Store is the live mapping from file identity (URI or path) to its current
// diagnostics. Set fully replaces the previous entry; an absent entry means
// "no known issues", not "never linted". Implementations must tolerate
// writes from concurrent lint tasks; the last write for a file wins.
type Store interface {
	Set(file string, diags []Diagnostic)
	Delete(file string)
	Clear()
}

// MemStore is the map-backed Store used by the CLI and tests.
type MemStore struct {
	mu      sync.Mutex
	entries map[string][]Diagnostic
}

func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string][]Diagnostic)}
}

func (s *MemStore) Set(file string, diags []Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[file] = diags
}

func (s *MemStore) Delete(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, file)
}

func (s *MemStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]Diagnostic)
}

// Get returns the current entry for file, or nil when the file has no known
// issues.
func (s *MemStore) Get(file string) []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[file]
}

// Len reports how many files currently hold diagnostics.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Files returns the sorted set of files with entries.
func (s *MemStore) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for file := range s.entries {
		out = append(out, file)
	}
	sort.Strings(out)
	return out
}
