package term

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Sentinel errors for store mutations.
var (
	ErrEmptyKey  = errors.New("term key must not be empty")
	ErrNotFound  = errors.New("term not found")
	ErrDuplicate = errors.New("term already exists")
)

// Store is a mutable terminology registry with copy-on-write
// snapshots. Mutations are serialized; in-flight reviews keep reading
// the snapshot they started with.
type Store struct {
	mu       sync.RWMutex
	snapshot *Dictionary
}

// NewStore creates a store seeded with the given entries.
func NewStore(entries []Entry) *Store {
	return &Store{snapshot: NewDictionary(entries)}
}

// Lookup implements Provider against the current snapshot.
func (s *Store) Lookup(token string) (Entry, bool) {
	return s.current().Lookup(token)
}

// Snapshot implements Provider. The returned dictionary stays
// consistent even if the store is mutated afterwards.
func (s *Store) Snapshot() (*Dictionary, error) {
	d := s.current()
	if d == nil {
		return nil, ErrUnavailable
	}

	return d, nil
}

func (s *Store) current() *Dictionary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Add inserts a new entry. Adding an existing key fails.
func (s *Store) Add(e Entry) error {
	e.Key = Normalize(e.Key)
	if e.Key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snapshot.entries[e.Key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, e.Key)
	}

	s.replaceLocked(e.Key, &e)

	return nil
}

// Update replaces an existing entry.
func (s *Store) Update(e Entry) error {
	e.Key = Normalize(e.Key)
	if e.Key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snapshot.entries[e.Key]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, e.Key)
	}

	s.replaceLocked(e.Key, &e)

	return nil
}

// Delete removes an entry by key.
func (s *Store) Delete(key string) error {
	key = Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snapshot.entries[key]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	s.replaceLocked(key, nil)

	return nil
}

// replaceLocked publishes a new snapshot with key set to e (or removed
// when e is nil). Callers must hold the write lock.
func (s *Store) replaceLocked(key string, e *Entry) {
	next := make([]Entry, 0, len(s.snapshot.entries)+1)

	for _, k := range s.snapshot.keys {
		if k == key {
			continue
		}

		next = append(next, s.snapshot.entries[k])
	}

	if e != nil {
		next = append(next, *e)
	}

	s.snapshot = NewDictionary(next)
}

// Search returns entries whose key, canonical name, or tags contain the
// query substring, in key order.
func (s *Store) Search(query string) []Entry {
	query = Normalize(query)
	dict := s.current()

	var out []Entry

	for _, e := range dict.Entries() {
		if matchesQuery(e, query) {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

func matchesQuery(e Entry, query string) bool {
	if strings.Contains(e.Key, query) || strings.Contains(strings.ToLower(e.Canonical), query) {
		return true
	}

	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}

	return false
}

// Len returns the number of entries in the current snapshot.
func (s *Store) Len() int {
	return s.current().Len()
}
