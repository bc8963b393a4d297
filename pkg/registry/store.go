package registry

import (
	"fmt"
	"sort"
	"sync"
)

type entry[T any] struct {
	id       string
	value    T
	priority int
}

// store is the ordered, sealable storage shared by every registry shape
type store[T any] struct {
	mu      sync.RWMutex
	sealed  bool
	entries []entry[T]
	index   map[string]int
}

func (s *store[T]) add(e entry[T], keyed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}
	if keyed {
		if s.index == nil {
			s.index = make(map[string]int)
		}
		if _, exists := s.index[e.id]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateIdentifier, e.id)
		}
		s.index[e.id] = len(s.entries)
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *store[T]) get(id string) (entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return entry[T]{}, false
	}
	return s.entries[i], true
}

// snapshot copies the entries in registration order or, when byPriority is
// set, by descending priority with ties kept in registration order.
func (s *store[T]) snapshot(byPriority bool) []entry[T] {
	s.mu.RLock()
	out := make([]entry[T], len(s.entries))
	copy(out, s.entries)
	s.mu.RUnlock()

	if byPriority {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].priority > out[j].priority
		})
	}
	return out
}

func (s *store[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *store[T]) seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

func (s *store[T]) isSealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

func values[T any](entries []entry[T]) []T {
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

func identifiers[T any](entries []entry[T]) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}
