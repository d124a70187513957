package catalog

import (
	"maps"
	"sync"
)

// Document is an open-ended JSON object. Manifests and connection info are
// both carried as documents and never interpreted by the mocks.
type Document map[string]any

// Store holds one process-wide document. Replace swaps the whole mapping, so
// readers see either the previous value or the new one, never a merge.
type Store struct {
	mu  sync.RWMutex
	doc Document
}

func NewStore(initial Document) *Store {
	s := &Store{}
	s.Replace(initial)
	return s
}

// Get returns a shallow copy of the current document. It is never nil.
func (s *Store) Get() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return Document{}
	}
	return maps.Clone(s.doc)
}

func (s *Store) Replace(doc Document) {
	next := Document{}
	if doc != nil {
		next = maps.Clone(doc)
	}
	s.mu.Lock()
	s.doc = next
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc)
}
