// Package identity defines the contract the dispatch core uses to resolve a
// recipient's contact address and language preference. The real user-profile
// store lives outside this core; an in-memory implementation is provided for
// the CLI and tests.
package identity

import (
	"context"
	"sync"
)

// Store resolves recipient contact details. Both lookups report absence via
// the bool return rather than an error: a recipient without an address or a
// stored language preference is a normal condition.
type Store interface {
	// Address returns the recipient's contact address, if any.
	Address(ctx context.Context, recipientID string) (string, bool, error)
	// Language returns the recipient's stored language preference, if any.
	Language(ctx context.Context, recipientID string) (string, bool, error)
}

// Recipient is an entry in the in-memory store.
type Recipient struct {
	ID       string
	Address  string
	Language string
}

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu         sync.RWMutex
	recipients map[string]Recipient
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recipients: map[string]Recipient{}}
}

// Put adds or replaces a recipient.
func (s *MemoryStore) Put(r Recipient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients[r.ID] = r
}

// Address implements Store.
func (s *MemoryStore) Address(_ context.Context, recipientID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipients[recipientID]
	if !ok || r.Address == "" {
		return "", false, nil
	}
	return r.Address, true, nil
}

// Language implements Store.
func (s *MemoryStore) Language(_ context.Context, recipientID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipients[recipientID]
	if !ok || r.Language == "" {
		return "", false, nil
	}
	return r.Language, true, nil
}
