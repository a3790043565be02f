// Package depot holds the donation store and the host-side plumbing
// around the matching engine: persistence, the partner listing cache,
// locality filtering, record validation, and match notifications.
package depot

import (
	"fmt"
	"sync"
	"time"

	"github.com/alagad/depot/matching"
)

// DonationStore manages donation listing persistence and retrieval.
type DonationStore interface {
	// Add a new listing
	Add(d *matching.DonationRecord) error

	// Get a listing by ID
	Get(id string) (*matching.DonationRecord, error)

	// List all listings
	List() ([]*matching.DonationRecord, error)

	// ListOpen returns listings still seeking a match (active or urgent)
	ListOpen() ([]*matching.DonationRecord, error)

	// Update an existing listing
	Update(d *matching.DonationRecord) error

	// Delete a listing
	Delete(id string) error
}

// InMemoryDonationStore implements DonationStore using an in-memory
// map. Thread-safe with an RWMutex.
type InMemoryDonationStore struct {
	donations map[string]*matching.DonationRecord
	mu        sync.RWMutex
}

// NewInMemoryDonationStore creates a new in-memory donation store.
func NewInMemoryDonationStore() *InMemoryDonationStore {
	return &InMemoryDonationStore{
		donations: make(map[string]*matching.DonationRecord),
	}
}

// Add adds a new listing, enforcing unique IDs and stamping the
// created/updated timestamps.
func (s *InMemoryDonationStore) Add(d *matching.DonationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.donations[d.ID]; exists {
		return fmt.Errorf("donation with ID %s already exists", d.ID)
	}

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	s.donations[d.ID] = d
	return nil
}

// Get retrieves a listing by ID.
func (s *InMemoryDonationStore) Get(id string) (*matching.DonationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.donations[id]
	if !exists {
		return nil, fmt.Errorf("donation with ID %s not found", id)
	}
	return d, nil
}

// List returns every listing.
func (s *InMemoryDonationStore) List() ([]*matching.DonationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*matching.DonationRecord, 0, len(s.donations))
	for _, d := range s.donations {
		all = append(all, d)
	}
	return all, nil
}

// ListOpen returns listings that have not been completed.
func (s *InMemoryDonationStore) ListOpen() ([]*matching.DonationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var open []*matching.DonationRecord
	for _, d := range s.donations {
		if d.Status != matching.StatusCompleted {
			open = append(open, d)
		}
	}
	return open, nil
}

// Update updates an existing listing, preserving its CreatedAt.
func (s *InMemoryDonationStore) Update(d *matching.DonationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.donations[d.ID]
	if !exists {
		return fmt.Errorf("donation with ID %s not found", d.ID)
	}

	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now()
	s.donations[d.ID] = d
	return nil
}

// Delete removes a listing from the store.
func (s *InMemoryDonationStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.donations[id]; !exists {
		return fmt.Errorf("donation with ID %s not found", id)
	}

	delete(s.donations, id)
	return nil
}
