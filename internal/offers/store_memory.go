package offers

import (
	"context"
	"fmt"
	"sync"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
)

// InMemoryStore serves the catalog from memory. IDs are unique; insertion
// order is preserved.
type InMemoryStore struct {
	mu     sync.RWMutex
	order  []id.OfferID
	offers map[id.OfferID]Offer
}

// NewInMemoryStore constructs a store holding the given offers in order.
// Duplicate IDs are rejected.
func NewInMemoryStore(catalog []Offer) (*InMemoryStore, error) {
	s := &InMemoryStore{offers: make(map[id.OfferID]Offer, len(catalog))}
	for _, offer := range catalog {
		if _, ok := s.offers[offer.ID]; ok {
			return nil, fmt.Errorf("duplicate offer id %q: %w", offer.ID, sentinel.ErrConflict)
		}
		s.offers[offer.ID] = offer
		s.order = append(s.order, offer.ID)
	}
	return s, nil
}

// NewSeededStore constructs a store holding the curated seed catalog.
func NewSeededStore() *InMemoryStore {
	s, err := NewInMemoryStore(SeedCatalog())
	if err != nil {
		// The seed catalog is compiled in; duplicate IDs there are a bug.
		panic(err)
	}
	return s
}

func (s *InMemoryStore) List(_ context.Context) ([]Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Offer, 0, len(s.order))
	for _, offerID := range s.order {
		out = append(out, s.offers[offerID])
	}
	return out, nil
}

func (s *InMemoryStore) Find(_ context.Context, offerID id.OfferID) (*Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offer, ok := s.offers[offerID]; ok {
		return &offer, nil
	}
	return nil, fmt.Errorf("offer %q: %w", offerID, sentinel.ErrNotFound)
}
