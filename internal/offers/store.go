package offers

import (
	"context"

	id "healthcred/pkg/domain"
)

// Store serves the offer catalog. List returns offers in insertion order;
// that order is the display order and must survive persistence.
type Store interface {
	List(ctx context.Context) ([]Offer, error)
	Find(ctx context.Context, offerID id.OfferID) (*Offer, error)
}
