package offers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
)

// PostgresStore serves the catalog from the offers table. The position
// column preserves insertion order across reads.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Seed inserts the given catalog if the table is empty, preserving order
// through the position column. Existing rows win; seeding is a no-op then.
func (s *PostgresStore) Seed(ctx context.Context, catalog []Offer) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers`).Scan(&count); err != nil {
		return fmt.Errorf("count offers: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO offers (id, category, provider, threshold, terms, description, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for position, offer := range catalog {
		termsJSON, err := json.Marshal(offer.Terms)
		if err != nil {
			return fmt.Errorf("encode offer terms: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query,
			string(offer.ID),
			string(offer.Category),
			offer.Provider,
			offer.Threshold,
			termsJSON,
			offer.Description,
			position,
		); err != nil {
			return fmt.Errorf("insert offer %q: %w", offer.ID, err)
		}
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Offer, error) {
	query := `
		SELECT id, category, provider, threshold, terms, description
		FROM offers
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var out []Offer
	for rows.Next() {
		offer, err := scanOffer(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Find(ctx context.Context, offerID id.OfferID) (*Offer, error) {
	query := `
		SELECT id, category, provider, threshold, terms, description
		FROM offers
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, string(offerID))
	offer, err := scanOffer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("offer %q: %w", offerID, sentinel.ErrNotFound)
	}
	return offer, err
}

func scanOffer(scan func(dest ...any) error) (*Offer, error) {
	var offer Offer
	var rawID, rawCategory string
	var termsJSON []byte
	if err := scan(&rawID, &rawCategory, &offer.Provider, &offer.Threshold, &termsJSON, &offer.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan offer: %w", err)
	}
	offer.ID = id.OfferID(rawID)
	offer.Category = Category(rawCategory)
	if err := json.Unmarshal(termsJSON, &offer.Terms); err != nil {
		return nil, fmt.Errorf("decode offer terms: %w", err)
	}
	return &offer, nil
}
