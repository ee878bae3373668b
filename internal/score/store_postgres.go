package score

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
)

// PostgresStore persists score snapshots in the health_scores table. Writer
// serialization relies on the version column: updates carry the version they
// read, and a zero-row update means a concurrent writer won.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, userID id.UserID) (*Snapshot, error) {
	query := `
		SELECT score, previous_score, factors, version, updated_at
		FROM health_scores
		WHERE user_id = $1
	`
	snapshot := Snapshot{UserID: userID}
	var factorsJSON []byte
	err := s.db.QueryRowContext(ctx, query, userID.String()).Scan(
		&snapshot.Score,
		&snapshot.PreviousScore,
		&factorsJSON,
		&snapshot.Version,
		&snapshot.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("score snapshot for user %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query health score: %w", err)
	}
	if err := json.Unmarshal(factorsJSON, &snapshot.Factors); err != nil {
		return nil, fmt.Errorf("decode score factors: %w", err)
	}
	return &snapshot, nil
}

func (s *PostgresStore) Create(ctx context.Context, snapshot *Snapshot) error {
	factorsJSON, err := json.Marshal(snapshot.Factors)
	if err != nil {
		return fmt.Errorf("encode score factors: %w", err)
	}
	query := `
		INSERT INTO health_scores (user_id, score, previous_score, factors, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		snapshot.UserID.String(),
		snapshot.Score,
		snapshot.PreviousScore,
		factorsJSON,
		snapshot.Version,
		snapshot.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("score snapshot for user %s exists: %w", snapshot.UserID, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert health score: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, snapshot *Snapshot, expectedVersion int64) error {
	factorsJSON, err := json.Marshal(snapshot.Factors)
	if err != nil {
		return fmt.Errorf("encode score factors: %w", err)
	}
	query := `
		UPDATE health_scores
		SET score = $2, previous_score = $3, factors = $4, version = $5, updated_at = $6
		WHERE user_id = $1 AND version = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		snapshot.UserID.String(),
		snapshot.Score,
		snapshot.PreviousScore,
		factorsJSON,
		snapshot.Version,
		snapshot.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update health score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update health score rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("score version %d is stale: %w", expectedVersion, sentinel.ErrConflict)
	}
	return nil
}
