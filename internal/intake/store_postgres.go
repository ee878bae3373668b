package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	"healthcred/pkg/platform/sentinel"
)

// PostgresStore persists workflow snapshots in the intake_workflows table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	details, result, err := marshalPayloads(rec)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO intake_workflows (id, user_id, state, declared_type, file_name, file_size, details, result, failure_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			declared_type = EXCLUDED.declared_type,
			file_name = EXCLUDED.file_name,
			file_size = EXCLUDED.file_size,
			details = EXCLUDED.details,
			result = EXCLUDED.result,
			failure_code = EXCLUDED.failure_code,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID.String(), rec.UserID.String(), string(rec.State),
		string(rec.FileType), rec.FileName, rec.FileSize,
		details, result, string(rec.FailureCode),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save workflow: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, workflowID id.WorkflowID) (*Record, error) {
	const query = `
		SELECT id, user_id, state, declared_type, file_name, file_size, details, result, failure_code, created_at, updated_at
		FROM intake_workflows
		WHERE id = $1`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, workflowID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find workflow: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID id.UserID) ([]*Record, error) {
	const query = `
		SELECT id, user_id, state, declared_type, file_name, file_size, details, result, failure_code, created_at, updated_at
		FROM intake_workflows
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("find workflows by user: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return out, nil
}

func marshalPayloads(rec *Record) (details, result []byte, err error) {
	if rec.Details != nil {
		if details, err = json.Marshal(rec.Details); err != nil {
			return nil, nil, fmt.Errorf("marshal details: %w", err)
		}
	}
	if rec.Result != nil {
		if result, err = json.Marshal(rec.Result); err != nil {
			return nil, nil, fmt.Errorf("marshal result: %w", err)
		}
	}
	return details, result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec             Record
		rawID, rawUser  string
		state, fileType string
		failureCode     string
		details, result []byte
	)
	if err := row.Scan(&rawID, &rawUser, &state, &fileType, &rec.FileName, &rec.FileSize,
		&details, &result, &failureCode, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}

	workflowID, err := id.ParseWorkflowID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse workflow id: %w", err)
	}
	userID, err := id.ParseUserID(rawUser)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	rec.ID = workflowID
	rec.UserID = userID
	rec.State = State(state)
	rec.FileType = FileType(fileType)
	rec.FailureCode = dErrors.Code(failureCode)

	if len(details) > 0 {
		rec.Details = &Details{}
		if err := json.Unmarshal(details, rec.Details); err != nil {
			return nil, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	if len(result) > 0 {
		rec.Result = &VerificationResult{}
		if err := json.Unmarshal(result, rec.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &rec, nil
}
