package intake

import (
	"context"

	id "healthcred/pkg/domain"
)

// Store persists workflow snapshots. Save upserts by workflow ID; the live
// state machine remains authoritative while the workflow is in flight.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Find(ctx context.Context, workflowID id.WorkflowID) (*Record, error)
	FindByUser(ctx context.Context, userID id.UserID) ([]*Record, error)
}

// AnalysisRequest carries everything an analyzer may inspect. Raw bytes are
// already in the blob store; analysis works from the hash and declared
// details.
type AnalysisRequest struct {
	ContentHash string
	FileType    FileType
	FileSize    int64
	Details     Details
}

// Analyzer verifies a submitted document. Implementations must honor context
// cancellation and return the context error unwrapped.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*VerificationResult, error)
}
