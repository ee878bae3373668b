package handler

import (
	"time"

	"healthcred/internal/intake"
)

// WorkflowResponse is the HTTP representation of a workflow snapshot. Raw
// file bytes never appear in responses.
type WorkflowResponse struct {
	ID          string                     `json:"id"`
	State       string                     `json:"state"`
	FileName    string                     `json:"file_name,omitempty"`
	FileType    string                     `json:"file_type,omitempty"`
	FileSize    int64                      `json:"file_size,omitempty"`
	Details     *intake.Details            `json:"details,omitempty"`
	Result      *intake.VerificationResult `json:"result,omitempty"`
	FailureCode string                     `json:"failure_code,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// FromRecord converts a workflow snapshot to an HTTP response.
func FromRecord(rec *intake.Record) *WorkflowResponse {
	return &WorkflowResponse{
		ID:          rec.ID.String(),
		State:       string(rec.State),
		FileName:    rec.FileName,
		FileType:    string(rec.FileType),
		FileSize:    rec.FileSize,
		Details:     rec.Details,
		Result:      rec.Result,
		FailureCode: string(rec.FailureCode),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
