package handler

import (
	"time"

	"healthcred/internal/intake"
)

// CaptureDetailsRequest is the body of POST /intake/{workflowID}/details.
type CaptureDetailsRequest struct {
	RecordType  string     `json:"record_type"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
	ServiceDate *time.Time `json:"service_date,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	recordType intake.RecordType
}

// Validate parses the declared record type. Amount and date bounds are
// enforced by the workflow so the rules live in one place.
func (r *CaptureDetailsRequest) Validate() error {
	recordType, err := intake.ParseRecordType(r.RecordType)
	if err != nil {
		return err
	}
	r.recordType = recordType
	return nil
}

// Details converts the validated request to the domain type.
func (r *CaptureDetailsRequest) Details() intake.Details {
	return intake.Details{
		RecordType:  r.recordType,
		AmountCents: r.AmountCents,
		ServiceDate: r.ServiceDate,
		Provider:    r.Provider,
		Notes:       r.Notes,
	}
}
