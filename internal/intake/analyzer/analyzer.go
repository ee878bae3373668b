// Package analyzer provides the document analyzers behind the intake
// verification stage. The heuristic implementation stands in for an external
// document analysis provider.
package analyzer

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"healthcred/internal/intake"
	dErrors "healthcred/pkg/domain-errors"
)

// baseDelta is the score movement awarded per verified record type.
var baseDelta = map[intake.RecordType]int{
	intake.RecordTypeReceipt:      8,
	intake.RecordTypeLabReport:    7,
	intake.RecordTypePrescription: 6,
	intake.RecordTypeDiagnosis:    5,
	intake.RecordTypeInsurance:    4,
}

// Heuristic is a deterministic analyzer with simulated provider latency.
// The same request always yields the same result.
type Heuristic struct {
	latency time.Duration
}

// NewHeuristic builds an analyzer that takes roughly latency per document.
func NewHeuristic(latency time.Duration) *Heuristic {
	return &Heuristic{latency: latency}
}

func (h *Heuristic) Analyze(ctx context.Context, req intake.AnalysisRequest) (*intake.VerificationResult, error) {
	if h.latency > 0 {
		timer := time.NewTimer(h.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	delta, ok := baseDelta[req.Details.RecordType]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeVerificationFailed, "cannot verify record type %q", req.Details.RecordType)
	}

	amount := amountFromHash(req.ContentHash)
	if req.Details.AmountCents != nil {
		amount = *req.Details.AmountCents
	}

	return &intake.VerificationResult{
		DocumentType:        req.Details.RecordType,
		VerifiedAmountCents: amount,
		ScoreDelta:          delta,
		ContentHash:         req.ContentHash,
	}, nil
}

// amountFromHash derives a stable synthetic amount when no amount was
// declared, between $1.00 and $500.00.
func amountFromHash(contentHash string) int64 {
	raw, err := hex.DecodeString(strings.TrimPrefix(contentHash, "0x"))
	if err != nil || len(raw) < 2 {
		return 100
	}
	return 100 + (int64(raw[0])<<8|int64(raw[1]))%49900
}

// Fixed always returns the same result, for tests and local runs.
type Fixed struct {
	Result intake.VerificationResult
	Err    error
}

func (f *Fixed) Analyze(ctx context.Context, req intake.AnalysisRequest) (*intake.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	r := f.Result
	if r.ContentHash == "" {
		r.ContentHash = req.ContentHash
	}
	if r.DocumentType == "" {
		r.DocumentType = req.Details.RecordType
	}
	return &r, nil
}
