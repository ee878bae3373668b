package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and capability adapters
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: unique constraint or concurrent-update collision
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrSuperseded: pending operation overtaken by a newer lifecycle change
// - ErrUnavailable: capability or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrSuperseded   = errors.New("superseded")
	ErrUnavailable  = errors.New("unavailable")
)
