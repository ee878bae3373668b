package handler

import (
	"strings"

	dErrors "healthcred/pkg/domain-errors"
)

// ConnectRequest is the body of POST /wallet/connect.
type ConnectRequest struct {
	Provider string `json:"provider"`
}

// Validate checks the provider field is present. Whether the provider is
// supported is the connector's call.
func (r *ConnectRequest) Validate() error {
	r.Provider = strings.TrimSpace(r.Provider)
	if r.Provider == "" {
		return dErrors.New(dErrors.CodeInvalidField, "provider is required")
	}
	return nil
}
