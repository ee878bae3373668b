package auth

import (
	"context"

	id "healthcred/pkg/domain"
	"healthcred/pkg/requestcontext"
)

// withClaims copies validated session claims into the request context using
// the shared requestcontext keys so services stay HTTP-agnostic.
func withClaims(ctx context.Context, claims *Claims) context.Context {
	if userID, err := id.ParseUserID(claims.UserID); err == nil {
		ctx = requestcontext.WithUserID(ctx, userID)
	}
	if sessionID, err := id.ParseSessionID(claims.SessionID); err == nil {
		ctx = requestcontext.WithSessionID(ctx, sessionID)
	}
	if claims.WalletAddress != "" {
		ctx = requestcontext.WithWalletAddress(ctx, claims.WalletAddress)
	}
	return ctx
}
