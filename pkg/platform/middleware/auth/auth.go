package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "healthcred/pkg/domain-errors"
	"healthcred/pkg/platform/httputil"
	"healthcred/pkg/requestcontext"
)

// Claims represents the session claims we expect from the token validator.
type Claims struct {
	UserID        string
	SessionID     string
	WalletAddress string
}

// TokenValidator validates wallet session tokens issued at connect time.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// SessionChecker confirms the session behind a token is still active.
// Disconnecting a wallet revokes its session, so a valid token alone is not
// enough to pass the gate.
type SessionChecker interface {
	IsActive(sessionID string) bool
}

// RequireWallet gates a route group on a connected wallet. Requests without a
// valid, still-active session token are rejected with the unauthorized
// envelope; handlers behind the gate can rely on requestcontext carrying the
// user, session, and wallet address.
func RequireWallet(validator TokenValidator, sessions SessionChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "wallet connection required"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid session token"))
				return
			}

			if sessions != nil && !sessions.IsActive(claims.SessionID) {
				logger.WarnContext(ctx, "unauthorized access - wallet disconnected",
					"request_id", requestID,
					"session_id", claims.SessionID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "wallet is disconnected"))
				return
			}

			ctx = withClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
