package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "healthcred/pkg/domain-errors"
	"healthcred/pkg/platform/middleware/auth"
)

// sessionClaims is the JWT payload of a wallet session token.
type sessionClaims struct {
	UserID        string `json:"uid"`
	SessionID     string `json:"sid"`
	WalletAddress string `json:"addr"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates wallet session tokens. Tokens are valid
// for the session TTL; the gate additionally checks the session is still
// active, so disconnect revokes a token before it expires.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenManager builds a token manager signing with the given key.
func NewTokenManager(signingKey []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{signingKey: signingKey, ttl: ttl}
}

// Issue signs a token for the session.
func (m *TokenManager) Issue(session *Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID:        session.UserID.String(),
		SessionID:     session.ID.String(),
		WalletAddress: session.Identity.Address,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "healthcred",
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token. Implements the gate's
// TokenValidator.
func (m *TokenManager) ValidateToken(tokenString string) (*auth.Claims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithIssuer("healthcred"), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session token expired")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}

	return &auth.Claims{
		UserID:        claims.UserID,
		SessionID:     claims.SessionID,
		WalletAddress: claims.WalletAddress,
	}, nil
}
