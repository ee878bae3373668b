package handler

import (
	"time"

	"healthcred/internal/wallet"
)

// SessionResponse is the HTTP representation of a wallet session.
type SessionResponse struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	Provider        string    `json:"provider"`
	Address         string    `json:"address"`
	BalanceLovelace int64     `json:"balance_lovelace"`
	ConnectedAt     time.Time `json:"connected_at"`
}

// ConnectResponse is the HTTP response for POST /wallet/connect.
type ConnectResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// FromSession converts a domain session to an HTTP response.
func FromSession(session *wallet.Session) *SessionResponse {
	return &SessionResponse{
		SessionID:       session.ID.String(),
		UserID:          session.UserID.String(),
		Provider:        session.Identity.Provider,
		Address:         session.Identity.Address,
		BalanceLovelace: session.Identity.BalanceLovelace,
		ConnectedAt:     session.ConnectedAt,
	}
}

// FromConnectResult converts a connect outcome to an HTTP response.
func FromConnectResult(result *wallet.ConnectResult) *ConnectResponse {
	return &ConnectResponse{
		Token:   result.Token,
		Session: *FromSession(result.Session),
	}
}
