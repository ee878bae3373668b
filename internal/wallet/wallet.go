// Package wallet manages the wallet connection lifecycle. A connected wallet
// is the platform's identity: every gated feature resolves the user through
// the active session, and at most one identity is active per user.
package wallet

import (
	"time"

	id "healthcred/pkg/domain"
)

// Identity is the connected wallet as reported by its provider.
type Identity struct {
	Provider        string `json:"provider"`
	Address         string `json:"address"`
	BalanceLovelace int64  `json:"balance_lovelace"`
}

// Session is one wallet connection lifetime. Generation orders connects for
// the same user; a connect that finishes after a newer one is discarded.
type Session struct {
	ID          id.SessionID `json:"id"`
	UserID      id.UserID    `json:"user_id"`
	Identity    Identity     `json:"identity"`
	Generation  uint64       `json:"generation"`
	ConnectedAt time.Time    `json:"connected_at"`
}

// Providers lists the wallet providers the platform can connect to, in
// display order.
func Providers() []string {
	return []string{"Yoroi", "Begin Wallet", "Nami"}
}

// KnownProvider reports whether name is a supported wallet provider.
func KnownProvider(name string) bool {
	for _, p := range Providers() {
		if p == name {
			return true
		}
	}
	return false
}
