package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	dErrors "healthcred/pkg/domain-errors"
)

// Connector opens a connection to a wallet provider and reports the wallet
// identity. Implementations must honor context cancellation.
type Connector interface {
	Connect(ctx context.Context, provider string) (*Identity, error)
}

// bech32Chars is the character set of Cardano payment addresses.
const bech32Chars = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Simulated is a connector that stands in for a browser wallet extension.
// Each provider resolves to a stable address and balance after a short
// handshake delay.
type Simulated struct {
	latency time.Duration
}

// NewSimulated builds a connector that takes roughly latency per handshake.
func NewSimulated(latency time.Duration) *Simulated {
	return &Simulated{latency: latency}
}

func (s *Simulated) Connect(ctx context.Context, provider string) (*Identity, error) {
	if !KnownProvider(provider) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown wallet provider %q", provider)
	}

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &Identity{
		Provider:        provider,
		Address:         addressFor(provider),
		BalanceLovelace: balanceFor(provider),
	}, nil
}

// addressFor derives a stable payment address from the provider name.
func addressFor(provider string) string {
	sum := sha256.Sum256([]byte("healthcred-wallet:" + provider))
	body := make([]byte, 0, 52)
	for i := 0; len(body) < 52; i++ {
		body = append(body, bech32Chars[sum[i%len(sum)]%32])
		sum[i%len(sum)] += 7
	}
	return fmt.Sprintf("addr1qx%s", body)
}

// balanceFor derives a stable demo balance between 100 and 5100 ada.
func balanceFor(provider string) int64 {
	sum := sha256.Sum256([]byte("healthcred-balance:" + provider))
	raw := binary.BigEndian.Uint32(sum[:4])
	return int64(100+raw%5000) * 1_000_000
}

// Fixed always reports the same identity, for tests.
type Fixed struct {
	Identity Identity
	Err      error
}

func (f *Fixed) Connect(ctx context.Context, provider string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	identity := f.Identity
	if identity.Provider == "" {
		identity.Provider = provider
	}
	return &identity, nil
}
