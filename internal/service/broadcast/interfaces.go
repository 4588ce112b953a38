package broadcast

import (
	"context"

	"github.com/mrz1836/stationkey/internal/keys"
	"github.com/mrz1836/stationkey/internal/signer"
	"github.com/mrz1836/stationkey/internal/tx"
	"github.com/mrz1836/stationkey/internal/wallet"
)

// SessionProvider exposes the connected wallet.
type SessionProvider interface {
	GetConnected() (*wallet.Descriptor, error)
}

// KeyResolver turns a descriptor and password into a signing key.
type KeyResolver interface {
	Resolve(ctx context.Context, desc *wallet.Descriptor, coinType wallet.CoinType, password string) (keys.SigningKey, error)
}

// Signer produces public keys, signatures and signed transactions.
type Signer interface {
	DerivePublicKey(ctx context.Context, key keys.SigningKey) ([]byte, error)
	SignBytes(ctx context.Context, key keys.SigningKey, payload []byte) (*signer.BytesSignature, error)
	SignAndAssembleTx(ctx context.Context, key keys.SigningKey, opts *tx.Options, mode tx.SignMode) (*tx.SignedTx, error)
}

// Broadcaster submits signed transactions to a chain.
type Broadcaster interface {
	BroadcastSync(ctx context.Context, signed *tx.SignedTx, chainID string) (*tx.BroadcastResult, error)
}

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}
