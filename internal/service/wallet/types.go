package wallet

import (
	"github.com/mrz1836/stationkey/internal/wallet"
)

// AddSeedRequest imports a wallet from a BIP39 mnemonic.
type AddSeedRequest struct {
	Name       string
	Mnemonic   string
	Passphrase string
	Password   string

	// Legacy derives the default coin type on the historical path.
	Legacy bool

	// Index is the BIP44 address index.
	Index uint32
}

// AddKeyRequest imports a wallet from hex private keys, one per coin type.
type AddKeyRequest struct {
	Name     string
	Keys     map[wallet.CoinType]string
	Password string
}

// Summary is a display-safe view of a stored wallet.
type Summary struct {
	Name      string            `json:"name"`
	Kind      wallet.Kind       `json:"kind"`
	Locked    bool              `json:"locked"`
	Legacy    bool              `json:"legacy,omitempty"`
	CoinTypes []wallet.CoinType `json:"coin_types"`
}
