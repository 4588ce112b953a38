package signer

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mrz1836/stationkey/internal/address"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// exportBlob is the JSON document inside an export, before base64 encoding.
type exportBlob struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	EncryptedKey string `json:"encrypted_key"`
}

// ExportedKey is a decrypted export.
type ExportedKey struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PrivateKeyHex string `json:"private_key"`
}

// ExportEncrypted produces a portable base64 blob holding the wallet name,
// its default-coin-type address, and the hex private key encrypted under
// password. Seed material derives the key at the record's index, honoring
// the legacy coin type; raw material exports the key stored for the default
// coin type and reuses the descriptor's stored address words.
func (e *Engine) ExportEncrypted(_ context.Context, desc *wallet.Descriptor, material wallet.KeyRecord, password string) (string, error) {
	if desc == nil {
		return "", stationerr.ErrNoWalletConnected
	}

	var priv []byte
	var addr string
	switch rec := material.(type) {
	case *wallet.SeedRecord:
		if len(rec.Seed) == 0 {
			return "", stationerr.ErrKeyNotFound
		}
		derived, err := wallet.DerivePrivateKey(rec.Seed, rec.EffectiveCoinType(wallet.DefaultCoinType), rec.Index)
		if err != nil {
			return "", stationerr.Wrap(stationerr.ErrKeyNotFound, "deriving export key: %v", err)
		}
		priv = derived

		pub, err := wallet.PublicKeyFromPrivate(priv)
		if err != nil {
			stationcrypto.ZeroBytes(priv)
			return "", err
		}
		if addr, err = address.FromPubKey(pub, address.DefaultPrefix); err != nil {
			stationcrypto.ZeroBytes(priv)
			return "", err
		}

	case *wallet.RawKeyRecord:
		stored, ok := rec.Keys[wallet.DefaultCoinType]
		if !ok || len(stored) == 0 {
			return "", stationerr.ErrKeyNotFound
		}
		priv = append([]byte(nil), stored...)

		var err error
		addr, err = rawExportAddress(desc, priv)
		if err != nil {
			stationcrypto.ZeroBytes(priv)
			return "", err
		}

	default:
		return "", stationerr.ErrKeyNotFound
	}

	privHex := make([]byte, hex.EncodedLen(len(priv)))
	hex.Encode(privHex, priv)
	stationcrypto.ZeroBytes(priv)
	encrypted, err := stationcrypto.EncryptString(privHex, password)
	stationcrypto.ZeroBytes(privHex)
	if err != nil {
		return "", fmt.Errorf("encrypting export: %w", err)
	}

	data, err := json.Marshal(exportBlob{
		Name:         desc.Name,
		Address:      addr,
		EncryptedKey: encrypted,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling export: %w", err)
	}

	e.log.Debug("exported key for wallet %q (%s)", desc.Name, addr)
	return base64.StdEncoding.EncodeToString(data), nil
}

// rawExportAddress prefers the stored address words and falls back to the key.
func rawExportAddress(desc *wallet.Descriptor, priv []byte) (string, error) {
	if words, ok := desc.WordsFor(wallet.DefaultCoinType); ok {
		return address.WordsToAddress(words, address.DefaultPrefix)
	}
	pub, err := wallet.PublicKeyFromPrivate(priv)
	if err != nil {
		return "", err
	}
	return address.FromPubKey(pub, address.DefaultPrefix)
}

// DecryptExport reverses ExportEncrypted.
func DecryptExport(blob, password string) (*ExportedKey, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{"reason": "export is not base64"})
	}

	var eb exportBlob
	if err := json.Unmarshal(data, &eb); err != nil || eb.EncryptedKey == "" {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{"reason": "malformed export"})
	}

	privHex, err := stationcrypto.DecryptString(eb.EncryptedKey, password)
	if err != nil {
		return nil, stationerr.ErrIncorrectPassword
	}

	return &ExportedKey{Name: eb.Name, Address: eb.Address, PrivateKeyHex: privHex}, nil
}
