// Package address converts between compressed public keys, bech32 address
// words, and human-readable bech32 addresses.
package address

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	//nolint:gosec,staticcheck // G507,SA1019: RIPEMD160 is part of the Cosmos address format
	"golang.org/x/crypto/ripemd160"

	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// CompressedPubKeyLength is the size of a compressed secp256k1 public key.
const CompressedPubKeyLength = 33

// DefaultPrefix is the bech32 human-readable part for Terra accounts.
const DefaultPrefix = "terra"

// Hash160 computes RIPEMD160(SHA256(data)), the account address payload.
//
//nolint:gosec // G406: RIPEMD160 required by the address format
func Hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

// WordsFromPubKey returns the bech32 words for a compressed public key.
func WordsFromPubKey(pubKey []byte) (wallet.Words, error) {
	if len(pubKey) != CompressedPubKeyLength {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput,
			map[string]string{"pubkey_length": fmt.Sprint(len(pubKey))})
	}
	words, err := bech32.ConvertBits(Hash160(pubKey), 8, 5, true)
	if err != nil {
		return nil, fmt.Errorf("converting address bits: %w", err)
	}
	return words, nil
}

// WordsToAddress encodes address words with the given human-readable prefix.
func WordsToAddress(words wallet.Words, prefix string) (string, error) {
	if len(words) == 0 {
		return "", stationerr.ErrInvalidAddress
	}
	addr, err := bech32.Encode(prefix, words)
	if err != nil {
		return "", stationerr.Wrap(stationerr.ErrInvalidAddress, "encoding %s address", prefix)
	}
	return addr, nil
}

// AddressToWords decodes a bech32 address into its prefix and words.
func AddressToWords(addr string) (string, wallet.Words, error) {
	prefix, words, err := bech32.Decode(strings.TrimSpace(addr))
	if err != nil {
		return "", nil, stationerr.WithDetails(stationerr.ErrInvalidAddress,
			map[string]string{"address": addr})
	}
	return prefix, words, nil
}

// FromPubKey derives the bech32 address for a compressed public key.
func FromPubKey(pubKey []byte, prefix string) (string, error) {
	words, err := WordsFromPubKey(pubKey)
	if err != nil {
		return "", err
	}
	return WordsToAddress(words, prefix)
}

// Validate checks that addr is a well-formed bech32 address with the expected prefix.
func Validate(addr, prefix string) error {
	got, words, err := AddressToWords(addr)
	if err != nil {
		return err
	}
	if got != prefix {
		return stationerr.WithDetails(stationerr.ErrInvalidAddress,
			map[string]string{"expected_prefix": prefix, "prefix": got})
	}
	if _, err := bech32.ConvertBits(words, 5, 8, false); err != nil {
		return stationerr.WithDetails(stationerr.ErrInvalidAddress,
			map[string]string{"address": addr})
	}
	return nil
}
