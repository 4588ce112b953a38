package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/hdkeychain/v3"
)

// PrivateKeyLength is the size of a secp256k1 private key scalar.
const PrivateKeyLength = 32

var (
	// ErrInvalidPrivateKey indicates the private key is not a valid secp256k1 scalar.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidSeed indicates the seed is unusable for HD derivation.
	ErrInvalidSeed = errors.New("invalid seed")

	// ErrInvalidAddressIndex indicates an address index in the hardened range.
	ErrInvalidAddressIndex = errors.New("address index must be below 2^31")
)

// hdNetParams satisfies hdkeychain.NetworkParams for BIP32 key derivation.
// The version bytes only matter for serialized extended keys, which are never exported.
type hdNetParams struct{}

func (hdNetParams) HDPrivKeyVersion() [4]byte { return [4]byte{0x04, 0x88, 0xAD, 0xE4} }
func (hdNetParams) HDPubKeyVersion() [4]byte  { return [4]byte{0x04, 0x88, 0xB2, 0x1E} }

// DerivationPath returns the BIP44 path used for a coin type and address index.
func DerivationPath(coinType CoinType, index uint32) string {
	return fmt.Sprintf("m/44'/%d'/0'/0/%d", uint32(coinType), index)
}

// DerivePrivateKey derives the private key at m/44'/coinType'/0'/0/index.
// The returned key must be zeroed by the caller after use.
func DerivePrivateKey(seed []byte, coinType CoinType, index uint32) ([]byte, error) {
	if err := ValidateAddressIndex(index); err != nil {
		return nil, err
	}

	masterKey, err := hdkeychain.NewMaster(seed, hdNetParams{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	defer masterKey.Zero()

	key, err := deriveBIP44Key(masterKey, coinType, index)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	serialized, err := key.SerializedPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize private key: %w", err)
	}
	privKey := make([]byte, PrivateKeyLength)
	copy(privKey[PrivateKeyLength-len(serialized):], serialized)
	return privKey, nil
}

// ValidateAddressIndex rejects indices that would select a hardened child.
func ValidateAddressIndex(index uint32) error {
	if index >= hdkeychain.HardenedKeyStart {
		return ErrInvalidAddressIndex
	}
	return nil
}

// deriveBIP44Key walks m / 44' / coin_type' / 0' / 0 / index.
func deriveBIP44Key(masterKey *hdkeychain.ExtendedKey, coinType CoinType, index uint32) (*hdkeychain.ExtendedKey, error) {
	path := []struct {
		name  string
		child uint32
	}{
		{"purpose", hdkeychain.HardenedKeyStart + 44},
		{"coin type", hdkeychain.HardenedKeyStart + uint32(coinType)},
		{"account", hdkeychain.HardenedKeyStart + 0},
		{"change", 0},
		{"index", index},
	}

	key := masterKey
	for _, step := range path {
		next, err := key.ChildBIP32Std(step.child)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s key: %w", step.name, err)
		}
		if key != masterKey {
			key.Zero()
		}
		key = next
	}
	return key, nil
}

// PublicKeyFromPrivate returns the 33-byte compressed secp256k1 public key.
func PublicKeyFromPrivate(privateKey []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeyLength {
		return nil, ErrInvalidPrivateKey
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(privateKey); overflow || scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	priv := secp256k1.NewPrivateKey(&scalar)
	defer priv.Zero()
	return priv.PubKey().SerializeCompressed(), nil
}

// ParseHexKey parses a hex-encoded private key and validates it as a secp256k1 scalar.
func ParseHexKey(hexKey string) ([]byte, error) {
	hexKey = strings.TrimSpace(hexKey)
	if strings.HasPrefix(hexKey, "0x") || strings.HasPrefix(hexKey, "0X") {
		hexKey = hexKey[2:]
	}
	if len(hexKey) != PrivateKeyLength*2 {
		return nil, ErrInvalidPrivateKey
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	if _, err := PublicKeyFromPrivate(key); err != nil {
		return nil, err
	}
	return key, nil
}
