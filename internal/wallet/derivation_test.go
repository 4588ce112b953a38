package wallet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Standard BIP39 test vector mnemonic, no passphrase.
//
//nolint:gochecknoglobals // test vector
var derivationTestMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func getTestSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := MnemonicToSeed(derivationTestMnemonic, "")
	require.NoError(t, err)
	return seed
}

func TestDerivationPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "m/44'/330'/0'/0/0", DerivationPath(CoinTypeTerra, 0))
	assert.Equal(t, "m/44'/118'/0'/0/7", DerivationPath(CoinTypeCosmos, 7))
}

func TestDerivePrivateKey_Deterministic(t *testing.T) {
	t.Parallel()
	seed := getTestSeed(t)

	a, err := DerivePrivateKey(seed, CoinTypeTerra, 0)
	require.NoError(t, err)
	b, err := DerivePrivateKey(seed, CoinTypeTerra, 0)
	require.NoError(t, err)

	assert.Len(t, a, PrivateKeyLength)
	assert.Equal(t, a, b)
}

func TestDerivePrivateKey_CoinTypesAndIndicesDiffer(t *testing.T) {
	t.Parallel()
	seed := getTestSeed(t)

	terra, err := DerivePrivateKey(seed, CoinTypeTerra, 0)
	require.NoError(t, err)
	cosmos, err := DerivePrivateKey(seed, CoinTypeCosmos, 0)
	require.NoError(t, err)
	next, err := DerivePrivateKey(seed, CoinTypeTerra, 1)
	require.NoError(t, err)

	assert.NotEqual(t, terra, cosmos)
	assert.NotEqual(t, terra, next)
}

func TestDerivePrivateKey_HardenedIndexRejected(t *testing.T) {
	t.Parallel()
	seed := getTestSeed(t)

	_, err := DerivePrivateKey(seed, CoinTypeTerra, 1<<31)
	require.ErrorIs(t, err, ErrInvalidAddressIndex)
	_, err = DerivePrivateKey(seed, CoinTypeTerra, 1<<32-1)
	require.ErrorIs(t, err, ErrInvalidAddressIndex)

	_, err = DerivePrivateKey(seed, CoinTypeTerra, 1<<31-1)
	require.NoError(t, err)
	require.NoError(t, ValidateAddressIndex(0))
}

func TestDerivePrivateKey_InvalidSeed(t *testing.T) {
	t.Parallel()
	_, err := DerivePrivateKey([]byte{1, 2, 3}, CoinTypeTerra, 0)
	require.ErrorIs(t, err, ErrInvalidSeed)
}

func TestPublicKeyFromPrivate(t *testing.T) {
	t.Parallel()
	seed := getTestSeed(t)
	priv, err := DerivePrivateKey(seed, CoinTypeTerra, 0)
	require.NoError(t, err)

	pub, err := PublicKeyFromPrivate(priv)
	require.NoError(t, err)
	require.Len(t, pub, 33)
	assert.Contains(t, []byte{0x02, 0x03}, pub[0])

	again, err := PublicKeyFromPrivate(priv)
	require.NoError(t, err)
	assert.Equal(t, pub, again)
}

func TestPublicKeyFromPrivate_Invalid(t *testing.T) {
	t.Parallel()
	_, err := PublicKeyFromPrivate(make([]byte, PrivateKeyLength))
	require.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = PublicKeyFromPrivate([]byte{1})
	require.ErrorIs(t, err, ErrInvalidPrivateKey)

	// Curve order N overflows the scalar field.
	n, _ := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	_, err = PublicKeyFromPrivate(n)
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestParseHexKey(t *testing.T) {
	t.Parallel()
	valid := strings.Repeat("01", PrivateKeyLength)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", valid, false},
		{"0x prefix", "0x" + valid, false},
		{"upper prefix and padding", "  0X" + valid + "\n", false},
		{"too short", valid[:62], true},
		{"not hex", strings.Repeat("zz", PrivateKeyLength), true},
		{"zero scalar", strings.Repeat("00", PrivateKeyLength), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, err := ParseHexKey(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPrivateKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, valid, hex.EncodeToString(key))
		})
	}
}
