package stationcrypto_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stationkey/internal/stationcrypto"
)

func TestMain(m *testing.M) {
	stationcrypto.SetScryptWorkFactor(10) // Fast for tests
	os.Exit(m.Run())
}

func TestAge_EncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	plaintext := []byte("this is secret wallet data")
	password := "strong-passphrase-123" // gitleaks:allow

	ciphertext, err := stationcrypto.Encrypt(plaintext, password)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := stationcrypto.Decrypt(ciphertext, password)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAge_DecryptWrongPassword(t *testing.T) {
	t.Parallel()
	ciphertext, err := stationcrypto.Encrypt([]byte("secret data"), "correct-password")
	require.NoError(t, err)

	_, err = stationcrypto.Decrypt(ciphertext, "wrong-password")
	assert.Error(t, err)
}

func TestAge_EmptyPassword(t *testing.T) {
	t.Parallel()
	_, err := stationcrypto.Encrypt([]byte("data"), "")
	assert.Error(t, err)
}

func TestAge_EmptyCiphertext(t *testing.T) {
	t.Parallel()
	_, err := stationcrypto.Decrypt(nil, "password")
	require.ErrorIs(t, err, stationcrypto.ErrEmptyCiphertext)
}

func TestEncryptString_RoundTrip(t *testing.T) {
	t.Parallel()
	const keyHex = "8a0e1c4f1bd5a4b2b8f66d2f4f7b3a0c2d3e4f5061728394a5b6c7d8e9f00112"

	encoded, err := stationcrypto.EncryptString([]byte(keyHex), "export-pw")
	require.NoError(t, err)
	assert.NotContains(t, encoded, keyHex)

	decoded, err := stationcrypto.DecryptString(encoded, "export-pw")
	require.NoError(t, err)
	assert.Equal(t, keyHex, decoded)

	_, err = stationcrypto.DecryptString(encoded, "other-pw")
	require.Error(t, err)

	_, err = stationcrypto.DecryptString("%%%not-base64", "export-pw")
	require.Error(t, err)
}

func TestDecryptSecure(t *testing.T) {
	t.Parallel()
	ciphertext, err := stationcrypto.Encrypt([]byte("seed bytes"), "pw")
	require.NoError(t, err)

	sb, err := stationcrypto.DecryptSecure(ciphertext, "pw")
	require.NoError(t, err)
	defer sb.Destroy()
	assert.Equal(t, []byte("seed bytes"), sb.Bytes())
}

func TestSetScryptWorkFactor_IgnoresOutOfRange(t *testing.T) {
	t.Parallel()
	before := stationcrypto.ScryptWorkFactor()
	stationcrypto.SetScryptWorkFactor(3)
	stationcrypto.SetScryptWorkFactor(40)
	assert.Equal(t, before, stationcrypto.ScryptWorkFactor())
}
