// Package stationcrypto provides the symmetric encryption and secret-memory
// primitives used for at-rest wallet records and encrypted key exports.
package stationcrypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"filippo.io/age"
)

// DefaultScryptWorkFactor is the age default (log2 of the scrypt N parameter).
const DefaultScryptWorkFactor = 18

// ErrEmptyCiphertext indicates there was nothing to decrypt.
var ErrEmptyCiphertext = errors.New("ciphertext is empty")

//nolint:gochecknoglobals // Process-wide work factor, lowered in tests
var scryptWorkFactor atomic.Int32

//nolint:gochecknoinits // Work factor must have a sane default before first use
func init() {
	scryptWorkFactor.Store(DefaultScryptWorkFactor)
}

// SetScryptWorkFactor sets the scrypt work factor used for new ciphertexts.
// Values outside [10, 22] are ignored.
func SetScryptWorkFactor(logN int) {
	if logN < 10 || logN > 22 {
		return
	}
	scryptWorkFactor.Store(int32(logN)) //nolint:gosec // G115: bounded above
}

// ScryptWorkFactor returns the current scrypt work factor.
func ScryptWorkFactor() int {
	return int(scryptWorkFactor.Load())
}

// Encrypt encrypts plaintext using age with a password-based recipient.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(ScryptWorkFactor())

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Decrypt decrypts ciphertext using age with a password-based identity.
func Decrypt(ciphertext []byte, password string) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, ErrEmptyCiphertext
	}

	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("initializing decryption: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}

	return plaintext, nil
}

// EncryptString encrypts plaintext and returns the ciphertext as standard
// base64. The caller still owns and zeroes plaintext.
func EncryptString(plaintext []byte, password string) (string, error) {
	ct, err := Encrypt(plaintext, password)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// DecryptString reverses EncryptString.
func DecryptString(encoded, password string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	pt, err := Decrypt(ct, password)
	if err != nil {
		return "", err
	}
	defer ZeroBytes(pt)
	return string(pt), nil
}

// DecryptSecure decrypts ciphertext into SecureBytes.
func DecryptSecure(ciphertext []byte, password string) (*SecureBytes, error) {
	plaintext, err := Decrypt(ciphertext, password)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(plaintext)

	return SecureBytesFromSlice(plaintext)
}
