// Package keystore persists wallet descriptors alongside their
// password-encrypted key records.
package keystore

import (
	"github.com/mrz1836/stationkey/internal/wallet"
)

// Gateway is the key store contract used by the session and key resolver.
type Gateway interface {
	// Load returns the descriptor stored under name without decrypting anything.
	Load(name string) (*wallet.Descriptor, error)

	// TestPassword reports ErrIncorrectPassword unless password decrypts the record.
	TestPassword(name, password string) error

	// Decrypt returns the decrypted key record. The caller must Destroy it.
	Decrypt(name, password string) (wallet.KeyRecord, error)

	// Store encrypts record with password and saves it with desc.
	Store(desc *wallet.Descriptor, record wallet.KeyRecord, password string) error

	// Clear removes every stored wallet.
	Clear() error

	// Lock marks a stored wallet as locked so it cannot be connected.
	Lock(name string) error

	// Unlock clears the lock flag after verifying password.
	Unlock(name, password string) error

	// ListStored returns all stored descriptors sorted by name.
	ListStored() ([]*wallet.Descriptor, error)
}
