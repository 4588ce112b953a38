// Package wallet provides wallet management services: importing seeds and
// raw keys into the key store, listing, unlocking and exporting.
package wallet

import (
	"context"

	"github.com/mrz1836/stationkey/internal/wallet"
)

// StorageProvider provides key store operations.
type StorageProvider interface {
	Load(name string) (*wallet.Descriptor, error)
	Decrypt(name, password string) (wallet.KeyRecord, error)
	Store(desc *wallet.Descriptor, record wallet.KeyRecord, password string) error
	Unlock(name, password string) error
	ListStored() ([]*wallet.Descriptor, error)
}

// Exporter produces encrypted key exports.
type Exporter interface {
	ExportEncrypted(ctx context.Context, desc *wallet.Descriptor, material wallet.KeyRecord, password string) (string, error)
}

// LogWriter provides logging capabilities.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}
