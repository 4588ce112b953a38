// Package hardware defines the contract for hardware signing devices and a
// dispatcher that routes open requests to the driver for each transport.
// No device driver ships in this module; drivers register with a Mux.
package hardware

import (
	"context"
	"sync"

	"github.com/mrz1836/stationkey/internal/tx"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// Device is an open session with a hardware signer.
// Devices cannot sign arbitrary bytes; only amino sign documents.
type Device interface {
	// PublicKey returns the compressed secp256k1 public key for coinType.
	PublicKey(ctx context.Context, coinType wallet.CoinType) ([]byte, error)

	// SignAmino asks the device to sign doc in legacy amino JSON mode and
	// returns the 64-byte R||S signature.
	SignAmino(ctx context.Context, doc *tx.SignDoc) ([]byte, error)

	// Close releases the device.
	Close() error
}

// Transport opens devices over a physical link.
type Transport interface {
	Open(ctx context.Context, kind wallet.Transport, index int) (Device, error)
}

// Driver opens the device at index on a single transport kind.
type Driver func(ctx context.Context, index int) (Device, error)

// Mux is a Transport that dispatches by transport kind.
type Mux struct {
	mu      sync.RWMutex
	drivers map[wallet.Transport]Driver
}

// NewMux creates an empty dispatcher.
func NewMux() *Mux {
	return &Mux{drivers: make(map[wallet.Transport]Driver)}
}

// Register installs the driver for kind, replacing any previous one.
func (m *Mux) Register(kind wallet.Transport, driver Driver) {
	m.mu.Lock()
	m.drivers[kind] = driver
	m.mu.Unlock()
}

// Open opens the device at index over kind.
func (m *Mux) Open(ctx context.Context, kind wallet.Transport, index int) (Device, error) {
	if !kind.IsValid() {
		return nil, wallet.ErrInvalidTransport
	}
	if index < 0 {
		return nil, wallet.ErrInvalidDeviceIndex
	}

	m.mu.RLock()
	driver, ok := m.drivers[kind]
	m.mu.RUnlock()
	if !ok {
		return nil, stationerr.WithDetails(stationerr.ErrHardwareUnavailable,
			map[string]string{"transport": string(kind), "reason": "no driver registered"})
	}

	dev, err := driver(ctx, index)
	if err != nil {
		return nil, stationerr.Wrap(err, "opening %s device %d", kind, index)
	}
	return dev, nil
}

// Kinds returns the transports with a registered driver.
func (m *Mux) Kinds() []wallet.Transport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]wallet.Transport, 0, len(m.drivers))
	for _, kind := range []wallet.Transport{wallet.TransportUSB, wallet.TransportBluetooth} {
		if _, ok := m.drivers[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

// Compile-time interface check
var _ Transport = (*Mux)(nil)
