// Package keys turns a wallet descriptor and password into a short-lived
// signing key: seed-derived, raw per-coin-type, or a hardware device.
package keys

import (
	"sync"

	"github.com/mrz1836/stationkey/internal/hardware"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	"github.com/mrz1836/stationkey/internal/wallet"
)

// Variant names, used in logs and output.
const (
	VariantSeed     = "seed"
	VariantRaw      = "raw"
	VariantHardware = "hardware"
)

// SigningKey is a resolved key. Callers must Destroy it before returning.
type SigningKey interface {
	// CoinType is the coin type the key signs for.
	CoinType() wallet.CoinType

	// Variant is one of VariantSeed, VariantRaw or VariantHardware.
	Variant() string

	// Destroy zeros secret bytes or closes the device handle.
	Destroy()

	isSigningKey()
}

// SeedKey derives its private key from a master seed on demand.
type SeedKey struct {
	seed     *stationcrypto.SecureBytes
	coinType wallet.CoinType
	index    uint32
}

// NewSeedKey copies seed into locked memory. The caller still owns seed.
func NewSeedKey(seed []byte, coinType wallet.CoinType, index uint32) (*SeedKey, error) {
	sb, err := stationcrypto.SecureBytesFromSlice(seed)
	if err != nil {
		return nil, err
	}
	return &SeedKey{seed: sb, coinType: coinType, index: index}, nil
}

// CoinType returns the effective coin type.
func (k *SeedKey) CoinType() wallet.CoinType { return k.coinType }

// Variant returns VariantSeed.
func (k *SeedKey) Variant() string { return VariantSeed }

// Index returns the BIP44 address index.
func (k *SeedKey) Index() uint32 { return k.index }

// Seed returns the seed bytes. Nil after Destroy.
func (k *SeedKey) Seed() []byte { return k.seed.Bytes() }

// Destroy zeros the seed.
func (k *SeedKey) Destroy() { k.seed.Destroy() }

// RawKey wraps a single secp256k1 private key.
type RawKey struct {
	privateKey *stationcrypto.SecureBytes
	coinType   wallet.CoinType
}

// NewRawKey copies privateKey into locked memory. The caller still owns privateKey.
func NewRawKey(privateKey []byte, coinType wallet.CoinType) (*RawKey, error) {
	sb, err := stationcrypto.SecureBytesFromSlice(privateKey)
	if err != nil {
		return nil, err
	}
	return &RawKey{privateKey: sb, coinType: coinType}, nil
}

// CoinType returns the coin type the key was stored under.
func (k *RawKey) CoinType() wallet.CoinType { return k.coinType }

// Variant returns VariantRaw.
func (k *RawKey) Variant() string { return VariantRaw }

// PrivateKey returns the key bytes. Nil after Destroy.
func (k *RawKey) PrivateKey() []byte { return k.privateKey.Bytes() }

// Destroy zeros the private key.
func (k *RawKey) Destroy() { k.privateKey.Destroy() }

// HardwareKey is an open device session.
type HardwareKey struct {
	device   hardware.Device
	coinType wallet.CoinType
	once     sync.Once
}

// NewHardwareKey wraps an open device.
func NewHardwareKey(device hardware.Device, coinType wallet.CoinType) *HardwareKey {
	return &HardwareKey{device: device, coinType: coinType}
}

// CoinType returns the requested coin type.
func (k *HardwareKey) CoinType() wallet.CoinType { return k.coinType }

// Variant returns VariantHardware.
func (k *HardwareKey) Variant() string { return VariantHardware }

// Device returns the open device.
func (k *HardwareKey) Device() hardware.Device { return k.device }

// Destroy closes the device once.
func (k *HardwareKey) Destroy() {
	k.once.Do(func() {
		_ = k.device.Close()
	})
}

func (*SeedKey) isSigningKey()     {}
func (*RawKey) isSigningKey()      {}
func (*HardwareKey) isSigningKey() {}
