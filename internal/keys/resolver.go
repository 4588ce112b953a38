package keys

import (
	"context"

	"github.com/mrz1836/stationkey/internal/hardware"
	"github.com/mrz1836/stationkey/internal/keystore"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Resolver maps a descriptor, coin type and password to a SigningKey.
type Resolver struct {
	gateway   keystore.Gateway
	transport hardware.Transport
	log       LogWriter
}

// NewResolver creates a resolver. transport may be nil when no hardware
// driver is available; hardware descriptors then fail to resolve.
func NewResolver(gateway keystore.Gateway, transport hardware.Transport, log LogWriter) *Resolver {
	if log == nil {
		log = nopLogger{}
	}
	return &Resolver{gateway: gateway, transport: transport, log: log}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Resolve returns a SigningKey for desc. The password is ignored for
// hardware descriptors. Every software failure, including a missing record
// or a coin type absent from a raw-key wallet, is reported as
// ErrIncorrectPassword so callers learn nothing about wallet contents.
func (r *Resolver) Resolve(ctx context.Context, desc *wallet.Descriptor, coinType wallet.CoinType, password string) (SigningKey, error) {
	if desc == nil {
		return nil, stationerr.ErrNoWalletConnected
	}

	if desc.IsHardware() {
		return r.resolveHardware(ctx, desc, coinType)
	}

	rec, err := r.gateway.Decrypt(desc.Name, password)
	if err != nil {
		r.log.Debug("key resolution failed for wallet %q: %v", desc.Name, stationerr.Code(err))
		return nil, stationerr.ErrIncorrectPassword
	}
	defer rec.Destroy()

	switch record := rec.(type) {
	case *wallet.SeedRecord:
		effective := record.EffectiveCoinType(coinType)
		key, err := NewSeedKey(record.Seed, effective, record.Index)
		if err != nil {
			return nil, err
		}
		r.log.Debug("resolved %s key for wallet %q coin type %s (requested %s)",
			VariantSeed, desc.Name, effective, coinType)
		return key, nil

	case *wallet.RawKeyRecord:
		priv, ok := record.Keys[coinType]
		if !ok {
			r.log.Debug("wallet %q has no raw key for coin type %s", desc.Name, coinType)
			return nil, stationerr.ErrNoKeyForCoinType
		}
		if _, err := wallet.PublicKeyFromPrivate(priv); err != nil {
			return nil, stationerr.ErrIncorrectPassword
		}
		key, err := NewRawKey(priv, coinType)
		if err != nil {
			return nil, err
		}
		r.log.Debug("resolved %s key for wallet %q coin type %s", VariantRaw, desc.Name, coinType)
		return key, nil

	default:
		return nil, stationerr.ErrIncorrectPassword
	}
}

func (r *Resolver) resolveHardware(ctx context.Context, desc *wallet.Descriptor, coinType wallet.CoinType) (SigningKey, error) {
	if r.transport == nil {
		return nil, stationerr.WithDetails(stationerr.ErrHardwareUnavailable,
			map[string]string{"transport": string(desc.Transport)})
	}

	dev, err := r.transport.Open(ctx, desc.Transport, desc.DeviceIndex)
	if err != nil {
		r.log.Error("opening %s device %d: %v", desc.Transport, desc.DeviceIndex, err)
		return nil, err
	}
	r.log.Debug("resolved %s key on %s device %d coin type %s",
		VariantHardware, desc.Transport, desc.DeviceIndex, coinType)
	return NewHardwareKey(dev, coinType), nil
}
