// Package broadcast signs transactions with the connected wallet and submits
// them to the chain they target.
package broadcast

import (
	"context"

	"github.com/mrz1836/stationkey/internal/address"
	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/keys"
	"github.com/mrz1836/stationkey/internal/metrics"
	"github.com/mrz1836/stationkey/internal/signer"
	"github.com/mrz1836/stationkey/internal/tx"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// Service orchestrates signing and broadcasting for the connected wallet.
type Service struct {
	session     SessionProvider
	registry    chain.Registry
	resolver    KeyResolver
	signer      Signer
	broadcaster Broadcaster
	logger      LogWriter
}

// Config holds dependencies for the broadcast service.
type Config struct {
	Session     SessionProvider
	Registry    chain.Registry
	Resolver    KeyResolver
	Signer      Signer
	Broadcaster Broadcaster
	Logger      LogWriter
}

// NewService creates a new broadcast service.
func NewService(cfg *Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Service{
		session:     cfg.Session,
		registry:    cfg.Registry,
		resolver:    cfg.Resolver,
		signer:      cfg.Signer,
		broadcaster: cfg.Broadcaster,
		logger:      logger,
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// PostTransaction signs opts with the connected wallet and broadcasts it in
// sync mode. A transaction the chain rejects is reported as a broadcast
// error carrying the chain's raw log. Nothing is retried.
func (s *Service) PostTransaction(ctx context.Context, opts *tx.Options, password string, mode tx.SignMode) (*tx.BroadcastResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	key, err := s.resolve(ctx, opts.ChainID, password)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	signed, err := s.signer.SignAndAssembleTx(ctx, key, opts, mode)
	if err != nil {
		return nil, err
	}

	result, err := s.broadcaster.BroadcastSync(ctx, signed, opts.ChainID)
	if err != nil {
		s.logger.Error("broadcast to %s failed: %v", opts.ChainID, err)
		return nil, err
	}

	metrics.Global.RecordBroadcast(result.Failed())
	if result.Failed() {
		s.logger.Error("transaction %s rejected on %s (code %d)", result.TxHash, opts.ChainID, result.Code)
		return nil, stationerr.NewBroadcastError(result.RawLog)
	}

	s.logger.Debug("broadcast transaction %s on %s", result.TxHash, opts.ChainID)
	return result, nil
}

// SignBytes signs an arbitrary payload with the connected wallet's key for
// chainID. Hardware wallets are refused before the device is opened.
func (s *Service) SignBytes(ctx context.Context, chainID string, payload []byte, password string) (*signer.BytesSignature, error) {
	desc, info, err := s.connected(chainID)
	if err != nil {
		return nil, err
	}
	if desc.IsHardware() {
		return nil, stationerr.WithDetails(stationerr.ErrUnsupportedOperation, map[string]string{
			"wallet": desc.Name,
			"reason": "hardware device cannot sign arbitrary data",
		})
	}

	key, err := s.resolveFor(ctx, desc, info, password)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	return s.signer.SignBytes(ctx, key, payload)
}

// PublicKey returns the connected wallet's compressed public key for chainID.
// Hardware wallets answer from the descriptor without opening the device.
func (s *Service) PublicKey(ctx context.Context, chainID, password string) ([]byte, error) {
	desc, info, err := s.connected(chainID)
	if err != nil {
		return nil, err
	}
	if pub, ok := desc.PubKey[info.CoinType]; ok && len(pub) > 0 {
		return append([]byte(nil), pub...), nil
	}

	key, err := s.resolveFor(ctx, desc, info, password)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	return s.signer.DerivePublicKey(ctx, key)
}

// AddressFor returns the connected wallet's address on chainID from the
// stored address words. No password is needed.
func (s *Service) AddressFor(chainID string) (string, error) {
	desc, info, err := s.connected(chainID)
	if err != nil {
		return "", err
	}

	if words, ok := desc.WordsFor(info.CoinType); ok {
		return address.WordsToAddress(words, info.Prefix)
	}
	if pub, ok := desc.PubKey[info.CoinType]; ok && len(pub) > 0 {
		return address.FromPubKey(pub, info.Prefix)
	}
	return "", stationerr.WithDetails(stationerr.ErrKeyNotFound, map[string]string{
		"wallet":    desc.Name,
		"coin_type": info.CoinType.String(),
	})
}

func (s *Service) connected(chainID string) (*wallet.Descriptor, chain.Info, error) {
	desc, err := s.session.GetConnected()
	if err != nil {
		return nil, chain.Info{}, err
	}
	info, err := s.registry.Lookup(chainID)
	if err != nil {
		return nil, chain.Info{}, err
	}
	return desc, info, nil
}

// resolve returns a key the caller must Destroy.
func (s *Service) resolve(ctx context.Context, chainID, password string) (keys.SigningKey, error) {
	desc, info, err := s.connected(chainID)
	if err != nil {
		return nil, err
	}
	return s.resolveFor(ctx, desc, info, password)
}

func (s *Service) resolveFor(ctx context.Context, desc *wallet.Descriptor, info chain.Info, password string) (keys.SigningKey, error) {
	key, err := s.resolver.Resolve(ctx, desc, info.CoinType, password)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resolved %s key for %s (coin type %s)", key.Variant(), info.ChainID, info.CoinType)
	return key, nil
}
