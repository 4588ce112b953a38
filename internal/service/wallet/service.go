package wallet

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/mrz1836/stationkey/internal/address"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// seedCoinTypes are the coin types a seed wallet stores address words for.
var seedCoinTypes = []wallet.CoinType{wallet.CoinTypeTerra, wallet.CoinTypeCosmos}

// Service provides wallet management operations without CLI dependencies.
type Service struct {
	storage  StorageProvider
	exporter Exporter
	logger   LogWriter
}

// Config contains dependencies for creating a wallet service.
type Config struct {
	Storage  StorageProvider
	Exporter Exporter
	Logger   LogWriter
}

// NewService creates a new wallet service instance.
func NewService(cfg *Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Service{
		storage:  cfg.Storage,
		exporter: cfg.Exporter,
		logger:   logger,
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// AddSeed validates the mnemonic, derives address words for every supported
// coin type and stores the encrypted seed.
func (s *Service) AddSeed(req *AddSeedRequest) (*wallet.Descriptor, error) {
	if err := checkNewWallet(req.Name, req.Password); err != nil {
		return nil, err
	}

	if err := wallet.ValidateAddressIndex(req.Index); err != nil {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
			"index":  strconv.FormatUint(uint64(req.Index), 10),
			"reason": err.Error(),
		})
	}

	mnemonic := wallet.NormalizeMnemonicInput(req.Mnemonic)
	if err := wallet.ValidateMnemonic(mnemonic); err != nil {
		if typos := wallet.DescribeTypos(mnemonic); len(typos) > 0 {
			return nil, stationerr.WithSuggestion(err, strings.Join(typos, "; "))
		}
		return nil, err
	}

	seed, err := wallet.MnemonicToSeed(mnemonic, req.Passphrase)
	if err != nil {
		return nil, err
	}
	record := &wallet.SeedRecord{Seed: seed, Legacy: req.Legacy, Index: req.Index}
	defer record.Destroy()

	words := make(map[wallet.CoinType]wallet.Words, len(seedCoinTypes))
	for _, ct := range seedCoinTypes {
		w, err := wordsForKey(func() ([]byte, error) {
			return wallet.DerivePrivateKey(seed, record.EffectiveCoinType(ct), req.Index)
		})
		if err != nil {
			return nil, err
		}
		words[ct] = w
	}

	desc, err := wallet.NewLocalDescriptor(req.Name, words)
	if err != nil {
		return nil, err
	}
	desc.Legacy = req.Legacy

	if err := s.storage.Store(desc, record, req.Password); err != nil {
		return nil, err
	}
	s.logger.Debug("stored seed wallet %q (legacy=%t, index=%d)", desc.Name, desc.Legacy, req.Index)
	return desc, nil
}

// AddKeys stores independently held private keys, one per coin type.
func (s *Service) AddKeys(req *AddKeyRequest) (*wallet.Descriptor, error) {
	if err := checkNewWallet(req.Name, req.Password); err != nil {
		return nil, err
	}
	if len(req.Keys) == 0 {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{"field": "keys"})
	}

	record := &wallet.RawKeyRecord{Keys: make(map[wallet.CoinType]wallet.HexBytes, len(req.Keys))}
	defer record.Destroy()

	words := make(map[wallet.CoinType]wallet.Words, len(req.Keys))
	for ct, hexKey := range req.Keys {
		priv, err := wallet.ParseHexKey(hexKey)
		if err != nil {
			return nil, invalidKey(ct, err)
		}
		record.Keys[ct] = priv

		w, err := wordsForKey(func() ([]byte, error) { return append([]byte(nil), priv...), nil })
		if err != nil {
			return nil, invalidKey(ct, err)
		}
		words[ct] = w
	}

	desc, err := wallet.NewLocalDescriptor(req.Name, words)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Store(desc, record, req.Password); err != nil {
		return nil, err
	}
	s.logger.Debug("stored raw key wallet %q (%d coin types)", desc.Name, len(req.Keys))
	return desc, nil
}

// List returns a summary of every stored wallet, sorted by name.
func (s *Service) List() ([]Summary, error) {
	descs, err := s.storage.ListStored()
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(descs))
	for _, d := range descs {
		cts := make([]wallet.CoinType, 0, len(d.AddressWords))
		for ct := range d.AddressWords {
			cts = append(cts, ct)
		}
		sort.Slice(cts, func(i, j int) bool { return cts[i] > cts[j] })
		out = append(out, Summary{Name: d.Name, Kind: d.Kind, Locked: d.Locked, Legacy: d.Legacy, CoinTypes: cts})
	}
	return out, nil
}

// Unlock clears a wallet's lock flag once password is verified.
func (s *Service) Unlock(name, password string) error {
	if err := s.storage.Unlock(name, password); err != nil {
		return err
	}
	s.logger.Debug("unlocked wallet %q", name)
	return nil
}

// Export decrypts desc's key record with password and re-encrypts the
// default-coin-type key under exportPassword.
func (s *Service) Export(ctx context.Context, desc *wallet.Descriptor, password, exportPassword string) (string, error) {
	if desc == nil {
		return "", stationerr.ErrNoWalletConnected
	}
	if desc.IsHardware() {
		return "", stationerr.WithDetails(stationerr.ErrUnsupportedOperation,
			map[string]string{"reason": "hardware device keys cannot be exported"})
	}
	if exportPassword == "" {
		return "", stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{"field": "export password"})
	}

	record, err := s.storage.Decrypt(desc.Name, password)
	if err != nil {
		return "", stationerr.ErrIncorrectPassword
	}
	defer record.Destroy()

	return s.exporter.ExportEncrypted(ctx, desc, record, exportPassword)
}

func checkNewWallet(name, password string) error {
	if err := wallet.ValidateWalletName(name); err != nil {
		if suggested := wallet.SuggestWalletName(name); suggested != "" && suggested != name {
			return stationerr.WithSuggestion(err, "try '"+suggested+"'")
		}
		return err
	}
	if password == "" {
		return stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{"field": "password"})
	}
	return nil
}

// wordsForKey derives address words from the key returned by derive and zeroes it.
func wordsForKey(derive func() ([]byte, error)) (wallet.Words, error) {
	priv, err := derive()
	if err != nil {
		return nil, err
	}
	defer stationcrypto.ZeroBytes(priv)

	pub, err := wallet.PublicKeyFromPrivate(priv)
	if err != nil {
		return nil, err
	}
	return address.WordsFromPubKey(pub)
}

func invalidKey(ct wallet.CoinType, err error) error {
	return stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
		"coin_type": ct.String(),
		"reason":    err.Error(),
	})
}
