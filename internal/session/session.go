// Package session tracks which wallet is connected. At most one descriptor is
// connected at a time, and the choice survives restarts through a small state
// file. The session never holds passwords or decrypted key material.
package session

import (
	"sync"
	"time"

	"github.com/mrz1836/stationkey/internal/keystore"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Session holds the connected wallet descriptor.
// The mutex guards memory only; callers order Connect and Disconnect.
type Session struct {
	gateway keystore.Gateway
	state   *stateFile
	log     LogWriter

	mu          sync.RWMutex
	connected   *wallet.Descriptor
	connectedAt time.Time
}

// New creates a disconnected session. statePath is where the connected choice
// is persisted; an empty path keeps the session in memory only.
func New(gateway keystore.Gateway, statePath string, log LogWriter) *Session {
	if log == nil {
		log = nopLogger{}
	}
	return &Session{
		gateway: gateway,
		state:   newStateFile(statePath),
		log:     log,
	}
}

// Connect loads the named wallet and makes it the connected one.
// A locked wallet is never connected.
func (s *Session) Connect(name string) error {
	desc, err := s.gateway.Load(name)
	if err != nil {
		return err
	}
	if desc.Locked {
		return stationerr.WithDetails(stationerr.ErrWalletLocked, map[string]string{"wallet": name})
	}
	return s.setConnected(desc)
}

// ConnectHardware connects a hardware device descriptor directly. An empty
// name defaults to "Ledger" and an empty transport to USB.
func (s *Session) ConnectHardware(words map[wallet.CoinType]wallet.Words, pubKey map[wallet.CoinType][]byte,
	index int, transport wallet.Transport, name string,
) (*wallet.Descriptor, error) {
	desc, err := wallet.NewHardwareDescriptor(words, pubKey, index, transport, name)
	if err != nil {
		return nil, err
	}
	if err := s.setConnected(desc); err != nil {
		return nil, err
	}
	return desc.Clone(), nil
}

// GetConnected returns a copy of the connected descriptor.
func (s *Session) GetConnected() (*wallet.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.connected == nil {
		return nil, stationerr.ErrNoWalletConnected
	}
	return s.connected.Clone(), nil
}

// ConnectedAt reports when the current wallet was connected.
func (s *Session) ConnectedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectedAt, s.connected != nil
}

// Disconnect clears the connected wallet and its persisted choice.
// Disconnecting with nothing connected is not an error.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.remove(); err != nil {
		return err
	}
	if s.connected != nil {
		s.log.Debug("disconnected wallet %q", s.connected.Name)
	}
	s.connected = nil
	s.connectedAt = time.Time{}
	return nil
}

// Lock locks the connected wallet in the key store and disconnects it.
// Hardware wallets have no stored record, so locking only disconnects.
func (s *Session) Lock() error {
	desc, err := s.GetConnected()
	if err != nil {
		return err
	}

	if !desc.IsHardware() {
		if err := s.gateway.Lock(desc.Name); err != nil {
			return stationerr.Wrap(err, "locking wallet %q", desc.Name)
		}
		s.log.Debug("locked wallet %q", desc.Name)
	}
	return s.Disconnect()
}

// Restore reconnects the wallet persisted by a previous run. A stored wallet
// that has since been locked or removed is dropped without error, as is an
// unreadable state file.
func (s *Session) Restore() error {
	persisted, err := s.state.read()
	if err != nil {
		s.log.Error("discarding unreadable session state: %v", err)
		return s.state.remove()
	}
	if persisted == nil || persisted.Wallet == nil {
		return nil
	}

	desc := persisted.Wallet
	if !desc.IsHardware() {
		stored, loadErr := s.gateway.Load(desc.Name)
		if loadErr != nil || stored.Locked {
			s.log.Debug("dropping persisted wallet %q", desc.Name)
			return s.state.remove()
		}
		desc = stored
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = desc
	s.connectedAt = persisted.ConnectedAt
	s.log.Debug("restored connected wallet %q", desc.Name)
	return nil
}

func (s *Session) setConnected(desc *wallet.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if err := s.state.write(&persistedState{Wallet: desc, ConnectedAt: now}); err != nil {
		return err
	}
	s.connected = desc.Clone()
	s.connectedAt = now
	s.log.Debug("connected %s wallet %q", desc.Kind, desc.Name)
	return nil
}
