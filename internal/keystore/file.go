package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mrz1836/stationkey/internal/fileutil"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

const (
	// walletFileExtension is the extension for wallet files.
	walletFileExtension = ".wallet"

	// walletFilePermissions is the permission mode for wallet files.
	walletFilePermissions = 0o600

	// walletDirPermissions is the permission mode for the wallets directory.
	walletDirPermissions = 0o750
)

// walletFile is the on-disk form of a stored wallet.
type walletFile struct {
	// Descriptor is stored in the clear so addresses can be shown without a password.
	Descriptor *wallet.Descriptor `json:"descriptor"`

	// EncryptedRecord is the age-encrypted JSON key record.
	EncryptedRecord []byte `json:"encrypted_record"`
}

// FileStore implements Gateway on the filesystem, one file per wallet.
type FileStore struct {
	basePath string
	mu       sync.Mutex
}

// NewFileStore creates a file-backed key store rooted at basePath.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// Load returns the descriptor stored under name.
func (s *FileStore) Load(name string) (*wallet.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, err := s.read(name)
	if err != nil {
		return nil, err
	}
	return wf.Descriptor, nil
}

// TestPassword checks password against the stored record.
func (s *FileStore) TestPassword(name, password string) error {
	rec, err := s.Decrypt(name, password)
	if err != nil {
		return err
	}
	rec.Destroy()
	return nil
}

// Decrypt decrypts and parses the stored key record.
// Any decryption or parse failure is reported as ErrIncorrectPassword.
func (s *FileStore) Decrypt(name, password string) (wallet.KeyRecord, error) {
	s.mu.Lock()
	wf, err := s.read(name)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	plaintext, err := stationcrypto.DecryptSecure(wf.EncryptedRecord, password)
	if err != nil {
		return nil, stationerr.ErrIncorrectPassword
	}
	defer plaintext.Destroy()

	rec, err := wallet.UnmarshalRecord(plaintext.Bytes())
	if err != nil {
		return nil, stationerr.ErrIncorrectPassword
	}
	return rec, nil
}

// Store encrypts and writes a new wallet. Existing wallets are never overwritten.
func (s *FileStore) Store(desc *wallet.Descriptor, record wallet.KeyRecord, password string) error {
	if desc == nil || record == nil {
		return stationerr.ErrInvalidInput
	}
	if desc.IsHardware() {
		return stationerr.WithDetails(stationerr.ErrInvalidInput,
			map[string]string{"reason": "hardware wallets have no stored key record"})
	}
	if err := wallet.ValidateWalletName(desc.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plaintext, err := wallet.MarshalRecord(record)
	if err != nil {
		return fmt.Errorf("encoding key record: %w", err)
	}
	encrypted, err := stationcrypto.Encrypt(plaintext, password)
	stationcrypto.ZeroBytes(plaintext)
	if err != nil {
		return fmt.Errorf("encrypting key record: %w", err)
	}

	if err := os.MkdirAll(s.basePath, walletDirPermissions); err != nil {
		return fmt.Errorf("creating wallet directory: %w", err)
	}
	data, err := json.MarshalIndent(&walletFile{Descriptor: desc.Clone(), EncryptedRecord: encrypted}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling wallet: %w", err)
	}

	err = fileutil.CreateExclusive(s.walletPath(desc.Name), data, walletFilePermissions)
	if errors.Is(err, fileutil.ErrExists) {
		return stationerr.WithDetails(stationerr.ErrWalletExists, map[string]string{"name": desc.Name})
	}
	if err != nil {
		return fmt.Errorf("writing wallet file: %w", err)
	}
	return nil
}

// Clear removes every wallet file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(s.walletPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing wallet file: %w", err)
		}
	}
	return nil
}

// Lock marks the wallet as locked.
func (s *FileStore) Lock(name string) error {
	return s.setLocked(name, true)
}

// Unlock verifies password and clears the lock flag.
func (s *FileStore) Unlock(name, password string) error {
	if err := s.TestPassword(name, password); err != nil {
		return err
	}
	return s.setLocked(name, false)
}

// ListStored returns all stored descriptors sorted by name.
func (s *FileStore) ListStored() ([]*wallet.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.names()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]*wallet.Descriptor, 0, len(names))
	for _, name := range names {
		wf, err := s.read(name)
		if err != nil {
			return nil, err
		}
		out = append(out, wf.Descriptor)
	}
	return out, nil
}

func (s *FileStore) setLocked(name string, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, err := s.read(name)
	if err != nil {
		return err
	}
	if wf.Descriptor.Locked == locked {
		return nil
	}
	wf.Descriptor.Locked = locked
	return s.write(wf)
}

// read loads a wallet file. Callers hold s.mu.
func (s *FileStore) read(name string) (*walletFile, error) {
	if err := wallet.ValidateWalletName(name); err != nil {
		return nil, err
	}

	path := s.walletPath(name)
	//nolint:gosec // G304: Path validated by ValidateWalletName + walletPath
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, stationerr.WithDetails(stationerr.ErrWalletNotFound, map[string]string{"name": name})
	}
	if err != nil {
		return nil, fmt.Errorf("reading wallet file: %w", err)
	}

	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing wallet file: %w", err)
	}
	if wf.Descriptor == nil {
		return nil, fmt.Errorf("parsing wallet file: %w", stationerr.ErrWalletNotFound)
	}
	return &wf, nil
}

// write replaces an existing wallet file. Callers hold s.mu.
func (s *FileStore) write(wf *walletFile) error {
	if err := fileutil.WriteJSON(s.walletPath(wf.Descriptor.Name), wf, walletFilePermissions, walletDirPermissions); err != nil {
		return fmt.Errorf("writing wallet file: %w", err)
	}
	return nil
}

// names lists stored wallet names. Callers hold s.mu.
func (s *FileStore) names() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading wallet directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), walletFileExtension); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// walletPath returns the full path for a wallet file.
// Names are validated by ValidateWalletName, which rules out path separators.
func (s *FileStore) walletPath(name string) string {
	return filepath.Join(s.basePath, name+walletFileExtension)
}

// Compile-time interface check
var _ Gateway = (*FileStore)(nil)
