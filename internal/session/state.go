package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mrz1836/stationkey/internal/fileutil"
	"github.com/mrz1836/stationkey/internal/wallet"
)

const (
	// stateFilePermissions is the permission mode for the state file.
	stateFilePermissions = 0o600

	// stateDirPermissions is the permission mode for the state directory.
	stateDirPermissions = 0o700
)

// ErrStateCorrupted indicates the persisted session state could not be parsed.
var ErrStateCorrupted = errors.New("session state corrupted")

// persistedState is the on-disk form of the connected choice.
type persistedState struct {
	Wallet      *wallet.Descriptor `json:"wallet"`
	ConnectedAt time.Time          `json:"connected_at"`
}

// stateFile reads and writes the persisted connected choice.
// An empty path disables persistence.
type stateFile struct {
	path string
}

func newStateFile(path string) *stateFile {
	return &stateFile{path: path}
}

// read returns nil when nothing is persisted.
func (f *stateFile) read() (*persistedState, error) {
	if f.path == "" {
		return nil, nil //nolint:nilnil // nothing persisted
	}

	//nolint:gosec // G304: Path comes from configuration, not user input
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil //nolint:nilnil // nothing persisted
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}

	var st persistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, ErrStateCorrupted
	}
	return &st, nil
}

func (f *stateFile) write(st *persistedState) error {
	if f.path == "" {
		return nil
	}

	if err := fileutil.WriteJSON(f.path, st, stateFilePermissions, stateDirPermissions); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}
	return nil
}

func (f *stateFile) remove() error {
	if f.path == "" {
		return nil
	}
	if err := fileutil.RemoveIfExists(f.path); err != nil {
		return fmt.Errorf("removing session state: %w", err)
	}
	return nil
}
