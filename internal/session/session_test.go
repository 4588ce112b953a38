package session

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// mockGateway is an in-memory key store that only tracks descriptors.
type mockGateway struct {
	mu      sync.Mutex
	wallets map[string]*wallet.Descriptor
	lockErr error
	locked  []string
}

func newMockGateway(descs ...*wallet.Descriptor) *mockGateway {
	g := &mockGateway{wallets: make(map[string]*wallet.Descriptor)}
	for _, d := range descs {
		g.wallets[d.Name] = d
	}
	return g
}

func (g *mockGateway) Load(name string) (*wallet.Descriptor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.wallets[name]
	if !ok {
		return nil, stationerr.ErrWalletNotFound
	}
	return d.Clone(), nil
}

func (g *mockGateway) TestPassword(string, string) error { return nil }

func (g *mockGateway) Decrypt(string, string) (wallet.KeyRecord, error) {
	return nil, stationerr.ErrIncorrectPassword
}

func (g *mockGateway) Store(desc *wallet.Descriptor, _ wallet.KeyRecord, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.wallets[desc.Name] = desc.Clone()
	return nil
}

func (g *mockGateway) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.wallets = make(map[string]*wallet.Descriptor)
	return nil
}

func (g *mockGateway) Lock(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lockErr != nil {
		return g.lockErr
	}
	d, ok := g.wallets[name]
	if !ok {
		return stationerr.ErrWalletNotFound
	}
	d.Locked = true
	g.locked = append(g.locked, name)
	return nil
}

func (g *mockGateway) Unlock(name, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.wallets[name]
	if !ok {
		return stationerr.ErrWalletNotFound
	}
	d.Locked = false
	return nil
}

func (g *mockGateway) ListStored() ([]*wallet.Descriptor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*wallet.Descriptor, 0, len(g.wallets))
	for _, d := range g.wallets {
		out = append(out, d.Clone())
	}
	return out, nil
}

func localDesc(t *testing.T, name string) *wallet.Descriptor {
	t.Helper()
	d, err := wallet.NewLocalDescriptor(name, map[wallet.CoinType]wallet.Words{
		wallet.CoinTypeTerra: {1, 2, 3},
	})
	require.NoError(t, err)
	return d
}

func newTestSession(t *testing.T, g *mockGateway) (*Session, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session", "connected.json")
	return New(g, path, nil), path
}

func TestConnect(t *testing.T) {
	t.Parallel()
	s, path := newTestSession(t, newMockGateway(localDesc(t, "main")))

	require.NoError(t, s.Connect("main"))

	got, err := s.GetConnected()
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)
	assert.Equal(t, wallet.KindLocal, got.Kind)

	_, ok := s.ConnectedAt()
	assert.True(t, ok)
	assert.FileExists(t, path)
}

func TestConnect_ReplacesPrevious(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, newMockGateway(localDesc(t, "first"), localDesc(t, "second")))

	require.NoError(t, s.Connect("first"))
	require.NoError(t, s.Connect("second"))

	got, err := s.GetConnected()
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
}

func TestConnect_Locked(t *testing.T) {
	t.Parallel()
	locked := localDesc(t, "vault")
	locked.Locked = true
	s, path := newTestSession(t, newMockGateway(locked))

	err := s.Connect("vault")
	require.ErrorIs(t, err, stationerr.ErrWalletLocked)

	_, err = s.GetConnected()
	require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
	assert.NoFileExists(t, path)
}

func TestConnect_LockedKeepsPriorConnection(t *testing.T) {
	t.Parallel()
	locked := localDesc(t, "vault")
	locked.Locked = true
	s, _ := newTestSession(t, newMockGateway(localDesc(t, "main"), locked))

	require.NoError(t, s.Connect("main"))
	require.ErrorIs(t, s.Connect("vault"), stationerr.ErrWalletLocked)

	got, err := s.GetConnected()
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)
}

func TestConnect_NotFound(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, newMockGateway())
	require.ErrorIs(t, s.Connect("missing"), stationerr.ErrWalletNotFound)
}

func TestGetConnected_ReturnsCopy(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, newMockGateway(localDesc(t, "main")))
	require.NoError(t, s.Connect("main"))

	got, err := s.GetConnected()
	require.NoError(t, err)
	got.Name = "mutated"
	got.AddressWords[wallet.CoinTypeTerra][0] = 9

	again, err := s.GetConnected()
	require.NoError(t, err)
	assert.Equal(t, "main", again.Name)
	assert.Equal(t, wallet.Words{1, 2, 3}, again.AddressWords[wallet.CoinTypeTerra])
}

func TestConnectHardware_Defaults(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, newMockGateway())
	pub := map[wallet.CoinType][]byte{wallet.CoinTypeTerra: make([]byte, 33)}

	desc, err := s.ConnectHardware(map[wallet.CoinType]wallet.Words{wallet.CoinTypeTerra: {4}}, pub, 0, "", "")
	require.NoError(t, err)
	assert.Equal(t, wallet.DefaultHardwareName, desc.Name)
	assert.Equal(t, wallet.TransportUSB, desc.Transport)
	assert.Equal(t, 0, desc.DeviceIndex)
	assert.True(t, desc.IsHardware())

	got, err := s.GetConnected()
	require.NoError(t, err)
	assert.Equal(t, desc, got)
}

func TestConnectHardware_Invalid(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, newMockGateway())

	_, err := s.ConnectHardware(nil, nil, -1, wallet.TransportBluetooth, "nano")
	require.ErrorIs(t, err, stationerr.ErrInvalidInput)

	_, err = s.ConnectHardware(nil, nil, 0, "serial", "nano")
	require.ErrorIs(t, err, stationerr.ErrInvalidInput)

	_, err = s.GetConnected()
	require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
}

func TestDisconnect_Idempotent(t *testing.T) {
	t.Parallel()
	s, path := newTestSession(t, newMockGateway(localDesc(t, "main")))

	require.NoError(t, s.Disconnect())
	require.NoError(t, s.Connect("main"))
	require.NoError(t, s.Disconnect())
	require.NoError(t, s.Disconnect())

	_, err := s.GetConnected()
	require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
	assert.NoFileExists(t, path)

	_, ok := s.ConnectedAt()
	assert.False(t, ok)
}

func TestLock_Local(t *testing.T) {
	t.Parallel()
	g := newMockGateway(localDesc(t, "main"))
	s, _ := newTestSession(t, g)
	require.NoError(t, s.Connect("main"))

	require.NoError(t, s.Lock())
	assert.Equal(t, []string{"main"}, g.locked)

	_, err := s.GetConnected()
	require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
	require.ErrorIs(t, s.Connect("main"), stationerr.ErrWalletLocked)
}

func TestLock_NothingConnected(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, newMockGateway())
	require.ErrorIs(t, s.Lock(), stationerr.ErrNoWalletConnected)
}

func TestLock_Hardware(t *testing.T) {
	t.Parallel()
	g := newMockGateway()
	s, _ := newTestSession(t, g)
	_, err := s.ConnectHardware(nil, nil, 1, wallet.TransportBluetooth, "nano")
	require.NoError(t, err)

	require.NoError(t, s.Lock())
	assert.Empty(t, g.locked)
	_, err = s.GetConnected()
	require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
}

func TestLock_GatewayFailureStaysConnected(t *testing.T) {
	t.Parallel()
	g := newMockGateway(localDesc(t, "main"))
	g.lockErr = stationerr.ErrGeneral
	s, _ := newTestSession(t, g)
	require.NoError(t, s.Connect("main"))

	require.Error(t, s.Lock())
	_, err := s.GetConnected()
	require.NoError(t, err)
}

func TestRestore(t *testing.T) {
	t.Parallel()
	g := newMockGateway(localDesc(t, "main"))
	s, path := newTestSession(t, g)
	require.NoError(t, s.Connect("main"))

	restored := New(g, path, nil)
	require.NoError(t, restored.Restore())

	got, err := restored.GetConnected()
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)
}

func TestRestore_Hardware(t *testing.T) {
	t.Parallel()
	g := newMockGateway()
	s, path := newTestSession(t, g)
	_, err := s.ConnectHardware(nil, map[wallet.CoinType][]byte{wallet.CoinTypeTerra: {2, 1}}, 2, wallet.TransportBluetooth, "")
	require.NoError(t, err)

	restored := New(g, path, nil)
	require.NoError(t, restored.Restore())

	got, err := restored.GetConnected()
	require.NoError(t, err)
	assert.Equal(t, 2, got.DeviceIndex)
	assert.Equal(t, wallet.TransportBluetooth, got.Transport)
	assert.Equal(t, []byte{2, 1}, got.PubKey[wallet.CoinTypeTerra])
}

func TestRestore_DropsLockedOrRemoved(t *testing.T) {
	t.Parallel()

	t.Run("locked", func(t *testing.T) {
		t.Parallel()
		g := newMockGateway(localDesc(t, "main"))
		s, path := newTestSession(t, g)
		require.NoError(t, s.Connect("main"))
		require.NoError(t, g.Lock("main"))

		restored := New(g, path, nil)
		require.NoError(t, restored.Restore())
		_, err := restored.GetConnected()
		require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
		assert.NoFileExists(t, path)
	})

	t.Run("removed", func(t *testing.T) {
		t.Parallel()
		g := newMockGateway(localDesc(t, "main"))
		s, path := newTestSession(t, g)
		require.NoError(t, s.Connect("main"))
		require.NoError(t, g.Clear())

		restored := New(g, path, nil)
		require.NoError(t, restored.Restore())
		_, err := restored.GetConnected()
		require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
	})
}

func TestRestore_NothingPersisted(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, newMockGateway())
	require.NoError(t, s.Restore())
	_, err := s.GetConnected()
	require.ErrorIs(t, err, stationerr.ErrNoWalletConnected)
}

func TestRestore_CorruptedState(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "connected.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := New(newMockGateway(), path, nil)
	require.NoError(t, s.Restore())
	assert.NoFileExists(t, path)
}

func TestInMemorySession(t *testing.T) {
	t.Parallel()
	s := New(newMockGateway(localDesc(t, "main")), "", nil)

	require.NoError(t, s.Connect("main"))
	require.NoError(t, s.Restore())
	require.NoError(t, s.Disconnect())
}

func TestStateFilePermissions(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("file permissions not enforced on Windows")
	}
	s, path := newTestSession(t, newMockGateway(localDesc(t, "main")))
	require.NoError(t, s.Connect("main"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(stateFilePermissions), info.Mode().Perm())
}
