package stationcrypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stationkey/internal/stationcrypto"
)

func TestSecureBytes_Creation(t *testing.T) {
	t.Parallel()
	sb, err := stationcrypto.NewSecureBytes(32)
	require.NoError(t, err)
	defer sb.Destroy()

	assert.Len(t, sb.Bytes(), 32)
	assert.Equal(t, 32, sb.Len())
}

func TestSecureBytes_Zeroing(t *testing.T) {
	t.Parallel()
	sb, err := stationcrypto.NewSecureBytes(32)
	require.NoError(t, err)

	data := sb.Bytes()
	for i := range data {
		data[i] = byte(i + 1)
	}

	sb.Destroy()

	// The backing array is wiped, not just released.
	for i := range data {
		assert.Equal(t, byte(0), data[i])
	}
	assert.Nil(t, sb.Bytes())
	assert.Equal(t, 0, sb.Len())
}

func TestSecureBytes_DoubleDestroy(t *testing.T) {
	t.Parallel()
	sb, err := stationcrypto.NewSecureBytes(16)
	require.NoError(t, err)

	sb.Destroy()
	sb.Destroy()

	assert.Nil(t, sb.Bytes())
	assert.False(t, sb.IsLocked())
}

func TestSecureBytes_FromSlice(t *testing.T) {
	t.Parallel()
	original := []byte("secret key material")
	sb, err := stationcrypto.SecureBytesFromSlice(original)
	require.NoError(t, err)
	defer sb.Destroy()

	assert.Equal(t, original, sb.Bytes())

	original[0] = 'X'
	assert.Equal(t, byte('s'), sb.Bytes()[0], "secure copy must not alias the source")
}

func TestZeroBytes(t *testing.T) {
	t.Parallel()
	b := []byte{1, 2, 3, 4}
	stationcrypto.ZeroBytes(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
	stationcrypto.ZeroBytes(nil)
}

func TestSetMemoryLock_Disabled(t *testing.T) {
	stationcrypto.SetMemoryLock(false)
	defer stationcrypto.SetMemoryLock(true)

	sb, err := stationcrypto.NewSecureBytes(32)
	require.NoError(t, err)
	defer sb.Destroy()

	assert.False(t, sb.IsLocked())
	assert.Equal(t, 32, sb.Len())
}

func TestMemoryLockStats(t *testing.T) {
	stationcrypto.SetMemoryLock(true)
	before := stationcrypto.MemoryLockStats()

	sb, err := stationcrypto.NewSecureBytes(64)
	require.NoError(t, err)

	during := stationcrypto.MemoryLockStats()
	if sb.IsLocked() {
		assert.Equal(t, before.Pinned+1, during.Pinned)
	} else {
		assert.Equal(t, before.Failed+1, during.Failed)
	}

	sb.Destroy()
	after := stationcrypto.MemoryLockStats()
	assert.Equal(t, before.Pinned, after.Pinned)
}

func TestMemoryLockStats_EmptyBufferNotCounted(t *testing.T) {
	before := stationcrypto.MemoryLockStats()

	sb, err := stationcrypto.NewSecureBytes(0)
	require.NoError(t, err)
	defer sb.Destroy()

	assert.False(t, sb.IsLocked())
	assert.Equal(t, before, stationcrypto.MemoryLockStats())
}
