package stationcrypto

import (
	"runtime"
	"sync"
	"sync/atomic"
)

//nolint:gochecknoglobals // Process-wide switch and counters set from configuration
var (
	memoryLockDisabled atomic.Bool
	pinnedBuffers      atomic.Int64
	pinFailures        atomic.Int64
)

// SetMemoryLock enables or disables page locking for new SecureBytes.
func SetMemoryLock(enabled bool) {
	memoryLockDisabled.Store(!enabled)
}

// LockStats reports page locking for SecureBytes.
type LockStats struct {
	Pinned int64 // buffers currently locked
	Failed int64 // lock attempts refused by the OS since start
}

// MemoryLockStats returns the page locking counters for this process.
// A non-zero Failed usually means RLIMIT_MEMLOCK is too low.
func MemoryLockStats() LockStats {
	return LockStats{Pinned: pinnedBuffers.Load(), Failed: pinFailures.Load()}
}

// SecureBytes holds key material (seeds, private keys) for the duration of
// one resolve and sign call. The pages are locked when the platform allows
// and the bytes are wiped by Destroy or, failing that, by the finalizer.
type SecureBytes struct {
	mu     sync.Mutex
	data   []byte
	pinned bool
}

// NewSecureBytes allocates a zeroed buffer of size bytes.
func NewSecureBytes(size int) (*SecureBytes, error) {
	sb := &SecureBytes{data: make([]byte, size)}
	sb.pin()
	runtime.SetFinalizer(sb, (*SecureBytes).Destroy)
	return sb, nil
}

// SecureBytesFromSlice copies data into a new SecureBytes. The caller still
// owns data and should zero it.
func SecureBytesFromSlice(data []byte) (*SecureBytes, error) {
	sb, err := NewSecureBytes(len(data))
	if err != nil {
		return nil, err
	}
	copy(sb.data, data)
	return sb, nil
}

func (s *SecureBytes) pin() {
	if len(s.data) == 0 || memoryLockDisabled.Load() {
		return
	}
	if err := pinPages(s.data); err != nil {
		pinFailures.Add(1)
		return
	}
	s.pinned = true
	pinnedBuffers.Add(1)
}

// Bytes returns the held bytes, or nil after Destroy. The slice aliases the
// secure buffer and must not be retained past the owning key's lifetime.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLocked reports whether the buffer's pages are locked.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinned
}

// Len returns the number of held bytes.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Destroy wipes and releases the buffer. Safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}
	ZeroBytes(s.data)
	if s.pinned {
		_ = unpinPages(s.data)
		s.pinned = false
		pinnedBuffers.Add(-1)
	}
	s.data = nil
	runtime.SetFinalizer(s, nil)
}

// ZeroBytes overwrites b with zeros. runtime.KeepAlive stops the compiler
// from treating the loop as a dead store.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
