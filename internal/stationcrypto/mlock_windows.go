//go:build windows

package stationcrypto

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// pinPages keeps the pages backing b in the working set.
func pinPages(b []byte) error {
	return windows.VirtualLock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
}

func unpinPages(b []byte) error {
	return windows.VirtualUnlock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
}
