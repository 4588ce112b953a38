//go:build !windows

package stationcrypto

import "golang.org/x/sys/unix"

// pinPages keeps the pages backing b out of swap.
func pinPages(b []byte) error {
	return unix.Mlock(b)
}

func unpinPages(b []byte) error {
	return unix.Munlock(b)
}
