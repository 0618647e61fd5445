// Package helpers provides common utility functions used across the codebase.
package helpers

import (
	"crypto/subtle"
)

// SecureClear overwrites a byte slice with zeros.
// Used for seeds, private keys and mnemonic buffers once a derivation is done.
func SecureClear(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// IsZeroBytes checks if all bytes in the slice are zero.
func IsZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// CopyBytes returns a copy of b that does not share its backing array.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ConstantTimeCompare compares two byte slices in constant time.
// Returns true if they are equal, false otherwise.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
