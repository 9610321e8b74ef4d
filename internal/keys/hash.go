// Package keys implements the cryptographic primitives the adapter relies on:
// content hashing, address derivation, wallet key encryption and signing.
package keys

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // network address format is RIPEMD160(SHA256(x))
)

// Sha256 returns SHA256(data).
func Sha256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Hash256 returns SHA256(SHA256(data)).
func Hash256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 returns RIPEMD160(SHA256(data)).
func Hash160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(Sha256(data))
	return h.Sum(nil)
}
