package keys

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of a signature including the recovery byte.
const SignatureLength = 65

// GenerateKey creates a new random private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// ParsePrivateKey decodes a hex private key, with or without 0x.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if len(hexKey) >= 2 && (hexKey[:2] == "0x" || hexKey[:2] == "0X") {
		hexKey = hexKey[2:]
	}
	return crypto.HexToECDSA(hexKey)
}

// Sign produces a deterministic signature over a 32-byte digest.
func Sign(digest []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("signing digest: %w", err)
	}
	return sig, nil
}

// Verify checks sig over digest against a compressed or uncompressed public key.
func Verify(pubKey, digest, sig []byte) bool {
	if len(sig) != SignatureLength {
		return false
	}
	return crypto.VerifySignature(pubKey, digest, sig[:SignatureLength-1])
}

// CompressPubKey returns the 33-byte form of pub.
func CompressPubKey(pub *ecdsa.PublicKey) []byte {
	return crypto.CompressPubkey(pub)
}
