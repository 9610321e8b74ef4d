package keys

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// AddressLength is the size of an address in bytes.
const AddressLength = 20

// addressVersion prefixes every base58 address.
const addressVersion = byte(0x17)

// ErrInvalidAddress is returned when a textual address cannot be decoded.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies an account or a deployed contract.
type Address [AddressLength]byte

// AddressFromPubKey derives the account address of a public key.
func AddressFromPubKey(pub *ecdsa.PublicKey) Address {
	var a Address
	copy(a[:], Hash160(crypto.CompressPubkey(pub)))
	return a
}

// AddressFromPubKeyBytes derives the account address of a compressed public key.
func AddressFromPubKeyBytes(compressed []byte) Address {
	var a Address
	copy(a[:], Hash160(compressed))
	return a
}

// AddressFromVMCode derives the on-chain address of a contract from its bytecode.
func AddressFromVMCode(code []byte) Address {
	var a Address
	copy(a[:], Hash160(code))
	return a
}

// AddressFromBase58 decodes a base58check address.
func AddressFromBase58(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 1+AddressLength+4 || raw[0] != addressVersion {
		return a, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	sum := Hash256(raw[:1+AddressLength])
	if !bytes.Equal(sum[:4], raw[1+AddressLength:]) {
		return a, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	copy(a[:], raw[1:1+AddressLength])
	return a, nil
}

// AddressFromHex decodes a hex address as printed by Hex.
func AddressFromHex(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != AddressLength {
		return a, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	copy(a[:], raw)
	return a, nil
}

// Base58 returns the base58check form used in wallets and on the wire.
func (a Address) Base58() string {
	buf := make([]byte, 0, 1+AddressLength+4)
	buf = append(buf, addressVersion)
	buf = append(buf, a[:]...)
	sum := Hash256(buf)
	buf = append(buf, sum[:4]...)
	return base58.Encode(buf)
}

// Hex returns the lowercase hex form of the address bytes.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Base58()
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}
