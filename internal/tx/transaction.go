// Package tx builds, signs and serializes network transactions.
package tx

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

// Kind is the transaction type tag.
type Kind byte

// Transaction kinds.
const (
	KindDeploy Kind = 0xd0
	KindInvoke Kind = 0xd1
)

func (k Kind) String() string {
	switch k {
	case KindDeploy:
		return "deploy"
	case KindInvoke:
		return "invoke"
	default:
		return fmt.Sprintf("kind(0x%02x)", byte(k))
	}
}

const txVersion byte = 0

// Errors.
var (
	ErrAlreadySigned = errors.New("transaction already signed")
	ErrNotSigned     = errors.New("transaction not signed")
	ErrInvalidTx     = errors.New("invalid transaction")
)

// Sig is one signature over the transaction hash.
type Sig struct {
	PubKey []byte
	Sig    []byte
}

// Transaction is the network transaction. Payload holds the RLP encoding of
// a DeployPayload or InvokePayload depending on Kind.
type Transaction struct {
	Version  byte
	Kind     Kind
	Nonce    uint32
	GasPrice uint64
	GasLimit uint64
	Payer    keys.Address
	Payload  []byte
	Sigs     []Sig
}

// unsigned is the part of a transaction covered by its hash.
type unsigned struct {
	Version  byte
	Kind     Kind
	Nonce    uint32
	GasPrice uint64
	GasLimit uint64
	Payer    keys.Address
	Payload  []byte
}

func (t *Transaction) unsigned() unsigned {
	return unsigned{
		Version:  t.Version,
		Kind:     t.Kind,
		Nonce:    t.Nonce,
		GasPrice: t.GasPrice,
		GasLimit: t.GasLimit,
		Payer:    t.Payer,
		Payload:  t.Payload,
	}
}

// Hash is a transaction identifier in native byte order.
type Hash [32]byte

// String returns the display form: hex of the byte-reversed hash.
func (h Hash) String() string {
	var r Hash
	for i := range h {
		r[i] = h[len(h)-1-i]
	}
	return hex.EncodeToString(r[:])
}

// ParseHash decodes a display-form hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(h) {
		return h, fmt.Errorf("invalid transaction hash %q", s)
	}
	for i := range raw {
		h[i] = raw[len(raw)-1-i]
	}
	return h, nil
}

// Hash returns SHA256(SHA256(RLP(unsigned fields))). Signatures are not
// covered, so the hash is the same before and after signing.
func (t *Transaction) Hash() Hash {
	enc, err := rlp.EncodeToBytes(t.unsigned())
	if err != nil {
		// every field is a fixed RLP-encodable type
		panic(fmt.Sprintf("tx: encoding unsigned transaction: %v", err))
	}
	var h Hash
	copy(h[:], keys.Hash256(enc))
	return h
}

// HashHex is shorthand for Hash().String().
func (t *Transaction) HashHex() string {
	return t.Hash().String()
}

// Signed reports whether the transaction carries at least one signature.
func (t *Transaction) Signed() bool {
	return len(t.Sigs) > 0
}

// Bytes returns the RLP serialization sent to the network.
func (t *Transaction) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(t)
}

// Decode parses a serialized transaction.
func Decode(b []byte) (*Transaction, error) {
	var t Transaction
	if err := rlp.DecodeBytes(b, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTx, err)
	}
	return &t, nil
}
