package tx

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

// DeployPayload carries contract code and its metadata.
type DeployPayload struct {
	Code        []byte
	NeedStorage bool
	Name        string
	Version     string
	Author      string
	Email       string
	Description string
}

// InvokePayload names a contract function and its encoded arguments.
type InvokePayload struct {
	Contract keys.Address
	Method   string
	Params   []Param
}

// Param is one encoded argument: a type tag and the value bytes.
type Param struct {
	Type  uint8
	Value []byte
}

// DeployPayload decodes the payload of a deploy transaction.
func (t *Transaction) DeployPayload() (*DeployPayload, error) {
	if t.Kind != KindDeploy {
		return nil, fmt.Errorf("%w: %s transaction has no deploy payload", ErrInvalidTx, t.Kind)
	}
	var p DeployPayload
	if err := rlp.DecodeBytes(t.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: deploy payload: %v", ErrInvalidTx, err)
	}
	return &p, nil
}

// InvokePayload decodes the payload of an invoke transaction.
func (t *Transaction) InvokePayload() (*InvokePayload, error) {
	if t.Kind != KindInvoke {
		return nil, fmt.Errorf("%w: %s transaction has no invoke payload", ErrInvalidTx, t.Kind)
	}
	var p InvokePayload
	if err := rlp.DecodeBytes(t.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: invoke payload: %v", ErrInvalidTx, err)
	}
	return &p, nil
}

// encodeParams converts bound arguments to their wire form.
func encodeParams(bound []contract.BoundParam) ([]Param, error) {
	out := make([]Param, len(bound))
	for i, b := range bound {
		v, err := paramBytes(b)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", b.Name, err)
		}
		out[i] = Param{Type: uint8(b.Type), Value: v}
	}
	return out, nil
}

func paramBytes(b contract.BoundParam) ([]byte, error) {
	switch b.Type {
	case contract.TypeString:
		s, ok := b.Value.(string)
		if !ok {
			return nil, fmt.Errorf("want string, have %T", b.Value)
		}
		return []byte(s), nil
	case contract.TypeInteger:
		n, ok := b.Value.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("want *big.Int, have %T", b.Value)
		}
		return IntegerBytes(n), nil
	case contract.TypeBoolean:
		v, ok := b.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, have %T", b.Value)
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case contract.TypeByteArray:
		v, ok := b.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("want []byte, have %T", b.Value)
		}
		return v, nil
	case contract.TypeAddress:
		a, ok := b.Value.(keys.Address)
		if !ok {
			return nil, fmt.Errorf("want address, have %T", b.Value)
		}
		return a[:], nil
	default:
		return json.Marshal(b.Value)
	}
}

// IntegerBytes returns the minimal little-endian two's complement encoding
// of n. Zero encodes as an empty slice.
func IntegerBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{}
	}
	var be []byte
	if n.Sign() > 0 {
		be = n.Bytes()
		if be[0]&0x80 != 0 {
			be = append([]byte{0}, be...)
		}
	} else {
		// two's complement over the smallest byte width that holds n
		width := (n.BitLen() + 7) / 8
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		be = new(big.Int).Add(mod, n).Bytes()
		for len(be) < width {
			be = append([]byte{0}, be...)
		}
		if be[0]&0x80 == 0 {
			be = append([]byte{0xff}, be...)
		}
	}
	le := make([]byte, len(be))
	for i := range be {
		le[i] = be[len(be)-1-i]
	}
	return le
}

// IntegerFromBytes reverses IntegerBytes.
func IntegerFromBytes(le []byte) *big.Int {
	if len(le) == 0 {
		return new(big.Int)
	}
	be := make([]byte, len(le))
	for i := range le {
		be[i] = le[len(le)-1-i]
	}
	n := new(big.Int).SetBytes(be)
	if be[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(be)*8)))
	}
	return n
}
