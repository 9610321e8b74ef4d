package contract

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

// ErrInvalidArgument is returned when a call argument cannot be bound to its
// declared parameter type.
var ErrInvalidArgument = errors.New("invalid argument")

// ParamType is the declared type of a function parameter.
type ParamType uint8

// Parameter types.
const (
	TypeAny ParamType = iota
	TypeString
	TypeInteger
	TypeBoolean
	TypeByteArray
	TypeAddress
)

var paramTypeNames = map[string]ParamType{
	"any":       TypeAny,
	"string":    TypeString,
	"integer":   TypeInteger,
	"int":       TypeInteger,
	"boolean":   TypeBoolean,
	"bool":      TypeBoolean,
	"bytearray": TypeByteArray,
	"bytes":     TypeByteArray,
	"address":   TypeAddress,
	"hash160":   TypeAddress,
}

// ParseParamType maps an ABI type name to a ParamType. Matching is case-insensitive.
func ParseParamType(s string) (ParamType, error) {
	t, ok := paramTypeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unsupported parameter type %q", s)
	}
	return t, nil
}

func (t ParamType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInteger:
		return "Integer"
	case TypeBoolean:
		return "Boolean"
	case TypeByteArray:
		return "ByteArray"
	case TypeAddress:
		return "Address"
	default:
		return "Any"
	}
}

// normalize converts a caller-supplied value to the Go type used for t:
// string, *big.Int, bool, []byte, keys.Address, or the value itself for Any.
func normalize(t ParamType, v any) (any, error) {
	switch t {
	case TypeString:
		return toString(v)
	case TypeInteger:
		return toInteger(v)
	case TypeBoolean:
		return toBool(v)
	case TypeByteArray:
		return toBytes(v)
	case TypeAddress:
		return toAddress(v)
	default:
		return v, nil
	}
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case fmt.Stringer:
		return x.String(), nil
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %T is not a string", ErrInvalidArgument, v)
}

func toInteger(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		return new(big.Int).Set(x), nil
	case int:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidArgument, x)
		}
		n, _ := big.NewFloat(x).Int(nil)
		return n, nil
	case json.Number:
		return parseBigInt(x.String())
	case string:
		return parseBigInt(x)
	}
	return nil, fmt.Errorf("%w: %T is not an integer", ErrInvalidArgument, v)
}

func parseBigInt(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, s)
	}
	return n, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidArgument, x)
		}
		return b, nil
	}
	return false, fmt.Errorf("%w: %T is not a boolean", ErrInvalidArgument, v)
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		s := strings.TrimPrefix(strings.TrimPrefix(x, "0x"), "0X")
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not hex", ErrInvalidArgument, x)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %T is not a byte array", ErrInvalidArgument, v)
}

func toAddress(v any) (keys.Address, error) {
	switch x := v.(type) {
	case keys.Address:
		return x, nil
	case string:
		if a, err := keys.AddressFromBase58(x); err == nil {
			return a, nil
		}
		a, err := keys.AddressFromHex(strings.TrimPrefix(x, "0x"))
		if err != nil {
			return keys.Address{}, fmt.Errorf("%w: %q is not an address", ErrInvalidArgument, x)
		}
		return a, nil
	}
	return keys.Address{}, fmt.Errorf("%w: %T is not an address", ErrInvalidArgument, v)
}
