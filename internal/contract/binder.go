package contract

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

// Errors.
var (
	ErrFunctionUndefined     = errors.New("invoke function undefined")
	ErrArgumentCountMismatch = errors.New("argument count mismatch")
)

// Call is the caller's request: a function name and positional arguments.
type Call struct {
	Func string `json:"func"`
	Args []any  `json:"args"`
}

// BoundParam is an argument bound to its declared parameter slot.
type BoundParam struct {
	Name  string
	Type  ParamType
	Value any
}

// Invocation is a fully bound function call against a deployed contract.
type Invocation struct {
	Contract string
	Address  keys.Address
	Function string
	Params   []BoundParam
}

// Bind resolves name in reg and binds call against its ABI. Binding does not
// modify the registry.
func Bind(reg *Registry, name string, call Call) (*Invocation, error) {
	entry, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	params, err := BindFunction(entry.ABI, call)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Invocation{
		Contract: name,
		Address:  entry.ContractAddress(),
		Function: call.Func,
		Params:   params,
	}, nil
}

// BindFunction binds call.Args positionally to the parameters of call.Func.
// The argument count must equal the declared parameter count.
func BindFunction(abi *ABI, call Call) ([]BoundParam, error) {
	if call.Func == "" {
		return nil, fmt.Errorf("%w: no function name given", ErrFunctionUndefined)
	}
	fn, ok := abi.Function(call.Func)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionUndefined, call.Func)
	}
	if len(call.Args) != len(fn.Parameters) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d",
			ErrArgumentCountMismatch, fn.Signature(), len(fn.Parameters), len(call.Args))
	}

	bound := make([]BoundParam, len(fn.Parameters))
	for i, p := range fn.Parameters {
		typ, err := ParseParamType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, p.Name, err)
		}
		v, err := normalize(typ, call.Args[i])
		if err != nil {
			return nil, fmt.Errorf("binding %s (arg %d): %w", p.Name, i, err)
		}
		bound[i] = BoundParam{Name: p.Name, Type: typ, Value: v}
	}
	return bound, nil
}
