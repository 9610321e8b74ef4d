package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidABI is returned when an ABI description cannot be parsed.
var ErrInvalidABI = errors.New("invalid ABI")

// ABI describes the callable surface of a contract.
type ABI struct {
	Hash       string     `json:"hash,omitempty"`
	EntryPoint string     `json:"entrypoint,omitempty"`
	Functions  []Function `json:"functions"`
	Events     []Event    `json:"events,omitempty"`
}

// Function is one callable function with ordered, typed parameters.
type Function struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returntype,omitempty"`
}

// Parameter is a declared function parameter.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Event is a notification a contract may emit.
type Event struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
}

// Function returns the function named name.
func (a *ABI) Function(name string) (*Function, bool) {
	if a == nil {
		return nil, false
	}
	for i := range a.Functions {
		if a.Functions[i].Name == name {
			return &a.Functions[i], true
		}
	}
	return nil, false
}

// Signature renders the function as name(type name, ...).
func (f *Function) Signature() string {
	parts := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		if p.Name != "" {
			parts[i] = p.Type + " " + p.Name
		} else {
			parts[i] = p.Type
		}
	}
	return f.Name + "(" + strings.Join(parts, ", ") + ")"
}

// LoadABI reads an ABI description from path.
func LoadABI(path string) (*ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read ABI file: %w", err)
	}
	abi, err := ParseABI(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return abi, nil
}

// ParseABI decodes an ABI that is either:
//   - a bare description: {"functions":[...], ...}
//   - compiler output wrapping it: {"abi":{"functions":[...]}, ...}
func ParseABI(data []byte) (*ABI, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidABI)
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object with a \"functions\" array", ErrInvalidABI)
	}

	var wrapped struct {
		ABI json.RawMessage `json:"abi"`
	}
	if json.Unmarshal(data, &wrapped) == nil && len(wrapped.ABI) > 1 && wrapped.ABI[0] == '{' {
		data = wrapped.ABI
	}

	var abi ABI
	if err := json.Unmarshal(data, &abi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}
	if err := validateABI(&abi); err != nil {
		return nil, err
	}
	return &abi, nil
}

// validateABI checks the ABI declares at least one named function with typed parameters.
func validateABI(abi *ABI) error {
	if len(abi.Functions) == 0 {
		return fmt.Errorf("%w: no functions declared", ErrInvalidABI)
	}
	for _, fn := range abi.Functions {
		if fn.Name == "" {
			return fmt.Errorf("%w: function without a name", ErrInvalidABI)
		}
		for _, p := range fn.Parameters {
			if _, err := ParseParamType(p.Type); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalidABI, fn.Name, p.Name, err)
			}
		}
	}
	return nil
}
