package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidDescriptor is returned for an incomplete deployment descriptor.
var ErrInvalidDescriptor = errors.New("invalid contract descriptor")

// Descriptor describes one contract to deploy.
type Descriptor struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Email       string `json:"email"`
	Description string `json:"desc"`
	NeedStorage bool   `json:"needStorage"`
	Path        string `json:"path"` // compiled bytecode
	ABIPath     string `json:"abi"`
}

// LoadDescriptor reads a descriptor file. Relative code and ABI paths are
// resolved against the descriptor's directory.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing descriptor %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if d.Path != "" && !filepath.IsAbs(d.Path) {
		d.Path = filepath.Join(dir, d.Path)
	}
	if d.ABIPath != "" && !filepath.IsAbs(d.ABIPath) {
		d.ABIPath = filepath.Join(dir, d.ABIPath)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &d, nil
}

// LoadDescriptors reads descriptors in the given order.
func LoadDescriptors(paths []string) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(paths))
	for _, p := range paths {
		d, err := LoadDescriptor(p)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// Validate checks the fields required to deploy.
func (d *Descriptor) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidDescriptor)
	case d.Path == "":
		return fmt.Errorf("%w: %s: missing bytecode path", ErrInvalidDescriptor, d.Name)
	case d.ABIPath == "":
		return fmt.Errorf("%w: %s: missing abi path", ErrInvalidDescriptor, d.Name)
	}
	return nil
}

// ReadCode loads the bytecode. Files holding hex text (optionally 0x
// prefixed) are decoded; anything else is taken as raw bytes.
func (d *Descriptor) ReadCode() ([]byte, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("reading bytecode for %s: %w", d.Name, err)
	}
	text := bytes.TrimSpace(data)
	text = bytes.TrimPrefix(bytes.TrimPrefix(text, []byte("0x")), []byte("0X"))
	if len(text) > 0 && len(text)%2 == 0 {
		code := make([]byte, hex.DecodedLen(len(text)))
		if _, err := hex.Decode(code, text); err == nil {
			return code, nil
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("bytecode for %s is empty: %s", d.Name, d.Path)
	}
	return data, nil
}

// ReadABI loads the ABI description.
func (d *Descriptor) ReadABI() (*ABI, error) {
	return LoadABI(d.ABIPath)
}
