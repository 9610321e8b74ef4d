package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

// Errors.
var (
	ErrContractNotDeployed = errors.New("contract not deployed")
	ErrAlreadyRegistered   = errors.New("contract already registered")
)

// DuplicatePolicy decides what Register does with a name that is already present.
type DuplicatePolicy string

const (
	// DuplicateReplace silently overwrites the previous entry.
	DuplicateReplace DuplicatePolicy = "replace"
	// DuplicateReject refuses the second registration.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy maps a config value to a policy. Empty means replace.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateReplace:
		return DuplicateReplace, nil
	case DuplicateReject:
		return DuplicateReject, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q (want replace or reject)", s)
}

// Entry is a deployed contract: its ABI and the bytecode it was deployed with.
type Entry struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	ABI        *ABI   `json:"abi"`
	Code       []byte `json:"code"`
	Address    string `json:"address"`
	TxHash     string `json:"tx_hash,omitempty"`
	DeployedAt string `json:"deployed_at,omitempty"`
}

// ContractAddress returns the on-chain address derived from the bytecode.
func (e *Entry) ContractAddress() keys.Address {
	return keys.AddressFromVMCode(e.Code)
}

// Registry maps contract names to deployed entries. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	path      string
	policy    DuplicatePolicy
	contracts map[string]*Entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithPath persists the registry to a JSON file on Save.
func WithPath(path string) Option {
	return func(r *Registry) {
		r.path = path
	}
}

// WithDuplicatePolicy sets how re-registration under an existing name is handled.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		policy:    DuplicateReplace,
		contracts: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register inserts e under e.Name, filling in its address and deployment time.
func (r *Registry) Register(e *Entry) error {
	if e.Name == "" {
		return fmt.Errorf("register: empty contract name")
	}
	if e.Address == "" {
		e.Address = e.ContractAddress().Base58()
	}
	if e.DeployedAt == "" {
		e.DeployedAt = time.Now().UTC().Format(time.RFC3339)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contracts[e.Name]; exists && r.policy == DuplicateReject {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, e.Name)
	}
	r.contracts[e.Name] = e
	return nil
}

// CanRegister reports whether an entry named name would be accepted by
// Register under the current duplicate policy.
func (r *Registry) CanRegister(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, exists := r.contracts[name]; exists && r.policy == DuplicateReject {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.contracts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotDeployed, name)
	}
	return e, nil
}

// All returns every entry sorted by name.
func (r *Registry) All() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Load reads persisted entries. A registry without a path, or a missing
// file, loads nothing.
func (r *Registry) Load() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing registry %s: %w", r.path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range entries {
		e := &entries[i]
		r.contracts[e.Name] = e
	}
	return nil
}

// Save writes all entries to the registry file, if one is configured.
func (r *Registry) Save() error {
	if r.path == "" {
		return nil
	}
	entries := r.All()
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}
