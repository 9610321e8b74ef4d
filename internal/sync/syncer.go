// Package sync shares contract registries between hosts: the host that
// deployed publishes a manifest, other load generators import it.
package sync

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/logger"
)

// ErrNoSource is returned by Run without a manifest location.
var ErrNoSource = errors.New("no manifest source configured")

// Manifest is the structure of a deployments.json manifest.
type Manifest struct {
	Contracts map[string]ManifestEntry `json:"contracts"`
}

// ManifestEntry is a single deployed contract. The ABI is inline or fetched
// from ABIUrl, which may be relative to the manifest.
type ManifestEntry struct {
	Version string          `json:"version,omitempty"`
	Address string          `json:"address"`
	Code    string          `json:"code"` // hex
	ABI     json.RawMessage `json:"abi,omitempty"`
	ABIUrl  string          `json:"abi_url,omitempty"`
	TxHash  string          `json:"tx_hash,omitempty"`
}

// Syncer imports manifests into a contract registry.
type Syncer struct {
	reg    *contract.Registry
	client *http.Client
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithHTTPClient replaces the client used for remote manifests and ABIs.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Syncer) {
		s.client = c
	}
}

// New creates a new Syncer.
func New(reg *contract.Registry, opts ...Option) *Syncer {
	s := &Syncer{
		reg:    reg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result counts what a Run did.
type Result struct {
	Imported  int
	Unchanged int
	Skipped   int
}

// Run fetches the manifest at source (an http(s) URL or a file path) and
// registers its entries. Entries already registered with the same address
// are left alone. An entry whose ABI or code cannot be read is skipped with
// a warning; registration failures are returned together.
func (s *Syncer) Run(ctx context.Context, source string) (Result, error) {
	var res Result
	if source == "" {
		return res, ErrNoSource
	}

	manifest, err := s.fetchManifest(ctx, source)
	if err != nil {
		return res, fmt.Errorf("fetching manifest: %w", err)
	}

	var errs []error
	for name, me := range manifest.Contracts {
		entry, err := s.toEntry(ctx, source, name, me)
		if err != nil {
			logger.I().Warnw("skipping manifest entry", "contract", name, "error", err)
			res.Skipped++
			continue
		}
		if cur, err := s.reg.Lookup(name); err == nil && cur.Address == entry.Address {
			res.Unchanged++
			continue
		}
		if err := s.reg.Register(entry); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Imported++
	}

	if res.Imported > 0 {
		if err := s.reg.Save(); err != nil {
			return res, fmt.Errorf("saving contracts: %w", err)
		}
	}
	logger.I().Infow("registry synced", "source", source,
		"imported", res.Imported, "unchanged", res.Unchanged, "skipped", res.Skipped)
	return res, errors.Join(errs...)
}

// Watch runs Syncer.Run on a ticker until ctx is cancelled. Only the first
// run's error is returned.
func (s *Syncer) Watch(ctx context.Context, source string, interval time.Duration) error {
	if _, err := s.Run(ctx, source); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Run(ctx, source); err != nil {
				logger.I().Warnw("registry sync failed", "source", source, "error", err)
			}
		}
	}
}

// Export builds a manifest from every registered contract with inline ABIs.
func Export(reg *contract.Registry) (*Manifest, error) {
	m := &Manifest{Contracts: make(map[string]ManifestEntry)}
	for _, e := range reg.All() {
		abi, err := json.Marshal(e.ABI)
		if err != nil {
			return nil, fmt.Errorf("encoding ABI of %s: %w", e.Name, err)
		}
		m.Contracts[e.Name] = ManifestEntry{
			Version: e.Version,
			Address: e.Address,
			Code:    hex.EncodeToString(e.Code),
			ABI:     abi,
			TxHash:  e.TxHash,
		}
	}
	return m, nil
}

func (s *Syncer) toEntry(ctx context.Context, source, name string, me ManifestEntry) (*contract.Entry, error) {
	code, err := hex.DecodeString(strings.TrimPrefix(me.Code, "0x"))
	if err != nil || len(code) == 0 {
		return nil, fmt.Errorf("invalid code")
	}

	raw := []byte(me.ABI)
	if len(raw) == 0 || string(raw) == "null" {
		if me.ABIUrl == "" {
			return nil, fmt.Errorf("no ABI")
		}
		loc, err := resolveRef(source, me.ABIUrl)
		if err != nil {
			return nil, err
		}
		raw, err = s.read(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("fetching ABI: %w", err)
		}
	}
	abi, err := contract.ParseABI(raw)
	if err != nil {
		return nil, err
	}

	e := &contract.Entry{
		Name:    name,
		Version: me.Version,
		ABI:     abi,
		Code:    code,
		TxHash:  me.TxHash,
	}
	e.Address = e.ContractAddress().Base58()
	if me.Address != "" && me.Address != e.Address {
		return nil, fmt.Errorf("address %s does not match code (%s)", me.Address, e.Address)
	}
	return e, nil
}

func (s *Syncer) fetchManifest(ctx context.Context, source string) (*Manifest, error) {
	body, err := s.read(ctx, source)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// read loads an http(s) URL or a local file.
func (s *Syncer) read(ctx context.Context, loc string) ([]byte, error) {
	if !isHTTP(loc) {
		return os.ReadFile(strings.TrimPrefix(loc, "file://"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", loc, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// resolveRef resolves an ABI reference against the manifest location.
func resolveRef(source, ref string) (string, error) {
	switch {
	case isHTTP(ref):
		return ref, nil
	case isHTTP(source):
		base, err := url.Parse(source)
		if err != nil {
			return "", err
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		return base.ResolveReference(rel).String(), nil
	case filepath.IsAbs(ref):
		return ref, nil
	default:
		return filepath.Join(filepath.Dir(strings.TrimPrefix(source, "file://")), ref), nil
	}
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
