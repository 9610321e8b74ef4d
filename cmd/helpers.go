package cmd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/benchadapter/internal/adapter"
	"github.com/Mohsinsiddi/benchadapter/internal/chain"
	"github.com/Mohsinsiddi/benchadapter/internal/config"
	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/logger"
	"github.com/Mohsinsiddi/benchadapter/internal/rpc"
	"github.com/Mohsinsiddi/benchadapter/internal/wallet"
)

// keystore is swapped for an in-memory store in tests.
var keystore wallet.KeystoreBackend = lazyKeystore{}

// lazyKeystore opens the OS keychain on first use so commands that never
// touch a passphrase do not prompt for keychain access.
type lazyKeystore struct{}

func (lazyKeystore) Store(name, passphrase string) (string, error) {
	return wallet.DefaultKeystore().Store(name, passphrase)
}

func (lazyKeystore) Retrieve(ref string) (string, error) {
	return wallet.DefaultKeystore().Retrieve(ref)
}

func (lazyKeystore) Delete(ref string) error {
	return wallet.DefaultKeystore().Delete(ref)
}

// dialNode selects the best configured endpoint and connects to it.
func dialNode(ctx context.Context) (*chain.RPCClient, error) {
	if len(cfg.Network.URLs) == 0 {
		return nil, fmt.Errorf("no node URLs configured\n  Add one with: benchadapter rpc add <url>")
	}
	selCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(selCtx, cfg.Network.URLs, cfg.Network.RPCAlgorithm)
	if err != nil {
		return nil, err
	}
	logger.I().Debugw("node selected", "url", url)

	timeout := cfg.Network.Timeout
	if timeout <= 0 {
		timeout = config.RPCRequestTimeout
	}
	return chain.Dial(ctx, url, chain.WithRequestTimeout(timeout))
}

// openRegistry builds the registry from config and loads any persisted entries.
func openRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(
		contract.WithPath(cfg.Registry.Path),
		contract.WithDuplicatePolicy(cfg.DuplicatePolicy()),
	)
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	return reg, nil
}

// walletPassphrase resolves the configured passphrase, falling back to the keychain.
func walletPassphrase() (string, error) {
	return wallet.ResolvePassphrase(cfg.Wallet.Passphrase, cfg.Wallet.PassphraseRef, keystore)
}

// newAdapter wires an adapter from config. The caller closes the client.
func newAdapter(ctx context.Context) (*adapter.Adapter, *chain.RPCClient, error) {
	pass, err := walletPassphrase()
	if err != nil {
		return nil, nil, err
	}
	reg, err := openRegistry()
	if err != nil {
		return nil, nil, err
	}
	client, err := dialNode(ctx)
	if err != nil {
		return nil, nil, err
	}
	a, err := adapter.New(adapter.Options{
		WalletPath:   cfg.Wallet.Path,
		Passphrase:   pass,
		Transport:    client,
		Gas:          cfg.Gas,
		PollInterval: cfg.Poll.Interval,
		PollTimeout:  cfg.Poll.Timeout,
		Registry:     reg,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return a, client, nil
}

// parseArgs decodes a JSON array of call arguments. Numbers stay json.Number
// so large integers survive.
func parseArgs(s string) ([]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var args []any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("--args must be a JSON array: %w", err)
	}
	return args, nil
}

// parseHeight accepts a decimal height.
func parseHeight(s string) (uint64, error) {
	h, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid height %q", s)
	}
	return h, nil
}

// decodeHex accepts hex with or without a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}
