// Package adapter is the benchmark backend: it deploys contracts, invokes
// them, and exposes chain queries to the harness.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/chain"
	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/logger"
	"github.com/Mohsinsiddi/benchadapter/internal/submit"
	"github.com/Mohsinsiddi/benchadapter/internal/tx"
	"github.com/Mohsinsiddi/benchadapter/internal/wallet"
)

// ErrNoTransport is returned by New without a network client.
var ErrNoTransport = errors.New("no network transport configured")

// Options configures an Adapter.
type Options struct {
	WalletPath string
	Passphrase string
	// Wallet, when set, is used instead of loading WalletPath.
	Wallet *wallet.Wallet

	Transport chain.Client
	Gas       tx.GasConfig

	PollInterval time.Duration
	PollTimeout  time.Duration
	// PollerOptions are applied after the interval and timeout.
	PollerOptions []chain.PollerOption

	// Registry defaults to an empty in-memory registry.
	Registry *contract.Registry
}

// Adapter composes wallet, registry, builder, submitter and poller.
type Adapter struct {
	wallet    *wallet.Wallet
	client    chain.Client
	registry  *contract.Registry
	builder   *tx.Builder
	submitter *submit.Submitter
	poller    *chain.Poller
}

// New loads the wallet and wires the adapter. A wallet that cannot be
// decrypted fails construction.
func New(opts Options) (*Adapter, error) {
	if opts.Transport == nil {
		return nil, ErrNoTransport
	}
	w := opts.Wallet
	if w == nil {
		var err error
		w, err = wallet.Load(opts.WalletPath, opts.Passphrase)
		if err != nil {
			return nil, err
		}
	}

	reg := opts.Registry
	if reg == nil {
		reg = contract.NewRegistry()
	}
	gas := opts.Gas
	if gas == (tx.GasConfig{}) {
		gas = tx.DefaultGas()
	}

	pollOpts := []chain.PollerOption{
		chain.WithInterval(opts.PollInterval),
		chain.WithTimeout(opts.PollTimeout),
	}
	pollOpts = append(pollOpts, opts.PollerOptions...)

	return &Adapter{
		wallet:    w,
		client:    opts.Transport,
		registry:  reg,
		builder:   tx.NewBuilder(w.Address(), gas),
		submitter: submit.New(opts.Transport),
		poller:    chain.NewPoller(opts.Transport, pollOpts...),
	}, nil
}

// Wallet returns the active account.
func (a *Adapter) Wallet() *wallet.Wallet { return a.wallet }

// Registry returns the contract registry.
func (a *Adapter) Registry() *contract.Registry { return a.registry }

// Init is a no-op.
func (a *Adapter) Init(context.Context) error { return nil }

// GetContext is a no-op; the adapter keeps no per-worker context.
func (a *Adapter) GetContext(context.Context, string, map[string]any) (any, error) {
	return nil, nil
}

// ReleaseContext is a no-op.
func (a *Adapter) ReleaseContext(context.Context, any) error { return nil }

// Deploy deploys each contract in order. A contract is registered once its
// deploy transaction is accepted, then Deploy waits for the next block.
func (a *Adapter) Deploy(ctx context.Context, descs []contract.Descriptor) error {
	for i := range descs {
		if err := a.deployOne(ctx, &descs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) deployOne(ctx context.Context, d *contract.Descriptor) error {
	if err := a.registry.CanRegister(d.Name); err != nil {
		return err
	}
	code, err := d.ReadCode()
	if err != nil {
		return err
	}
	abi, err := d.ReadABI()
	if err != nil {
		return err
	}

	unsigned, err := a.builder.Deploy(tx.DeployParams{
		Code:        code,
		NeedStorage: d.NeedStorage,
		Name:        d.Name,
		Version:     d.Version,
		Author:      d.Author,
		Email:       d.Email,
		Description: d.Description,
	})
	if err != nil {
		return err
	}
	signed, err := a.wallet.SignTx(unsigned)
	if err != nil {
		return err
	}
	st, err := a.submitter.Submit(ctx, signed)
	if err != nil {
		return fmt.Errorf("deploy %s: %w", d.Name, err)
	}
	logger.I().Infow("deploy submitted", "contract", d.Name, "hash", st.Hash)

	if err := st.Wait(ctx); err != nil {
		return fmt.Errorf("deploy %s: %w", d.Name, err)
	}

	entry := &contract.Entry{
		Name:    d.Name,
		Version: d.Version,
		ABI:     abi,
		Code:    code,
		TxHash:  st.Hash,
	}
	if err := a.registry.Register(entry); err != nil {
		return err
	}
	if err := a.registry.Save(); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	logger.I().Infow("contract registered", "contract", d.Name, "address", entry.Address, "hash", st.Hash)

	if _, err := a.poller.WaitNextBlock(ctx); err != nil {
		return fmt.Errorf("deploy %s: %w", d.Name, err)
	}
	return nil
}

// Invoke binds call against the named contract, signs the transaction and
// submits it. Binding errors are returned; the submission outcome is on the
// status.
func (a *Adapter) Invoke(ctx context.Context, name string, call contract.Call) (*submit.Status, error) {
	inv, err := contract.Bind(a.registry, name, call)
	if err != nil {
		return nil, err
	}
	unsigned, err := a.builder.Invoke(inv)
	if err != nil {
		return nil, err
	}
	signed, err := a.wallet.SignTx(unsigned)
	if err != nil {
		return nil, err
	}
	st, err := a.submitter.Submit(ctx, signed)
	if err != nil {
		return nil, err
	}
	logger.I().Debugw("invoke submitted", "contract", name, "func", call.Func, "hash", st.Hash)
	return st, nil
}

// Transfer submits a transaction serialized elsewhere. hash is used for
// the status record only.
func (a *Adapter) Transfer(ctx context.Context, hash string, raw []byte) *submit.Status {
	return a.submitter.SubmitRaw(ctx, hash, raw)
}

// Height returns the current block height.
func (a *Adapter) Height(ctx context.Context) (uint64, error) {
	return a.client.BlockHeight(ctx)
}

// TxHashesAtHeight lists the transactions in the block at height.
func (a *Adapter) TxHashesAtHeight(ctx context.Context, height uint64) ([]string, error) {
	return a.client.TxHashesAtHeight(ctx, height)
}

// ConfirmationStatus reports the execution outcome of a transaction.
func (a *Adapter) ConfirmationStatus(ctx context.Context, hash string) (chain.Outcome, error) {
	return a.client.Confirmation(ctx, hash)
}

// WaitNextBlock blocks until the height advances and returns the new height.
func (a *Adapter) WaitNextBlock(ctx context.Context) (uint64, error) {
	return a.poller.WaitNextBlock(ctx)
}
