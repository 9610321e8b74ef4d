package tx

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

// Default gas settings.
const (
	DefaultGasPrice uint64 = 0
	DefaultGasLimit uint64 = 20_000_000
)

// GasConfig is the gas price and limit applied to every built transaction.
type GasConfig struct {
	Price uint64 `mapstructure:"price" json:"price"`
	Limit uint64 `mapstructure:"limit" json:"limit"`
}

// DefaultGas returns price 0 and limit 20,000,000.
func DefaultGas() GasConfig {
	return GasConfig{Price: DefaultGasPrice, Limit: DefaultGasLimit}
}

// ErrEmptyCode is returned when deploying without bytecode.
var ErrEmptyCode = errors.New("empty contract code")

// DeployParams are the inputs of a deploy transaction.
type DeployParams struct {
	Code        []byte
	NeedStorage bool
	Name        string
	Version     string
	Author      string
	Email       string
	Description string
}

// Builder creates unsigned transactions paid for by one account.
type Builder struct {
	payer keys.Address
	gas   GasConfig
	nonce func() uint32
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNonce replaces the random nonce source.
func WithNonce(fn func() uint32) BuilderOption {
	return func(b *Builder) {
		b.nonce = fn
	}
}

// NewBuilder returns a builder for payer using gas for every transaction.
func NewBuilder(payer keys.Address, gas GasConfig, opts ...BuilderOption) *Builder {
	b := &Builder{
		payer: payer,
		gas:   gas,
		nonce: rand.Uint32,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Gas returns the builder's gas settings.
func (b *Builder) Gas() GasConfig { return b.gas }

// Deploy builds an unsigned deploy transaction.
func (b *Builder) Deploy(p DeployParams) (*Transaction, error) {
	if len(p.Code) == 0 {
		return nil, fmt.Errorf("deploy %s: %w", p.Name, ErrEmptyCode)
	}
	payload, err := rlp.EncodeToBytes(DeployPayload(p))
	if err != nil {
		return nil, fmt.Errorf("encoding deploy payload: %w", err)
	}
	return b.build(KindDeploy, payload), nil
}

// Invoke builds an unsigned transaction calling a bound contract function.
func (b *Builder) Invoke(inv *contract.Invocation) (*Transaction, error) {
	params, err := encodeParams(inv.Params)
	if err != nil {
		return nil, fmt.Errorf("invoke %s.%s: %w", inv.Contract, inv.Function, err)
	}
	payload, err := rlp.EncodeToBytes(InvokePayload{
		Contract: inv.Address,
		Method:   inv.Function,
		Params:   params,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding invoke payload: %w", err)
	}
	return b.build(KindInvoke, payload), nil
}

func (b *Builder) build(kind Kind, payload []byte) *Transaction {
	return &Transaction{
		Version:  txVersion,
		Kind:     kind,
		Nonce:    b.nonce(),
		GasPrice: b.gas.Price,
		GasLimit: b.gas.Limit,
		Payer:    b.payer,
		Payload:  payload,
	}
}
