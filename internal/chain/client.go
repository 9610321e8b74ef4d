package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Mohsinsiddi/benchadapter/internal/logger"
)

// ErrTransport is returned when the node could not be reached or answered
// with something other than a JSON-RPC result or error.
var ErrTransport = errors.New("transport error")

// DefaultTimeout bounds a single RPC round trip.
const DefaultTimeout = 15 * time.Second

// Outcome is the execution result of a confirmed transaction.
type Outcome int

// Outcomes.
const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HeightReader reads the current block height.
type HeightReader interface {
	BlockHeight(ctx context.Context) (uint64, error)
}

// Client is the network transport the adapter drives.
type Client interface {
	HeightReader
	// SendRawTransaction posts a serialized transaction. A negative result
	// means the node rejected it; err is reserved for transport failures.
	SendRawTransaction(ctx context.Context, raw []byte) (int64, error)
	TxHashesAtHeight(ctx context.Context, height uint64) ([]string, error)
	Confirmation(ctx context.Context, txHash string) (Outcome, error)
}

// RPCClient is a JSON-RPC 2.0 Client.
type RPCClient struct {
	url string
	c   *rpc.Client
}

type clientOptions struct {
	timeout time.Duration
	headers http.Header
}

// ClientOption configures an RPCClient.
type ClientOption func(*clientOptions)

// WithRequestTimeout bounds each HTTP round trip.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(o *clientOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Add(key, value)
	}
}

// Dial creates a client for the node at url.
func Dial(ctx context.Context, url string, opts ...ClientOption) (*RPCClient, error) {
	o := clientOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	dialOpts := []rpc.ClientOption{
		rpc.WithHTTPClient(&http.Client{Timeout: o.timeout}),
	}
	if o.headers != nil {
		dialOpts = append(dialOpts, rpc.WithHeaders(o.headers))
	}
	c, err := rpc.DialOptions(ctx, url, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, url, err)
	}
	return &RPCClient{url: url, c: c}, nil
}

// URL returns the endpoint the client talks to.
func (c *RPCClient) URL() string { return c.url }

// Close releases the underlying connection.
func (c *RPCClient) Close() { c.c.Close() }

// SendRawTransaction posts raw via sendrawtransaction. A node rejection is
// returned as -|code|, or -1 when the node gives no code.
func (c *RPCClient) SendRawTransaction(ctx context.Context, raw []byte) (int64, error) {
	var hash string
	err := c.c.CallContext(ctx, &hash, "sendrawtransaction", hexutil.Encode(raw))
	if err == nil {
		return 0, nil
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		code := int64(rpcErr.ErrorCode())
		logger.I().Debugw("transaction rejected", "url", c.url, "code", code, "error", rpcErr.Error())
		switch {
		case code == 0:
			return -1, nil
		case code > 0:
			return -code, nil
		default:
			return code, nil
		}
	}
	return 0, c.transportErr("sendrawtransaction", err)
}

// BlockHeight returns the current block count.
func (c *RPCClient) BlockHeight(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.call(ctx, &height, "getblockcount"); err != nil {
		return 0, err
	}
	return height, nil
}

// Ping measures one getblockcount round trip.
func (c *RPCClient) Ping(ctx context.Context) (time.Duration, uint64, error) {
	start := time.Now()
	height, err := c.BlockHeight(ctx)
	return time.Since(start), height, err
}

type blockTxs struct {
	Height uint64   `json:"Height"`
	Hashes []string `json:"Hashes"`
}

// TxHashesAtHeight lists the transaction hashes in the block at height.
func (c *RPCClient) TxHashesAtHeight(ctx context.Context, height uint64) ([]string, error) {
	var res *blockTxs
	if err := c.call(ctx, &res, "getblocktxsbyheight", height); err != nil {
		return nil, err
	}
	if res == nil {
		return []string{}, nil
	}
	return res.Hashes, nil
}

type contractEvent struct {
	TxHash string `json:"TxHash"`
	State  int    `json:"State"`
}

// Confirmation reports the execution outcome of txHash. A transaction the
// node has no record of is OutcomeUnknown.
func (c *RPCClient) Confirmation(ctx context.Context, txHash string) (Outcome, error) {
	var raw json.RawMessage
	if err := c.call(ctx, &raw, "getsmartcodeevent", txHash); err != nil {
		return OutcomeUnknown, err
	}
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return OutcomeUnknown, nil
	}
	var ev contractEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return OutcomeUnknown, fmt.Errorf("parsing event for %s: %w", txHash, err)
	}
	if ev.State == 1 {
		return OutcomeSuccess, nil
	}
	return OutcomeFailed, nil
}

func (c *RPCClient) call(ctx context.Context, result any, method string, args ...any) error {
	err := c.c.CallContext(ctx, result, method, args...)
	if err == nil {
		return nil
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("RPC error %d: %s", rpcErr.ErrorCode(), rpcErr.Error())
	}
	return c.transportErr(method, err)
}

func (c *RPCClient) transportErr(method string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, c.url, err)
}
