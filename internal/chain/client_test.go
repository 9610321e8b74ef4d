package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type rpcReq struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

// rpcMock serves a fixed JSON-RPC result per method. Unknown methods get a
// method-not-found error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return rpcHandler(t, func(req rpcReq) (interface{}, *rpcErrBody) {
		if result, ok := responses[req.Method]; ok {
			return result, nil
		}
		return nil, &rpcErrBody{Code: -32601, Message: "method not found"}
	})
}

type rpcErrBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcHandler serves whatever fn returns for each request.
func rpcHandler(t *testing.T, fn func(rpcReq) (interface{}, *rpcErrBody)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		result, rpcErr := fn(req)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialTest(t *testing.T, url string) *RPCClient {
	t.Helper()
	c, err := Dial(context.Background(), url, WithRequestTimeout(2*time.Second))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// ---------------------------------------------------------------------------
// RPCClient
// ---------------------------------------------------------------------------

func TestBlockHeight(t *testing.T) {
	c := dialTest(t, rpcMock(t, map[string]interface{}{"getblockcount": 1234}).URL)

	h, err := c.BlockHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), h)
}

func TestBlockHeightRPCError(t *testing.T) {
	c := dialTest(t, rpcMock(t, nil).URL)

	_, err := c.BlockHeight(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-32601")
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestSendRawTransactionAccepted(t *testing.T) {
	var gotParam string
	srv := rpcHandler(t, func(req rpcReq) (interface{}, *rpcErrBody) {
		if len(req.Params) == 1 {
			json.Unmarshal(req.Params[0], &gotParam) //nolint:errcheck
		}
		return "abcd", nil
	})
	c := dialTest(t, srv.URL)

	res, err := c.SendRawTransaction(context.Background(), []byte{0xde, 0xad})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res)
	assert.Equal(t, "0xdead", gotParam)
}

func TestSendRawTransactionRejected(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int64
	}{
		{"negative code kept", -32000, -32000},
		{"positive code negated", 43001, -43001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rpcHandler(t, func(rpcReq) (interface{}, *rpcErrBody) {
				return nil, &rpcErrBody{Code: tt.code, Message: "rejected"}
			})
			c := dialTest(t, srv.URL)

			res, err := c.SendRawTransaction(context.Background(), []byte{1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestSendRawTransactionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := dialTest(t, srv.URL)

	_, err := c.SendRawTransaction(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestUnreachableNodeIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := dialTest(t, url)

	_, err := c.BlockHeight(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestTxHashesAtHeight(t *testing.T) {
	var gotHeight uint64
	srv := rpcHandler(t, func(req rpcReq) (interface{}, *rpcErrBody) {
		if len(req.Params) == 1 {
			json.Unmarshal(req.Params[0], &gotHeight) //nolint:errcheck
		}
		return map[string]interface{}{"Height": 42, "Hashes": []string{"aa", "bb"}}, nil
	})
	c := dialTest(t, srv.URL)

	hashes, err := c.TxHashesAtHeight(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb"}, hashes)
	assert.Equal(t, uint64(42), gotHeight)
}

func TestTxHashesAtHeightEmptyBlock(t *testing.T) {
	c := dialTest(t, rpcMock(t, map[string]interface{}{"getblocktxsbyheight": nil}).URL)

	hashes, err := c.TxHashesAtHeight(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestConfirmation(t *testing.T) {
	tests := []struct {
		name   string
		result interface{}
		want   Outcome
	}{
		{"success", map[string]interface{}{"TxHash": "aa", "State": 1}, OutcomeSuccess},
		{"failed", map[string]interface{}{"TxHash": "aa", "State": 0}, OutcomeFailed},
		{"unknown", nil, OutcomeUnknown},
		{"empty string", "", OutcomeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := dialTest(t, rpcMock(t, map[string]interface{}{"getsmartcodeevent": tt.result}).URL)
			got, err := c.Confirmation(context.Background(), "aa")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPing(t *testing.T) {
	c := dialTest(t, rpcMock(t, map[string]interface{}{"getblockcount": 77}).URL)

	latency, height, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(77), height)
	assert.Greater(t, latency, time.Duration(0))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", OutcomeUnknown.String())
}
