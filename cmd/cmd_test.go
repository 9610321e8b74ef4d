package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
	"github.com/Mohsinsiddi/benchadapter/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// fakeNode is a JSON-RPC node whose height advances on every read.
type fakeNode struct {
	mu     sync.Mutex
	height uint64
	sent   []string
	calls  map[string]int
}

func (n *fakeNode) serve(t *testing.T) *httptest.Server {
	t.Helper()
	n.calls = map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     json.RawMessage   `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		n.mu.Lock()
		n.calls[req.Method]++
		var result any
		switch req.Method {
		case "getblockcount":
			n.height++
			result = n.height
		case "sendrawtransaction":
			var raw string
			json.Unmarshal(req.Params[0], &raw) //nolint:errcheck
			n.sent = append(n.sent, raw)
			result = "ok"
		case "getblocktxsbyheight":
			result = map[string]any{"Height": 7, "Hashes": []string{"aa11", "bb22"}}
		case "getsmartcodeevent":
			result = map[string]any{"TxHash": "aa11", "State": 1}
		}
		n.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeConfig writes benchadapter.json into a fresh config dir.
func writeConfig(t *testing.T, body map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "benchadapter.json"), data, 0o600))
	return dir
}

func writeFastWallet(t *testing.T, dir, passphrase string) {
	t.Helper()
	f := wallet.NewFile("bench", keys.ScryptParams{N: 16, R: 8, P: 1, DKLen: 64})
	_, err := f.AddAccount("", passphrase, "cli")
	require.NoError(t, err)
	require.NoError(t, f.Save(filepath.Join(dir, "wallet.dat")))
}

// execute runs the root command in-process and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	keystore = wallet.NewInMemoryKeystore()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// ---------------------------------------------------------------------------
// chain queries
// ---------------------------------------------------------------------------

func TestHeightCommand(t *testing.T) {
	node := &fakeNode{height: 1233}
	dir := writeConfig(t, map[string]any{"network": map[string]any{"urls": []string{node.serve(t).URL}}})

	out, err := execute(t, "--config", dir, "height")
	require.NoError(t, err)
	assert.Contains(t, out, "1234")
}

func TestBlockCommandListsHashes(t *testing.T) {
	node := &fakeNode{}
	dir := writeConfig(t, map[string]any{"network": map[string]any{"urls": []string{node.serve(t).URL}}})

	out, err := execute(t, "--config", dir, "block", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "aa11")
	assert.Contains(t, out, "bb22")
	assert.Contains(t, out, "2 transaction(s)")
}

func TestStatusCommand(t *testing.T) {
	node := &fakeNode{}
	dir := writeConfig(t, map[string]any{"network": map[string]any{"urls": []string{node.serve(t).URL}}})

	out, err := execute(t, "--config", dir, "status", "aa11")
	require.NoError(t, err)
	assert.Contains(t, out, "success")
}

func TestWaitCommand(t *testing.T) {
	node := &fakeNode{height: 10}
	dir := writeConfig(t, map[string]any{
		"network": map[string]any{"urls": []string{node.serve(t).URL}},
		"poll":    map[string]any{"interval": "10ms"},
	})

	out, err := execute(t, "--config", dir, "wait")
	require.NoError(t, err)
	assert.Contains(t, out, "12")
}

func TestQueryWithoutURLsFails(t *testing.T) {
	_, err := execute(t, "--config", t.TempDir(), "height")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no node URLs configured")
}

// ---------------------------------------------------------------------------
// rpc / config
// ---------------------------------------------------------------------------

func TestRPCAddPersists(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "--config", dir, "rpc", "add", "http://127.0.0.1:20336")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "benchadapter.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://127.0.0.1:20336")

	_, err = execute(t, "--config", dir, "rpc", "add", "http://127.0.0.1:20336")
	assert.Error(t, err)
}

func TestRPCAlgorithmRejectsUnknown(t *testing.T) {
	_, err := execute(t, "--config", t.TempDir(), "rpc", "algorithm", "random")
	assert.Error(t, err)
}

func TestConfigListMasksPassphrase(t *testing.T) {
	dir := writeConfig(t, map[string]any{"wallet": map[string]any{"passphrase": "hunter2"}})
	out, err := execute(t, "--config", dir, "config", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "********")
}

// ---------------------------------------------------------------------------
// wallet
// ---------------------------------------------------------------------------

func TestWalletCreateAndShow(t *testing.T) {
	dir := writeConfig(t, map[string]any{"wallet": map[string]any{"passphrase": "pw"}})

	out, err := execute(t, "--config", dir, "wallet", "create", "pw", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Wallet created")
	assert.FileExists(t, filepath.Join(dir, "wallet.dat"))

	out, err = execute(t, "--config", dir, "wallet", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Address")
}

func TestWalletStorePassphrase(t *testing.T) {
	dir := t.TempDir()
	writeFastWallet(t, dir, "pw")

	_, err := execute(t, "--config", dir, "wallet", "store-passphrase", "wrong")
	require.Error(t, err)

	out, err := execute(t, "--config", dir, "wallet", "store-passphrase", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, wallet.Ref("wallet"))

	data, err := os.ReadFile(filepath.Join(dir, "benchadapter.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), wallet.Ref("wallet"))
}

// ---------------------------------------------------------------------------
// deploy / invoke
// ---------------------------------------------------------------------------

const cliTokenABI = `{"functions":[
  {"name":"transfer","parameters":[{"name":"to","type":"ByteArray"},{"name":"amount","type":"Integer"}]}
]}`

func TestDeployThenInvoke(t *testing.T) {
	node := &fakeNode{height: 1}
	srv := node.serve(t)

	dir := writeConfig(t, map[string]any{
		"network":   map[string]any{"urls": []string{srv.URL}},
		"wallet":    map[string]any{"passphrase": "pw"},
		"poll":      map[string]any{"interval": "10ms"},
		"registry":  map[string]any{"path": "registry.json"},
		"contracts": []string{"token.json"},
	})
	writeFastWallet(t, dir, "pw")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token.avm"), []byte("51c56b6c766b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token.abi.json"), []byte(cliTokenABI), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token.json"),
		[]byte(`{"name":"Token","version":"1.0","path":"token.avm","abi":"token.abi.json"}`), 0o644))

	out, err := execute(t, "--config", dir, "deploy")
	require.NoError(t, err)
	assert.Contains(t, out, "deployed")
	assert.FileExists(t, filepath.Join(dir, "registry.json"))

	out, err = execute(t, "--config", dir, "contracts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Token")

	out, err = execute(t, "--config", dir, "invoke", "Token", "transfer", "--args", `["0a0b", 5]`)
	require.NoError(t, err)
	assert.Contains(t, out, "accepted")

	_, err = execute(t, "--config", dir, "invoke", "Token", "mint", "--args", `[]`)
	assert.Error(t, err)

	node.mu.Lock()
	assert.Len(t, node.sent, 2)
	node.mu.Unlock()

	// A second host imports the deployment from an exported manifest.
	manifest := filepath.Join(t.TempDir(), "deployments.json")
	_, err = execute(t, "--config", dir, "contracts", "export", manifest)
	require.NoError(t, err)

	other := writeConfig(t, map[string]any{"registry": map[string]any{"path": "registry.json"}})
	out, err = execute(t, "--config", other, "contracts", "sync", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1")

	out, err = execute(t, "--config", other, "contracts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Token")
}
