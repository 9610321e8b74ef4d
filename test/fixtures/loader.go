package fixtures

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// ContractDescriptor copies a fixture contract (descriptor, bytecode and ABI)
// into a temp dir and returns the descriptor path.
func ContractDescriptor(t *testing.T, name string) string {
	t.Helper()
	src := filepath.Join(fixturesDir(), "contracts")
	dst := t.TempDir()
	for _, f := range []string{name + ".json", name + ".avm", name + ".abi.json"} {
		data, err := os.ReadFile(filepath.Join(src, f))
		require.NoError(t, err, "failed to load fixture: %s", f)
		require.NoError(t, os.WriteFile(filepath.Join(dst, f), data, 0o644))
	}
	return filepath.Join(dst, name+".json")
}

// LoadABI returns the raw ABI of a fixture contract.
func LoadABI(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(fixturesDir(), "contracts", name+".abi.json"))
	require.NoError(t, err, "failed to load fixture ABI: %s", name)
	return data
}
