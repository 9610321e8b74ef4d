package config

import (
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/tx"
)

// Config holds all benchadapter configuration.
type Config struct {
	Network   NetworkConfig  `json:"network"   mapstructure:"network"`
	Wallet    WalletConfig   `json:"wallet"    mapstructure:"wallet"`
	Gas       tx.GasConfig   `json:"gas"       mapstructure:"gas"`
	Poll      PollConfig     `json:"poll"      mapstructure:"poll"`
	Registry  RegistryConfig `json:"registry"  mapstructure:"registry"`
	Contracts []string       `json:"contracts" mapstructure:"contracts"` // descriptor paths, deployed in order
	Bench     BenchConfig    `json:"bench"     mapstructure:"bench"`

	// internal: config dir path used for Save()
	configDir string
}

// NetworkConfig lists node endpoints and how to choose between them.
type NetworkConfig struct {
	URLs         []string      `json:"urls"          mapstructure:"urls"`
	RPCAlgorithm string        `json:"rpc_algorithm" mapstructure:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	Timeout      time.Duration `json:"timeout"       mapstructure:"timeout"`
}

// WalletConfig locates the wallet file and its passphrase.
type WalletConfig struct {
	Path          string `json:"path"                     mapstructure:"path"`
	Passphrase    string `json:"passphrase,omitempty"     mapstructure:"passphrase"`
	PassphraseRef string `json:"passphrase_ref,omitempty" mapstructure:"passphrase_ref"` // OS keychain reference
}

// PollConfig tunes the next-block wait. Timeout 0 waits indefinitely.
type PollConfig struct {
	Interval time.Duration `json:"interval" mapstructure:"interval"`
	Timeout  time.Duration `json:"timeout"  mapstructure:"timeout"`
}

// RegistryConfig controls contract registry persistence and duplicates.
type RegistryConfig struct {
	Path        string `json:"path,omitempty" mapstructure:"path"`
	OnDuplicate string `json:"on_duplicate"   mapstructure:"on_duplicate"` // "replace" | "reject"
	// Source is a deployments manifest (URL or file) imported by "contracts sync".
	Source string `json:"source,omitempty" mapstructure:"source"`
}

// BenchConfig is the default workload of the bench command.
type BenchConfig struct {
	Contract string        `json:"contract,omitempty" mapstructure:"contract"`
	Func     string        `json:"func,omitempty"     mapstructure:"func"`
	Args     []any         `json:"args,omitempty"     mapstructure:"args"`
	TPS      int           `json:"tps"                mapstructure:"tps"`
	Duration time.Duration `json:"duration"           mapstructure:"duration"`
	Workers  int           `json:"workers"            mapstructure:"workers"`
}
