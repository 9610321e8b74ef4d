package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/rpc"
	"github.com/Mohsinsiddi/benchadapter/internal/tx"
)

const (
	configName = "benchadapter"
	configFile = configName + ".json"
	envPrefix  = "BENCH"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads benchadapter.json from dir, applying defaults first and BENCH_*
// environment variables last (BENCH_GAS_LIMIT overrides gas.limit). dir
// defaults to ~/.benchadapter and is created if missing.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".benchadapter")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configName)
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.urls", []string{})
	v.SetDefault("network.rpc_algorithm", DefaultRPCAlgorithm)
	v.SetDefault("network.timeout", RPCRequestTimeout)
	v.SetDefault("wallet.path", DefaultWalletFile)
	v.SetDefault("wallet.passphrase", "")
	v.SetDefault("wallet.passphrase_ref", "")
	v.SetDefault("gas.price", tx.DefaultGasPrice)
	v.SetDefault("gas.limit", tx.DefaultGasLimit)
	v.SetDefault("poll.interval", PollInterval)
	v.SetDefault("poll.timeout", 0)
	v.SetDefault("registry.path", "")
	v.SetDefault("registry.on_duplicate", DefaultOnDuplicate)
	v.SetDefault("registry.source", "")
	v.SetDefault("contracts", []string{})
	v.SetDefault("bench.contract", "")
	v.SetDefault("bench.func", "")
	v.SetDefault("bench.tps", DefaultBenchTPS)
	v.SetDefault("bench.duration", BenchDuration)
	v.SetDefault("bench.workers", DefaultBenchWorkers)
}

// resolvePaths makes file references relative to the config dir.
func (c *Config) resolvePaths() {
	c.Wallet.Path = c.abs(c.Wallet.Path)
	c.Registry.Path = c.abs(c.Registry.Path)
	for i, p := range c.Contracts {
		c.Contracts[i] = c.abs(p)
	}
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	if _, err := rpc.ParseAlgorithm(c.Network.RPCAlgorithm); err != nil {
		return fmt.Errorf("%w: rpc_algorithm: %v", ErrInvalidConfig, err)
	}
	if _, err := contract.ParseDuplicatePolicy(c.Registry.OnDuplicate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Gas.Limit == 0 {
		return fmt.Errorf("%w: gas.limit must be positive", ErrInvalidConfig)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("%w: poll.interval must be positive", ErrInvalidConfig)
	}
	if c.Poll.Timeout < 0 {
		return fmt.Errorf("%w: poll.timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// DuplicatePolicy returns the parsed registry duplicate policy.
func (c *Config) DuplicatePolicy() contract.DuplicatePolicy {
	p, _ := contract.ParseDuplicatePolicy(c.Registry.OnDuplicate)
	return p
}

// Save writes the config to benchadapter.json in the config dir.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path(), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Path returns the config file location.
func (c *Config) Path() string {
	return filepath.Join(c.configDir, configFile)
}

// AddURL appends a node endpoint.
func (c *Config) AddURL(url string) error {
	for _, u := range c.Network.URLs {
		if u == url {
			return fmt.Errorf("RPC %s already configured", url)
		}
	}
	c.Network.URLs = append(c.Network.URLs, url)
	return nil
}

// RemoveURL drops a node endpoint.
func (c *Config) RemoveURL(url string) error {
	for i, u := range c.Network.URLs {
		if u == url {
			c.Network.URLs = append(c.Network.URLs[:i], c.Network.URLs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("RPC %s not found", url)
}
