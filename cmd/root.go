package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/benchadapter/internal/config"
	"github.com/Mohsinsiddi/benchadapter/internal/logger"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/benchadapter/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "benchadapter",
	Short: "Blockchain benchmark adapter",
	Long: `benchadapter deploys smart contracts, submits signed transactions and
queries chain state on behalf of a load-generation harness.

Configuration is read from benchadapter.json in the config directory and
BENCH_* environment variables (BENCH_GAS_LIMIT overrides gas.limit).`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		l, err := logger.New(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger.Set(l)

		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.I().Debugw("config loaded", "dir", cfg.Dir(), "urls", len(cfg.Network.URLs))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if l := logger.I(); l != nil {
			l.Sync() //nolint:errcheck
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// BENCH_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("BENCH_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.benchadapter)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Register all sub-commands.
	rootCmd.AddCommand(
		walletCmd,
		deployCmd,
		invokeCmd,
		transferCmd,
		heightCmd,
		blockCmd,
		statusCmd,
		waitCmd,
		contractsCmd,
		benchCmd,
		rpcCmd,
		configCmd,
	)
}
